// Package middleware implements the request authorization pipeline: a
// fixed-order chain of rate limiting, bearer-token authentication, and
// per-resource ownership authorization that runs before any business
// handler. All three stages consult one route classifier so the notion of
// "protected route" is encoded exactly once.
package middleware
