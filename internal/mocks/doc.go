// Package mocks provides hand-written test doubles for the store and
// service interfaces. Each mock exposes function fields to override
// individual methods and a usable in-memory default implementation.
package mocks
