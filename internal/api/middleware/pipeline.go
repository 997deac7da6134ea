package middleware

import "net/http"

// Pipeline composes the authorization stages into one deterministic
// per-request chain. The order is load-bearing: rejecting before
// authenticating avoids wasted verification work under abuse, authentication
// must populate the security context before ownership evaluation, and
// ownership must be decided before any state mutation.
type Pipeline struct {
	rateLimit     *RateLimitMiddleware
	authenticator *TokenAuthenticator
	ownership     *OwnershipGuard
}

// NewPipeline creates the fixed-order pipeline.
func NewPipeline(
	rateLimit *RateLimitMiddleware,
	authenticator *TokenAuthenticator,
	ownership *OwnershipGuard,
) *Pipeline {
	return &Pipeline{
		rateLimit:     rateLimit,
		authenticator: authenticator,
		ownership:     ownership,
	}
}

// Middlewares returns the ordered middleware chain for the router:
// rate limit, then authenticate, then ownership.
func (p *Pipeline) Middlewares() []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		p.rateLimit.Handler,
		p.authenticator.Authenticate,
		p.ownership.Guard,
	}
}

// Wrap applies the full chain to a single handler, outermost stage first.
// Useful in tests and for mounting the pipeline outside a router.
func (p *Pipeline) Wrap(handler http.Handler) http.Handler {
	stages := p.Middlewares()
	for i := len(stages) - 1; i >= 0; i-- {
		handler = stages[i](handler)
	}
	return handler
}
