package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/AllexanderGM/feeling-sub000/internal/api/shared"
	"github.com/AllexanderGM/feeling-sub000/internal/domain"
	"github.com/AllexanderGM/feeling-sub000/internal/metrics"
	"github.com/AllexanderGM/feeling-sub000/internal/platform/logger"
)

// OwnerResolver resolves a numeric target identifier from an ownership
// pattern to the owning user's email. The path selects which resource type
// the identifier belongs to.
type OwnerResolver interface {
	ResolveOwnerEmail(ctx context.Context, path string, id int64) (string, error)
}

// OwnershipGuard enforces that mutating requests only affect the caller's
// own resource, or that the caller is an administrator. Route-level
// "authenticated" checks cannot express per-resource ownership; centralizing
// the rule here keeps it out of every handler.
type OwnershipGuard struct {
	classifier *RouteClassifier
	resolver   OwnerResolver
	metrics    *metrics.Pipeline
}

// NewOwnershipGuard creates an OwnershipGuard with its dependencies.
func NewOwnershipGuard(
	classifier *RouteClassifier,
	resolver OwnerResolver,
	m *metrics.Pipeline,
) *OwnershipGuard {
	return &OwnershipGuard{
		classifier: classifier,
		resolver:   resolver,
		metrics:    m,
	}
}

// Guard is the pipeline's authorization stage. It runs after authentication,
// so the principal, when present, is already verified.
func (g *OwnershipGuard) Guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, method := r.URL.Path, r.Method

		// Admin routes skip the ownership check but still require the admin
		// authority itself.
		if g.classifier.RequiresAdmin(path, method) {
			principal, ok := shared.GetPrincipal(r.Context())
			if !ok || !principal.HasAuthority(domain.AdminAuthority) {
				g.deny(w, r, "Administrator access required")
				return
			}
			next.ServeHTTP(w, r)
			return
		}

		if g.classifier.ShouldSkip(path, method, StageOwnership) ||
			!g.classifier.RequiresOwnershipCheck(path, method) {
			next.ServeHTTP(w, r)
			return
		}

		principal, ok := shared.GetPrincipal(r.Context())
		if !ok {
			g.deny(w, r, "You can only modify your own resources")
			return
		}

		if principal.HasAuthority(domain.AdminAuthority) {
			next.ServeHTTP(w, r)
			return
		}

		target := g.classifier.ExtractTargetIdentifier(path)
		if target == principal.Email {
			next.ServeHTTP(w, r)
			return
		}

		if id, err := strconv.ParseInt(target, 10, 64); err == nil {
			owner, err := g.resolver.ResolveOwnerEmail(r.Context(), path, id)
			if err != nil {
				// Unknown or unresolvable resources deny rather than leak
				// whether they exist.
				logger.FromContext(r.Context()).Debug("owner resolution failed",
					"error", err,
					"path", path,
					"target_id", id)
				g.deny(w, r, "You can only modify your own resources")
				return
			}
			if owner == principal.Email {
				next.ServeHTTP(w, r)
				return
			}
		}

		g.deny(w, r, "You can only modify your own resources")
	})
}

// deny writes the 403 response.
func (g *OwnershipGuard) deny(w http.ResponseWriter, r *http.Request, message string) {
	g.metrics.OwnershipDenied.Inc()
	shared.RespondWithError(w, r, http.StatusForbidden, message)
}
