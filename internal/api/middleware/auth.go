package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/AllexanderGM/feeling-sub000/internal/api/shared"
	"github.com/AllexanderGM/feeling-sub000/internal/domain"
	"github.com/AllexanderGM/feeling-sub000/internal/metrics"
	"github.com/AllexanderGM/feeling-sub000/internal/platform/logger"
	"github.com/AllexanderGM/feeling-sub000/internal/service/auth"
	"github.com/AllexanderGM/feeling-sub000/internal/service/usercache"
	"github.com/AllexanderGM/feeling-sub000/internal/store"
)

// TokenAuthenticator validates bearer tokens and populates the request's
// security context. A missing or unparseable token is a soft miss: the
// request continues anonymously and any 401 must come from a later check.
// A well-formed token that fails a hard check (wrong kind, revoked, stale
// binding, invalid account) is always a 401.
type TokenAuthenticator struct {
	classifier *RouteClassifier
	jwtService auth.JWTService
	tokenStore store.TokenStore
	users      *usercache.Cache
	metrics    *metrics.Pipeline
	now        func() time.Time // Injectable for testing
}

// NewTokenAuthenticator creates a TokenAuthenticator with its dependencies.
func NewTokenAuthenticator(
	classifier *RouteClassifier,
	jwtService auth.JWTService,
	tokenStore store.TokenStore,
	users *usercache.Cache,
	m *metrics.Pipeline,
) *TokenAuthenticator {
	return &TokenAuthenticator{
		classifier: classifier,
		jwtService: jwtService,
		tokenStore: tokenStore,
		users:      users,
		metrics:    m,
		now:        time.Now,
	}
}

// Authenticate is the pipeline's authentication stage.
func (m *TokenAuthenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Fail closed: an unexpected panic anywhere below must never leak a
		// stack trace or let the request through half-authenticated.
		defer func() {
			if rec := recover(); rec != nil {
				logger.FromContext(r.Context()).Error("panic during authentication",
					"panic", rec,
					"path", r.URL.Path,
					"method", r.Method)
				m.reject(w, r, "Authentication failed")
			}
		}()

		if m.classifier.ShouldSkip(r.URL.Path, r.Method, StageAuth) {
			next.ServeHTTP(w, r)
			return
		}

		// No bearer header is not an error here; the route may enforce auth
		// elsewhere or not at all.
		token, ok := bearerToken(r)
		if !ok || token == "" {
			m.anonymous(next, w, r)
			return
		}

		// A token we cannot parse is treated the same as no token.
		email, err := m.jwtService.ExtractSubject(token)
		if err != nil || email == "" {
			m.anonymous(next, w, r)
			return
		}

		// Idempotent re-entry: an already-authenticated context passes
		// through untouched.
		if _, ok := shared.GetPrincipal(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}

		// From here on every failure is a hard 401.
		kind, err := m.jwtService.ExtractKind(token)
		if err != nil || kind != domain.TokenKindAccess {
			m.reject(w, r, "Invalid token type")
			return
		}

		record, err := m.tokenStore.FindByToken(r.Context(), token)
		if err != nil {
			if !store.IsNotFoundError(err) {
				logger.FromContext(r.Context()).Error("token store lookup failed", "error", err)
			}
			m.reject(w, r, "Invalid or revoked token")
			return
		}
		if !record.Authenticates(m.now()) {
			m.reject(w, r, "Invalid or revoked token")
			return
		}

		valid, err := m.userValidity(r, email)
		if err != nil {
			logger.FromContext(r.Context()).Error("user validity check failed", "error", err)
			m.reject(w, r, "Account is not valid for authentication")
			return
		}
		if !valid {
			m.reject(w, r, "Account is not valid for authentication")
			return
		}

		user, err := m.users.FindByEmail(r.Context(), email)
		if err != nil {
			m.reject(w, r, "Account is not valid for authentication")
			return
		}

		// Credential binding: tokens issued before a password change carry a
		// stale binding and die here.
		if !m.jwtService.VerifyBinding(token, user) {
			m.reject(w, r, "Token no longer valid for this account")
			return
		}

		if !user.Verified || user.Deactivated {
			m.reject(w, r, "Account is not verified")
			return
		}

		info, err := m.users.SecurityInfo(r.Context(), email)
		if err != nil {
			m.reject(w, r, "Account is not valid for authentication")
			return
		}

		principal := &shared.Principal{
			Email:       info.Email,
			Authorities: []string{info.Role.Authority()},
		}

		m.metrics.AuthOutcomes.WithLabelValues("authenticated").Inc()
		next.ServeHTTP(w, r.WithContext(shared.WithPrincipal(r.Context(), principal)))
	})
}

// userValidity selects the predicate for the route: the profile-completion
// flow accepts verified-but-not-yet-enabled accounts; everything else
// requires an enabled, unlocked account.
func (m *TokenAuthenticator) userValidity(r *http.Request, email string) (bool, error) {
	if m.classifier.IsProfileCompletionRoute(r.URL.Path, r.Method) {
		return m.users.IsValidForProfileCompletion(r.Context(), email)
	}
	return m.users.IsValidForAuth(r.Context(), email)
}

// anonymous passes the request through without a principal.
func (m *TokenAuthenticator) anonymous(next http.Handler, w http.ResponseWriter, r *http.Request) {
	m.metrics.AuthOutcomes.WithLabelValues("anonymous").Inc()
	next.ServeHTTP(w, r)
}

// reject writes the 401 response. The message is already sanitized; raw
// error details stay in the logs.
func (m *TokenAuthenticator) reject(w http.ResponseWriter, r *http.Request, message string) {
	m.metrics.AuthOutcomes.WithLabelValues("rejected").Inc()
	shared.RespondWithError(w, r, http.StatusUnauthorized, message)
}

// bearerToken extracts the token from the Authorization header.
// Returns false when the header is absent or not a Bearer scheme.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}
