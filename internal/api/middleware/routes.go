package middleware

import (
	"net/http"
	"regexp"
	"strings"
)

// Stage identifies a pipeline stage consulting the route classifier.
type Stage int

const (
	StageRateLimit Stage = iota
	StageAuth
	StageOwnership
)

// adminRule pairs a path pattern with the methods it restricts to
// administrators. Wildcard segments in the declarative table are translated
// to single-segment regexes at construction.
type adminRule struct {
	pattern *regexp.Regexp
	methods map[string]bool
}

// RouteRules is the declarative input to the classifier. One table feeds
// every pipeline stage so "is this route protected" is encoded exactly once.
type RouteRules struct {
	// PublicExact lists paths that are public for every method.
	PublicExact []string

	// PublicPrefixes lists path prefixes that are public for every method.
	// These routes also bypass the rate limiter.
	PublicPrefixes []string

	// PublicByMethod lists method-specific public paths, keyed by method.
	PublicByMethod map[string][]string

	// StatusPrefixes lists public status/check path prefixes.
	StatusPrefixes []string

	// AuthEndpoints lists credential-submission paths. Only POST to these
	// counts as an auth endpoint for rate limiting purposes.
	AuthEndpoints []string

	// OwnershipPatterns is the ordered list of regexes whose first capture
	// group yields the target identifier of a mutating request.
	OwnershipPatterns []string

	// AdminPrefixes lists path prefixes reserved for administrators.
	AdminPrefixes []string

	// AdminRules lists (path pattern, methods) pairs restricted to
	// administrators. A "*" path segment matches exactly one segment.
	AdminRules map[string][]string

	// ProfileCompletionPath is the route whose authentication uses the
	// profile-completion validity predicate instead of the ordinary one.
	ProfileCompletionPath string
}

// DefaultRouteRules returns the platform's route security table.
func DefaultRouteRules() RouteRules {
	return RouteRules{
		PublicExact: []string{
			"/",
			"/favicon.ico",
		},
		PublicPrefixes: []string{
			"/health",
			"/metrics",
			"/api-docs",
			"/swagger-ui",
			"/actuator",
		},
		PublicByMethod: map[string][]string{
			http.MethodGet: {
				"/api/categories",
				"/api/tags",
				"/api/events",
			},
		},
		StatusPrefixes: []string{
			"/api/auth/check",
			"/api/status",
		},
		AuthEndpoints: []string{
			"/api/auth/login",
			"/api/auth/register",
			"/api/auth/refresh",
			"/api/auth/forgot-password",
			"/api/auth/reset-password",
			"/api/auth/google",
			"/api/auth/facebook",
		},
		OwnershipPatterns: []string{
			`^/api/users/profile/([^/]+)$`,
			`^/api/users/([^/]+@[^/]+)$`,
			`^/api/bookings/(\d+)$`,
			`^/api/payments/methods/(\d+)$`,
		},
		AdminPrefixes: []string{
			"/api/admin/",
		},
		AdminRules: map[string][]string{
			"/api/categories/*":     {http.MethodPost, http.MethodPut, http.MethodDelete},
			"/api/tags/*":           {http.MethodPost, http.MethodPut, http.MethodDelete},
			"/api/events/*/approve": {http.MethodPost},
		},
		ProfileCompletionPath: "/api/users/complete-profile",
	}
}

// RouteClassifier maps (path, method) pairs to security requirements from
// static rule tables. All methods are pure functions over tables compiled
// once at construction; the classifier holds no mutable state and is safe
// for concurrent use.
type RouteClassifier struct {
	publicExact       map[string]bool
	publicPrefixes    []string
	publicByMethod    map[string]map[string]bool
	statusPrefixes    []string
	authEndpoints     map[string]bool
	ownershipPatterns []*regexp.Regexp
	adminPrefixes     []string
	adminRules        []adminRule
	profileCompletion string
}

// NewRouteClassifier compiles the rule table into a classifier.
// Panics on an invalid pattern: the tables are static program data, and a
// typo there should fail startup, not requests.
func NewRouteClassifier(rules RouteRules) *RouteClassifier {
	c := &RouteClassifier{
		publicExact:       make(map[string]bool, len(rules.PublicExact)),
		publicPrefixes:    rules.PublicPrefixes,
		publicByMethod:    make(map[string]map[string]bool, len(rules.PublicByMethod)),
		statusPrefixes:    rules.StatusPrefixes,
		authEndpoints:     make(map[string]bool, len(rules.AuthEndpoints)),
		adminPrefixes:     rules.AdminPrefixes,
		profileCompletion: rules.ProfileCompletionPath,
	}

	for _, path := range rules.PublicExact {
		c.publicExact[path] = true
	}
	for method, paths := range rules.PublicByMethod {
		set := make(map[string]bool, len(paths))
		for _, path := range paths {
			set[path] = true
		}
		c.publicByMethod[method] = set
	}
	for _, path := range rules.AuthEndpoints {
		c.authEndpoints[path] = true
	}
	for _, pattern := range rules.OwnershipPatterns {
		c.ownershipPatterns = append(c.ownershipPatterns, regexp.MustCompile(pattern))
	}
	for pattern, methods := range rules.AdminRules {
		methodSet := make(map[string]bool, len(methods))
		for _, m := range methods {
			methodSet[m] = true
		}
		c.adminRules = append(c.adminRules, adminRule{
			pattern: compileWildcardPattern(pattern),
			methods: methodSet,
		})
	}

	return c
}

// compileWildcardPattern translates a path with "*" segments into an
// anchored regex where each wildcard matches exactly one path segment.
func compileWildcardPattern(pattern string) *regexp.Regexp {
	segments := strings.Split(pattern, "/")
	for i, seg := range segments {
		if seg == "*" {
			segments[i] = "[^/]+"
		} else {
			segments[i] = regexp.QuoteMeta(seg)
		}
	}
	return regexp.MustCompile("^" + strings.Join(segments, "/") + "$")
}

// IsPublic reports whether the route requires no authentication.
func (c *RouteClassifier) IsPublic(path, method string) bool {
	if c.publicExact[path] {
		return true
	}
	for _, prefix := range c.publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	if set, ok := c.publicByMethod[method]; ok && set[path] {
		return true
	}
	for _, prefix := range c.statusPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// IsAuthEndpoint reports whether the request submits credentials. Only POST
// to a fixed set of paths qualifies; these drain the stricter AUTH bucket
// in addition to the API bucket.
func (c *RouteClassifier) IsAuthEndpoint(path, method string) bool {
	return method == http.MethodPost && c.authEndpoints[path]
}

// RequiresOwnershipCheck reports whether the request mutates a resource
// subject to the self-or-admin rule.
func (c *RouteClassifier) RequiresOwnershipCheck(path, method string) bool {
	switch method {
	case http.MethodPut, http.MethodPatch, http.MethodDelete:
	default:
		return false
	}
	for _, p := range c.ownershipPatterns {
		if p.MatchString(path) {
			return true
		}
	}
	return false
}

// ExtractTargetIdentifier returns the first capture group of the first
// matching ownership pattern, in table order. Returns "" when no pattern
// matches.
func (c *RouteClassifier) ExtractTargetIdentifier(path string) string {
	for _, p := range c.ownershipPatterns {
		if m := p.FindStringSubmatch(path); m != nil {
			return m[1]
		}
	}
	return ""
}

// RequiresAdmin reports whether the route is reserved for administrators.
func (c *RouteClassifier) RequiresAdmin(path, method string) bool {
	for _, prefix := range c.adminPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	for _, rule := range c.adminRules {
		if rule.methods[method] && rule.pattern.MatchString(path) {
			return true
		}
	}
	return false
}

// IsProfileCompletionRoute reports whether the request targets the
// profile-completion flow, which uses its own validity predicate.
func (c *RouteClassifier) IsProfileCompletionRoute(path, method string) bool {
	return method == http.MethodPost && path == c.profileCompletion
}

// RateLimitExempt reports whether the path bypasses the rate limiter
// entirely (health checks, static docs).
func (c *RouteClassifier) RateLimitExempt(path string) bool {
	for _, prefix := range c.publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// ShouldSkip reports whether the given pipeline stage passes the request
// through without evaluation. Rate limiting never skips here; its exempt
// list is a separate, narrower concern (RateLimitExempt).
func (c *RouteClassifier) ShouldSkip(path, method string, stage Stage) bool {
	switch stage {
	case StageRateLimit:
		return false
	case StageAuth:
		return c.IsPublic(path, method)
	case StageOwnership:
		if c.RequiresAdmin(path, method) || c.IsPublic(path, method) {
			return true
		}
		switch method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			return true
		}
		return false
	}
	return false
}
