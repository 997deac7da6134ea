package middleware

import (
	"net"
	"net/http"
	"strings"
)

// proxyIPHeaders is the priority-ordered list of proxy headers consulted to
// resolve the client address. The first header with a value wins; if it
// holds a comma-separated chain, the first entry is the originating client.
var proxyIPHeaders = []string{
	"X-Forwarded-For",
	"X-Real-IP",
	"X-Original-Forwarded-For",
	"CF-Connecting-IP",
	"True-Client-IP",
}

// ClientIP resolves the client address for rate limiting. Falls back to the
// socket remote address when no proxy header is present.
func ClientIP(r *http.Request) string {
	for _, header := range proxyIPHeaders {
		value := r.Header.Get(header)
		if value == "" {
			continue
		}
		if i := strings.IndexByte(value, ','); i >= 0 {
			value = value[:i]
		}
		if ip := strings.TrimSpace(value); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
