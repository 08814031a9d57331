package middleware

import (
	"net"
	"net/http"
	"strings"
)

const (
	headerXContentTypeOptions     = "X-Content-Type-Options"
	headerXFrameOptions           = "X-Frame-Options"
	headerReferrerPolicy          = "Referrer-Policy"
	headerContentSecurityPolicy   = "Content-Security-Policy"
	headerStrictTransportSecurity = "Strict-Transport-Security"
)

// SecurityHeaders sets response headers for a JSON-only API.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set(headerXContentTypeOptions, "nosniff")
		h.Set(headerXFrameOptions, "DENY")
		h.Set(headerReferrerPolicy, "no-referrer")
		h.Set(headerContentSecurityPolicy, "default-src 'none'; frame-ancestors 'none'")
		h.Set(headerStrictTransportSecurity, "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

// HostCheck answers 403 when r.Host does not match allowedHost (bare
// hostname, no scheme or port). An empty allowedHost disables the check.
func HostCheck(allowedHost string) func(http.Handler) http.Handler {
	allowedHost = strings.TrimSpace(allowedHost)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allowedHost == "" {
				next.ServeHTTP(w, r)
				return
			}
			reqHost := r.Host
			if host, _, err := net.SplitHostPort(reqHost); err == nil {
				reqHost = host
			}
			if !strings.EqualFold(strings.TrimSpace(reqHost), allowedHost) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"success":false,"error":"Forbidden"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ProductionSecurity returns the middlewares added in production:
// SecurityHeaders then HostCheck.
func ProductionSecurity(allowedHost string) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		SecurityHeaders,
		HostCheck(allowedHost),
	}
}
