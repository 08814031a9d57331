package middleware

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// EchoRequestID returns the request id assigned by chi's RequestID in the
// X-Request-Id response header.
func EchoRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := chimw.GetReqID(r.Context()); id != "" {
			w.Header().Set(chimw.RequestIDHeader, id)
		}
		next.ServeHTTP(w, r)
	})
}
