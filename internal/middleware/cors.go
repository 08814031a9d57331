package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows the form client's origins to POST JSON. Preflight requests are
// answered with 200.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:     allowedOrigins,
		AllowedMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:     []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposedHeaders:     []string{"X-Request-Id"},
		AllowCredentials:   false,
		MaxAge:             300,
		OptionsPassthrough: false,
	})
}
