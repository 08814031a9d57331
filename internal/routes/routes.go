package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/AnshRaj112/feedback-backend/internal/handlers"
	"github.com/AnshRaj112/feedback-backend/internal/middleware"
	"github.com/AnshRaj112/feedback-backend/pkg/metrics"
)

// Deps are the collaborators the router serves.
type Deps struct {
	Feedback       *handlers.FeedbackHandler
	Metrics        *metrics.Metrics
	MetricsHandler http.Handler
	AllowedOrigins []string
	Logger         *zap.Logger

	// Production adds security headers and the Host check
	Production  bool
	AllowedHost string
}

// NewRouter builds the middleware chain and mounts every route.
func NewRouter(d Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.EchoRequestID)
	r.Use(middleware.AccessLog(d.Logger.Named("http"), d.Metrics))
	r.Use(chimw.Recoverer)
	if d.Production {
		r.Use(middleware.ProductionSecurity(d.AllowedHost)...)
	}
	r.Use(middleware.CORS(d.AllowedOrigins))

	SetupRoutes(r, d)
	return r
}

// SetupRoutes mounts the health, metrics and feedback routes on r.
func SetupRoutes(r chi.Router, d Deps) {
	// Health check
	r.Get("/health", handlers.Health)
	if d.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", d.MetricsHandler)
	}

	// Feedback routes
	r.Post("/api/feedback", d.Feedback.SubmitFeedback)
}
