package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Riiturii/oc-monvieuxgrimoire/internal/service"
	"github.com/Riiturii/oc-monvieuxgrimoire/pkg/health"
	"github.com/Riiturii/oc-monvieuxgrimoire/pkg/middleware"
)

// RouterConfig holds the knobs the router needs beyond its dependencies.
type RouterConfig struct {
	// ImageDir is the directory normalized covers are served from.
	ImageDir string
	// RateLimitRPS / RateLimitBurst bound per-client request rates.
	// A zero RPS disables rate limiting.
	RateLimitRPS   int
	RateLimitBurst int
	// TokenValidator authenticates bearer tokens on mutating routes.
	TokenValidator middleware.TokenValidator
}

// coverCacheMaxAge is how long clients may cache served cover images.
// Covers are immutable (a replacement gets a fresh key), so this is safe.
const coverCacheMaxAge = 86400

// NewRouter creates a chi router with all catalog service routes registered.
func NewRouter(
	catalogService *service.CatalogService,
	healthHandler *health.Handler,
	cfg RouterConfig,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Tracing("catalog"))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.PrometheusMetrics("catalog"))
	if cfg.RateLimitRPS > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst, logger))
	}

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	// Stored cover images
	fileServer := http.StripPrefix("/images/", http.FileServer(http.Dir(cfg.ImageDir)))
	r.With(middleware.CacheControl(coverCacheMaxAge)).
		Get("/images/*", fileServer.ServeHTTP)

	// Book API endpoints
	bookHandler := NewBookHandler(catalogService, logger)
	requireAuth := middleware.Auth(cfg.TokenValidator)

	r.Route("/api/books", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", bookHandler.ListBooks)
		r.Get("/bestrating", bookHandler.BestRatedBooks)
		r.Get("/{id}", bookHandler.GetBook)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)

			r.Post("/", bookHandler.CreateBook)
			r.Put("/{id}", bookHandler.UpdateBook)
			r.Delete("/{id}", bookHandler.DeleteBook)
			r.Post("/{id}/rating", bookHandler.RateBook)
		})
	})

	return r
}
