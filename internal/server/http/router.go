package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/voxgate/voxgate/internal/logging"
	"github.com/voxgate/voxgate/internal/server/auth"
	"github.com/voxgate/voxgate/internal/server/metrics"
)

type RouterConfig struct {
	CORSOrigin      string
	RateLimitWindow time.Duration
	RateLimitMax    int
	// TrustProxyHeaders rewrites RemoteAddr from X-Forwarded-For or
	// X-Real-IP. Off by default since clients can set those headers freely.
	TrustProxyHeaders bool
}

// NewRouter assembles the API routes. gatherer may be nil to omit /metrics.
func NewRouter(h *Handler, authn *auth.Authenticator, cfg RouterConfig, logger logging.Logger,
	m *metrics.Metrics, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(AccessLog(logger, m))
	r.Use(chimiddleware.Recoverer)
	r.Use(CORS(cfg.CORSOrigin))

	r.Get("/healthz", Healthz)
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	limiter := NewRateLimiter(cfg.RateLimitWindow, cfg.RateLimitMax)
	requireAccount := Authenticate(authn, logger)

	r.Route("/api/auth", func(r chi.Router) {
		r.With(limiter.Limit).Post("/register", h.Register)
		r.With(limiter.Limit).Post("/login", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(requireAccount)
			r.Get("/me", h.Me)
			r.Post("/apikey", h.RotateAPIKey)
			r.Post("/password", h.ChangePassword)
		})
	})

	r.Route("/api/voice", func(r chi.Router) {
		r.Use(requireAccount)
		r.Post("/generate", h.Generate)
		r.Get("/usage", h.Usage)
		r.Get("/projects", h.ListProjects)
		r.Post("/projects", h.CreateProject)
	})

	return r
}
