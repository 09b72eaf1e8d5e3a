package handlers

import (
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-funnel/internal/infra/http/middleware"
)

type RouterConfig struct {
	Leads          *LeadHandler
	Waitlist       *WaitlistHandler
	Enrollment     *EnrollmentHandler
	Users          *UserHandler
	Health         *HealthHandler
	RateLimiter    *middleware.RateLimiter
	AllowedOrigins []string
	Logger         *zap.Logger

	// TrustedProxies são os peers cujos cabeçalhos de IP valem (CloudFront, ALB).
	TrustedProxies []netip.Prefix

	// ServiceToken libera as rotas internas (contas, pagamento, status da waitlist).
	ServiceToken string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP(cfg.TrustedProxies))
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(cfg.Logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID", "X-Page-Route"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(chimw.Timeout(15 * time.Second))

	r.Get("/health", cfg.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	limited := middleware.Limit(cfg.RateLimiter)
	internal := middleware.ServiceAuth(cfg.ServiceToken)

	// formulários do site: públicos, com rate limit por IP
	r.Route("/leads", func(r chi.Router) {
		r.With(limited).Post("/", cfg.Leads.CaptureLead)
		r.With(limited).Post("/{leadId}/submissions", cfg.Leads.CreateSubmission)
	})

	r.Route("/waitlist", func(r chi.Router) {
		r.With(limited).Post("/", cfg.Waitlist.Join)
		r.With(internal).Patch("/{entryId}/status", cfg.Waitlist.UpdateStatus)
	})

	r.Route("/enrollment", func(r chi.Router) {
		r.With(limited).Post("/identification", cfg.Enrollment.Identification)
		r.Get("/{leadId}/progress", cfg.Enrollment.Progress)
		// confirmação vem do backend de pagamento, nunca do navegador
		r.With(internal).Post("/{leadId}/payment", cfg.Enrollment.Payment)
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(internal)
		r.Post("/", cfg.Users.Create)
		r.Put("/{userId}", cfg.Users.Update)
	})

	return r
}
