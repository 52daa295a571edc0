package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	_ "surfaceflow/docs"
)

// APIPrefix is where every endpoint except swagger is mounted.
const APIPrefix = "/api/v1"

type RouteOption func(*routeConfig)

type routeConfig struct {
	limiter *rate.Limiter
}

// WithRateLimit caps the request rate across all clients. A nil limiter
// disables limiting.
func WithRateLimit(l *rate.Limiter) RouteOption {
	return func(c *routeConfig) { c.limiter = l }
}

func Routes(h *Handler, log *zap.Logger, opts ...RouteOption) http.Handler {
	var cfg routeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	// after RequestID so every line carries req_id
	r.Use(RequestLogger(log))
	if cfg.limiter != nil {
		r.Use(RateLimit(cfg.limiter))
	}

	r.Route(APIPrefix, func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Login)
			r.Post("/logout", h.Logout)
			r.Get("/me", h.CurrentUser)
		})

		r.Get("/modules", h.ListModules)
		r.Get("/modules/{id}", h.ModuleDetail)

		r.Route("/automations", func(r chi.Router) {
			r.Get("/", h.ListAutomations)
			r.Post("/trigger", h.TriggerAutomation)
			r.Get("/{id}", h.GetAutomation)
			r.Post("/{id}/cancel", h.CancelAutomation)
		})

		r.Route("/buildertrend", func(r chi.Router) {
			r.Route("/hotel-booking", func(r chi.Router) {
				r.Post("/search", h.SearchHotels)
				r.Post("/run", h.RunHotelSearch)
				r.Post("/approve", h.ApproveBooking)
				r.Get("/status/{jobID}", h.BookingStatus)
				r.Get("/bookings/{id}", h.GetBooking)
				r.Get("/history", h.BookingHistory)
				r.Get("/searches", h.HotelSearches)
				r.Get("/approvals", h.BookingApprovals)
			})
			r.Get("/jobs", h.ListJobs)
			r.Get("/jobs/{jobID}", h.GetJob)
			r.Post("/jobs/{jobID}/sync", h.SyncJob)
		})

		leads := func(r chi.Router) {
			r.Get("/", h.ListEnrichments)
			r.Post("/enrich", h.EnrichLead)
			r.Get("/history", h.EnrichmentHistory)
			r.Get("/status/{id}", h.EnrichmentStatus)
			r.Get("/mock-leads", h.MockLeads)
		}
		r.Route("/salesforce/leads", leads)
		// the browser extension still posts here
		r.Route("/salesforce/lead-enrichment", leads)
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	return r
}
