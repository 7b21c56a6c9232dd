/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route
  definitions. This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestLogger: one zerolog line per request
  2. Recoverer:     panic recovery (500 instead of crash)
  3. RequestID:     unique ID per request for tracing
  4. CORS:          cross-origin requests for frontend
  5. httprate:      per-IP rate limit

ROUTE GROUPS:
  /api/agents/*     Agent registry, payouts, frequency switch
  /api/invoices/*   Invoicing
  /api/reports/*    Company summaries
  /healthz          Liveness probe

SECURITY NOTE:
  No authentication middleware. All endpoints are public.

SEE ALSO:
  - handlers.go: handler implementations
  - cmd/server/main.go: server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, origin string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestLogger(h.Log))
	r.Use(Recoverer(h.Log))
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(httprate.LimitByIP(200, time.Minute))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/agents", func(r chi.Router) {
			r.Get("/", h.ListAgents)
			r.Post("/", h.CreateAgent)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetAgent)
				r.Put("/", h.UpdateAgent)
				r.Delete("/", h.DeleteAgent)
				r.Post("/state", h.SetAgentState)
				r.Post("/frequency-switch", h.SwitchFrequency)
				r.Get("/payment-report", h.GetPaymentReport)
				r.Post("/payouts", h.RecordPayout)
				r.Get("/summary", h.GetAgentSummary)
			})
		})

		r.Route("/invoices", func(r chi.Router) {
			r.Get("/", h.ListDayInvoices)
			r.Post("/", h.CreateInvoice)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetInvoice)
				r.Put("/", h.UpdateInvoice)
				r.Delete("/", h.DeleteInvoice)
				r.Post("/resolve", h.ResolveInvoice)
			})
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/daily", h.GetDailySummary)
			r.Get("/monthly", h.GetMonthlySummary)
			r.Get("/biweekly", h.GetBiweeklySummary)
		})
	})

	return r
}
