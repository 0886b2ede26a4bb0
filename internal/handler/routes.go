package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/ICMVRD/sb1-hdboxt/internal/middleware"
	"github.com/ICMVRD/sb1-hdboxt/spec"
)

// Mount registers every route on r. Admin routes sit behind gate;
// reservation attempts are limited to reserveLimit per minute per client IP
// (zero disables the limit).
func (s *Server) Mount(r chi.Router, gate *middleware.AccessGate, reserveLimit int) {
	r.Get("/healthz", s.GetHealth)
	r.Get("/readyz", s.GetReady)
	r.Get("/openapi.yaml", serveOpenAPI)

	r.Get("/settings/display", s.GetDisplay)
	r.Get("/slots", s.ListSlots)
	r.Get("/reservations", s.ListReservations)
	r.Group(func(r chi.Router) {
		if reserveLimit > 0 {
			r.Use(httprate.LimitByIP(reserveLimit, time.Minute))
		}
		r.Post("/reservations", s.CreateReservation)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(gate.Require(middleware.RoleAdmin))
			r.Get("/reports", s.GetReport)
			r.Post("/reports/archive", s.ArchiveReport)
			r.Delete("/reservations", s.ClearReservations)
		})
		r.Group(func(r chi.Router) {
			r.Use(gate.Require(middleware.RoleDeveloper))
			r.Get("/settings", s.GetSettings)
			r.Put("/settings", s.UpdateSettings)
		})
	})
}

func serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(spec.OpenAPI)
}
