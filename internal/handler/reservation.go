package handler

import (
	"net/http"

	"github.com/ICMVRD/sb1-hdboxt/internal/domain"
)

// reserveRequest is the body of POST /reservations. Blank names pass the
// struct check and are rejected by the service after trimming.
type reserveRequest struct {
	Name string `json:"name" validate:"required,max=120"`
	Time string `json:"time" validate:"required"`
}

type clearResponse struct {
	Removed int `json:"removed"`
}

// ListSlots handles GET /slots: the slot catalog with a taken flag per slot.
func (s *Server) ListSlots(w http.ResponseWriter, r *http.Request) {
	slots, err := s.reservations.Slots(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, slots)
}

// ListReservations handles GET /reservations, ordered by slot.
func (s *Server) ListReservations(w http.ResponseWriter, r *http.Request) {
	all, err := s.reservations.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if all == nil {
		all = []domain.Reservation{}
	}
	writeJSON(w, http.StatusOK, all)
}

// CreateReservation handles POST /reservations.
// 201 with the reservation, 409 when the slot is taken, 422 on bad input.
func (s *Server) CreateReservation(w http.ResponseWriter, r *http.Request) {
	var req reserveRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	created, err := s.reservations.Reserve(r.Context(), req.Name, req.Time)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ClearReservations handles DELETE /admin/reservations.
func (s *Server) ClearReservations(w http.ResponseWriter, r *http.Request) {
	removed, err := s.reservations.Clear(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, clearResponse{Removed: removed})
}
