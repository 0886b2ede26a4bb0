package handler_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ICMVRD/sb1-hdboxt/internal/domain"
	"github.com/ICMVRD/sb1-hdboxt/internal/middleware"
)

var createdAt = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func TestListSlots(t *testing.T) {
	d := newDeps()
	d.reservations.slots = func(_ context.Context) ([]domain.SlotStatus, error) {
		return []domain.SlotStatus{
			{Slot: domain.Slot{Label: "00:00 - 00:15", Start: "00:00", End: "00:15"}, Taken: true},
		}, nil
	}

	rec := do(t, d.router(t), http.MethodGet, "/slots", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"label":"00:00 - 00:15","start":"00:00","end":"00:15","taken":true}]`, rec.Body.String())
}

func TestListReservations(t *testing.T) {
	d := newDeps()
	d.reservations.list = func(_ context.Context) ([]domain.Reservation, error) {
		return []domain.Reservation{{ID: "r1", Name: "Ana", Time: "08:00 - 08:15", CreatedAt: createdAt}}, nil
	}

	rec := do(t, d.router(t), http.MethodGet, "/reservations", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`[{"id":"r1","name":"Ana","time":"08:00 - 08:15","created_at":"2025-03-01T09:00:00Z"}]`,
		rec.Body.String())
}

func TestListReservations_Empty(t *testing.T) {
	d := newDeps()
	d.reservations.list = func(_ context.Context) ([]domain.Reservation, error) { return nil, nil }

	rec := do(t, d.router(t), http.MethodGet, "/reservations", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCreateReservation(t *testing.T) {
	d := newDeps()
	var gotName, gotLabel string
	d.reservations.reserve = func(_ context.Context, name, label string) (domain.Reservation, error) {
		gotName, gotLabel = name, label
		return domain.Reservation{ID: "r1", Name: name, Time: label, CreatedAt: createdAt}, nil
	}

	rec := do(t, d.router(t), http.MethodPost, "/reservations", `{"name":"Ana","time":"08:00 - 08:15"}`, "")

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Ana", gotName)
	assert.Equal(t, "08:00 - 08:15", gotLabel)
	assert.Contains(t, rec.Body.String(), `"id":"r1"`)
}

func TestCreateReservation_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{"slot taken", fmt.Errorf("service: %w", domain.ErrSlotTaken), http.StatusConflict, `"slot_taken"`},
		{"validation", fmt.Errorf("service.ReservationService.Reserve: %w: name is required", domain.ErrValidation), http.StatusUnprocessableEntity, `"name is required"`},
		{"store down", fmt.Errorf("repo: %w", domain.ErrStoreUnavailable), http.StatusServiceUnavailable, `"reservation store unavailable, try again later"`},
		{"unexpected", fmt.Errorf("boom"), http.StatusInternalServerError, `"internal_error"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDeps()
			d.reservations.reserve = func(_ context.Context, _, _ string) (domain.Reservation, error) {
				return domain.Reservation{}, tt.err
			}

			rec := do(t, d.router(t), http.MethodPost, "/reservations", `{"name":"Beto","time":"08:00 - 08:15"}`, "")

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestCreateReservation_BadBody(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantBody string
	}{
		{"missing body", "", "request body is required"},
		{"malformed", `{"name":`, "malformed JSON body"},
		{"unknown field", `{"name":"Ana","time":"08:00 - 08:15","admin":true}`, "malformed JSON body"},
		{"missing name", `{"time":"08:00 - 08:15"}`, "name is required"},
		{"missing time", `{"name":"Ana"}`, "time is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDeps() // reserve is nil: reaching the service would panic

			rec := do(t, d.router(t), http.MethodPost, "/reservations", tt.body, "")

			assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
		})
	}
}

func TestCreateReservation_BodyTooLarge(t *testing.T) {
	d := newDeps()
	h := middleware.NewMaxBodySizeHandler(64)(d.router(t))

	body := `{"name":"` + strings.Repeat("a", 500) + `","time":"08:00 - 08:15"}`
	req := httptest.NewRequest(http.MethodPost, "/reservations", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = -1 // chunked: only the reader enforces the limit
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Contains(t, rec.Body.String(), "request body too large")
}

func TestClearReservations(t *testing.T) {
	d := newDeps()
	d.reservations.clear = func(_ context.Context) (int, error) { return 3, nil }

	rec := do(t, d.router(t), http.MethodDelete, "/admin/reservations", "", adminKey)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"removed":3}`, rec.Body.String())
}

func TestClearReservations_RequiresKey(t *testing.T) {
	d := newDeps()

	rec := do(t, d.router(t), http.MethodDelete, "/admin/reservations", "", "")

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestClearReservations_Partial(t *testing.T) {
	d := newDeps()
	d.reservations.clear = func(_ context.Context) (int, error) {
		return 2, fmt.Errorf("service: %w", &domain.PartialClearError{Removed: 2, Failed: []string{"r3"}})
	}

	rec := do(t, d.router(t), http.MethodDelete, "/admin/reservations", "", devKey)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t,
		`{"error":{"code":"partial_clear","message":"some reservations could not be removed","removed":2,"failed_ids":["r3"]}}`,
		rec.Body.String())
}
