// Package service contains the business logic of the slot sign-up API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No store specifics live here: services depend on repo interfaces only.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ICMVRD/sb1-hdboxt/internal/clock"
	"github.com/ICMVRD/sb1-hdboxt/internal/domain"
	"github.com/ICMVRD/sb1-hdboxt/internal/events"
	"github.com/ICMVRD/sb1-hdboxt/internal/repo"
)

// ReservationService implements reserve, list and clear on top of a
// ReservationRepo. It holds no state of its own: every read goes to the store.
type ReservationService struct {
	repo    repo.ReservationRepo
	catalog *domain.SlotCatalog
	clock   clock.Clock
	events  events.Publisher
	log     *zap.Logger
}

// NewReservationService constructs a ReservationService. A nil publisher
// disables events and a nil logger discards log output.
func NewReservationService(
	r repo.ReservationRepo,
	catalog *domain.SlotCatalog,
	clk clock.Clock,
	pub events.Publisher,
	log *zap.Logger,
) *ReservationService {
	if pub == nil {
		pub = events.Noop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ReservationService{repo: r, catalog: catalog, clock: clk, events: pub, log: log}
}

// Slots returns the catalog with each slot flagged as taken or free.
func (s *ReservationService) Slots(ctx context.Context) ([]domain.SlotStatus, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ReservationService.Slots: %w", err)
	}

	taken := make(map[string]bool, len(all))
	for _, r := range all {
		taken[r.Time] = true
	}

	slots := s.catalog.Slots()
	out := make([]domain.SlotStatus, len(slots))
	for i, sl := range slots {
		out[i] = domain.SlotStatus{Slot: sl, Taken: taken[sl.Label]}
	}
	return out, nil
}

// Reserve books label for name.
//
// The name is trimmed and must not be blank, and label must be a slot of the
// catalog; otherwise ErrValidation. A slot that already has a reservation
// yields ErrSlotTaken and nothing is written. The lookup before the insert
// only saves a round trip: the store's uniqueness constraint is what rejects
// a concurrent booking of the same slot.
func (s *ReservationService) Reserve(ctx context.Context, name, label string) (domain.Reservation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Reserve: %w: name is required", domain.ErrValidation)
	}
	if !s.catalog.Contains(label) {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Reserve: %w: %q is not a slot", domain.ErrValidation, label)
	}

	_, err := s.repo.FindByTime(ctx, label)
	switch {
	case err == nil:
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Reserve: %w", domain.ErrSlotTaken)
	case !errors.Is(err, domain.ErrNotFound):
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Reserve: %w", err)
	}

	created, err := s.repo.Create(ctx, domain.Reservation{
		Name:      name,
		Time:      label,
		CreatedAt: s.clock.Now(),
	})
	if err != nil {
		return domain.Reservation{}, fmt.Errorf("service.ReservationService.Reserve: %w", err)
	}

	s.publish(ctx, events.ReservationCreated(created, created.CreatedAt))
	return created, nil
}

// List returns every reservation ordered by slot label. An empty store gives
// an empty, non-nil slice.
func (s *ReservationService) List(ctx context.Context) ([]domain.Reservation, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ReservationService.List: %w", err)
	}
	if all == nil {
		all = []domain.Reservation{}
	}
	return all, nil
}

// Clear removes every reservation and returns how many were removed.
// When some deletions fail the result is a *domain.PartialClearError naming
// the reservations that remain.
func (s *ReservationService) Clear(ctx context.Context) (int, error) {
	res, err := s.repo.DeleteAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("service.ReservationService.Clear: %w", err)
	}

	s.publish(ctx, events.ReservationsCleared(res.Removed, s.clock.Now()))

	if len(res.Failed) > 0 {
		s.log.Warn("clear left reservations behind",
			zap.Int("removed", res.Removed),
			zap.Strings("failed_ids", res.Failed),
			zap.Error(res.Cause),
		)
		return res.Removed, fmt.Errorf("service.ReservationService.Clear: %w",
			&domain.PartialClearError{Removed: res.Removed, Failed: res.Failed})
	}

	s.log.Info("reservations cleared", zap.Int("removed", res.Removed))
	return res.Removed, nil
}

func (s *ReservationService) publish(ctx context.Context, e events.Event) {
	if err := s.events.Publish(ctx, e); err != nil {
		s.log.Warn("publish event failed", zap.String("type", e.Type), zap.Error(err))
	}
}
