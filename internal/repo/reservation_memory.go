package repo

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/ICMVRD/sb1-hdboxt/internal/domain"
)

// memReservationRepo keeps reservations in a map keyed by slot label.
// A single mutex serialises every write, which makes check-and-insert atomic.
// Used by the "memory" driver for local runs and by unit tests.
type memReservationRepo struct {
	mu     sync.Mutex
	byTime map[string]domain.Reservation
}

// NewMemoryReservationRepo returns an empty in-process ReservationRepo.
func NewMemoryReservationRepo() ReservationRepo {
	return &memReservationRepo{byTime: make(map[string]domain.Reservation)}
}

func (r *memReservationRepo) List(_ context.Context) ([]domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Reservation, 0, len(r.byTime))
	for _, res := range r.byTime {
		out = append(out, res)
	}
	sortByTime(out)
	return out, nil
}

func (r *memReservationRepo) FindByTime(_ context.Context, label string) (domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.byTime[label]
	if !ok {
		return domain.Reservation{}, fmt.Errorf("repo.memReservationRepo.FindByTime: %w", domain.ErrNotFound)
	}
	return res, nil
}

func (r *memReservationRepo) Create(_ context.Context, res domain.Reservation) (domain.Reservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byTime[res.Time]; taken {
		return domain.Reservation{}, fmt.Errorf("repo.memReservationRepo.Create: %w", domain.ErrSlotTaken)
	}
	res.ID = uuid.NewString()
	r.byTime[res.Time] = res
	return res, nil
}

func (r *memReservationRepo) DeleteAll(_ context.Context) (domain.ClearResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.byTime)
	clear(r.byTime)
	return domain.ClearResult{Removed: n}, nil
}

func (r *memReservationRepo) Ping(_ context.Context) error {
	return nil
}

// sortByTime orders reservations by slot label, which for zero-padded
// "HH:MM - HH:MM" labels is chronological order.
func sortByTime(rs []domain.Reservation) {
	sort.Slice(rs, func(i, j int) bool { return rs[i].Time < rs[j].Time })
}
