package repo

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ICMVRD/sb1-hdboxt/internal/domain"
)

// Conn pairs a ReservationRepo with the function that releases the
// connection behind it. Close may be nil.
type Conn struct {
	Repo   ReservationRepo
	Driver string
	Close  func()
}

// Handle is the explicitly owned store connection the service holds.
// It satisfies ReservationRepo by delegating to the current Conn, and Swap
// replaces that Conn atomically: each call sees either the old or the new
// store, never a half-initialised one.
type Handle struct {
	cur   atomic.Pointer[Conn]
	grace time.Duration
}

// NewHandle wraps c. After a Swap the previous connection is closed once
// grace has elapsed, letting calls already running against it finish.
func NewHandle(c Conn, grace time.Duration) *Handle {
	h := &Handle{grace: grace}
	h.cur.Store(&c)
	return h
}

// Swap installs c and schedules the previous connection for closing.
func (h *Handle) Swap(c Conn) {
	old := h.cur.Swap(&c)
	if old == nil || old.Close == nil {
		return
	}
	if h.grace <= 0 {
		old.Close()
		return
	}
	time.AfterFunc(h.grace, old.Close)
}

// Driver names the store currently in use.
func (h *Handle) Driver() string {
	return h.cur.Load().Driver
}

// Close releases the current connection. Call it once, at shutdown.
func (h *Handle) Close() {
	if c := h.cur.Load(); c != nil && c.Close != nil {
		c.Close()
	}
}

func (h *Handle) current() ReservationRepo {
	return h.cur.Load().Repo
}

func (h *Handle) List(ctx context.Context) ([]domain.Reservation, error) {
	return h.current().List(ctx)
}

func (h *Handle) FindByTime(ctx context.Context, label string) (domain.Reservation, error) {
	return h.current().FindByTime(ctx, label)
}

func (h *Handle) Create(ctx context.Context, r domain.Reservation) (domain.Reservation, error) {
	return h.current().Create(ctx, r)
}

func (h *Handle) DeleteAll(ctx context.Context) (domain.ClearResult, error) {
	return h.current().DeleteAll(ctx)
}

func (h *Handle) Ping(ctx context.Context) error {
	return h.current().Ping(ctx)
}
