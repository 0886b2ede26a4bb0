// Package events publishes reservation domain events to a message broker.
// Publishing is best effort: callers log failures and carry on.
package events

import (
	"context"
	"time"

	"github.com/ICMVRD/sb1-hdboxt/internal/domain"
)

// Event types, also used as AMQP routing keys.
const (
	TypeReservationCreated  = "reservation.created"
	TypeReservationsCleared = "reservations.cleared"
)

// Event is the JSON body of every published message.
type Event struct {
	Type        string              `json:"type"`
	OccurredAt  time.Time           `json:"occurred_at"`
	Reservation *domain.Reservation `json:"reservation,omitempty"`
	Removed     int                 `json:"removed,omitempty"`
}

// ReservationCreated builds the event emitted after a successful reserve.
func ReservationCreated(r domain.Reservation, at time.Time) Event {
	return Event{Type: TypeReservationCreated, OccurredAt: at, Reservation: &r}
}

// ReservationsCleared builds the event emitted after a clear.
func ReservationsCleared(removed int, at time.Time) Event {
	return Event{Type: TypeReservationsCleared, OccurredAt: at, Removed: removed}
}

// Publisher sends events somewhere. Implementations must be safe for
// concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// Noop discards every event. It is used when no broker is configured.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }
func (Noop) Close() error                         { return nil }
