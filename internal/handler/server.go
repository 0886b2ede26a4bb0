// Package handler implements the HTTP handlers for the slot sign-up API.
// All handlers are methods on Server. They are split into resource files
// (health.go, reservation.go, report.go, settings.go) but share the same
// Server struct so they can access its dependencies.
package handler

import (
	"context"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ICMVRD/sb1-hdboxt/internal/domain"
	"github.com/ICMVRD/sb1-hdboxt/internal/service"
)

// ReservationServicer defines the business operations the reservation
// handlers depend on. Defining the interface here, in the consumer package,
// lets handler tests inject a mock without touching a store.
type ReservationServicer interface {
	Slots(ctx context.Context) ([]domain.SlotStatus, error)
	Reserve(ctx context.Context, name, label string) (domain.Reservation, error)
	List(ctx context.Context) ([]domain.Reservation, error)
	Clear(ctx context.Context) (int, error)
}

// ReportServicer defines the report operations used by the admin handlers.
type ReportServicer interface {
	Build(ctx context.Context) (domain.Report, error)
	Render(ctx context.Context, format string) (service.RenderedReport, error)
	Archive(ctx context.Context) (string, error)
}

// SettingsServicer defines the settings operations.
type SettingsServicer interface {
	Display() domain.Settings
	Get() service.DeveloperSettings
	Update(ctx context.Context, next service.DeveloperSettings) (service.DeveloperSettings, error)
}

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds the dependencies of every handler.
type Server struct {
	reservations ReservationServicer
	reports      ReportServicer
	settings     SettingsServicer
	store        Pinger
	validate     *validator.Validate
	log          *zap.Logger
}

// NewServer constructs the Server with all its dependencies. A nil logger
// discards log output.
func NewServer(
	reservations ReservationServicer,
	reports ReportServicer,
	settings SettingsServicer,
	store Pinger,
	log *zap.Logger,
) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	// Report JSON field names, not Go field names, in validation messages.
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	return &Server{
		reservations: reservations,
		reports:      reports,
		settings:     settings,
		store:        store,
		validate:     validate,
		log:          log,
	}
}
