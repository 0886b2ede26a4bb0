package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ICMVRD/sb1-hdboxt/internal/domain"
	"github.com/ICMVRD/sb1-hdboxt/internal/handler"
	"github.com/ICMVRD/sb1-hdboxt/internal/middleware"
	"github.com/ICMVRD/sb1-hdboxt/internal/service"
)

// ---- mocks -----------------------------------------------------------------
// Each method is a function field: set only the ones your test needs.

type mockReservationService struct {
	slots   func(ctx context.Context) ([]domain.SlotStatus, error)
	reserve func(ctx context.Context, name, label string) (domain.Reservation, error)
	list    func(ctx context.Context) ([]domain.Reservation, error)
	clear   func(ctx context.Context) (int, error)
}

func (m *mockReservationService) Slots(ctx context.Context) ([]domain.SlotStatus, error) {
	return m.slots(ctx)
}
func (m *mockReservationService) Reserve(ctx context.Context, name, label string) (domain.Reservation, error) {
	return m.reserve(ctx, name, label)
}
func (m *mockReservationService) List(ctx context.Context) ([]domain.Reservation, error) {
	return m.list(ctx)
}
func (m *mockReservationService) Clear(ctx context.Context) (int, error) {
	return m.clear(ctx)
}

type mockReportService struct {
	build   func(ctx context.Context) (domain.Report, error)
	render  func(ctx context.Context, format string) (service.RenderedReport, error)
	archive func(ctx context.Context) (string, error)
}

func (m *mockReportService) Build(ctx context.Context) (domain.Report, error) {
	return m.build(ctx)
}
func (m *mockReportService) Render(ctx context.Context, format string) (service.RenderedReport, error) {
	return m.render(ctx, format)
}
func (m *mockReportService) Archive(ctx context.Context) (string, error) {
	return m.archive(ctx)
}

type mockSettingsService struct {
	display func() domain.Settings
	get     func() service.DeveloperSettings
	update  func(ctx context.Context, next service.DeveloperSettings) (service.DeveloperSettings, error)
}

func (m *mockSettingsService) Display() domain.Settings { return m.display() }
func (m *mockSettingsService) Get() service.DeveloperSettings {
	return m.get()
}
func (m *mockSettingsService) Update(ctx context.Context, next service.DeveloperSettings) (service.DeveloperSettings, error) {
	return m.update(ctx, next)
}

type mockPinger struct{ err error }

func (m mockPinger) Ping(context.Context) error { return m.err }

// compile-time checks: mocks must satisfy the handler's consumer interfaces.
var (
	_ handler.ReservationServicer = (*mockReservationService)(nil)
	_ handler.ReportServicer      = (*mockReportService)(nil)
	_ handler.SettingsServicer    = (*mockSettingsService)(nil)
	_ handler.Pinger              = mockPinger{}
)

// ---- harness ---------------------------------------------------------------

const (
	adminKey = "admin-key"
	devKey   = "dev-key"
)

type deps struct {
	reservations *mockReservationService
	reports      *mockReportService
	settings     *mockSettingsService
	store        mockPinger
}

func newDeps() *deps {
	return &deps{
		reservations: &mockReservationService{},
		reports:      &mockReportService{},
		settings:     &mockSettingsService{},
	}
}

func hash(t *testing.T, key string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

// router wires d through the real routes with no rate limit.
func (d *deps) router(t *testing.T) http.Handler {
	t.Helper()
	srv := handler.NewServer(d.reservations, d.reports, d.settings, d.store, nil)
	gate := middleware.NewAccessGate(hash(t, adminKey), hash(t, devKey))

	r := chi.NewRouter()
	srv.Mount(r, gate, 0)
	return r
}

// do sends a request and returns the recorder. key, when set, is sent as
// the access key.
func do(t *testing.T, h http.Handler, method, path, body, key string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if key != "" {
		req.Header.Set(middleware.AccessKeyHeader, key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}
