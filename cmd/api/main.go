// Package main is the entry point for the slot sign-up API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ICMVRD/sb1-hdboxt/internal/clock"
	"github.com/ICMVRD/sb1-hdboxt/internal/config"
	"github.com/ICMVRD/sb1-hdboxt/internal/domain"
	"github.com/ICMVRD/sb1-hdboxt/internal/events"
	"github.com/ICMVRD/sb1-hdboxt/internal/handler"
	"github.com/ICMVRD/sb1-hdboxt/internal/logger"
	"github.com/ICMVRD/sb1-hdboxt/internal/middleware"
	"github.com/ICMVRD/sb1-hdboxt/internal/report"
	"github.com/ICMVRD/sb1-hdboxt/internal/repo"
	"github.com/ICMVRD/sb1-hdboxt/internal/service"
)

const (
	// maxBodyBytes caps request bodies; the largest is the settings document.
	maxBodyBytes = 64 << 10

	// swapGrace is how long a replaced store connection stays open for
	// requests already using it.
	swapGrace = 30 * time.Second
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Plain stderr before the logger is configured.
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	log, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, log *zap.Logger) error {
	// --- Store ------------------------------------------------------------
	conn, err := repo.Open(context.Background(), cfg.Store)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	store := repo.NewHandle(conn, swapGrace)
	defer store.Close()
	log.Info("store connection established", zap.String("driver", store.Driver()))

	catalog, err := domain.NewSlotCatalog(cfg.SlotMinutes)
	if err != nil {
		return err
	}

	// --- Optional collaborators ------------------------------------------
	var publisher events.Publisher = events.Noop{}
	if cfg.AMQP.URL != "" {
		p, err := events.NewAMQPPublisher(cfg.AMQP.URL, cfg.AMQP.Exchange)
		if err != nil {
			return err
		}
		publisher = p
		log.Info("publishing events", zap.String("exchange", cfg.AMQP.Exchange))
	}
	defer func() { _ = publisher.Close() }()

	// A nil interface, not a nil *Archiver, signals "not configured".
	var uploader service.ReportUploader
	if cfg.Archive.Enabled() {
		a, err := report.NewArchiver(cfg.Archive)
		if err != nil {
			return err
		}
		uploader = a
		log.Info("report archive enabled", zap.String("bucket", cfg.Archive.Bucket))
	}

	// --- Services ---------------------------------------------------------
	clk := clock.NewRealClock()
	settings := service.NewSettingsService(
		service.DeveloperSettings{Display: cfg.Display, Store: cfg.Store},
		repo.Open,
		config.NewSettingsFile(cfg.SettingsFile),
		store,
		log.Named("settings"),
	)
	reservations := service.NewReservationService(store, catalog, clk, publisher, log.Named("reservations"))
	reports := service.NewReportService(store, settings, clk, uploader, log.Named("reports"))

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer.
	// RequestID generates a unique trace ID per request.
	// RealIP sets r.RemoteAddr from X-Forwarded-For / X-Real-IP so the rate
	// limiter keys on the client, not the proxy.
	// ZapLogger writes one structured JSON log line per request.
	// Recoverer catches panics and returns HTTP 500 instead of crashing.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewZapLogger(log.Named("http")))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(maxBodyBytes))

	gate := middleware.NewAccessGate(cfg.Access.AdminKeyHash, cfg.Access.DeveloperKeyHash)
	handler.NewServer(reservations, reports, settings, store, log).Mount(r, gate, cfg.RateLimitPerMinute)

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: wait for OS signal, then give in-flight requests
	// up to 15 seconds to complete before forcefully closing.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server stopped")
	return nil
}
