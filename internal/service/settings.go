package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/ICMVRD/sb1-hdboxt/internal/config"
	"github.com/ICMVRD/sb1-hdboxt/internal/domain"
	"github.com/ICMVRD/sb1-hdboxt/internal/repo"
)

// StoreOpener connects to the store described by cfg. repo.Open satisfies it.
type StoreOpener func(ctx context.Context, cfg config.StoreConfig) (repo.Conn, error)

// SettingsSaver persists settings so they survive a restart.
type SettingsSaver interface {
	Save(display config.DisplayConfig, store config.StoreConfig) error
}

// StoreSwapper replaces the live store connection.
type StoreSwapper interface {
	Swap(c repo.Conn)
}

// DeveloperSettings is the part of the configuration editable at runtime.
type DeveloperSettings struct {
	Display config.DisplayConfig
	Store   config.StoreConfig
}

// SettingsService owns the runtime-editable settings. An update is applied
// only once the new store answers: the new connection is opened first, the
// settings file written second, and the live handle swapped last, so a
// failure at any step leaves the running configuration untouched.
type SettingsService struct {
	update sync.Mutex // serialises Update

	mu      sync.RWMutex
	current DeveloperSettings

	open   StoreOpener
	file   SettingsSaver
	handle StoreSwapper
	log    *zap.Logger
}

// NewSettingsService constructs a SettingsService starting from initial.
func NewSettingsService(
	initial DeveloperSettings,
	open StoreOpener,
	file SettingsSaver,
	handle StoreSwapper,
	log *zap.Logger,
) *SettingsService {
	if log == nil {
		log = zap.NewNop()
	}
	return &SettingsService{current: initial, open: open, file: file, handle: handle, log: log}
}

// Display returns the display fields shown on reports and page headers.
func (s *SettingsService) Display() domain.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.Settings{
		DisplayName:   s.current.Display.Name,
		DisplayBranch: s.current.Display.Branch,
	}
}

// Get returns the current settings.
func (s *SettingsService) Get() DeveloperSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update validates next, connects to its store, persists it and swaps the
// new connection in. Invalid input yields ErrValidation; a store that cannot
// be reached yields ErrStoreUnavailable. In both cases nothing changes.
func (s *SettingsService) Update(ctx context.Context, next DeveloperSettings) (DeveloperSettings, error) {
	next.Display.Name = strings.TrimSpace(next.Display.Name)
	next.Display.Branch = strings.TrimSpace(next.Display.Branch)
	if next.Display.Name == "" {
		return DeveloperSettings{}, fmt.Errorf("service.SettingsService.Update: %w: display name is required", domain.ErrValidation)
	}
	if err := next.Store.Validate(); err != nil {
		return DeveloperSettings{}, fmt.Errorf("service.SettingsService.Update: %w: %w", domain.ErrValidation, err)
	}

	s.update.Lock()
	defer s.update.Unlock()

	conn, err := s.open(ctx, next.Store)
	if err != nil {
		return DeveloperSettings{}, fmt.Errorf("service.SettingsService.Update: %w", err)
	}

	if err := s.file.Save(next.Display, next.Store); err != nil {
		if conn.Close != nil {
			conn.Close()
		}
		return DeveloperSettings{}, fmt.Errorf("service.SettingsService.Update: %w", err)
	}

	s.mu.Lock()
	s.current = next
	s.mu.Unlock()
	s.handle.Swap(conn)

	s.log.Info("settings updated",
		zap.String("display_name", next.Display.Name),
		zap.String("store_driver", conn.Driver),
	)
	return next, nil
}
