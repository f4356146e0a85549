package services

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"karukuresize/internal/imageproc"
	"karukuresize/internal/presets"
	"karukuresize/internal/settings"
	"karukuresize/internal/validators"
)

// SettingsStore is satisfied by *settings.Store.
type SettingsStore interface {
	Load() settings.Record
	Save(rec settings.Record) error
}

type AppSettingsService interface {
	Get() settings.Record
	Update(rec settings.Record) (settings.Record, error)
	Reset() (settings.Record, error)
	RememberRecent(values presets.Values) (settings.Record, error)
	Startup(ctx context.Context)
}

// appSettingsService loads the record once and serves it from memory;
// every successful change is saved before the cached copy is replaced.
type appSettingsService struct {
	store   SettingsStore
	context context.Context

	mu     sync.Mutex
	loaded bool
	rec    settings.Record
}

func (s *appSettingsService) Startup(ctx context.Context) {
	s.context = ctx
	s.mu.Lock()
	s.current()
	s.mu.Unlock()
}

func NewAppSettingsService(store SettingsStore) AppSettingsService {
	return &appSettingsService{store: store}
}

// current returns the cached record, loading it on first use. s.mu must be
// held.
func (s *appSettingsService) current() settings.Record {
	if !s.loaded {
		s.rec = s.store.Load()
		s.loaded = true
	}
	return s.rec.Clone()
}

func (s *appSettingsService) Get() settings.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current()
}

func (s *appSettingsService) Update(rec settings.Record) (settings.Record, error) {
	if err := validateRecord(rec); err != nil {
		return settings.Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Save(rec); err != nil {
		return settings.Record{}, fmt.Errorf("service: update settings: %w", err)
	}
	rec.SchemaVersion = settings.SchemaVersion
	s.rec, s.loaded = rec.Clone(), true
	return rec, nil
}

func (s *appSettingsService) Reset() (settings.Record, error) {
	rec := settings.Defaults()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Save(rec); err != nil {
		return settings.Record{}, fmt.Errorf("service: reset settings: %w", err)
	}
	s.rec, s.loaded = rec.Clone(), true
	return rec, nil
}

// RememberRecent records values as the most recently used processing
// settings.
func (s *appSettingsService) RememberRecent(values presets.Values) (settings.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.current()
	rec.RecentProcessingSettings = presets.RememberRecent(rec.RecentProcessingSettings, values, time.Now())
	if err := s.store.Save(rec); err != nil {
		return settings.Record{}, fmt.Errorf("service: remember recent settings: %w", err)
	}
	s.rec = rec.Clone()
	return rec, nil
}

func validateRecord(rec settings.Record) error {
	if rec.UIMode != settings.UIModeSimple && rec.UIMode != settings.UIModePro {
		return fmt.Errorf("ui_mode must be '%s' or '%s'", settings.UIModeSimple, settings.UIModePro)
	}
	if !slices.Contains(settings.OutputFormats, rec.OutputFormat) {
		return fmt.Errorf("unknown output_format %q", rec.OutputFormat)
	}
	if _, err := validators.ValidateQuality(rec.Quality); err != nil {
		return fmt.Errorf("quality: %w", err)
	}
	switch rec.ExifMode {
	case imageproc.ExifKeep, imageproc.ExifRemove, imageproc.ExifEdit:
	default:
		return fmt.Errorf("unknown exif_mode %q", rec.ExifMode)
	}
	return nil
}
