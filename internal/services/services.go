package services

import (
	"context"

	"gorm.io/gorm"

	"karukuresize/internal/repositories"
)

// Services aggregates the services bound to the frontend.
type Services struct {
	AppSettings AppSettingsService
	Presets     PresetService
	History     HistoryService
	Resize      ResizeService
}

// NewServices wires the services. db backs the history; the stores are built
// once by the caller and shared.
func NewServices(db *gorm.DB, settingsStore SettingsStore, presetStore PresetStore, resize ResizeConfig) *Services {
	historyRepo := repositories.NewHistoryRepository(db)

	return &Services{
		AppSettings: NewAppSettingsService(settingsStore),
		Presets:     NewPresetService(presetStore),
		History:     NewHistoryService(historyRepo),
		Resize:      NewResizeService(historyRepo, resize),
	}
}

// Startup hands the Wails context to every service.
func (s *Services) Startup(ctx context.Context) {
	s.AppSettings.Startup(ctx)
	s.Presets.Startup(ctx)
	s.History.Startup(ctx)
	s.Resize.Startup(ctx)
}
