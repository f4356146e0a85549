package main

import (
	"context"
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/options/linux"
	"gorm.io/gorm/logger"

	"karukuresize/internal/config"
	"karukuresize/internal/database"
	"karukuresize/internal/events"
	"karukuresize/internal/logging"
	"karukuresize/internal/presets"
	"karukuresize/internal/runlog"
	"karukuresize/internal/services"
	"karukuresize/internal/settings"
	"karukuresize/internal/utils"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	if err := utils.LoadEnv(); err != nil {
		fmt.Println("Error loading .env:", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error reading configuration:", err)
		os.Exit(1)
	}

	syncLog, err := logging.Init(cfg.Dev)
	if err != nil {
		fmt.Println("Error initialising logger:", err)
		os.Exit(1)
	}
	defer syncLog()
	log := logging.Get()

	settingsStore := settings.NewStore(cfg.SettingsPath(),
		settings.DefaultLegacySources(cfg.LegacySettingsDir, cfg.ConfigDir)...)
	presetStore := presets.NewStore(cfg.PresetsPath(),
		filepath.Join(cfg.ConfigDir, presets.LegacyFileName))

	dbLevel := logger.Warn
	if cfg.Dev {
		dbLevel = logger.Info
	}
	db, err := database.Init(database.Config{
		Path:     cfg.DBPath,
		LogLevel: dbLevel,
	})
	if err != nil {
		log.Errorw("opening database", "path", cfg.DBPath, "err", err)
		os.Exit(1)
	}

	svc := services.NewServices(db, settingsStore, presetStore, services.ResizeConfig{
		Workers: cfg.Workers,
		LogDir:  cfg.LogDir,
		Retention: runlog.Options{
			RetentionDays: cfg.LogRetentionDays,
			MaxFiles:      cfg.LogMaxFiles,
		},
		Verbose: settingsStore.Load().VerboseLogging,
	})

	app := NewApp(svc)
	if sqlDB, err := db.DB(); err == nil {
		app.dbClose = sqlDB.Close
	}

	// Create application with options
	err = wails.Run(&options.App{
		Title:  "KarukuResize",
		Width:  1180,
		Height: 820,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		Linux: &linux.Options{
			WindowIsTranslucent: false,
			WebviewGpuPolicy:    linux.WebviewGpuPolicyAlways,
			ProgramName:         "KarukuResize",
		},
		BackgroundColour: &options.RGBA{R: 27, G: 38, B: 54, A: 1},
		OnStartup: func(ctx context.Context) {
			events.EnableRuntimeEmitter()
			app.startup(ctx)
			svc.Startup(ctx)
		},
		OnShutdown: app.shutdown,
		Bind: []interface{}{
			app,
			svc.AppSettings,
			svc.Presets,
			svc.History,
		},
	})

	if err != nil {
		log.Errorw("wails run", "err", err)
	}
}
