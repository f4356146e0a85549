package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/wailsapp/wails/v2/pkg/runtime"

	"karukuresize/internal/files"
	"karukuresize/internal/imageproc"
	"karukuresize/internal/presets"
	"karukuresize/internal/services"
	"karukuresize/internal/settings"
	"karukuresize/internal/validators"
)

// App struct
type App struct {
	ctx     context.Context
	svc     *services.Services
	dbClose func() error

	resizeMu      sync.Mutex
	resizeRunning bool
	resizeCancel  context.CancelFunc
}

// NewApp creates a new App application struct
func NewApp(svc *services.Services) *App {
	return &App{svc: svc}
}

// startup is called when the app starts. The context is saved
// so we can call the runtime methods
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// shutdown is called when the app is closing. Clean up resources here.
func (a *App) shutdown(ctx context.Context) {
	a.CancelResize()

	// Close database connection pool
	if a.dbClose != nil {
		if err := a.dbClose(); err != nil {
			runtime.LogError(ctx, fmt.Sprintf("failed to close database: %v", err))
		} else {
			runtime.LogInfo(ctx, "database closed")
		}
		a.dbClose = nil
	}
}

// SelectDirectory opens a native directory picker dialog
func (a *App) SelectDirectory(title string) (string, error) {
	if title == "" {
		title = "フォルダーを選択"
	}
	return runtime.OpenDirectoryDialog(a.ctx, runtime.OpenDialogOptions{
		Title: title,
	})
}

// SelectImages opens a native multi-file picker restricted to images.
func (a *App) SelectImages() ([]string, error) {
	rec := a.svc.AppSettings.Get()
	paths, err := runtime.OpenMultipleFilesDialog(a.ctx, runtime.OpenDialogOptions{
		Title:            "画像を選択",
		DefaultDirectory: rec.LastInputDir,
		Filters: []runtime.FileFilter{{
			DisplayName: "画像",
			Pattern:     "*.jpg;*.jpeg;*.png;*.webp;*.avif;*.bmp;*.gif;*.tif;*.tiff",
		}},
	})
	if err != nil {
		return nil, err
	}
	return files.DedupePaths(paths), nil
}

// ScanFolder lists the images in dir.
func (a *App) ScanFolder(dir string, recursive bool) ([]string, error) {
	clean, err := validators.ValidatePath(dir)
	if err != nil {
		return nil, err
	}
	return files.FindImages(clean, recursive)
}

// ParseDroppedFiles turns a drop payload into image paths.
func (a *App) ParseDroppedFiles(data string) []string {
	var out []string
	for _, p := range files.ParseDropPaths(data) {
		if files.IsImageFile(p) {
			out = append(out, p)
		}
	}
	return out
}

// ImageMetadata returns the EXIF summary of path.
func (a *App) ImageMetadata(path string) (imageproc.Metadata, error) {
	return imageproc.ReadMetadata(path)
}

// ApplyPreset copies a preset's values into the settings and marks it used.
func (a *App) ApplyPreset(id string) (settings.Record, error) {
	p, err := a.svc.Presets.MarkUsed(id)
	if err != nil {
		return settings.Record{}, err
	}
	rec := services.ApplyValues(a.svc.AppSettings.Get(), p.Values)
	return a.svc.AppSettings.Update(rec)
}

// SaveCurrentAsPreset stores the current processing settings as a preset.
func (a *App) SaveCurrentAsPreset(name, description string) (presets.Preset, error) {
	values := services.ValuesFromSettings(a.svc.AppSettings.Get())
	return a.svc.Presets.Create(name, description, values)
}

// StartResize processes files with the saved settings in the background.
// Progress arrives through the events:resize:* events. It returns false if a
// batch is already running.
func (a *App) StartResize(paths []string, sourceRoot, destDir string) (bool, error) {
	rec := a.svc.AppSettings.Get()
	values := services.ValuesFromSettings(rec)
	opts, err := services.OptionsFromValues(values)
	if err != nil {
		return false, err
	}
	if destDir == "" {
		destDir = rec.DefaultOutputDir
	}
	if destDir != "" || !opts.DryRun {
		if destDir, err = validators.ValidatePath(destDir); err != nil {
			return false, fmt.Errorf("output folder: %w", err)
		}
	}

	a.resizeMu.Lock()
	if a.resizeRunning {
		a.resizeMu.Unlock()
		return false, nil
	}
	a.resizeRunning = true
	ctx, cancel := context.WithCancel(a.ctx)
	a.resizeCancel = cancel
	a.resizeMu.Unlock()

	go func() {
		defer func() {
			cancel()
			a.resizeMu.Lock()
			a.resizeRunning = false
			a.resizeCancel = nil
			a.resizeMu.Unlock()
		}()

		job := services.Job{Files: paths, SourceRoot: sourceRoot, DestDir: destDir, Options: opts}
		sum, err := a.svc.Resize.Run(ctx, job)
		if err != nil && !errors.Is(err, context.Canceled) {
			runtime.LogError(a.ctx, fmt.Sprintf("resize run failed: %v", err))
			return
		}
		runtime.LogInfo(a.ctx, fmt.Sprintf("resize run %s: %d ok, %d failed", sum.RunID, sum.Succeeded, sum.Failed))

		rec := a.svc.AppSettings.Get()
		if destDir != "" {
			rec.LastOutputDir = destDir
		}
		if sourceRoot != "" {
			rec.LastInputDir = sourceRoot
		}
		if _, err := a.svc.AppSettings.Update(rec); err != nil {
			runtime.LogError(a.ctx, fmt.Sprintf("failed to save settings: %v", err))
		}
		if _, err := a.svc.AppSettings.RememberRecent(values); err != nil {
			runtime.LogError(a.ctx, fmt.Sprintf("failed to save recent settings: %v", err))
		}
	}()
	return true, nil
}

// CancelResize stops the running batch, if any
func (a *App) CancelResize() {
	a.resizeMu.Lock()
	cancel := a.resizeCancel
	a.resizeMu.Unlock()
	if cancel != nil {
		cancel()
	}
}
