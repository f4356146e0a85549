// Package logging holds the process-wide structured logger.
//
// The default logger discards everything until Init or Set replaces it.
// Components call Get() at use time so a logger installed in main is picked
// up everywhere.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the sugared logging surface used across the app.
type Logger interface {
	Debugw(msg string, keysAndValues ...any)
	Infow(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)
}

var (
	mu      sync.RWMutex
	current Logger = zap.NewNop().Sugar()
)

// Set replaces the process logger. A nil logger is ignored.
func Set(l Logger) {
	if l == nil {
		return
	}
	mu.Lock()
	current = l
	mu.Unlock()
}

// Get returns the process logger.
func Get() Logger {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Init builds a zap logger for the console and installs it. The returned
// func flushes buffered entries and should be deferred by main.
func Init(dev bool) (func(), error) {
	var (
		zl  *zap.Logger
		err error
	)
	if dev {
		zl, err = zap.NewDevelopment()
	} else {
		zl, err = zap.NewProduction()
	}
	if err != nil {
		return func() {}, fmt.Errorf("build logger: %w", err)
	}
	Set(zl.Sugar())
	return func() { _ = zl.Sync() }, nil
}

// NewRunLogger returns a logger that writes JSON lines to path. verbose
// lowers the level to debug.
func NewRunLogger(path string, verbose bool) (*zap.SugaredLogger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, func() {}, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, func() {}, fmt.Errorf("open run log: %w", err)
	}

	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), level)

	zl := zap.New(core)
	closer := func() {
		_ = zl.Sync()
		_ = f.Close()
	}
	return zl.Sugar(), closer, nil
}

// Writer adapts the process logger to io.Writer for libraries that want a
// *log.Logger, such as GORM.
type Writer struct {
	Prefix string
}

func (w Writer) Write(p []byte) (int, error) {
	Get().Infow(w.Prefix, "msg", string(p))
	return len(p), nil
}
