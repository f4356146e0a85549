// Package runlog manages per-run log and summary files and their retention.
package runlog

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"karukuresize/internal/logging"
	"karukuresize/internal/utils"
)

const (
	DefaultRetentionDays = 30
	DefaultMaxFiles      = 100

	runPrefix     = "run_"
	logSuffix     = ".log"
	summarySuffix = "_summary.json"
	runIDLayout   = "20060102_150405"
)

// Artifacts are the files that belong to a single run.
type Artifacts struct {
	RunID       string
	Dir         string
	LogPath     string
	SummaryPath string
}

// Options control retention. Zero values select the defaults; a negative
// MaxFiles disables the count limit.
type Options struct {
	RetentionDays int
	MaxFiles      int
	Now           time.Time
}

func (o Options) withDefaults() Options {
	if o.RetentionDays == 0 {
		o.RetentionDays = DefaultRetentionDays
	}
	if o.MaxFiles == 0 {
		o.MaxFiles = DefaultMaxFiles
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	return o
}

// Create makes dir, prunes old runs and returns the paths for a new run.
func Create(dir string, opts Options) (Artifacts, error) {
	opts = opts.withDefaults()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Artifacts{}, fmt.Errorf("runlog: create %s: %w", dir, err)
	}
	Prune(dir, opts)

	id := opts.Now.Format(runIDLayout)
	return Artifacts{
		RunID:       id,
		Dir:         dir,
		LogPath:     filepath.Join(dir, runPrefix+id+logSuffix),
		SummaryPath: filepath.Join(dir, runPrefix+id+summarySuffix),
	}, nil
}

type runFile struct {
	path    string
	modTime time.Time
}

// Prune deletes run files older than the retention window, then the oldest
// files beyond MaxFiles. It returns the removed paths.
func Prune(dir string, opts Options) []string {
	opts = opts.withDefaults()
	cutoff := opts.Now.AddDate(0, 0, -max(0, opts.RetentionDays))

	var removed []string
	var kept []runFile
	for _, f := range listRunFiles(dir) {
		if f.modTime.Before(cutoff) {
			if remove(f.path) {
				removed = append(removed, f.path)
				continue
			}
		}
		kept = append(kept, f)
	}

	if opts.MaxFiles > 0 && len(kept) > opts.MaxFiles {
		for _, f := range kept[:len(kept)-opts.MaxFiles] {
			if remove(f.path) {
				removed = append(removed, f.path)
			}
		}
	}
	return removed
}

// WriteSummary stores payload as JSON at path.
func WriteSummary(path string, payload any) error {
	if err := utils.WriteJSONAtomic(path, payload); err != nil {
		return fmt.Errorf("runlog: write summary: %w", err)
	}
	return nil
}

func listRunFiles(dir string) []runFile {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var files []runFile
	for _, e := range entries {
		if !e.Type().IsRegular() || !IsRunFile(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		files = append(files, runFile{path: filepath.Join(dir, e.Name()), modTime: info.ModTime()})
	}
	slices.SortStableFunc(files, func(a, b runFile) int { return a.modTime.Compare(b.modTime) })
	return files
}

// IsRunFile reports whether name is a run log or run summary file name.
func IsRunFile(name string) bool {
	rest, ok := strings.CutPrefix(name, runPrefix)
	if !ok {
		return false
	}
	var id string
	switch {
	case strings.HasSuffix(rest, summarySuffix):
		id = strings.TrimSuffix(rest, summarySuffix)
	case strings.HasSuffix(rest, logSuffix):
		id = strings.TrimSuffix(rest, logSuffix)
	default:
		return false
	}
	_, err := time.Parse(runIDLayout, id)
	return err == nil
}

func remove(path string) bool {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logging.Get().Warnw("runlog: removing old run file", "path", path, "err", err)
		return false
	}
	return true
}
