package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"karukuresize/internal/events"
	"karukuresize/internal/files"
	"karukuresize/internal/imageproc"
	"karukuresize/internal/logging"
	"karukuresize/internal/models"
	"karukuresize/internal/repositories"
	"karukuresize/internal/runlog"
)

// Processor resizes one file. imageproc.Process is the production
// implementation.
type Processor func(src, dst string, opts imageproc.Options) (imageproc.Result, error)

// Job is one batch of files to resize.
type Job struct {
	Files      []string          `json:"files"`
	SourceRoot string            `json:"sourceRoot"`
	DestDir    string            `json:"destDir"`
	Options    imageproc.Options `json:"options"`
}

// FileFailure describes a file that could not be processed.
type FileFailure struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// Summary is the outcome of a batch run. It is also written to the run's
// summary file.
type Summary struct {
	RunID       string        `json:"runId"`
	LogRunID    string        `json:"logRunId,omitempty"`
	LogPath     string        `json:"logPath,omitempty"`
	StartedAt   time.Time     `json:"startedAt"`
	FinishedAt  time.Time     `json:"finishedAt"`
	DryRun      bool          `json:"dryRun"`
	Total       int           `json:"total"`
	Succeeded   int           `json:"succeeded"`
	Failed      int           `json:"failed"`
	Skipped     int           `json:"skipped"`
	SourceBytes int64         `json:"sourceBytes"`
	DestBytes   int64         `json:"destBytes"`
	Cancelled   bool          `json:"cancelled"`
	Failures    []FileFailure `json:"failures"`
}

// ResizeConfig controls batch execution.
type ResizeConfig struct {
	Workers int
	// LogDir receives per-run log and summary files. Empty disables them.
	LogDir    string
	Retention runlog.Options
	Verbose   bool
	Processor Processor
}

type ResizeService interface {
	Run(ctx context.Context, job Job) (Summary, error)
	Startup(ctx context.Context)
}

type resizeService struct {
	history repositories.HistoryRepository
	cfg     ResizeConfig
	context context.Context
}

// NewResizeService returns a service that records every file in history.
// history may be nil.
func NewResizeService(history repositories.HistoryRepository, cfg ResizeConfig) ResizeService {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Processor == nil {
		cfg.Processor = imageproc.Process
	}
	return &resizeService{history: history, cfg: cfg}
}

func (s *resizeService) Startup(ctx context.Context) {
	s.context = ctx
}

func (s *resizeService) Run(ctx context.Context, job Job) (Summary, error) {
	if len(job.Files) == 0 {
		return Summary{}, errors.New("no files to process")
	}
	if job.DestDir == "" && !job.Options.DryRun {
		return Summary{}, errors.New("destination directory is required")
	}
	if err := job.Options.Validate(); err != nil {
		return Summary{}, fmt.Errorf("service: resize options: %w", err)
	}
	if _, err := imageproc.ResolveFormat(job.Options.Format, ""); err != nil {
		return Summary{}, fmt.Errorf("service: resize options: %w", err)
	}

	sum := Summary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
		DryRun:    job.Options.DryRun,
		Total:     len(job.Files),
		Failures:  []FileFailure{},
	}
	ctx = events.WithRun(ctx, sum.RunID)

	log, closeLog, artifacts := s.openRunLog(&sum)
	defer closeLog()
	log.Infow("batch started", "run", sum.RunID, "files", sum.Total, "dest", job.DestDir, "dryRun", sum.DryRun)
	settingsJSON, _ := json.Marshal(job.Options)
	namer := files.NewOutputNamer(job.SourceRoot, job.DestDir, !job.Options.DryRun)

	startEvt := events.NewInfo(fmt.Sprintf("%d files queued", sum.Total))
	startEvt.Total = sum.Total
	events.Emit(ctx, events.ResizeStarted, startEvt)

	var (
		mu   sync.Mutex
		done atomic.Int64
	)
	g := new(errgroup.Group)
	g.SetLimit(s.cfg.Workers)
	for _, src := range job.Files {
		if ctx.Err() != nil {
			mu.Lock()
			sum.Skipped++
			mu.Unlock()
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				mu.Lock()
				sum.Skipped++
				mu.Unlock()
				return nil
			}
			var (
				dst string
				res = imageproc.Result{Source: src}
			)
			format, err := imageproc.ResolveFormat(job.Options.Format, src)
			if err == nil {
				dst, err = namer.Next(src, format.Extension())
			}
			if err == nil {
				res, err = s.cfg.Processor(src, dst, job.Options)
			}

			entry := &models.HistoryEntry{
				RunID:            sum.RunID,
				Timestamp:        time.Now(),
				SourcePath:       src,
				DestPath:         dst,
				SourceSize:       res.SourceSize,
				DestSize:         res.DestSize,
				SourceDimensions: fmt.Sprintf("%dx%d", res.SourceW, res.SourceH),
				DestDimensions:   fmt.Sprintf("%dx%d", res.DestW, res.DestH),
				SettingsJSON:     string(settingsJSON),
				Success:          err == nil,
				ProcessingTime:   res.Duration.Seconds(),
			}

			mu.Lock()
			if err != nil {
				f := failureFor(src, err)
				sum.Failed++
				sum.Failures = append(sum.Failures, f)
				entry.ErrorMessage = err.Error()
				log.Warnw("file failed", "path", src, "err", err, "hint", f.Hint)
			} else {
				sum.Succeeded++
				sum.SourceBytes += res.SourceSize
				sum.DestBytes += res.DestSize
				log.Debugw("file processed", "path", src, "dest", dst,
					"size", imageproc.FormatFileSize(res.DestSize), "reduction", res.Reduction())
			}
			mu.Unlock()

			if s.history != nil && !job.Options.DryRun {
				if herr := s.history.Add(ctx, entry); herr != nil {
					log.Errorw("history insert failed", "path", src, "err", herr)
				}
			}

			n := int(done.Add(1))
			if err != nil {
				evt := events.NewError(err.Error())
				evt.Path = src
				events.Emit(ctx, events.ResizeFile, evt)
			}
			events.Emit(ctx, events.ResizeProgress, events.NewProgress(src, n, sum.Total))
			return nil
		})
	}
	_ = g.Wait()

	sum.FinishedAt = time.Now()
	// Files are only skipped after cancellation; a cancel that lands after
	// the last file finished leaves a complete run.
	sum.Cancelled = sum.Skipped > 0
	log.Infow("batch finished", "run", sum.RunID, "ok", sum.Succeeded, "failed", sum.Failed,
		"skipped", sum.Skipped, "cancelled", sum.Cancelled)

	if artifacts.SummaryPath != "" {
		if err := runlog.WriteSummary(artifacts.SummaryPath, sum); err != nil {
			log.Errorw("writing run summary", "path", artifacts.SummaryPath, "err", err)
		}
	}

	doneEvt := events.NewSuccess(fmt.Sprintf("%d/%d files processed", sum.Succeeded, sum.Total))
	if sum.Cancelled {
		doneEvt = events.NewWarn("cancelled")
	}
	doneEvt.Done, doneEvt.Total = sum.Succeeded+sum.Failed, sum.Total
	events.Emit(ctx, events.ResizeDone, doneEvt)

	if sum.Cancelled {
		return sum, fmt.Errorf("service: resize: %w", ctx.Err())
	}
	return sum, nil
}

// openRunLog creates the per-run log file. Failures fall back to the process
// logger so a broken log dir never blocks processing.
func (s *resizeService) openRunLog(sum *Summary) (logging.Logger, func(), runlog.Artifacts) {
	if s.cfg.LogDir == "" {
		return logging.Get(), func() {}, runlog.Artifacts{}
	}
	artifacts, err := runlog.Create(s.cfg.LogDir, s.cfg.Retention)
	if err != nil {
		logging.Get().Warnw("run log unavailable", "dir", s.cfg.LogDir, "err", err)
		return logging.Get(), func() {}, runlog.Artifacts{}
	}
	l, closeFn, err := logging.NewRunLogger(artifacts.LogPath, s.cfg.Verbose)
	if err != nil {
		logging.Get().Warnw("run log unavailable", "path", artifacts.LogPath, "err", err)
		return logging.Get(), func() {}, artifacts
	}
	sum.LogRunID = artifacts.RunID
	sum.LogPath = artifacts.LogPath
	return l, closeFn, artifacts
}

func failureFor(path string, err error) FileFailure {
	f := FileFailure{Path: path, Message: err.Error()}
	var pe *imageproc.ProcessError
	if errors.As(err, &pe) {
		f.Message = pe.Message()
		f.Hint = pe.Hint
	}
	return f
}
