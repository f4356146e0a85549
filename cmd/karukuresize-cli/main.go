// Command karukuresize-cli resizes every image under a folder without the GUI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"karukuresize/internal/config"
	"karukuresize/internal/files"
	"karukuresize/internal/imageproc"
	"karukuresize/internal/logging"
	"karukuresize/internal/runlog"
	"karukuresize/internal/services"
	"karukuresize/internal/utils"
	"karukuresize/internal/validators"
)

// verbosity counts repeated -v flags.
type verbosity int

func (v *verbosity) String() string   { return strconv.Itoa(int(*v)) }
func (v *verbosity) IsBoolFlag() bool { return true }
func (v *verbosity) Set(s string) error {
	on, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	if on {
		*v++
	}
	return nil
}

type options struct {
	source    string
	dest      string
	list      string
	width     int
	quality   int
	balance   int
	format    string
	recursive bool
	dryRun    bool
	workers   int
	verbose   verbosity
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet("karukuresize-cli", flag.ContinueOnError)
	fs.SetOutput(stderr)
	for _, name := range []string{"s", "source"} {
		fs.StringVar(&o.source, name, "", "source folder")
	}
	for _, name := range []string{"d", "dest"} {
		fs.StringVar(&o.dest, name, "", "destination folder")
	}
	for _, name := range []string{"w", "width"} {
		fs.IntVar(&o.width, name, 1280, "target width in pixels")
	}
	for _, name := range []string{"q", "quality"} {
		fs.IntVar(&o.quality, name, 85, "JPEG quality 1-100")
	}
	for _, name := range []string{"f", "format"} {
		fs.StringVar(&o.format, name, "jpeg", "output format: jpeg, png, webp, avif, auto")
	}
	fs.IntVar(&o.balance, "balance", 0, "size/quality balance 1-10, 1 favours small files (default off)")
	fs.StringVar(&o.list, "list", "", "file listing images to process, one per line")
	fs.BoolVar(&o.recursive, "r", true, "include subfolders")
	fs.BoolVar(&o.dryRun, "dry-run", false, "process without writing files")
	fs.IntVar(&o.workers, "workers", 0, "parallel workers (default from KARUKU_WORKERS)")
	fs.Var(&o.verbose, "v", "verbose output, repeat for more")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.source == "" {
		return o, errors.New("-source is required")
	}
	if o.dest == "" && !o.dryRun {
		return o, errors.New("-dest is required")
	}
	if _, err := validators.ValidateResizeValue(strconv.Itoa(o.width), "width"); err != nil {
		return o, fmt.Errorf("-width: %w", err)
	}
	if _, err := validators.ValidateQuality(strconv.Itoa(o.quality)); err != nil {
		return o, fmt.Errorf("-quality: %w", err)
	}
	if o.balance != 0 {
		if _, err := validators.ValidateResizeValue(strconv.Itoa(o.balance), "balance"); err != nil {
			return o, fmt.Errorf("-balance: %w", err)
		}
	}
	return o, nil
}

// effectiveQuality applies -balance to -quality for lossy formats.
func (o options) effectiveQuality() int {
	if o.balance == 0 {
		return o.quality
	}
	return imageproc.AdjustQualityByBalance(o.quality, o.balance, o.format)
}

func newLogger(v verbosity) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	switch {
	case v >= 2:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case v == 1:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	}
	return cfg.Build()
}

func collect(o options) ([]string, error) {
	if !utils.DirectoryExists(o.source) {
		return nil, fmt.Errorf("source folder not found: %s", o.source)
	}
	if o.list == "" {
		return files.FindImages(o.source, o.recursive)
	}
	paths, err := utils.ReadListFile(o.list)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, p := range files.DedupePaths(paths) {
		if files.IsImageFile(p) && utils.FileExists(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if err := utils.LoadEnv(); err != nil {
		fmt.Fprintln(stderr, "warning: .env:", err)
	}
	o, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(stderr, err)
		return 2
	}

	zl, err := newLogger(o.verbose)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer func() { _ = zl.Sync() }()
	logging.Set(zl.Sugar())

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	workers := cfg.Workers
	if o.workers > 0 {
		workers = o.workers
	}

	paths, err := collect(o)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if len(paths) == 0 {
		fmt.Fprintln(stdout, "no images found")
		return 0
	}

	svc := services.NewResizeService(nil, services.ResizeConfig{
		Workers: workers,
		LogDir:  cfg.LogDir,
		Retention: runlog.Options{
			RetentionDays: cfg.LogRetentionDays,
			MaxFiles:      cfg.LogMaxFiles,
		},
		Verbose: o.verbose > 0,
	})
	sum, err := svc.Run(ctx, services.Job{
		Files:      paths,
		SourceRoot: o.source,
		DestDir:    o.dest,
		Options: imageproc.Options{
			Mode:     imageproc.ModeWidth,
			Value:    o.width,
			Quality:  o.effectiveQuality(),
			Format:   o.format,
			ExifMode: imageproc.ExifRemove,
			DryRun:   o.dryRun,
		},
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(stderr, err)
		return 1
	}

	fmt.Fprintf(stdout, "%d/%d processed, %d failed, %s -> %s\n",
		sum.Succeeded, sum.Total, sum.Failed,
		imageproc.FormatFileSize(sum.SourceBytes), imageproc.FormatFileSize(sum.DestBytes))
	for _, f := range sum.Failures {
		fmt.Fprintf(stderr, "  %s: %s (%s)\n", f.Path, f.Message, f.Hint)
	}
	if sum.LogPath != "" {
		fmt.Fprintln(stdout, "log:", sum.LogPath)
	}
	if sum.Cancelled {
		return 130
	}
	if sum.Failed > 0 {
		return 1
	}
	return 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
