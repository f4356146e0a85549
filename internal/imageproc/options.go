// Package imageproc resizes and re-encodes single image files.
package imageproc

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Resize modes.
const (
	ModeNone        = "none"
	ModeWidth       = "width"
	ModeHeight      = "height"
	ModeLongestSide = "longest_side"
	ModePercentage  = "percentage"
	ModeRatio       = "ratio"
	ModeFixed       = "fixed"
)

// EXIF handling modes. Edit keeps the source EXIF and overwrites the tags
// set in ExifEdits.
const (
	ExifKeep   = "keep"
	ExifRemove = "remove"
	ExifEdit   = "edit"
)

// ExifDateTimeLayout is the EXIF DateTimeOriginal format.
const ExifDateTimeLayout = "2006:01:02 15:04:05"

// Encoder defaults.
const (
	DefaultWebPMethod = 6
	DefaultAVIFSpeed  = 6
)

// ExifEdits are tag values written in ExifEdit mode. Blank fields are left
// alone.
type ExifEdits struct {
	Artist           string `json:"artist,omitempty"`
	Copyright        string `json:"copyright,omitempty"`
	UserComment      string `json:"userComment,omitempty"`
	DateTimeOriginal string `json:"dateTimeOriginal,omitempty"`
}

// Empty reports whether no tag would be written.
func (e ExifEdits) Empty() bool {
	return strings.TrimSpace(e.Artist) == "" && strings.TrimSpace(e.Copyright) == "" &&
		strings.TrimSpace(e.UserComment) == "" && strings.TrimSpace(e.DateTimeOriginal) == ""
}

// Options describe one resize/compress operation.
type Options struct {
	Mode         string
	Value        int
	Width        int
	Height       int
	Quality      int
	Format       string
	WebPMethod   int
	WebPLossless bool
	AVIFSpeed    int
	ExifMode     string
	RemoveGPS    bool
	Exif         ExifEdits
	DryRun       bool
}

// OptionsFromValues builds Options from the string-typed values the GUI
// stores. Empty or unparsable numbers fall back to sensible defaults.
func OptionsFromValues(mode, ratio, width, height, quality, format, exifMode string, removeGPS, dryRun bool) (Options, error) {
	o := Options{
		Mode:      mode,
		Quality:   atoiOr(quality, 85),
		Format:     format,
		WebPMethod: DefaultWebPMethod,
		AVIFSpeed:  DefaultAVIFSpeed,
		ExifMode:   exifMode,
		RemoveGPS:  removeGPS,
		DryRun:     dryRun,
	}
	switch mode {
	case ModeRatio, ModePercentage:
		o.Value = atoiOr(ratio, 100)
	case ModeWidth, ModeLongestSide:
		o.Value = atoiOr(width, 0)
	case ModeHeight:
		o.Value = atoiOr(height, 0)
	case ModeFixed:
		o.Width, o.Height = atoiOr(width, 0), atoiOr(height, 0)
	case ModeNone, "":
		o.Mode = ModeNone
	default:
		return Options{}, fmt.Errorf("unknown resize mode %q", mode)
	}
	return o, o.Validate()
}

// Validate checks that the options describe a possible resize.
func (o Options) Validate() error {
	switch o.Mode {
	case ModeNone:
	case ModeFixed:
		if o.Width <= 0 || o.Height <= 0 {
			return fmt.Errorf("invalid size %dx%d for mode %s", o.Width, o.Height, o.Mode)
		}
	default:
		if o.Value <= 0 {
			return fmt.Errorf("invalid resize value %d for mode %s", o.Value, o.Mode)
		}
	}
	if o.Quality < 1 || o.Quality > 100 {
		return fmt.Errorf("quality %d out of range 1-100", o.Quality)
	}
	if o.WebPMethod < 0 || o.WebPMethod > 6 {
		return fmt.Errorf("webp method %d out of range 0-6", o.WebPMethod)
	}
	if o.AVIFSpeed < 0 || o.AVIFSpeed > 10 {
		return fmt.Errorf("avif speed %d out of range 0-10", o.AVIFSpeed)
	}
	switch o.ExifMode {
	case "", ExifKeep, ExifRemove:
	case ExifEdit:
		if dt := strings.TrimSpace(o.Exif.DateTimeOriginal); dt != "" {
			if _, err := time.Parse(ExifDateTimeLayout, dt); err != nil {
				return fmt.Errorf("exif datetime %q must look like 2024:01:31 09:30:00", dt)
			}
		}
	default:
		return fmt.Errorf("unknown exif mode %q", o.ExifMode)
	}
	return nil
}

// TargetSize returns the output dimensions for a w×h source. Results are at
// least 1×1.
func TargetSize(w, h int, o Options) (int, int) {
	if w <= 0 || h <= 0 {
		return w, h
	}
	var nw, nh int
	switch o.Mode {
	case ModeWidth:
		nw, nh = o.Value, int(float64(o.Value)*float64(h)/float64(w))
	case ModeHeight:
		nw, nh = int(float64(o.Value)*float64(w)/float64(h)), o.Value
	case ModeLongestSide:
		if w > h {
			nw, nh = o.Value, int(float64(o.Value)*float64(h)/float64(w))
		} else {
			nw, nh = int(float64(o.Value)*float64(w)/float64(h)), o.Value
		}
	case ModePercentage, ModeRatio:
		scale := float64(o.Value) / 100
		nw, nh = int(float64(w)*scale), int(float64(h)*scale)
	case ModeFixed:
		nw, nh = o.Width, o.Height
	default:
		return w, h
	}
	return max(1, nw), max(1, nh)
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}
