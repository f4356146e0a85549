// Package presets stores named processing presets.
package presets

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// SchemaVersion of the presets file.
const SchemaVersion = 1

// TimeLayout is the second-precision local timestamp format used in the
// presets file.
const TimeLayout = "2006-01-02T15:04:05"

// Values is the processing subset of the settings record.
type Values struct {
	Mode                 string `json:"mode"`
	RatioValue           string `json:"ratio_value"`
	WidthValue           string `json:"width_value"`
	HeightValue          string `json:"height_value"`
	Quality              string `json:"quality"`
	OutputFormat         string `json:"output_format"`
	WebPMethod           string `json:"webp_method"`
	WebPLossless         bool   `json:"webp_lossless"`
	AVIFSpeed            string `json:"avif_speed"`
	DryRun               bool   `json:"dry_run"`
	ExifMode             string `json:"exif_mode"`
	RemoveGPS            bool   `json:"remove_gps"`
	ExifArtist           string `json:"exif_artist"`
	ExifCopyright        string `json:"exif_copyright"`
	ExifUserComment      string `json:"exif_user_comment"`
	ExifDateTimeOriginal string `json:"exif_datetime_original"`
}

// DefaultValues returns the processing defaults.
func DefaultValues() Values {
	return Values{
		Mode:         "ratio",
		RatioValue:   "100",
		Quality:      "85",
		OutputFormat: "auto",
		WebPMethod:   "6",
		AVIFSpeed:    "6",
		ExifMode:     "keep",
	}
}

// Preset is a named set of processing values.
type Preset struct {
	ID          string `json:"preset_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Values      Values `json:"values"`
	Builtin     bool   `json:"is_builtin"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	LastUsedAt  string `json:"last_used_at"`
}

// Builtins returns the presets shipped with the app. They are never written
// to the presets file.
func Builtins() []Preset {
	now := time.Now().Format(TimeLayout)
	mk := func(id, name, desc string, edit func(*Values)) Preset {
		v := DefaultValues()
		edit(&v)
		return Preset{ID: id, Name: name, Description: desc, Values: v, Builtin: true, CreatedAt: now, UpdatedAt: now}
	}
	return []Preset{
		mk("builtin-standard-high", "標準（品質重視）", "長辺1920相当の高品質設定", func(v *Values) {
			v.Mode, v.WidthValue, v.Quality, v.OutputFormat = "width", "1920", "90", "jpeg"
		}),
		mk("builtin-standard-light", "標準（軽量）", "長辺1280相当の軽量設定", func(v *Values) {
			v.Mode, v.WidthValue, v.Quality, v.OutputFormat = "width", "1280", "75", "jpeg"
		}),
		mk("builtin-webp-high", "WEBP（高品質）", "WebP高品質・可逆オフ", func(v *Values) {
			v.Mode, v.WidthValue, v.Quality, v.OutputFormat = "width", "1600", "85", "webp"
		}),
		mk("builtin-avif-compact", "AVIF（省容量）", "AVIFで容量優先", func(v *Values) {
			v.Mode, v.WidthValue, v.Quality, v.OutputFormat = "width", "1600", "80", "avif"
		}),
		mk("builtin-remove-metadata", "メタデータ削除", "EXIFを削除して保存", func(v *Values) {
			v.ExifMode = "remove"
		}),
	}
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// UniqueID builds "<prefix>-<slug of name>", adding -2, -3, ... until the
// result is not in existing.
func UniqueID(prefix, name string, existing []string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if slug == "" {
		slug = "preset"
	}
	base := prefix + "-" + slug

	used := make(map[string]struct{}, len(existing))
	for _, id := range existing {
		used[id] = struct{}{}
	}
	candidate := base
	for n := 2; ; n++ {
		if _, taken := used[candidate]; !taken {
			return candidate
		}
		candidate = base + "-" + strconv.Itoa(n)
	}
}

// NewUserPreset returns a user preset with a fresh unique ID.
func NewUserPreset(name, description string, values Values, existingIDs []string) Preset {
	now := time.Now().Format(TimeLayout)
	return Preset{
		ID:          UniqueID("user", name, existingIDs),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Values:      values,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{TimeLayout, time.RFC3339, "2006-01-02T15:04:05.999999"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
