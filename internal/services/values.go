package services

import (
	"strconv"
	"strings"

	"karukuresize/internal/imageproc"
	"karukuresize/internal/presets"
	"karukuresize/internal/settings"
)

// ValuesFromSettings extracts the processing values stored in rec.
func ValuesFromSettings(rec settings.Record) presets.Values {
	return presets.Values{
		Mode:                 rec.Mode,
		RatioValue:           rec.RatioValue,
		WidthValue:           rec.WidthValue,
		HeightValue:          rec.HeightValue,
		Quality:              rec.Quality,
		OutputFormat:         rec.OutputFormat,
		WebPMethod:           rec.WebPMethod,
		WebPLossless:         rec.WebPLossless,
		AVIFSpeed:            rec.AVIFSpeed,
		DryRun:               rec.DryRun,
		ExifMode:             rec.ExifMode,
		RemoveGPS:            rec.RemoveGPS,
		ExifArtist:           rec.ExifArtist,
		ExifCopyright:        rec.ExifCopyright,
		ExifUserComment:      rec.ExifUserComment,
		ExifDateTimeOriginal: rec.ExifDateTimeOriginal,
	}
}

// ApplyValues copies processing values into rec.
func ApplyValues(rec settings.Record, v presets.Values) settings.Record {
	rec.Mode = v.Mode
	rec.RatioValue = v.RatioValue
	rec.WidthValue = v.WidthValue
	rec.HeightValue = v.HeightValue
	rec.Quality = v.Quality
	rec.OutputFormat = v.OutputFormat
	rec.WebPMethod = v.WebPMethod
	rec.WebPLossless = v.WebPLossless
	rec.AVIFSpeed = v.AVIFSpeed
	rec.DryRun = v.DryRun
	rec.ExifMode = v.ExifMode
	rec.RemoveGPS = v.RemoveGPS
	rec.ExifArtist = v.ExifArtist
	rec.ExifCopyright = v.ExifCopyright
	rec.ExifUserComment = v.ExifUserComment
	rec.ExifDateTimeOriginal = v.ExifDateTimeOriginal
	return rec
}

// OptionsFromValues turns stored processing values into resize options.
func OptionsFromValues(v presets.Values) (imageproc.Options, error) {
	o, err := imageproc.OptionsFromValues(v.Mode, v.RatioValue, v.WidthValue, v.HeightValue,
		v.Quality, v.OutputFormat, v.ExifMode, v.RemoveGPS, v.DryRun)
	if err != nil {
		return o, err
	}
	o.WebPMethod = intOr(v.WebPMethod, imageproc.DefaultWebPMethod)
	o.WebPLossless = v.WebPLossless
	o.AVIFSpeed = intOr(v.AVIFSpeed, imageproc.DefaultAVIFSpeed)
	o.Exif = imageproc.ExifEdits{
		Artist:           v.ExifArtist,
		Copyright:        v.ExifCopyright,
		UserComment:      v.ExifUserComment,
		DateTimeOriginal: v.ExifDateTimeOriginal,
	}
	return o, o.Validate()
}

func intOr(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}
