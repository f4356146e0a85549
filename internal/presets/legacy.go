package presets

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"karukuresize/internal/imageproc"
)

func convertLegacy(name string, legacy map[string]any, index int, existing []string) Preset {
	v := DefaultValues()

	mode := strings.ToLower(stringOr(legacy["resize_mode"], "longest_side"))
	value := max(1, intOr(legacy["resize_value"], 100))
	switch mode {
	case "percentage":
		v.Mode, v.RatioValue = "ratio", strconv.Itoa(value)
	case "width":
		v.Mode, v.WidthValue = "width", strconv.Itoa(value)
	case "height":
		v.Mode, v.HeightValue = "height", strconv.Itoa(value)
	case "none":
		v.Mode, v.RatioValue = "ratio", "100"
	default:
		v.Mode, v.WidthValue = "width", strconv.Itoa(value)
	}

	legacyFormat := strings.ToLower(stringOr(legacy["output_format"], "original"))
	switch f := legacyFormat; f {
	case "jpeg", "png", "webp", "avif":
		v.OutputFormat = f
	default:
		v.OutputFormat = "auto"
	}

	quality := min(100, max(5, intOr(legacy["quality"], 85)))
	// The old processor scaled quality by the size/quality balance at save
	// time; fold it in so migrated presets encode the same.
	if b, ok := legacy["balance"]; ok {
		quality = imageproc.AdjustQualityByBalance(quality, min(10, max(1, intOr(b, 5))), legacyFormat)
	}
	v.Quality = strconv.Itoa(quality)
	v.WebPLossless = boolOr(legacy["webp_lossless"], false)
	if boolOr(legacy["preserve_metadata"], true) {
		v.ExifMode = "keep"
	} else {
		v.ExifMode = "remove"
	}

	display := strings.TrimSpace(name)
	if display == "" {
		display = fmt.Sprintf("移行プリセット%d", index)
	}
	now := time.Now().Format(TimeLayout)
	return Preset{
		ID:          UniqueID("migrated", name, existing),
		Name:        display,
		Description: strings.TrimSpace(stringOr(legacy["description"], "")),
		Values:      v,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func stringOr(v any, def string) string {
	switch x := v.(type) {
	case string:
		return x
	case nil:
		return def
	default:
		return fmt.Sprint(x)
	}
}

// intOr treats missing, zero and unparsable values as def.
func intOr(v any, def int) int {
	switch x := v.(type) {
	case float64:
		if x == 0 || math.IsNaN(x) {
			return def
		}
		return int(x)
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(x)); err == nil && n != 0 {
			return n
		}
	}
	return def
}

func boolOr(v any, def bool) bool {
	switch x := v.(type) {
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		if b, err := strconv.ParseBool(x); err == nil {
			return b
		}
	}
	return def
}
