package presets

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// RecentMax is the number of recently used settings kept.
const RecentMax = 6

var formatLabels = map[string]string{
	"auto": "自動",
	"jpeg": "JPEG",
	"png":  "PNG",
	"webp": "WEBP",
	"avif": "AVIF",
}

// Label is the short button caption for v, e.g. "幅1280px/JPEG/Q85".
func Label(v Values) string {
	var size string
	switch v.Mode {
	case "width":
		size = fmt.Sprintf("幅%spx", v.WidthValue)
	case "height":
		size = fmt.Sprintf("高%spx", v.HeightValue)
	case "fixed":
		size = fmt.Sprintf("固定%sx%s", v.WidthValue, v.HeightValue)
	default:
		size = fmt.Sprintf("比率%s%%", v.RatioValue)
	}
	format, ok := formatLabels[strings.ToLower(v.OutputFormat)]
	if !ok {
		format = formatLabels["auto"]
	}
	return fmt.Sprintf("%s/%s/Q%s", size, format, v.Quality)
}

// Fingerprint identifies a set of values. Equal values give equal
// fingerprints.
func Fingerprint(v Values) string {
	m := valuesMap(v)
	data, _ := json.Marshal(m)
	return string(data)
}

// NormalizeRecent cleans a stored recent-settings list: entries without a
// values object are dropped, duplicates removed, missing labels and
// fingerprints filled in and the list capped at RecentMax.
func NormalizeRecent(raw []map[string]any) []map[string]any {
	out := []map[string]any{}
	seen := map[string]struct{}{}
	for _, item := range raw {
		rawValues, ok := item["values"].(map[string]any)
		if !ok {
			continue
		}
		v := valuesFromMap(rawValues)
		fp := strings.TrimSpace(stringOr(item["fingerprint"], ""))
		if fp == "" {
			fp = Fingerprint(v)
		}
		if _, dup := seen[fp]; dup {
			continue
		}
		seen[fp] = struct{}{}
		label := strings.TrimSpace(stringOr(item["label"], ""))
		if label == "" {
			label = Label(v)
		}
		out = append(out, map[string]any{
			"fingerprint": fp,
			"label":       label,
			"used_at":     strings.TrimSpace(stringOr(item["used_at"], "")),
			"values":      valuesMap(v),
		})
		if len(out) >= RecentMax {
			break
		}
	}
	return out
}

// RememberRecent puts v at the front of entries, replacing an earlier entry
// with the same fingerprint.
func RememberRecent(entries []map[string]any, v Values, now time.Time) []map[string]any {
	fp := Fingerprint(v)
	out := []map[string]any{{
		"fingerprint": fp,
		"label":       Label(v),
		"used_at":     now.Format(TimeLayout),
		"values":      valuesMap(v),
	}}
	for _, e := range NormalizeRecent(entries) {
		if e["fingerprint"] == fp {
			continue
		}
		out = append(out, e)
	}
	if len(out) > RecentMax {
		out = out[:RecentMax]
	}
	return out
}

func valuesMap(v Values) map[string]any {
	data, _ := json.Marshal(v)
	var m map[string]any
	_ = json.Unmarshal(data, &m)
	return m
}

func valuesFromMap(m map[string]any) Values {
	v := DefaultValues()
	data, err := json.Marshal(m)
	if err != nil {
		return v
	}
	_ = json.Unmarshal(data, &v)
	return v
}
