package presets

import (
	"slices"
	"strings"
	"time"
)

// SortUsers orders presets that have been used by most recent use, followed
// by the never-used ones oldest first. The input is not modified.
func SortUsers(in []Preset) []Preset {
	var used, unused []Preset
	for _, p := range in {
		if strings.TrimSpace(p.LastUsedAt) != "" {
			used = append(used, p)
		} else {
			unused = append(unused, p)
		}
	}

	key := func(s string) time.Time {
		t, _ := parseTime(s)
		return t
	}
	slices.SortStableFunc(used, func(a, b Preset) int {
		return key(b.LastUsedAt).Compare(key(a.LastUsedAt))
	})
	slices.SortStableFunc(unused, func(a, b Preset) int {
		return key(a.CreatedAt).Compare(key(b.CreatedAt))
	})
	return append(used, unused...)
}
