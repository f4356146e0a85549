package validators

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Limit is an inclusive numeric range.
type Limit struct{ Min, Max float64 }

// Limits per value kind. Unknown kinds use the width limit.
var Limits = map[string]Limit{
	"width":          {1, 10000},
	"height":         {1, 10000},
	"percentage":     {1, 500},
	"longest_side":   {1, 10000},
	"quality":        {1, 100},
	"target_size_kb": {1, 100000},
	"balance":        {1, 10},
}

// ValidateResizeValue parses s and checks it against the limit for kind.
// Fractions are truncated after the range check.
func ValidateResizeValue(s, kind string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrValueRequired
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ErrNotANumber
	}
	lim, ok := Limits[kind]
	if !ok {
		lim = Limits["width"]
	}
	if f < lim.Min || f > lim.Max {
		return 0, fmt.Errorf("%gから%gの範囲で入力してください", lim.Min, lim.Max)
	}
	return int(f), nil
}

// ValidateQuality checks a 1-100 quality value.
func ValidateQuality(s string) (int, error) {
	return ValidateResizeValue(s, "quality")
}
