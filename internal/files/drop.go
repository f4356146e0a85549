package files

import (
	"net/url"
	"runtime"
	"strings"
)

// DedupePaths removes case-insensitive duplicates, keeping the first
// occurrence and the original order.
func DedupePaths(paths []string) []string {
	seen := make(map[string]struct{}, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		key := strings.ToLower(p)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, p)
	}
	return out
}

// NormalizeDroppedPath converts one dropped item into a filesystem path.
// file:// URLs are unescaped; a remote host becomes a UNC-style prefix.
func NormalizeDroppedPath(item string) string {
	return normalizeDroppedPath(item, runtime.GOOS)
}

func normalizeDroppedPath(item, goos string) string {
	text := strings.TrimSpace(item)
	if !strings.HasPrefix(text, "file://") {
		return text
	}
	u, err := url.Parse(text)
	if err != nil || u.Scheme != "file" {
		return text
	}
	p := u.Path
	if u.Host != "" && !strings.EqualFold(u.Host, "localhost") {
		p = "//" + u.Host + p
	}
	if goos == "windows" && len(p) >= 3 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	if p == "" {
		return text
	}
	return p
}

// ParseDropPaths splits a drop payload into paths. Items are separated by
// newlines or by Tcl-style braces ({a b} {c}); surrounding quotes are
// removed and the result is deduplicated.
func ParseDropPaths(data string) []string {
	data = strings.TrimSpace(data)
	if data == "" {
		return nil
	}

	var items []string
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" {
			continue
		}
		items = append(items, splitBraced(line)...)
	}

	var paths []string
	for _, it := range items {
		it = strings.TrimSpace(it)
		it = strings.TrimPrefix(it, "{")
		it = strings.TrimSuffix(it, "}")
		it = strings.Trim(strings.TrimSpace(it), `"`)
		if p := NormalizeDroppedPath(it); p != "" {
			paths = append(paths, p)
		}
	}
	return DedupePaths(paths)
}

// splitBraced splits "{a b} c {d}" into ["a b", "c", "d"]. A line without
// braces is returned whole so that paths with spaces survive.
func splitBraced(line string) []string {
	if !strings.Contains(line, "{") {
		return []string{line}
	}
	var (
		out   []string
		cur   strings.Builder
		depth int
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}
	for _, r := range line {
		switch {
		case r == '{' && depth == 0:
			flush()
			depth++
		case r == '}' && depth > 0:
			depth--
			if depth == 0 {
				flush()
			}
		case r == ' ' && depth == 0:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}
