// Package files finds input images and maps them to output paths.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	filepathx "github.com/yargevad/filepathx"
)

// ImageExtensions are the input extensions the app accepts, lower case.
var ImageExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".avif", ".bmp", ".gif", ".tiff", ".tif"}

// IsImageFile reports whether path has a supported image extension.
func IsImageFile(path string) bool {
	return slices.Contains(ImageExtensions, strings.ToLower(filepath.Ext(path)))
}

// FindImages lists image files under root, sorted by path. With recursive
// set, subdirectories are searched too.
func FindImages(root string, recursive bool) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("find images: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("find images: %s is not a directory", root)
	}

	var matches []string
	if recursive {
		matches, err = filepathx.Glob(filepath.Join(globEscape(root), "**", "*"))
	} else {
		matches, err = filepath.Glob(filepath.Join(globEscape(root), "*"))
	}
	if err != nil {
		return nil, fmt.Errorf("find images: %w", err)
	}

	var out []string
	for _, m := range matches {
		if !IsImageFile(m) {
			continue
		}
		if fi, err := os.Stat(m); err != nil || !fi.Mode().IsRegular() {
			continue
		}
		out = append(out, m)
	}
	slices.Sort(out)
	return DedupePaths(out), nil
}

// globEscape escapes glob metacharacters in a literal path.
func globEscape(p string) string {
	var b strings.Builder
	for _, r := range p {
		switch r {
		case '*', '?', '[':
			b.WriteRune('[')
			b.WriteRune(r)
			b.WriteRune(']')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
