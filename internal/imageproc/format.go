package imageproc

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// ErrUnsupportedFormat is returned for output formats this build cannot
// encode.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Format is an output encoding.
type Format string

// Output formats.
const (
	JPEG Format = "jpeg"
	PNG  Format = "png"
	GIF  Format = "gif"
	TIFF Format = "tiff"
	BMP  Format = "bmp"
	WebP Format = "webp"
	AVIF Format = "avif"
)

var formatExtensions = map[Format]string{
	JPEG: ".jpg",
	PNG:  ".png",
	GIF:  ".gif",
	TIFF: ".tiff",
	BMP:  ".bmp",
	WebP: ".webp",
	AVIF: ".avif",
}

// Extension is the file extension written for f.
func (f Format) Extension() string {
	return formatExtensions[f]
}

// imagingFormat maps f to the imaging encoder. WebP and AVIF have their own
// encoders and report false.
func (f Format) imagingFormat() (imaging.Format, bool) {
	switch f {
	case JPEG:
		return imaging.JPEG, true
	case PNG:
		return imaging.PNG, true
	case GIF:
		return imaging.GIF, true
	case TIFF:
		return imaging.TIFF, true
	case BMP:
		return imaging.BMP, true
	}
	return 0, false
}

func parseFormat(name string) (Format, bool) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), ".") {
	case "jpg", "jpeg":
		return JPEG, true
	case "png":
		return PNG, true
	case "gif":
		return GIF, true
	case "tif", "tiff":
		return TIFF, true
	case "bmp":
		return BMP, true
	case "webp":
		return WebP, true
	case "avif":
		return AVIF, true
	}
	return "", false
}

// ResolveFormat picks the encoder for an output format name. "auto",
// "original" and "" keep the source format when it can be encoded and fall
// back to JPEG otherwise.
func ResolveFormat(name, srcPath string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "auto", "original":
		if f, ok := parseFormat(filepath.Ext(srcPath)); ok {
			return f, nil
		}
		return JPEG, nil
	}
	f, ok := parseFormat(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	return f, nil
}

// isJPEGData checks for the SOI marker.
func isJPEGData(data []byte) bool {
	return len(data) > 2 && data[0] == 0xFF && data[1] == 0xD8
}

// AdjustQualityByBalance scales quality by a 1-10 compression/quality
// balance, 1 favouring size and 10 favouring quality. PNG and unknown
// formats are returned unchanged. The result is clamped to 1-100.
func AdjustQualityByBalance(quality, balance int, format string) int {
	factor := float64(balance-1) / 9
	q := quality
	switch strings.ToLower(format) {
	case "jpeg", "jpg":
		q = int(float64(quality) * (0.7 + factor*0.5))
	case "webp":
		q = int(float64(quality) * (0.6 + factor*0.5))
	}
	return min(100, max(1, q))
}

// FormatFileSize renders n bytes as "12.3 KB" and so on, up to GB.
func FormatFileSize(n int64) string {
	size := float64(n)
	units := []string{"B", "KB", "MB", "GB"}
	i := 0
	for i < len(units)-1 && math.Abs(size) >= 1024 {
		size /= 1024
		i++
	}
	return fmt.Sprintf("%.1f %s", size, units[i])
}
