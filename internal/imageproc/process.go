package imageproc

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/avif"
	"github.com/gen2brain/webp"
	_ "golang.org/x/image/webp"

	"karukuresize/internal/utils"
)

// Result describes one processed file.
type Result struct {
	Source     string        `json:"source"`
	Dest       string        `json:"dest"`
	Format     string        `json:"format"`
	SourceSize int64         `json:"sourceSize"`
	DestSize   int64         `json:"destSize"`
	SourceW    int           `json:"sourceWidth"`
	SourceH    int           `json:"sourceHeight"`
	DestW      int           `json:"destWidth"`
	DestH      int           `json:"destHeight"`
	Duration   time.Duration `json:"duration"`
	DryRun     bool          `json:"dryRun"`
}

// Reduction is the percentage of bytes saved, or 0 for an empty source.
func (r Result) Reduction() float64 {
	if r.SourceSize <= 0 {
		return 0
	}
	return float64(r.SourceSize-r.DestSize) / float64(r.SourceSize) * 100
}

// Process resizes src and writes the encoded result to dst. In dry-run mode
// everything but the final write happens, so DestSize is still reported.
func Process(src, dst string, o Options) (Result, error) {
	start := time.Now()
	res := Result{Source: src, Dest: dst, DryRun: o.DryRun}

	if err := o.Validate(); err != nil {
		return res, newProcessError(src, "validate", err)
	}
	format, err := ResolveFormat(o.Format, src)
	if err != nil {
		return res, newProcessError(src, "format", err)
	}
	res.Format = string(format)

	data, err := os.ReadFile(src)
	if err != nil {
		return res, newProcessError(src, "read", err)
	}
	res.SourceSize = int64(len(data))

	plan, err := planExif(data, format, o)
	if err != nil {
		return res, newProcessError(src, "exif", err)
	}
	// Kept EXIF carries its own orientation tag, so pixels stay as stored.
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(!plan.fromSource))
	if err != nil {
		return res, newProcessError(src, "decode", err)
	}
	b := img.Bounds()
	res.SourceW, res.SourceH = b.Dx(), b.Dy()

	res.DestW, res.DestH = TargetSize(res.SourceW, res.SourceH, o)
	if res.DestW != res.SourceW || res.DestH != res.SourceH {
		img = imaging.Resize(img, res.DestW, res.DestH, imaging.Lanczos)
	}

	out, err := encode(img, format, o)
	if err != nil {
		return res, newProcessError(src, "encode", err)
	}
	if out, err = plan.apply(out); err != nil {
		return res, newProcessError(src, "exif", err)
	}
	res.DestSize = int64(len(out))

	if !o.DryRun {
		if err := utils.WriteFileAtomic(dst, out, 0o644); err != nil {
			return res, newProcessError(src, "write", err)
		}
	}
	res.Duration = time.Since(start)
	return res, nil
}

func encode(img image.Image, format Format, o Options) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case WebP:
		err = webp.Encode(&buf, img, webp.Options{Quality: o.Quality, Lossless: o.WebPLossless, Method: o.WebPMethod})
	case AVIF:
		err = avif.Encode(&buf, img, avif.Options{Quality: o.Quality, QualityAlpha: o.Quality, Speed: o.AVIFSpeed})
	default:
		f, ok := format.imagingFormat()
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
		}
		opts := []imaging.EncodeOption{imaging.JPEGQuality(o.Quality)}
		if f == imaging.PNG {
			opts = append(opts, imaging.PNGCompressionLevel(png.BestCompression))
		}
		err = imaging.Encode(&buf, img, f, opts...)
	}
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}
