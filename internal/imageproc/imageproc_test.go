package imageproc

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	exif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
}

func TestTargetSize(t *testing.T) {
	cases := []struct {
		name  string
		o     Options
		wantW int
		wantH int
	}{
		{"none", Options{Mode: ModeNone}, 400, 200},
		{"width", Options{Mode: ModeWidth, Value: 100}, 100, 50},
		{"height", Options{Mode: ModeHeight, Value: 100}, 200, 100},
		{"longest side landscape", Options{Mode: ModeLongestSide, Value: 200}, 200, 100},
		{"percentage", Options{Mode: ModePercentage, Value: 50}, 200, 100},
		{"fixed", Options{Mode: ModeFixed, Width: 10, Height: 30}, 10, 30},
		{"never zero", Options{Mode: ModeWidth, Value: 1}, 1, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, h := TargetSize(400, 200, tc.o)
			assert.Equal(t, tc.wantW, w)
			assert.Equal(t, tc.wantH, h)
		})
	}
}

func TestOptionsFromValues(t *testing.T) {
	o, err := OptionsFromValues(ModeRatio, "50", "", "", "80", "jpeg", ExifRemove, false, false)
	require.NoError(t, err)
	assert.Equal(t, 50, o.Value)
	assert.Equal(t, 80, o.Quality)

	o, err = OptionsFromValues(ModeFixed, "", "640", "480", "", "png", ExifKeep, true, true)
	require.NoError(t, err)
	assert.Equal(t, 640, o.Width)
	assert.Equal(t, 480, o.Height)
	assert.Equal(t, 85, o.Quality)

	_, err = OptionsFromValues("diagonal", "", "", "", "", "", "", false, false)
	assert.Error(t, err)

	_, err = OptionsFromValues(ModeWidth, "", "", "", "", "", "", false, false)
	assert.Error(t, err)
}

func TestOptionsValidateExif(t *testing.T) {
	o := Options{Mode: ModeNone, Quality: 85, ExifMode: ExifEdit, Exif: ExifEdits{DateTimeOriginal: "2024:01:31 09:30:00"}}
	assert.NoError(t, o.Validate())

	o.Exif.DateTimeOriginal = "2024-01-31"
	assert.Error(t, o.Validate())

	o = Options{Mode: ModeNone, Quality: 85, ExifMode: "strip"}
	assert.Error(t, o.Validate())

	o = Options{Mode: ModeNone, Quality: 85, WebPMethod: 7}
	assert.Error(t, o.Validate())
}

func TestResolveFormat(t *testing.T) {
	cases := []struct {
		name, src string
		want      Format
		ext       string
	}{
		{"auto", "a.png", PNG, ".png"},
		{"original", "a.webp", WebP, ".webp"},
		{"auto", "a.JPEG", JPEG, ".jpg"},
		{"auto", "scan.img", JPEG, ".jpg"},
		{"jpg", "a.png", JPEG, ".jpg"},
		{"avif", "a.png", AVIF, ".avif"},
		{"tif", "a.png", TIFF, ".tiff"},
	}
	for _, tc := range cases {
		f, err := ResolveFormat(tc.name, tc.src)
		require.NoError(t, err, tc.name+" "+tc.src)
		assert.Equal(t, tc.want, f, tc.name+" "+tc.src)
		assert.Equal(t, tc.ext, f.Extension(), tc.name+" "+tc.src)
	}

	_, err := ResolveFormat("heic", "a.png")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestAdjustQualityByBalance(t *testing.T) {
	assert.Equal(t, 100, AdjustQualityByBalance(85, 10, "jpeg"))
	assert.Equal(t, 59, AdjustQualityByBalance(85, 1, "jpeg"))
	assert.Equal(t, 85, AdjustQualityByBalance(85, 1, "png"))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512.0 B", FormatFileSize(512))
	assert.Equal(t, "1.5 KB", FormatFileSize(1536))
	assert.Equal(t, "2.0 MB", FormatFileSize(2<<20))
}

func TestProcessResizesAndWrites(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	dst := filepath.Join(dir, "out", "in.jpg")
	writePNG(t, src, 64, 32)

	res, err := Process(src, dst, Options{Mode: ModeWidth, Value: 16, Quality: 80, Format: "jpeg"})
	require.NoError(t, err)
	assert.Equal(t, "jpeg", res.Format)
	assert.Equal(t, 16, res.DestW)
	assert.Equal(t, 8, res.DestH)

	f, err := os.Open(dst)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Width)
	assert.Equal(t, 8, cfg.Height)
}

func TestProcessDryRunDoesNotWrite(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	dst := filepath.Join(dir, "out.png")
	writePNG(t, src, 10, 10)

	res, err := Process(src, dst, Options{Mode: ModeNone, Quality: 85, Format: "auto", DryRun: true})
	require.NoError(t, err)
	assert.Positive(t, res.DestSize)
	assert.NoFileExists(t, dst)
}

func TestProcessErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := Process(filepath.Join(dir, "missing.png"), filepath.Join(dir, "x.png"), Options{Mode: ModeNone, Quality: 85})
	var pe *ProcessError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NotEmpty(t, pe.Hint)

	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0o644))
	_, err = Process(bad, filepath.Join(dir, "y.png"), Options{Mode: ModeNone, Quality: 85})
	assert.ErrorIs(t, err, image.ErrFormat)
}

func TestExifSegmentsSplice(t *testing.T) {
	app1 := append([]byte{0xFF, 0xE1, 0x00, 0x0A}, []byte("Exif\x00\x00ab")...)
	src := append([]byte{0xFF, 0xD8}, app1...)
	src = append(src, 0xFF, 0xDA, 0x00, 0x02)

	segs := exifSegments(src)
	require.Len(t, segs, 1)
	assert.Equal(t, app1, segs[0])

	out := insertSegments([]byte{0xFF, 0xD8, 0xFF, 0xD9}, segs)
	assert.Equal(t, append(append([]byte{0xFF, 0xD8}, app1...), 0xFF, 0xD9), out)

	assert.Nil(t, exifSegments([]byte("plain")))
}

func writeExifJPEG(t *testing.T, path string, w, h int, withGPS bool) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))

	rootIb, err := emptyExifBuilder()
	require.NoError(t, err)
	require.NoError(t, rootIb.SetStandardWithName("Orientation", []uint16{6}))
	require.NoError(t, rootIb.SetStandardWithName("Artist", "camera owner"))
	if withGPS {
		gpsIb, err := exif.GetOrCreateIbFromRootIb(rootIb, "IFD/GPSInfo")
		require.NoError(t, err)
		require.NoError(t, gpsIb.SetStandardWithName("GPSLatitudeRef", "N"))
		require.NoError(t, gpsIb.SetStandardWithName("GPSLatitude", []exifcommon.Rational{{Numerator: 35, Denominator: 1}, {Numerator: 41, Denominator: 1}, {Numerator: 0, Denominator: 1}}))
		require.NoError(t, gpsIb.SetStandardWithName("GPSLongitudeRef", "E"))
		require.NoError(t, gpsIb.SetStandardWithName("GPSLongitude", []exifcommon.Rational{{Numerator: 139, Denominator: 1}, {Numerator: 46, Denominator: 1}, {Numerator: 0, Denominator: 1}}))
	}
	out, err := writeExif(buf.Bytes(), rootIb)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, out, 0o644))
}

func readMD(t *testing.T, path string) Metadata {
	t.Helper()
	md, err := ReadMetadata(path)
	require.NoError(t, err)
	return md
}

func TestProcessKeepsExifWithoutRotating(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.jpg")
	dst := filepath.Join(dir, "out.jpg")
	writeExifJPEG(t, src, 40, 20, true)

	res, err := Process(src, dst, Options{Mode: ModeNone, Quality: 85, Format: "auto", ExifMode: ExifKeep})
	require.NoError(t, err)
	assert.Equal(t, 40, res.DestW)
	assert.Equal(t, 20, res.DestH)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Len(t, exifSegments(data), 1)

	md := readMD(t, dst)
	assert.Equal(t, 6, md.Orientation)
	assert.Equal(t, "camera owner", md.Artist)
	assert.True(t, md.HasGPS)
}

func TestProcessRemoveGPSKeepsOtherTags(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.jpg")
	dst := filepath.Join(dir, "out.jpg")
	writeExifJPEG(t, src, 40, 20, true)
	require.True(t, readMD(t, src).HasGPS)

	res, err := Process(src, dst, Options{Mode: ModeNone, Quality: 85, Format: "jpeg", ExifMode: ExifKeep, RemoveGPS: true})
	require.NoError(t, err)
	assert.Equal(t, 40, res.DestW)

	md := readMD(t, dst)
	assert.False(t, md.HasGPS)
	assert.Equal(t, 6, md.Orientation)
	assert.Equal(t, "camera owner", md.Artist)
}

func TestProcessRemoveDropsExifAndAppliesOrientation(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.jpg")
	dst := filepath.Join(dir, "out.jpg")
	writeExifJPEG(t, src, 40, 20, true)

	res, err := Process(src, dst, Options{Mode: ModeNone, Quality: 85, Format: "jpeg", ExifMode: ExifRemove})
	require.NoError(t, err)
	assert.Equal(t, 20, res.DestW)
	assert.Equal(t, 40, res.DestH)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Empty(t, exifSegments(data))
}

func TestProcessEditWritesTags(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.jpg")
	dst := filepath.Join(dir, "out.jpg")
	writeExifJPEG(t, src, 40, 20, false)

	_, err := Process(src, dst, Options{
		Mode: ModeNone, Quality: 85, Format: "jpeg", ExifMode: ExifEdit,
		Exif: ExifEdits{Artist: "  Karuku  ", Copyright: "(c) 2024", DateTimeOriginal: "2024:01:31 09:30:00"},
	})
	require.NoError(t, err)

	md := readMD(t, dst)
	assert.Equal(t, "Karuku", md.Artist)
	assert.Equal(t, "(c) 2024", md.Copyright)
	assert.Equal(t, 6, md.Orientation)
	assert.Equal(t, 2024, md.Taken.Year())
}

func TestProcessEditCreatesExifForPNGSource(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	dst := filepath.Join(dir, "out.jpg")
	writePNG(t, src, 16, 16)

	_, err := Process(src, dst, Options{
		Mode: ModeNone, Quality: 85, Format: "jpeg", ExifMode: ExifEdit,
		Exif: ExifEdits{Artist: "Karuku", UserComment: "batch"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Karuku", readMD(t, dst).Artist)
}

func TestProcessAutoFallsBackToJPEGForUnknownExtension(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "scan.img")
	writePNG(t, src, 16, 16)

	f, err := ResolveFormat("auto", src)
	require.NoError(t, err)
	dst := filepath.Join(dir, "scan_resized"+f.Extension())

	res, err := Process(src, dst, Options{Mode: ModeNone, Quality: 85, Format: "auto"})
	require.NoError(t, err)
	assert.Equal(t, "jpeg", res.Format)
	assert.Equal(t, ".jpg", filepath.Ext(dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.True(t, isJPEGData(data))
}

func TestProcessEncodesWebP(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	dst := filepath.Join(dir, "out.webp")
	writePNG(t, src, 32, 16)

	res, err := Process(src, dst, Options{Mode: ModeWidth, Value: 16, Quality: 80, Format: "webp", WebPMethod: 4})
	require.NoError(t, err)
	assert.Equal(t, "webp", res.Format)

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Greater(t, len(data), 12)
	assert.Equal(t, "RIFF", string(data[:4]))
	assert.Equal(t, "WEBP", string(data[8:12]))

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Width)
	assert.Equal(t, 8, cfg.Height)
}
