package imageproc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"

	exif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
	exifundefined "github.com/dsoprea/go-exif/v3/undefined"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"
)

// gpsInfoTag is the IFD0 pointer to the GPS sub-IFD.
const gpsInfoTag = 0x8825

// exifPlan is what Process does with metadata for one file.
type exifPlan struct {
	// segs are copied verbatim after SOI.
	segs [][]byte
	// rebuild, when set, replaces the output EXIF entirely.
	rebuild *exif.IfdBuilder
	// fromSource is true when source EXIF (and its orientation) is carried.
	fromSource bool
}

// planExif decides how source metadata reaches a JPEG output. Verbatim copy
// is preferred; the tag builder is used only when GPS has to go or tags are
// edited.
func planExif(data []byte, format Format, o Options) (exifPlan, error) {
	if o.ExifMode == ExifRemove || format != JPEG {
		return exifPlan{}, nil
	}
	var segs [][]byte
	if isJPEGData(data) {
		segs = exifSegments(data)
	}
	edit := o.ExifMode == ExifEdit && !o.Exif.Empty()
	stripGPS := false
	if o.RemoveGPS && len(segs) > 0 {
		md, err := DecodeMetadata(bytes.NewReader(data))
		stripGPS = err == nil && md.HasGPS
	}
	if !edit && !stripGPS {
		return exifPlan{segs: segs, fromSource: len(segs) > 0}, nil
	}

	var rootIb *exif.IfdBuilder
	if len(segs) > 0 {
		ib, err := sourceExifBuilder(data)
		if err != nil {
			return exifPlan{}, fmt.Errorf("read exif: %w", err)
		}
		rootIb = ib
	} else {
		ib, err := emptyExifBuilder()
		if err != nil {
			return exifPlan{}, err
		}
		rootIb = ib
	}
	if stripGPS {
		if _, err := rootIb.DeleteAll(gpsInfoTag); err != nil {
			return exifPlan{}, fmt.Errorf("remove gps: %w", err)
		}
	}
	if edit {
		if err := applyExifEdits(rootIb, o.Exif); err != nil {
			return exifPlan{}, err
		}
	}
	return exifPlan{rebuild: rootIb, fromSource: len(segs) > 0}, nil
}

// apply adds the planned metadata to an encoded JPEG.
func (p exifPlan) apply(out []byte) ([]byte, error) {
	switch {
	case p.rebuild != nil:
		return writeExif(out, p.rebuild)
	case len(p.segs) > 0:
		return insertSegments(out, p.segs), nil
	}
	return out, nil
}

func sourceExifBuilder(data []byte) (*exif.IfdBuilder, error) {
	intfc, err := jpegstructure.NewJpegMediaParser().ParseBytes(data)
	if err != nil {
		return nil, err
	}
	sl := intfc.(*jpegstructure.SegmentList)
	return sl.ConstructExifBuilder()
}

func emptyExifBuilder() (*exif.IfdBuilder, error) {
	im := exifcommon.NewIfdMapping()
	if err := exifcommon.LoadStandardIfds(im); err != nil {
		return nil, fmt.Errorf("exif ifd mapping: %w", err)
	}
	ti := exif.NewTagIndex()
	return exif.NewIfdBuilder(im, ti, exifcommon.IfdStandardIfdIdentity, binary.BigEndian), nil
}

func applyExifEdits(rootIb *exif.IfdBuilder, e ExifEdits) error {
	set := func(ib *exif.IfdBuilder, name, value string) error {
		if value = strings.TrimSpace(value); value == "" {
			return nil
		}
		if err := ib.SetStandardWithName(name, value); err != nil {
			return fmt.Errorf("set %s: %w", name, err)
		}
		return nil
	}
	if err := set(rootIb, "Artist", e.Artist); err != nil {
		return err
	}
	if err := set(rootIb, "Copyright", e.Copyright); err != nil {
		return err
	}

	dt := strings.TrimSpace(e.DateTimeOriginal)
	comment := strings.TrimSpace(e.UserComment)
	if dt == "" && comment == "" {
		return nil
	}
	exifIb, err := exif.GetOrCreateIbFromRootIb(rootIb, "IFD/Exif")
	if err != nil {
		return fmt.Errorf("exif sub-ifd: %w", err)
	}
	if err := set(exifIb, "DateTimeOriginal", dt); err != nil {
		return err
	}
	if comment != "" {
		uc := exifundefined.Tag9286UserComment{
			EncodingType:  exifundefined.TagUndefinedType_9286_UserComment_Encoding_ASCII,
			EncodingBytes: []byte(asciiOnly(comment)),
		}
		if err := exifIb.SetStandardWithName("UserComment", uc); err != nil {
			return fmt.Errorf("set UserComment: %w", err)
		}
	}
	return nil
}

// writeExif replaces (or adds) the EXIF segment of an encoded JPEG.
func writeExif(out []byte, rootIb *exif.IfdBuilder) ([]byte, error) {
	intfc, err := jpegstructure.NewJpegMediaParser().ParseBytes(out)
	if err != nil {
		return nil, fmt.Errorf("parse encoded jpeg: %w", err)
	}
	sl := intfc.(*jpegstructure.SegmentList)
	if err := sl.SetExif(rootIb); err != nil {
		return nil, fmt.Errorf("set exif: %w", err)
	}
	var buf bytes.Buffer
	if err := sl.Write(&buf); err != nil {
		return nil, fmt.Errorf("write jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

// asciiOnly replaces non-ASCII runes with '?', as the UserComment is tagged
// ASCII.
func asciiOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 0x7e || (r < 0x20 && r != '\t') {
			return '?'
		}
		return r
	}, s)
}
