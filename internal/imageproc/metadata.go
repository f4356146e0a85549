package imageproc

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// Metadata is the EXIF summary shown next to a preview.
type Metadata struct {
	Make        string    `json:"make,omitempty"`
	Model       string    `json:"model,omitempty"`
	Artist      string    `json:"artist,omitempty"`
	Copyright   string    `json:"copyright,omitempty"`
	Taken       time.Time `json:"taken,omitempty"`
	Orientation int       `json:"orientation,omitempty"`
	HasGPS      bool      `json:"hasGps"`
	Lat         float64   `json:"lat,omitempty"`
	Long        float64   `json:"long,omitempty"`
}

// ReadMetadata decodes the EXIF block of the file at path.
func ReadMetadata(path string) (Metadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return Metadata{}, err
	}
	defer f.Close()
	return DecodeMetadata(f)
}

// DecodeMetadata decodes EXIF from r. Missing tags are left empty.
func DecodeMetadata(r io.Reader) (Metadata, error) {
	x, err := exif.Decode(r)
	if err != nil {
		return Metadata{}, fmt.Errorf("decode exif: %w", err)
	}

	var md Metadata
	md.Make = tagString(x, exif.Make)
	md.Model = tagString(x, exif.Model)
	md.Artist = tagString(x, exif.Artist)
	md.Copyright = tagString(x, exif.Copyright)
	if t, err := x.DateTime(); err == nil {
		md.Taken = t
	}
	if tag, err := x.Get(exif.Orientation); err == nil {
		if v, err := tag.Int(0); err == nil {
			md.Orientation = v
		}
	}
	if _, err := x.Get(exif.GPSInfoIFDPointer); err == nil {
		md.HasGPS = true
	}
	if lat, long, err := x.LatLong(); err == nil {
		md.HasGPS, md.Lat, md.Long = true, lat, long
	}
	return md, nil
}

func tagString(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}
