package imageproc

import "bytes"

var exifHeader = []byte("Exif\x00\x00")

// exifSegments returns the raw APP1 Exif segments (marker included) found
// before the first scan of a JPEG stream.
func exifSegments(data []byte) [][]byte {
	if len(data) < 4 || data[0] != 0xFF || data[1] != 0xD8 {
		return nil
	}
	var segs [][]byte
	i := 2
	for i+4 <= len(data) {
		if data[i] != 0xFF {
			return segs
		}
		marker := data[i+1]
		if marker == 0xFF {
			i++
			continue
		}
		if marker == 0xDA || marker == 0xD9 {
			return segs
		}
		length := int(data[i+2])<<8 | int(data[i+3])
		end := i + 2 + length
		if length < 2 || end > len(data) {
			return segs
		}
		if marker == 0xE1 && bytes.HasPrefix(data[i+4:end], exifHeader) {
			segs = append(segs, data[i:end])
		}
		i = end
	}
	return segs
}

// insertSegments places segs right after the SOI marker of out.
func insertSegments(out []byte, segs [][]byte) []byte {
	if len(out) < 2 || len(segs) == 0 {
		return out
	}
	size := len(out)
	for _, s := range segs {
		size += len(s)
	}
	res := make([]byte, 0, size)
	res = append(res, out[:2]...)
	for _, s := range segs {
		res = append(res, s...)
	}
	return append(res, out[2:]...)
}
