package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Parser turns a file body into a flat map keyed by settings keys.
type Parser func(data []byte) (map[string]json.RawMessage, error)

// Source is one location to read settings from, paired with the parser for
// the shape that location was written in.
type Source struct {
	Path  string
	Parse Parser
}

// Legacy file names written by earlier releases.
const (
	LegacyFlatFileName   = "karuku_settings.json"
	LegacyNestedFileName = "karukuresize_settings.json"
)

var errNotObject = errors.New("settings: top-level JSON value is not an object")

// ParseFlat reads the current flat shape, which is also what the first GUI
// release wrote to karuku_settings.json.
func ParseFlat(data []byte) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errNotObject
	}
	return obj, nil
}

type nestedFile struct {
	Resize *struct {
		Mode             string `json:"mode"`
		Value            *int   `json:"value"`
		Width            *int   `json:"width"`
		Height           *int   `json:"height"`
		Quality          *int   `json:"quality"`
		Format           string `json:"format"`
		WebPLossless     *bool  `json:"webp_lossless"`
		PreserveMetadata *bool  `json:"preserve_metadata"`
	} `json:"resize"`
	UI *struct {
		Theme        string `json:"theme"`
		WindowWidth  int    `json:"window_width"`
		WindowHeight int    `json:"window_height"`
		ShowPreview  *bool  `json:"show_preview"`
	} `json:"ui"`
	Recent *struct {
		InputFiles        []string `json:"input_files"`
		OutputDirectories []string `json:"output_directories"`
	} `json:"recent"`
}

// ParseNested converts the sectioned resize/ui/recent file written by the
// pre-GUI settings manager into flat keys.
func ParseNested(data []byte) (map[string]json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errNotObject
	}
	var nf nestedFile
	if err := json.Unmarshal(data, &nf); err != nil {
		return nil, fmt.Errorf("settings: nested legacy file: %w", err)
	}
	if nf.Resize == nil && nf.UI == nil && nf.Recent == nil {
		return nil, errors.New("settings: no resize, ui or recent section")
	}

	flat := map[string]any{}
	if r := nf.Resize; r != nil {
		switch strings.ToLower(r.Mode) {
		case "percentage":
			flat["mode"] = "ratio"
			if r.Value != nil {
				flat["ratio_value"] = strconv.Itoa(max(1, *r.Value))
			}
		case "width_height":
			flat["mode"] = "fixed"
			if r.Width != nil {
				flat["width_value"] = strconv.Itoa(max(1, *r.Width))
			}
			if r.Height != nil {
				flat["height_value"] = strconv.Itoa(max(1, *r.Height))
			}
		case "longest_side", "width":
			flat["mode"] = "width"
			if r.Value != nil {
				flat["width_value"] = strconv.Itoa(max(1, *r.Value))
			}
		case "height":
			flat["mode"] = "height"
			if r.Value != nil {
				flat["height_value"] = strconv.Itoa(max(1, *r.Value))
			}
		}
		if r.Quality != nil {
			flat["quality"] = strconv.Itoa(min(100, max(1, *r.Quality)))
		}
		switch f := strings.ToLower(r.Format); f {
		case "jpeg", "png", "webp", "avif":
			flat["output_format"] = f
		case "jpg":
			flat["output_format"] = "jpeg"
		case "":
		default:
			flat["output_format"] = "auto"
		}
		if r.WebPLossless != nil {
			flat["webp_lossless"] = *r.WebPLossless
		}
		if r.PreserveMetadata != nil {
			if *r.PreserveMetadata {
				flat["exif_mode"] = "keep"
			} else {
				flat["exif_mode"] = "remove"
			}
		}
	}
	if u := nf.UI; u != nil {
		switch u.Theme {
		case "light", "dark", "system":
			flat["appearance_mode"] = u.Theme
		}
		if u.WindowWidth > 0 && u.WindowHeight > 0 {
			flat["window_geometry"] = fmt.Sprintf("%dx%d", u.WindowWidth, u.WindowHeight)
		}
	}
	if rc := nf.Recent; rc != nil {
		if len(rc.InputFiles) > 0 && rc.InputFiles[0] != "" {
			flat["last_input_dir"] = filepath.Dir(rc.InputFiles[0])
		}
		if len(rc.OutputDirectories) > 0 {
			flat["last_output_dir"] = rc.OutputDirectories[0]
		}
	}

	out := make(map[string]json.RawMessage, len(flat))
	for k, v := range flat {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out[k] = b
	}
	return out, nil
}

// DefaultLegacySources lists the locations older releases wrote settings to,
// newest first: the flat file in workDir, then the sectioned file in
// configDir.
func DefaultLegacySources(workDir, configDir string) []Source {
	return []Source{
		{Path: filepath.Join(workDir, LegacyFlatFileName), Parse: ParseFlat},
		{Path: filepath.Join(configDir, LegacyNestedFileName), Parse: ParseNested},
	}
}

func (s Source) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, err
	}
	parse := s.Parse
	if parse == nil {
		parse = ParseFlat
	}
	return parse(data)
}
