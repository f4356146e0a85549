// Package settings persists the GUI settings record.
//
// A Store reads the canonical settings file, falls back to an ordered chain
// of legacy sources, merges what it finds over Defaults and writes the
// result back atomically. Loading never fails; saving reports every error.
package settings

// SchemaVersion is the shape of Record written by this build.
const SchemaVersion = 1

// Record is the flat settings mapping persisted between runs. JSON names are
// the on-disk keys.
type Record struct {
	SchemaVersion int `json:"schema_version"`

	Mode        string `json:"mode"`
	UIMode      string `json:"ui_mode"`
	Appearance  string `json:"appearance_mode"`
	RatioValue  string `json:"ratio_value"`
	WidthValue  string `json:"width_value"`
	HeightValue string `json:"height_value"`

	Quality      string `json:"quality"`
	OutputFormat string `json:"output_format"`
	WebPMethod   string `json:"webp_method"`
	WebPLossless bool   `json:"webp_lossless"`
	AVIFSpeed    string `json:"avif_speed"`
	DryRun       bool   `json:"dry_run"`

	VerboseLogging bool   `json:"verbose_logging"`
	ShowTooltips   bool   `json:"show_tooltips"`
	UIScaleMode    string `json:"ui_scale_mode"`

	ExifMode             string `json:"exif_mode"`
	RemoveGPS            bool   `json:"remove_gps"`
	ExifArtist           string `json:"exif_artist"`
	ExifCopyright        string `json:"exif_copyright"`
	ExifUserComment      string `json:"exif_user_comment"`
	ExifDateTimeOriginal string `json:"exif_datetime_original"`

	DetailsExpanded       bool   `json:"details_expanded"`
	MetadataPanelExpanded bool   `json:"metadata_panel_expanded"`
	WindowGeometry        string `json:"window_geometry"`
	ZoomPreference        string `json:"zoom_preference"`

	LastInputDir     string `json:"last_input_dir"`
	LastOutputDir    string `json:"last_output_dir"`
	DefaultOutputDir string `json:"default_output_dir"`
	DefaultPresetID  string `json:"default_preset_id"`
	ProInputMode     string `json:"pro_input_mode"`

	RecentProcessingSettings []map[string]any `json:"recent_processing_settings"`
}

// Recognized values for the enumerated fields.
const (
	UIModeSimple = "simple"
	UIModePro    = "pro"
)

// OutputFormats lists the accepted output_format values.
var OutputFormats = []string{"auto", "original", "jpeg", "png", "webp", "avif"}

// Defaults returns the settings used when nothing is on disk. Each call
// returns an independent value.
func Defaults() Record {
	return Record{
		SchemaVersion: SchemaVersion,
		Mode:          "ratio",
		UIMode:        UIModeSimple,
		Appearance:    "system",
		RatioValue:    "100",
		Quality:       "85",
		OutputFormat:  "auto",
		WebPMethod:    "6",
		AVIFSpeed:     "6",
		ShowTooltips:  true,
		UIScaleMode:   "normal",
		ExifMode:      "keep",

		WindowGeometry: "1200x800",
		ZoomPreference: "画面に合わせる",
		ProInputMode:   "recursive",

		RecentProcessingSettings: []map[string]any{},
	}
}

// Clone returns a copy of r that shares no mutable state with it.
func (r Record) Clone() Record {
	out := r
	if r.RecentProcessingSettings != nil {
		out.RecentProcessingSettings = make([]map[string]any, len(r.RecentProcessingSettings))
		for i, m := range r.RecentProcessingSettings {
			cp := make(map[string]any, len(m))
			for k, v := range m {
				cp[k] = v
			}
			out.RecentProcessingSettings[i] = cp
		}
	}
	return out
}
