package presets

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"karukuresize/internal/logging"
	"karukuresize/internal/utils"
)

// LegacyFileName is the name → options map written by the old preset manager.
const LegacyFileName = "presets.json"

// Store persists user presets. Builtins are merged in on load.
type Store struct {
	path   string
	legacy []string
}

// NewStore returns a store for path. legacy files are migrated, in order,
// only when path does not exist.
func NewStore(path string, legacy ...string) *Store {
	return &Store{path: path, legacy: legacy}
}

type presetsFile struct {
	SchemaVersion int      `json:"schema_version"`
	UserPresets   []Preset `json:"user_presets"`
}

// Load returns the builtin presets followed by the sorted user presets.
func (s *Store) Load() []Preset {
	users, found := s.readUsers()
	if !found {
		users = s.migrateLegacy()
		if len(users) > 0 {
			if err := s.SaveUsers(users); err != nil {
				logging.Get().Errorw("presets: saving migrated presets", "path", s.path, "err", err)
			}
		}
	}
	return append(Builtins(), SortUsers(users)...)
}

// SaveUsers writes every non-builtin preset that has an ID.
func (s *Store) SaveUsers(presets []Preset) error {
	users := make([]Preset, 0, len(presets))
	for _, p := range presets {
		if p.Builtin || p.ID == "" {
			continue
		}
		users = append(users, p)
	}
	payload := presetsFile{SchemaVersion: SchemaVersion, UserPresets: SortUsers(users)}
	if payload.UserPresets == nil {
		payload.UserPresets = []Preset{}
	}
	if err := utils.WriteJSONAtomic(s.path, payload); err != nil {
		return fmt.Errorf("presets: save: %w", err)
	}
	return nil
}

// readUsers reports found=false only when the presets file does not exist.
// A corrupt file yields no user presets.
func (s *Store) readUsers() (users []Preset, found bool) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false
	}
	if err != nil {
		logging.Get().Warnw("presets: reading presets file", "path", s.path, "err", err)
		return nil, true
	}

	var file struct {
		UserPresets []json.RawMessage `json:"user_presets"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		logging.Get().Warnw("presets: ignoring malformed presets file", "path", s.path, "err", err)
		return nil, true
	}
	for _, raw := range file.UserPresets {
		p, ok := decodePreset(raw)
		if !ok || p.ID == "" || p.Name == "" {
			continue
		}
		p.Builtin = false
		users = append(users, p)
	}
	return users, true
}

func decodePreset(raw json.RawMessage) (Preset, bool) {
	var fp struct {
		ID          string          `json:"preset_id"`
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Values      json.RawMessage `json:"values"`
		CreatedAt   string          `json:"created_at"`
		UpdatedAt   string          `json:"updated_at"`
		LastUsedAt  string          `json:"last_used_at"`
	}
	if err := json.Unmarshal(raw, &fp); err != nil {
		return Preset{}, false
	}

	values := DefaultValues()
	if len(fp.Values) > 0 {
		merged := values
		if err := json.Unmarshal(fp.Values, &merged); err == nil {
			values = merged
		}
	}
	now := time.Now().Format(TimeLayout)
	p := Preset{
		ID:          strings.TrimSpace(fp.ID),
		Name:        strings.TrimSpace(fp.Name),
		Description: fp.Description,
		Values:      values,
		CreatedAt:   fp.CreatedAt,
		UpdatedAt:   fp.UpdatedAt,
		LastUsedAt:  fp.LastUsedAt,
	}
	if p.CreatedAt == "" {
		p.CreatedAt = now
	}
	if p.UpdatedAt == "" {
		p.UpdatedAt = now
	}
	return p, true
}

// migrateLegacy converts the first legacy file that yields any preset and
// renames it to <name>.migrated.bak.
func (s *Store) migrateLegacy() []Preset {
	for _, path := range s.legacy {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		entries, err := orderedObject(data)
		if err != nil {
			logging.Get().Debugw("presets: skipping legacy file", "path", path, "err", err)
			continue
		}

		var users []Preset
		var ids []string
		for i, e := range entries {
			var legacy map[string]any
			if err := json.Unmarshal(e.value, &legacy); err != nil || legacy == nil {
				continue
			}
			p := convertLegacy(e.key, legacy, i+1, ids)
			ids = append(ids, p.ID)
			users = append(users, p)
		}
		if len(users) == 0 {
			continue
		}

		backup := path + ".migrated.bak"
		if err := os.Rename(path, backup); err != nil {
			logging.Get().Warnw("presets: keeping legacy file in place", "path", path, "err", err)
		}
		logging.Get().Infow("presets: migrated legacy presets", "from", path, "count", len(users))
		return users
	}
	return nil
}

type objectEntry struct {
	key   string
	value json.RawMessage
}

// orderedObject decodes a JSON object keeping member order.
func orderedObject(data []byte) ([]objectEntry, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("presets: legacy file is not an object")
	}

	var entries []objectEntry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, err
		}
		entries = append(entries, objectEntry{key: key, value: value})
	}
	if _, err := dec.Token(); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return entries, nil
}
