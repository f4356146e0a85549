package settings

import (
	"errors"
	"fmt"
	"io/fs"

	"karukuresize/internal/logging"
	"karukuresize/internal/utils"
)

// Store loads and saves a Record at a canonical path.
type Store struct {
	path   string
	legacy []Source
}

// NewStore returns a store for path. legacy is consulted in order only when
// path cannot be read.
func NewStore(path string, legacy ...Source) *Store {
	return &Store{path: path, legacy: legacy}
}

// Path returns the canonical settings file.
func (s *Store) Path() string {
	return s.path
}

// Load returns a complete record. A missing or unreadable canonical file
// falls back to the legacy chain and then to Defaults. A record found in a
// legacy source is written to the canonical path before returning.
func (s *Store) Load() Record {
	rec := Defaults()
	log := logging.Get()

	raw, err := Source{Path: s.path, Parse: ParseFlat}.read()
	if err == nil {
		merge(&rec, raw)
		rec.SchemaVersion = SchemaVersion
		return rec
	}
	if !errors.Is(err, fs.ErrNotExist) {
		log.Warnw("settings: ignoring unreadable settings file", "path", s.path, "err", err)
	}

	for _, src := range s.legacy {
		raw, err := src.read()
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				log.Debugw("settings: skipping legacy source", "path", src.Path, "err", err)
			}
			continue
		}
		merge(&rec, raw)
		rec.SchemaVersion = SchemaVersion
		if err := s.Save(rec); err != nil {
			log.Errorw("settings: migrating legacy settings", "from", src.Path, "to", s.path, "err", err)
		} else {
			log.Infow("settings: migrated legacy settings", "from", src.Path, "to", s.path)
		}
		return rec
	}

	return rec
}

// Save writes rec to the canonical path with the current schema version.
// The previous file stays intact if any step fails.
func (s *Store) Save(rec Record) error {
	rec.SchemaVersion = SchemaVersion
	if rec.RecentProcessingSettings == nil {
		rec.RecentProcessingSettings = []map[string]any{}
	}
	if err := utils.WriteJSONAtomic(s.path, rec); err != nil {
		return fmt.Errorf("settings: save: %w", err)
	}
	return nil
}
