package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"karukuresize/internal/presets"
)

var (
	ErrBuiltinPreset  = errors.New("builtin presets cannot be modified")
	ErrPresetNotFound = errors.New("preset not found")
)

// PresetStore is satisfied by *presets.Store.
type PresetStore interface {
	Load() []presets.Preset
	SaveUsers(users []presets.Preset) error
}

type PresetService interface {
	List() []presets.Preset
	Get(id string) (presets.Preset, error)
	Create(name, description string, values presets.Values) (presets.Preset, error)
	Update(id, name, description string, values presets.Values) (presets.Preset, error)
	Delete(id string) error
	MarkUsed(id string) (presets.Preset, error)
	Startup(ctx context.Context)
}

type presetService struct {
	store   PresetStore
	now     func() time.Time
	context context.Context
}

func NewPresetService(store PresetStore) PresetService {
	return &presetService{store: store, now: time.Now}
}

func (s *presetService) Startup(ctx context.Context) {
	s.context = ctx
}

func (s *presetService) List() []presets.Preset {
	return s.store.Load()
}

func (s *presetService) Get(id string) (presets.Preset, error) {
	all := s.store.Load()
	i := indexOf(all, id)
	if i < 0 {
		return presets.Preset{}, fmt.Errorf("%w: %s", ErrPresetNotFound, id)
	}
	return all[i], nil
}

func (s *presetService) Create(name, description string, values presets.Values) (presets.Preset, error) {
	if strings.TrimSpace(name) == "" {
		return presets.Preset{}, errors.New("preset name is required")
	}
	all := s.store.Load()
	ids := make([]string, len(all))
	for i, p := range all {
		ids[i] = p.ID
	}
	p := presets.NewUserPreset(name, description, values, ids)
	if err := s.store.SaveUsers(append(all, p)); err != nil {
		return presets.Preset{}, fmt.Errorf("service: create preset: %w", err)
	}
	return p, nil
}

func (s *presetService) Update(id, name, description string, values presets.Values) (presets.Preset, error) {
	if strings.TrimSpace(name) == "" {
		return presets.Preset{}, errors.New("preset name is required")
	}
	all, i, err := s.findUser(id)
	if err != nil {
		return presets.Preset{}, err
	}
	all[i].Name = strings.TrimSpace(name)
	all[i].Description = strings.TrimSpace(description)
	all[i].Values = values
	all[i].UpdatedAt = s.now().Format(presets.TimeLayout)
	if err := s.store.SaveUsers(all); err != nil {
		return presets.Preset{}, fmt.Errorf("service: update preset: %w", err)
	}
	return all[i], nil
}

func (s *presetService) Delete(id string) error {
	all, i, err := s.findUser(id)
	if err != nil {
		return err
	}
	if err := s.store.SaveUsers(append(all[:i], all[i+1:]...)); err != nil {
		return fmt.Errorf("service: delete preset: %w", err)
	}
	return nil
}

// MarkUsed stamps last_used_at on a user preset. Builtins are returned
// unchanged since they are never persisted.
func (s *presetService) MarkUsed(id string) (presets.Preset, error) {
	all := s.store.Load()
	i := indexOf(all, id)
	if i < 0 {
		return presets.Preset{}, fmt.Errorf("%w: %s", ErrPresetNotFound, id)
	}
	if all[i].Builtin {
		return all[i], nil
	}
	all[i].LastUsedAt = s.now().Format(presets.TimeLayout)
	if err := s.store.SaveUsers(all); err != nil {
		return presets.Preset{}, fmt.Errorf("service: mark preset used: %w", err)
	}
	return all[i], nil
}

func (s *presetService) findUser(id string) ([]presets.Preset, int, error) {
	all := s.store.Load()
	i := indexOf(all, id)
	if i < 0 {
		return nil, -1, fmt.Errorf("%w: %s", ErrPresetNotFound, id)
	}
	if all[i].Builtin {
		return nil, -1, fmt.Errorf("%w: %s", ErrBuiltinPreset, id)
	}
	return all, i, nil
}

func indexOf(all []presets.Preset, id string) int {
	for i, p := range all {
		if p.ID == id {
			return i
		}
	}
	return -1
}
