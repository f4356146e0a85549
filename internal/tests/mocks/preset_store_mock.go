package mocks

import "karukuresize/internal/presets"

// PresetStoreMock keeps user presets in memory and serves them after the
// builtins, like the file store.
type PresetStoreMock struct {
	Users         []presets.Preset
	SaveUsersFunc func(users []presets.Preset) error
}

func (m *PresetStoreMock) Load() []presets.Preset {
	users := append([]presets.Preset(nil), m.Users...)
	return append(presets.Builtins(), presets.SortUsers(users)...)
}

func (m *PresetStoreMock) SaveUsers(all []presets.Preset) error {
	if m.SaveUsersFunc != nil {
		if err := m.SaveUsersFunc(all); err != nil {
			return err
		}
	}
	m.Users = nil
	for _, p := range all {
		if !p.Builtin && p.ID != "" {
			m.Users = append(m.Users, p)
		}
	}
	return nil
}
