package mocks

import "karukuresize/internal/settings"

type SettingsStoreMock struct {
	LoadFunc func() settings.Record
	SaveFunc func(rec settings.Record) error

	Saved []settings.Record
}

func (m *SettingsStoreMock) Load() settings.Record {
	if m.LoadFunc != nil {
		return m.LoadFunc()
	}
	if n := len(m.Saved); n > 0 {
		return m.Saved[n-1]
	}
	return settings.Defaults()
}

func (m *SettingsStoreMock) Save(rec settings.Record) error {
	if m.SaveFunc != nil {
		if err := m.SaveFunc(rec); err != nil {
			return err
		}
	}
	rec.SchemaVersion = settings.SchemaVersion
	m.Saved = append(m.Saved, rec)
	return nil
}
