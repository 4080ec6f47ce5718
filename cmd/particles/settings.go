package main

import (
	"fmt"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

const (
	settingsObject   = "viewer"
	settingsProperty = "settings"
)

// Settings are the viewer preferences kept between runs.
type Settings struct {
	Width         int    `yaml:"width"`
	Height        int    `yaml:"height"`
	Mobile        bool   `yaml:"mobile"`
	ReducedMotion bool   `yaml:"reduced_motion"`
	Seed          uint64 `yaml:"seed"`
}

// DefaultSettings returns a desktop-sized window with a random seed.
func DefaultSettings() Settings {
	return Settings{Width: 1280, Height: 720}
}

// settingsStore persists Settings through gdata. A nil manager keeps them in
// memory only.
type settingsStore struct {
	m        *gdata.Manager
	settings Settings
}

func newSettingsStore(m *gdata.Manager) (*settingsStore, error) {
	s := &settingsStore{m: m, settings: DefaultSettings()}
	if err := s.Load(); err != nil {
		return s, err
	}
	return s, nil
}

// Load reads the saved settings, keeping defaults when nothing was saved.
func (s *settingsStore) Load() error {
	if s.m == nil || !s.m.ObjectPropExists(settingsObject, settingsProperty) {
		return nil
	}
	data, err := s.m.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	loaded := DefaultSettings()
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("failed to parse settings: %w", err)
	}
	if loaded.Width <= 0 || loaded.Height <= 0 {
		loaded.Width, loaded.Height = DefaultSettings().Width, DefaultSettings().Height
	}
	s.settings = loaded
	return nil
}

// Save writes the current settings.
func (s *settingsStore) Save() error {
	if s.m == nil {
		return nil
	}
	data, err := yaml.Marshal(s.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := s.m.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func (s *settingsStore) Get() Settings { return s.settings }

func (s *settingsStore) Set(v Settings) { s.settings = v }
