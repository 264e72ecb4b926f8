package config

import "fmt"

// SettingsStore is the persistence the config is loaded from and saved to.
// *store.SettingsRepository satisfies it.
type SettingsStore interface {
	All() (map[string]string, error)
	SetAll(values map[string]string) error
}

// Load overlays the stored settings onto c and validates the result.
// Keys this version does not know are skipped.
func Load(s SettingsStore, c *Config) error {
	stored, err := s.All()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	known := make(map[string]string, len(stored))
	defaults := c.Values()
	for k, v := range stored {
		if _, ok := defaults[k]; ok {
			known[k] = v
		}
	}

	if err := c.Apply(known); err != nil {
		return err
	}
	return c.Validate()
}

// Save validates c and writes every persisted setting.
func Save(s SettingsStore, c Config) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := s.SetAll(c.Values()); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
