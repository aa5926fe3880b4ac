package ui

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"ratemyrecipe/internal/model"
)

// PrefsFileName is the preferences file inside the config dir.
const PrefsFileName = "ui_prefs.json"

// TablePrefs stores per-table UI preferences.
type TablePrefs struct {
	HiddenColumns []string `json:"hidden_columns"`
	ActiveColumn  string   `json:"active_column"`
}

// UIPreferences stores persisted app preferences.
type UIPreferences struct {
	Recipes       TablePrefs     `json:"recipes"`
	Category      model.Category `json:"category"`
	FavoritesOnly bool           `json:"favorites_only"`
}

func defaultUIPreferences() UIPreferences {
	return UIPreferences{Category: model.CategoryAll}
}

// loadUIPreferences reads prefs from dir. A missing or unreadable file yields
// the defaults.
func loadUIPreferences(dir string) UIPreferences {
	if dir == "" {
		return defaultUIPreferences()
	}
	data, err := os.ReadFile(filepath.Join(dir, PrefsFileName))
	if err != nil {
		return defaultUIPreferences()
	}

	prefs := defaultUIPreferences()
	if err := json.Unmarshal(data, &prefs); err != nil {
		return defaultUIPreferences()
	}
	if !prefs.Category.Valid() {
		prefs.Category = model.CategoryAll
	}
	return prefs
}

func saveUIPreferences(dir string, prefs UIPreferences) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create prefs dir: %w", err)
	}

	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal prefs: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, PrefsFileName), data, 0o644); err != nil {
		return fmt.Errorf("failed to write prefs: %w", err)
	}
	return nil
}
