package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSet(t *testing.T) {
	cfg := &Config{
		sessionSettings: make(map[string]string),
	}

	cfg.Set("editor", "vim")
	if cfg.Get("editor") != "vim" {
		t.Errorf("Expected 'vim', got '%s'", cfg.Get("editor"))
	}
}

func TestGet(t *testing.T) {
	cfg := &Config{
		sessionSettings: make(map[string]string),
	}

	// Test getting a value that doesn't exist
	if cfg.Get("nonexistent") != "" {
		t.Errorf("Expected empty string for nonexistent key, got '%s'", cfg.Get("nonexistent"))
	}

	// Set and then get
	cfg.Set("test", "value")
	if cfg.Get("test") != "value" {
		t.Errorf("Expected 'value', got '%s'", cfg.Get("test"))
	}
}

func TestSessionOverridesPersisted(t *testing.T) {
	cfg := &Config{
		Settings:        map[string]string{"editor": "nano"},
		sessionSettings: make(map[string]string),
	}

	if cfg.Get("editor") != "nano" {
		t.Errorf("Expected persisted 'nano', got '%s'", cfg.Get("editor"))
	}

	cfg.Set("editor", "vim")
	if cfg.Get("editor") != "vim" {
		t.Errorf("Session setting should override persisted, got '%s'", cfg.Get("editor"))
	}
}

func TestGetAllReturnsACopy(t *testing.T) {
	cfg := &Config{
		sessionSettings: make(map[string]string),
	}

	cfg.Set("original", "value")

	// Modify the returned map
	all := cfg.GetAll()
	all["original"] = "modified"

	// Verify the original config was not modified
	if cfg.Get("original") != "value" {
		t.Errorf("GetAll() should return a copy, not a reference")
	}
}

func TestNilSessionSettings(t *testing.T) {
	cfg := &Config{}
	// sessionSettings is nil

	// Set should initialize it
	cfg.Set("key", "value")
	if cfg.Get("key") != "value" {
		t.Errorf("Set should initialize nil sessionSettings")
	}

	// Get should handle nil gracefully
	cfg2 := &Config{}
	if cfg2.Get("key") != "" {
		t.Errorf("Get should return empty string for nil sessionSettings")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()
	if cfg.Theme != "classic" {
		t.Errorf("Expected default theme 'classic', got '%s'", cfg.Theme)
	}

	if !cfg.Compare.DetectMoves || !cfg.Compare.CharPrecision || !cfg.Compare.FollowingCaret {
		t.Errorf("Expected move detection, char precision and caret following on by default")
	}
	if cfg.Compare.IgnoreSpaces || cfg.Compare.RecompareOnChange {
		t.Errorf("Expected conservative defaults for the remaining toggles")
	}

	if cfg.sessionSettings == nil {
		t.Errorf("defaultConfig should initialize sessionSettings")
	}
}

func TestLoadFromMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("LoadFromFile on a missing file should not fail: %v", err)
	}
	if cfg.Theme != "classic" {
		t.Errorf("Expected default theme, got '%s'", cfg.Theme)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := defaultConfig()
	cfg.Theme = "dusk"
	cfg.Compare.IgnoreSpaces = true
	cfg.Compare.IgnoreRegex = `^\s*//`
	cfg.Compare.RecompareOnChange = true
	cfg.Settings["editor"] = "vim"

	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if loaded.Theme != "dusk" {
		t.Errorf("Theme = %q, want dusk", loaded.Theme)
	}
	if !loaded.Compare.IgnoreSpaces || !loaded.Compare.RecompareOnChange {
		t.Errorf("Compare toggles did not round-trip: %+v", loaded.Compare)
	}
	if loaded.Compare.IgnoreRegex != `^\s*//` {
		t.Errorf("IgnoreRegex = %q", loaded.Compare.IgnoreRegex)
	}
	if !loaded.Compare.DetectMoves {
		t.Errorf("defaults should survive a round-trip of an explicit file")
	}
	if loaded.Settings["editor"] != "vim" {
		t.Errorf("Settings[editor] = %q, want vim", loaded.Settings["editor"])
	}
}

func TestLoadFromFileParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("theme = [broken"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromFile(path); err == nil {
		t.Error("expected a parse error for malformed TOML")
	}
}
