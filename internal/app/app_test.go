package app

import (
	"testing"

	"github.com/JehleM/compare-plugin/internal/config"
	"github.com/JehleM/compare-plugin/internal/sched"
	"github.com/JehleM/compare-plugin/internal/session"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "simple command",
			input:    "compare",
			expected: []string{"compare"},
		},
		{
			name:     "command with arguments",
			input:    "export report.txt",
			expected: []string{"export", "report.txt"},
		},
		{
			name:     "double quoted string",
			input:    `export "diff report.txt"`,
			expected: []string{"export", "diff report.txt"},
		},
		{
			name:     "single quoted string",
			input:    "export 'diff report.txt'",
			expected: []string{"export", "diff report.txt"},
		},
		{
			name:     "mixed quotes",
			input:    `set editor "code --wait" now`,
			expected: []string{"set", "editor", "code --wait", "now"},
		},
		{
			name:     "escaped quotes",
			input:    `set ignore_regex "say \"hi\""`,
			expected: []string{"set", "ignore_regex", `say "hi"`},
		},
		{
			name:     "escaped backslash",
			input:    `export "C:\\Users\\diff.txt"`,
			expected: []string{"export", `C:\Users\diff.txt`},
		},
		{
			name:     "multiple spaces",
			input:    "set    wrap_around    on",
			expected: []string{"set", "wrap_around", "on"},
		},
		{
			name:     "tabs and spaces",
			input:    "set\twrap_around\t  on",
			expected: []string{"set", "wrap_around", "on"},
		},
		{
			name:     "empty quoted string",
			input:    `set ignore_regex ""`,
			expected: []string{"set", "ignore_regex", ""},
		},
		{
			name:     "quoted string with special characters",
			input:    `set ignore_regex "^(TODO|FIXME):\s+.*$"`,
			expected: []string{"set", "ignore_regex", `^(TODO|FIXME):\s+.*$`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseCommand(tt.input)
			if len(result) != len(tt.expected) {
				t.Errorf("Expected %d parts, got %d. Input: %q", len(tt.expected), len(result), tt.input)
				return
			}
			for i, part := range result {
				if part != tt.expected[i] {
					t.Errorf("Part %d: expected %q, got %q. Input: %q", i, tt.expected[i], part, tt.input)
				}
			}
		})
	}
}

func TestParseToggle(t *testing.T) {
	tests := []struct {
		value   string
		current bool
		want    bool
		wantErr bool
	}{
		{"", false, true, false},
		{"", true, false, false},
		{"on", false, true, false},
		{"true", false, true, false},
		{"1", false, true, false},
		{"yes", false, true, false},
		{"off", true, false, false},
		{"false", true, false, false},
		{"0", true, false, false},
		{"no", true, false, false},
		{"ON", false, true, false},
		{"maybe", false, false, true},
	}

	for _, tt := range tests {
		got, err := parseToggle(tt.value, tt.current)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseToggle(%q, %v): expected error", tt.value, tt.current)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseToggle(%q, %v): %v", tt.value, tt.current, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseToggle(%q, %v) = %v, want %v", tt.value, tt.current, got, tt.want)
		}
	}
}

// newSettingsApp builds an app with just enough wiring to change settings.
func newSettingsApp() *App {
	sch := sched.NewScheduler(nil)
	return &App{
		config:  config.Default(),
		sch:     sch,
		manager: session.NewManager(sch, session.DefaultSettings()),
	}
}

func TestApplySettingToggles(t *testing.T) {
	a := newSettingsApp()
	settings := a.manager.Settings()

	if settings.Engine.IgnoreCase {
		t.Fatal("ignore_case should start off")
	}

	msg, err := a.applySetting("ignore_case", "")
	if err != nil {
		t.Fatalf("toggle ignore_case: %v", err)
	}
	if msg != "ignore_case on" {
		t.Errorf("Expected 'ignore_case on', got %q", msg)
	}
	if !settings.Engine.IgnoreCase {
		t.Error("ignore_case should be on after toggle")
	}

	msg, err = a.applySetting("ignore_case", "off")
	if err != nil {
		t.Fatalf("set ignore_case off: %v", err)
	}
	if msg != "ignore_case off" {
		t.Errorf("Expected 'ignore_case off', got %q", msg)
	}
	if settings.Engine.IgnoreCase {
		t.Error("ignore_case should be off again")
	}
}

func TestApplySettingRegex(t *testing.T) {
	a := newSettingsApp()
	settings := a.manager.Settings()

	if _, err := a.applySetting("ignore_regex", `^\s*#`); err != nil {
		t.Fatalf("set ignore_regex: %v", err)
	}
	if settings.Engine.IgnoreRegex == nil {
		t.Fatal("ignore_regex should be set")
	}
	if !settings.Engine.IgnoreRegex.MatchString("  # comment") {
		t.Error("pattern should match a comment line")
	}

	if _, err := a.applySetting("ignore_regex", "["); err == nil {
		t.Error("expected an error for a bad pattern")
	}
	if settings.Engine.IgnoreRegex == nil {
		t.Error("a bad pattern must not clear the previous one")
	}

	if _, err := a.applySetting("ignore_regex", "off"); err != nil {
		t.Fatalf("clear ignore_regex: %v", err)
	}
	if settings.Engine.IgnoreRegex != nil {
		t.Error("ignore_regex should be cleared")
	}
}

func TestApplySettingStatusType(t *testing.T) {
	a := newSettingsApp()
	settings := a.manager.Settings()

	if _, err := a.applySetting("status_type", "options"); err != nil {
		t.Fatalf("set status_type: %v", err)
	}
	if settings.StatusType != session.StatusOptions {
		t.Error("status_type should be options")
	}

	if _, err := a.applySetting("status_type", "summary"); err != nil {
		t.Fatalf("set status_type: %v", err)
	}
	if settings.StatusType != session.StatusSummary {
		t.Error("status_type should be summary")
	}

	if _, err := a.applySetting("status_type", "verbose"); err == nil {
		t.Error("expected an error for an unknown status_type")
	}
}

func TestApplySettingRejectsUnknownName(t *testing.T) {
	a := newSettingsApp()
	if _, err := a.applySetting("word_wrap", "on"); err == nil {
		t.Error("expected an error for an unknown setting")
	}
}

func TestEverySettingNameApplies(t *testing.T) {
	a := newSettingsApp()
	for _, name := range settingNames {
		value := ""
		if name == "status_type" {
			value = "summary"
		}
		if _, err := a.applySetting(name, value); err != nil {
			t.Errorf("applySetting(%q, %q): %v", name, value, err)
		}
	}
}
