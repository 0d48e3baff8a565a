package theme

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/pelletier/go-toml/v2"
)

// ThemeConfig represents the raw TOML theme configuration
type ThemeConfig struct {
	Name   string `toml:"name"`
	Colors struct {
		Background      string `toml:"background"`
		Text            string `toml:"text"`
		GutterText      string `toml:"gutter_text"`
		GutterBg        string `toml:"gutter_bg"`
		AddedText       string `toml:"added_text"`
		AddedBg         string `toml:"added_bg"`
		RemovedText     string `toml:"removed_text"`
		RemovedBg       string `toml:"removed_bg"`
		ChangedText     string `toml:"changed_text"`
		ChangedBg       string `toml:"changed_bg"`
		MovedText       string `toml:"moved_text"`
		MovedBg         string `toml:"moved_bg"`
		BlankText       string `toml:"blank_text"`
		BlankBg         string `toml:"blank_bg"`
		HighlightText   string `toml:"highlight_text"`
		HighlightBg     string `toml:"highlight_bg"`
		SelectionText   string `toml:"selection_text"`
		SelectionBg     string `toml:"selection_bg"`
		TempRangeBg     string `toml:"temp_range_bg"`
		ArrowText       string `toml:"arrow_text"`
		CaretLineBg     string `toml:"caret_line_bg"`
		StatusText      string `toml:"status_text"`
		StatusBg        string `toml:"status_bg"`
		StatusWarn      string `toml:"status_warn"`
		HeaderText      string `toml:"header_text"`
		HeaderBg        string `toml:"header_bg"`
		SearchLabel     string `toml:"search_label"`
		SearchText      string `toml:"search_text"`
		SearchCursor    string `toml:"search_cursor"`
		SearchCursorBg  string `toml:"search_cursor_bg"`
		SearchCount     string `toml:"search_count"`
		CommandPrompt   string `toml:"command_prompt"`
		CommandText     string `toml:"command_text"`
		CommandCursor   string `toml:"command_cursor"`
		CommandCursorBg string `toml:"command_cursor_bg"`
		HelpBackground  string `toml:"help_background"`
		HelpBorder      string `toml:"help_border"`
		HelpTitle       string `toml:"help_title"`
		HelpContent     string `toml:"help_content"`
		EditorText      string `toml:"editor_text"`
		EditorCursor    string `toml:"editor_cursor"`
		EditorCursorBg  string `toml:"editor_cursor_bg"`
	} `toml:"colors"`
}

// getThemePaths returns the search paths for theme files
func getThemePaths() []string {
	paths := []string{}

	// User config directory
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "comparetui", "themes"))
	}

	// User local share directory
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".local", "share", "comparetui", "themes"))
	}

	return paths
}

// findThemeFile searches for a theme file in standard locations
func findThemeFile(themeName string) (string, error) {
	filename := themeName + ".toml"

	for _, dir := range getThemePaths() {
		path := filepath.Join(dir, filename)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("theme file not found: %s", filename)
}

// LoadThemeFromFile loads a theme from a TOML file
func LoadThemeFromFile(filePath string) (*Theme, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read theme file: %w", err)
	}

	var config ThemeConfig
	err = toml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse theme file: %w", err)
	}

	return configToTheme(config), nil
}

// LoadTheme loads a theme by name, searching standard theme directories
func LoadTheme(themeName string) (*Theme, error) {
	filePath, err := findThemeFile(themeName)
	if err != nil {
		return nil, err
	}

	return LoadThemeFromFile(filePath)
}

// override replaces dst only when the config supplied a color string
func override(dst *tcell.Color, src string) {
	if src != "" {
		*dst = ParseColorString(src)
	}
}

// configToTheme converts a ThemeConfig to a Theme, with fallback to Classic for missing colors
func configToTheme(config ThemeConfig) *Theme {
	// Start with Classic as base
	theme := Classic()
	c := &theme.Colors

	// Override with config values
	override(&c.Background, config.Colors.Background)
	override(&c.Text, config.Colors.Text)
	override(&c.GutterText, config.Colors.GutterText)
	override(&c.GutterBg, config.Colors.GutterBg)
	override(&c.AddedText, config.Colors.AddedText)
	override(&c.AddedBg, config.Colors.AddedBg)
	override(&c.RemovedText, config.Colors.RemovedText)
	override(&c.RemovedBg, config.Colors.RemovedBg)
	override(&c.ChangedText, config.Colors.ChangedText)
	override(&c.ChangedBg, config.Colors.ChangedBg)
	override(&c.MovedText, config.Colors.MovedText)
	override(&c.MovedBg, config.Colors.MovedBg)
	override(&c.BlankText, config.Colors.BlankText)
	override(&c.BlankBg, config.Colors.BlankBg)
	override(&c.HighlightText, config.Colors.HighlightText)
	override(&c.HighlightBg, config.Colors.HighlightBg)
	override(&c.SelectionText, config.Colors.SelectionText)
	override(&c.SelectionBg, config.Colors.SelectionBg)
	override(&c.TempRangeBg, config.Colors.TempRangeBg)
	override(&c.ArrowText, config.Colors.ArrowText)
	override(&c.CaretLineBg, config.Colors.CaretLineBg)
	override(&c.StatusText, config.Colors.StatusText)
	override(&c.StatusBg, config.Colors.StatusBg)
	override(&c.StatusWarn, config.Colors.StatusWarn)
	override(&c.HeaderText, config.Colors.HeaderText)
	override(&c.HeaderBg, config.Colors.HeaderBg)
	override(&c.SearchLabel, config.Colors.SearchLabel)
	override(&c.SearchText, config.Colors.SearchText)
	override(&c.SearchCursor, config.Colors.SearchCursor)
	override(&c.SearchCursorBg, config.Colors.SearchCursorBg)
	override(&c.SearchCount, config.Colors.SearchCount)
	override(&c.CommandPrompt, config.Colors.CommandPrompt)
	override(&c.CommandText, config.Colors.CommandText)
	override(&c.CommandCursor, config.Colors.CommandCursor)
	override(&c.CommandCursorBg, config.Colors.CommandCursorBg)
	override(&c.HelpBackground, config.Colors.HelpBackground)
	override(&c.HelpBorder, config.Colors.HelpBorder)
	override(&c.HelpTitle, config.Colors.HelpTitle)
	override(&c.HelpContent, config.Colors.HelpContent)
	override(&c.EditorText, config.Colors.EditorText)
	override(&c.EditorCursor, config.Colors.EditorCursor)
	override(&c.EditorCursorBg, config.Colors.EditorCursorBg)

	if config.Name != "" {
		theme.Name = config.Name
	}

	return theme
}

// LoadThemeOrDefault loads a theme by name, or returns Classic if not found
func LoadThemeOrDefault(themeName string) *Theme {
	switch themeName {
	case "default":
		return Default()
	case "classic", "":
		return Classic()
	case "dusk":
		return Dusk()
	}

	theme, err := LoadTheme(themeName)
	if err != nil {
		// Fall back to Classic
		return Classic()
	}

	return theme
}
