package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/JehleM/compare-plugin/internal/config"
	"github.com/JehleM/compare-plugin/internal/textview"
	"github.com/JehleM/compare-plugin/internal/theme"
)

// Screen manages the tcell screen and rendering
type Screen struct {
	tcellScreen tcell.Screen
	width       int
	height      int
	Theme       *theme.Theme
}

// NewScreen creates a new Screen instance with the configured theme
func NewScreen() (*Screen, error) {
	// Load config to get the theme name
	cfg, err := config.Load()
	if err != nil {
		// If config fails to load, use Classic as fallback
		return NewScreenWithTheme(theme.Classic())
	}

	// Load the theme based on config
	// Try to load from TOML files first, fall back to built-ins
	t := theme.LoadThemeOrDefault(cfg.Theme)
	return NewScreenWithTheme(t)
}

// NewScreenWithTheme creates a new Screen instance with a specific theme
func NewScreenWithTheme(t *theme.Theme) (*Screen, error) {
	tcellScreen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}

	if err := tcellScreen.Init(); err != nil {
		return nil, fmt.Errorf("failed to init screen: %w", err)
	}

	width, height := tcellScreen.Size()
	return &Screen{
		tcellScreen: tcellScreen,
		width:       width,
		height:      height,
		Theme:       t,
	}, nil
}

// Close closes the screen
func (s *Screen) Close() error {
	s.tcellScreen.Fini()
	return nil
}

// Suspend releases terminal control temporarily
func (s *Screen) Suspend() error {
	// Use tcell's built-in Suspend which properly handles the terminal state
	// without breaking the event polling loop
	return s.tcellScreen.Suspend()
}

// Resume restores terminal control after suspension
func (s *Screen) Resume() error {
	return s.tcellScreen.Resume()
}

// Clear clears the entire screen
func (s *Screen) Clear() {
	s.tcellScreen.Clear()
}

// SetCell sets a cell at the given position
func (s *Screen) SetCell(x, y int, r rune, style tcell.Style) {
	if x >= 0 && x < s.width && y >= 0 && y < s.height {
		s.tcellScreen.SetContent(x, y, r, nil, style)
	}
}

// DrawString draws a string at the given position with the given style.
// Wide runes advance the cursor by their display width.
func (s *Screen) DrawString(x, y int, text string, style tcell.Style) {
	col := x
	for _, r := range text {
		s.SetCell(col, y, r, style)
		col += RuneWidth(r)
	}
}

// DrawStringLimited draws a string, truncating it if it exceeds maxWidth cells
func (s *Screen) DrawStringLimited(x, y int, text string, maxWidth int, style tcell.Style) {
	if maxWidth <= 0 {
		return
	}
	s.DrawString(x, y, TruncateToWidth(text, maxWidth), style)
}

// PollEvent polls for the next event (key press, mouse, etc.)
func (s *Screen) PollEvent() tcell.Event {
	return s.tcellScreen.PollEvent()
}

// Show shows the screen
func (s *Screen) Show() {
	s.tcellScreen.Show()
}

// Sync forces a full repaint, needed after a terminal resize
func (s *Screen) Sync() {
	s.tcellScreen.Sync()
}

// Size returns the width and height of the screen
func (s *Screen) Size() (int, int) {
	w, h := s.tcellScreen.Size()
	s.width = w
	s.height = h
	return w, h
}

// GetWidth returns the width of the screen
func (s *Screen) GetWidth() int {
	s.width, _ = s.tcellScreen.Size()
	return s.width
}

// GetHeight returns the height of the screen
func (s *Screen) GetHeight() int {
	_, s.height = s.tcellScreen.Size()
	return s.height
}

// HasMouse returns true if mouse is supported
func (s *Screen) HasMouse() bool {
	return s.tcellScreen.HasMouse()
}

// EnableMouse enables mouse support on the screen
func (s *Screen) EnableMouse() {
	s.tcellScreen.EnableMouse()
}

// DefaultStyle returns the default terminal style
func DefaultStyle() tcell.Style {
	return tcell.StyleDefault
}

// StyleBold returns a bold style
func StyleBold() tcell.Style {
	return tcell.StyleDefault.Bold(true)
}

// StyleReverse returns a reverse video style
func StyleReverse() tcell.Style {
	return tcell.StyleDefault.Reverse(true)
}

// StyleDim returns a dim style
func StyleDim() tcell.Style {
	return tcell.StyleDefault.Dim(true)
}

// Theme-aware style methods

// TextStyle returns the style for unmarked document text
func (s *Screen) TextStyle() tcell.Style {
	return theme.ColorPairToStyle(s.Theme.Colors.Text, s.Theme.Colors.Background)
}

// GutterStyle returns the style for line numbers and marker glyphs
func (s *Screen) GutterStyle() tcell.Style {
	return theme.ColorPairToStyle(s.Theme.Colors.GutterText, s.Theme.Colors.GutterBg)
}

// MarkerStyle returns the style for a line carrying diff markers. Changed
// wins over the block classes when a line carries several.
func (s *Screen) MarkerStyle(m textview.Marker) tcell.Style {
	c := s.Theme.Colors
	switch {
	case m&textview.MarkerChanged != 0:
		return theme.ColorPairToStyle(c.ChangedText, c.ChangedBg)
	case m&textview.MarkerAdded != 0:
		return theme.ColorPairToStyle(c.AddedText, c.AddedBg)
	case m&textview.MarkerRemoved != 0:
		return theme.ColorPairToStyle(c.RemovedText, c.RemovedBg)
	case m&textview.MarkerMoved != 0:
		return theme.ColorPairToStyle(c.MovedText, c.MovedBg)
	}
	return s.TextStyle()
}

// BlankStyle returns the style for alignment padding rows
func (s *Screen) BlankStyle() tcell.Style {
	return theme.ColorPairToStyle(s.Theme.Colors.BlankText, s.Theme.Colors.BlankBg)
}

// HighlightStyle returns the style for changed ranges within a changed line
func (s *Screen) HighlightStyle() tcell.Style {
	return theme.ColorPairToStyle(s.Theme.Colors.HighlightText, s.Theme.Colors.HighlightBg)
}

// SelectionStyle returns the style for selected lines
func (s *Screen) SelectionStyle() tcell.Style {
	return theme.ColorPairToStyle(s.Theme.Colors.SelectionText, s.Theme.Colors.SelectionBg)
}

// TempRangeStyle returns the style for the transient block highlight
func (s *Screen) TempRangeStyle() tcell.Style {
	return theme.ColorPairToStyle(s.Theme.Colors.Text, s.Theme.Colors.TempRangeBg)
}

// ArrowStyle returns the style for the transient position arrow
func (s *Screen) ArrowStyle() tcell.Style {
	return theme.ColorPairToStyle(s.Theme.Colors.ArrowText, s.Theme.Colors.GutterBg).Bold(true)
}

// CaretLineStyle returns the background wash for the caret's line
func (s *Screen) CaretLineStyle() tcell.Style {
	return theme.ColorPairToStyle(s.Theme.Colors.Text, s.Theme.Colors.CaretLineBg)
}

// StatusStyle returns the style for the status line
func (s *Screen) StatusStyle() tcell.Style {
	return theme.ColorPairToStyle(s.Theme.Colors.StatusText, s.Theme.Colors.StatusBg)
}

// StatusWarnStyle returns the style for dirty and error status messages
func (s *Screen) StatusWarnStyle() tcell.Style {
	return theme.ColorPairToStyle(s.Theme.Colors.StatusWarn, s.Theme.Colors.StatusBg).Bold(true)
}

// HeaderStyle returns the style for the file name header
func (s *Screen) HeaderStyle() tcell.Style {
	return theme.ColorPairToStyle(s.Theme.Colors.HeaderText, s.Theme.Colors.HeaderBg).Bold(true)
}

// FocusedHeaderStyle returns the header style for the focused view
func (s *Screen) FocusedHeaderStyle() tcell.Style {
	return s.HeaderStyle().Reverse(true)
}

// EditorStyle returns the style for editor text
func (s *Screen) EditorStyle() tcell.Style {
	return theme.ColorPairToStyle(s.Theme.Colors.EditorText, s.Theme.Colors.Background)
}

// EditorCursorStyle returns the style for editor cursor
func (s *Screen) EditorCursorStyle() tcell.Style {
	return theme.ColorPairToStyle(s.Theme.Colors.EditorCursor, s.Theme.Colors.EditorCursorBg)
}

// SearchLabelStyle returns the style for search label
func (s *Screen) SearchLabelStyle() tcell.Style {
	return theme.ColorToStyle(s.Theme.Colors.SearchLabel)
}

// SearchTextStyle returns the style for search text
func (s *Screen) SearchTextStyle() tcell.Style {
	return theme.ColorToStyle(s.Theme.Colors.SearchText)
}

// SearchCursorStyle returns the style for search cursor
func (s *Screen) SearchCursorStyle() tcell.Style {
	return theme.ColorPairToStyle(s.Theme.Colors.SearchCursor, s.Theme.Colors.SearchCursorBg)
}

// SearchCountStyle returns the style for the match count
func (s *Screen) SearchCountStyle() tcell.Style {
	return theme.ColorToStyle(s.Theme.Colors.SearchCount)
}

// CommandPromptStyle returns the style for command prompt
func (s *Screen) CommandPromptStyle() tcell.Style {
	return theme.ColorToStyle(s.Theme.Colors.CommandPrompt)
}

// CommandTextStyle returns the style for command text
func (s *Screen) CommandTextStyle() tcell.Style {
	return theme.ColorToStyle(s.Theme.Colors.CommandText)
}

// CommandCursorStyle returns the style for command cursor
func (s *Screen) CommandCursorStyle() tcell.Style {
	return theme.ColorPairToStyle(s.Theme.Colors.CommandCursor, s.Theme.Colors.CommandCursorBg)
}

// HelpStyle returns the style for help background
func (s *Screen) HelpStyle() tcell.Style {
	return theme.ColorPairToStyle(s.Theme.Colors.HelpContent, s.Theme.Colors.HelpBackground)
}

// HelpBorderStyle returns the style for help borders
func (s *Screen) HelpBorderStyle() tcell.Style {
	return theme.ColorPairToStyle(s.Theme.Colors.HelpBorder, s.Theme.Colors.HelpBackground)
}

// HelpTitleStyle returns the style for help title
func (s *Screen) HelpTitleStyle() tcell.Style {
	return theme.ColorPairToStyle(s.Theme.Colors.HelpTitle, s.Theme.Colors.HelpBackground).Bold(true)
}

// BackgroundStyle returns the default background style for the application
func (s *Screen) BackgroundStyle() tcell.Style {
	return tcell.StyleDefault.Background(s.Theme.Colors.Background)
}
