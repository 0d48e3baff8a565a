package ui

import (
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/JehleM/compare-plugin/internal/history"
)

// CommandMode manages command line input (`:command`)
type CommandMode struct {
	active  bool
	input   []rune
	cursor  int
	history *History
}

// NewCommandMode creates a new CommandMode without history persistence
func NewCommandMode() *CommandMode {
	return &CommandMode{
		history: NewHistory(50),
	}
}

// NewCommandModeWithHistory creates a new CommandMode with history persistence
func NewCommandModeWithHistory(manager *history.Manager) (*CommandMode, error) {
	h, err := NewHistoryWithManager(50, manager, "command.toml")
	if err != nil {
		// If history loading fails, continue with empty history
		h = NewHistory(50)
	}

	return &CommandMode{
		history: h,
	}, nil
}

// Start enters command mode
func (c *CommandMode) Start() {
	c.active = true
	c.input = nil
	c.cursor = 0
	c.history.Reset()
}

// Stop exits command mode
func (c *CommandMode) Stop() {
	c.active = false
}

// IsActive returns whether command mode is active
func (c *CommandMode) IsActive() bool {
	return c.active
}

// DeleteWordBackwards deletes the word before the cursor
func (c *CommandMode) DeleteWordBackwards() {
	if c.cursor == 0 {
		return
	}

	// Start from cursor position and move backwards
	pos := c.cursor - 1

	// Skip any trailing whitespace
	for pos >= 0 && (c.input[pos] == ' ' || c.input[pos] == '\t') {
		pos--
	}

	// Skip the word characters
	for pos >= 0 && c.input[pos] != ' ' && c.input[pos] != '\t' {
		pos--
	}

	// Delete from pos+1 to cursor
	c.input = append(c.input[:pos+1], c.input[c.cursor:]...)
	c.cursor = pos + 1
}

// setInput replaces the input, placing the cursor at the end.
func (c *CommandMode) setInput(s string) {
	c.input = []rune(s)
	c.cursor = len(c.input)
}

// HandleKey processes a key press in command mode
func (c *CommandMode) HandleKey(ev *tcell.EventKey) (command string, done bool) {
	switch ev.Key() {
	case tcell.KeyCtrlW:
		c.DeleteWordBackwards()
	case tcell.KeyEscape:
		c.Stop()
		return "", true
	case tcell.KeyEnter:
		cmd := c.GetInput()
		c.history.Add(cmd)
		c.Stop()
		return cmd, true
	case tcell.KeyUp:
		// Store current input before navigating history (on first Up press)
		if !c.history.IsNavigating() {
			c.history.SetTemporary(string(c.input))
		}
		// Navigate to previous command in history
		if prevCmd, ok := c.history.Previous(); ok {
			c.setInput(prevCmd)
		}
	case tcell.KeyDown:
		// Navigate to next command in history
		if nextCmd, ok := c.history.Next(); ok {
			c.setInput(nextCmd)
		}
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if c.cursor > 0 {
			c.input = append(c.input[:c.cursor-1], c.input[c.cursor:]...)
			c.cursor--
		} else if len(c.input) == 0 {
			// Exit command mode when backspace is pressed on empty command line
			c.Stop()
			return "", true
		}
	case tcell.KeyDelete:
		if c.cursor < len(c.input) {
			c.input = append(c.input[:c.cursor], c.input[c.cursor+1:]...)
		}
	case tcell.KeyLeft:
		if c.cursor > 0 {
			c.cursor--
		}
	case tcell.KeyRight:
		if c.cursor < len(c.input) {
			c.cursor++
		}
	case tcell.KeyHome:
		c.cursor = 0
	case tcell.KeyEnd:
		c.cursor = len(c.input)
	case tcell.KeyCtrlU:
		c.input = append([]rune{}, c.input[c.cursor:]...)
		c.cursor = 0
	case tcell.KeyCtrlK:
		c.input = c.input[:c.cursor]
	default:
		ch := ev.Rune()
		if ch > 0 { // Accept all valid Unicode characters
			c.input = append(c.input[:c.cursor], append([]rune{ch}, c.input[c.cursor:]...)...)
			c.cursor++
		}
	}

	return "", false
}

// GetInput returns the current command input
func (c *CommandMode) GetInput() string {
	return strings.TrimSpace(string(c.input))
}

// Render renders the command line
func (c *CommandMode) Render(screen *Screen, y int) {
	if !c.active {
		return
	}

	promptStyle := screen.CommandPromptStyle()
	textStyle := screen.CommandTextStyle()
	cursorStyle := screen.CommandCursorStyle()
	screenWidth := screen.GetWidth()

	// Draw colon and input
	x := 0
	screen.SetCell(x, y, ':', promptStyle)
	x++

	// Draw input with cursor
	for i, r := range c.input {
		charStyle := textStyle
		if i == c.cursor {
			charStyle = cursorStyle
		}
		if x >= screenWidth {
			break
		}
		screen.SetCell(x, y, r, charStyle)
		x += RuneWidth(r)
	}

	// Draw cursor at end if needed
	if c.cursor >= len(c.input) && x < screenWidth {
		screen.SetCell(x, y, ' ', cursorStyle)
		x++
	}

	// Clear remainder of line
	for x < screenWidth {
		screen.SetCell(x, y, ' ', textStyle)
		x++
	}
}
