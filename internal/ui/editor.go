package ui

import (
	"github.com/gdamore/tcell/v2"
)

// LineEditor manages inline editing of a single document line. The caller
// commits the result back into the buffer on Stop.
type LineEditor struct {
	line   int
	text   []rune
	saved  string
	cursor int
	active bool
}

// NewLineEditor creates an inactive LineEditor
func NewLineEditor() *LineEditor {
	return &LineEditor{}
}

// Start begins editing the given line's text with the cursor at the end
func (e *LineEditor) Start(line int, text string) {
	e.line = line
	e.text = []rune(text)
	e.saved = text
	e.cursor = len(e.text)
	e.active = true
}

// Stop ends editing and returns the line and its edited text
func (e *LineEditor) Stop() (int, string) {
	e.active = false
	return e.line, string(e.text)
}

// Cancel ends editing and returns the line with its original text
func (e *LineEditor) Cancel() (int, string) {
	e.active = false
	return e.line, e.saved
}

// Line returns the line being edited
func (e *LineEditor) Line() int {
	return e.line
}

// IsActive returns whether the editor is active
func (e *LineEditor) IsActive() bool {
	return e.active
}

// HandleKey handles a key press during editing. A false return signals the
// caller to leave edit mode; it decides commit or cancel from the key.
func (e *LineEditor) HandleKey(ev *tcell.EventKey) bool {
	if !e.active {
		return false
	}

	switch ev.Key() {
	case tcell.KeyEscape:
		return false // Signal to exit edit mode
	case tcell.KeyEnter:
		return false // Signal to exit edit mode
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if e.cursor > 0 {
			e.text = append(e.text[:e.cursor-1], e.text[e.cursor:]...)
			e.cursor--
		}
	case tcell.KeyDelete:
		if e.cursor < len(e.text) {
			e.text = append(e.text[:e.cursor], e.text[e.cursor+1:]...)
		}
	case tcell.KeyLeft:
		if e.cursor > 0 {
			e.cursor--
		}
	case tcell.KeyRight:
		if e.cursor < len(e.text) {
			e.cursor++
		}
	case tcell.KeyHome, tcell.KeyCtrlA:
		e.cursor = 0
	case tcell.KeyEnd, tcell.KeyCtrlE:
		e.cursor = len(e.text)
	case tcell.KeyCtrlU:
		// Delete from start to cursor
		e.text = append([]rune{}, e.text[e.cursor:]...)
		e.cursor = 0
	case tcell.KeyCtrlK:
		// Delete from cursor to end
		e.text = e.text[:e.cursor]
	case tcell.KeyTab:
		e.insert('\t')
	default:
		// Regular character input, file lines can hold any rune
		if ch := ev.Rune(); ch > 0 {
			e.insert(ch)
		}
	}

	return true
}

func (e *LineEditor) insert(r rune) {
	e.text = append(e.text[:e.cursor], append([]rune{r}, e.text[e.cursor:]...)...)
	e.cursor++
}

// Render renders the editor on the screen, windowed around the cursor for
// lines wider than the available cells
func (e *LineEditor) Render(screen *Screen, x, y int, maxWidth int) {
	style := screen.EditorStyle()
	cursorStyle := screen.EditorCursorStyle()

	start := 0
	if len(e.text) >= maxWidth {
		start = e.cursor - maxWidth/2
		if start+maxWidth > len(e.text)+1 {
			start = len(e.text) + 1 - maxWidth
		}
		if start < 0 {
			start = 0
		}
	}

	col := 0
	for i := start; i < len(e.text) && col < maxWidth; i++ {
		charStyle := style
		if i == e.cursor {
			charStyle = cursorStyle
		}

		r := e.text[i]
		w := RuneWidth(r)
		if r == '\t' {
			// One visible cell per tab while editing
			r, w = ' ', 1
		}
		if w == 0 {
			continue
		}
		if col+w > maxWidth {
			break
		}

		screen.SetCell(x+col, y, r, charStyle)
		col += w
	}

	// Draw cursor at end if needed
	if e.cursor >= len(e.text) && col < maxWidth {
		screen.SetCell(x+col, y, ' ', cursorStyle)
		col++
	}

	// Clear remainder
	for ; col < maxWidth; col++ {
		screen.SetCell(x+col, y, ' ', style)
	}
}

// GetText returns the current text
func (e *LineEditor) GetText() string {
	return string(e.text)
}

// SetText sets the text
func (e *LineEditor) SetText(text string) {
	e.text = []rune(text)
	if e.cursor > len(e.text) {
		e.cursor = len(e.text)
	}
}

// GetCursorPos returns the cursor position in runes
func (e *LineEditor) GetCursorPos() int {
	return e.cursor
}
