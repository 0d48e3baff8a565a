package ui

import "github.com/gdamore/tcell/v2"

// Overlay is a full-screen bordered panel. The help screen and the message
// log both render through it: a title, a list of lines, j/k scrolling.
type Overlay struct {
	visible bool
	title   string
	lines   []string
	offset  int

	// rows of content shown by the last Render, for scroll clamping
	pageRows int
}

// NewOverlay creates a hidden overlay.
func NewOverlay() *Overlay {
	return &Overlay{pageRows: 1}
}

// Show displays the overlay with the given title and lines.
func (o *Overlay) Show(title string, lines []string) {
	o.visible = true
	o.title = title
	o.lines = lines
	o.offset = 0
}

// Hide closes the overlay.
func (o *Overlay) Hide() {
	o.visible = false
}

// IsVisible returns whether the overlay is shown.
func (o *Overlay) IsVisible() bool {
	return o.visible
}

// HandleKey scrolls on j/k and the arrow keys and closes on anything else.
func (o *Overlay) HandleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyDown:
		o.scroll(1)
	case tcell.KeyUp:
		o.scroll(-1)
	case tcell.KeyPgDn:
		o.scroll(o.pageRows)
	case tcell.KeyPgUp:
		o.scroll(-o.pageRows)
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'j':
			o.scroll(1)
		case 'k':
			o.scroll(-1)
		default:
			o.Hide()
		}
	default:
		o.Hide()
	}
}

func (o *Overlay) scroll(delta int) {
	o.offset += delta
	max := len(o.lines) - o.pageRows
	if o.offset > max {
		o.offset = max
	}
	if o.offset < 0 {
		o.offset = 0
	}
}

// Render draws the overlay over the whole screen.
func (o *Overlay) Render(screen *Screen) {
	if !o.visible {
		return
	}

	contentStyle := screen.HelpStyle()
	borderStyle := screen.HelpBorderStyle()
	titleStyle := screen.HelpTitleStyle()

	// Cover everything underneath
	for y := 0; y < screen.GetHeight(); y++ {
		for x := 0; x < screen.GetWidth(); x++ {
			screen.SetCell(x, y, ' ', contentStyle)
		}
	}

	startY := 2
	startX := 5
	boxWidth := screen.GetWidth() - 10
	boxHeight := screen.GetHeight() - 4
	if boxWidth < 8 || boxHeight < 5 {
		startX, startY = 0, 0
		boxWidth = screen.GetWidth()
		boxHeight = screen.GetHeight()
	}
	if boxWidth < 4 || boxHeight < 5 {
		return
	}

	o.pageRows = boxHeight - 4
	o.scroll(0)

	// Top border
	screen.SetCell(startX, startY, '┌', borderStyle)
	for i := 1; i < boxWidth-1; i++ {
		screen.SetCell(startX+i, startY, '─', borderStyle)
	}
	screen.SetCell(startX+boxWidth-1, startY, '┐', borderStyle)

	// Title row
	screen.SetCell(startX, startY+1, '│', borderStyle)
	screen.DrawStringLimited(startX+2, startY+1, o.title, boxWidth-4, titleStyle)
	screen.SetCell(startX+boxWidth-1, startY+1, '│', borderStyle)

	// Separator
	screen.SetCell(startX, startY+2, '├', borderStyle)
	for i := 1; i < boxWidth-1; i++ {
		screen.SetCell(startX+i, startY+2, '─', borderStyle)
	}
	screen.SetCell(startX+boxWidth-1, startY+2, '┤', borderStyle)

	// Content
	y := startY + 3
	for row := 0; row < o.pageRows; row++ {
		screen.SetCell(startX, y, '│', borderStyle)
		idx := o.offset + row
		if idx < len(o.lines) {
			screen.DrawStringLimited(startX+2, y, o.lines[idx], boxWidth-4, contentStyle)
		}
		screen.SetCell(startX+boxWidth-1, y, '│', borderStyle)
		y++
	}

	// Bottom border
	screen.SetCell(startX, y, '└', borderStyle)
	for i := 1; i < boxWidth-1; i++ {
		screen.SetCell(startX+i, y, '─', borderStyle)
	}
	screen.SetCell(startX+boxWidth-1, y, '┘', borderStyle)
}
