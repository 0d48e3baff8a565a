package ui

import (
	"fmt"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/JehleM/compare-plugin/internal/engine"
	"github.com/JehleM/compare-plugin/internal/textview"
)

const tabWidth = 4

// Pane renders one side of the comparison: a header with the file name, a
// gutter with line numbers and marker glyphs, and the document rows with
// blank padding interleaved so both panes stay height-aligned.
type Pane struct {
	buf *textview.Buffer

	x, y          int
	width, height int

	// Per-frame state the application pushes before rendering.
	Focused  bool
	Modified bool
	ReadOnly bool
	Snapshot bool
	Spans    map[int][]engine.Span

	tempFirst, tempLast int
}

// NewPane wraps a buffer for rendering.
func NewPane(buf *textview.Buffer) *Pane {
	return &Pane{buf: buf, tempFirst: -1, tempLast: -1}
}

// Buffer returns the rendered buffer.
func (p *Pane) Buffer() *textview.Buffer { return p.buf }

// SetGeometry positions the pane. The buffer learns its viewport height so
// scrolling and centering work on real row counts.
func (p *Pane) SetGeometry(x, y, width, height int) {
	p.x, p.y = x, y
	p.width, p.height = width, height

	rows := height - 1 // minus the header row
	if rows < 1 {
		rows = 1
	}
	p.buf.SetRowsOnScreen(rows)
}

// SetTempRange highlights the inclusive line range until cleared.
func (p *Pane) SetTempRange(first, last int) {
	p.tempFirst, p.tempLast = first, last
}

// ClearTempRange removes the transient highlight.
func (p *Pane) ClearTempRange() {
	p.tempFirst, p.tempLast = -1, -1
}

// ContentGeometry returns the screen region holding document text: the
// origin of the first text cell and the cells available per row.
func (p *Pane) ContentGeometry() (x, y, width int) {
	g := p.gutterWidth()
	return p.x + g, p.y + 1, p.width - g
}

// gutterWidth returns the cells reserved for line numbers plus the marker
// glyph column.
func (p *Pane) gutterWidth() int {
	digits := len(fmt.Sprintf("%d", p.buf.LineCount()))
	if digits < 3 {
		digits = 3
	}
	return digits + 2
}

// Render draws the pane into its region.
func (p *Pane) Render(s *Screen) {
	if p.width < 8 || p.height < 2 {
		return
	}

	p.renderHeader(s)

	gutter := p.gutterWidth()
	contentX := p.x + gutter
	contentW := p.width - gutter
	first := p.buf.FirstVisibleRow()

	for vr := 0; vr < p.height-1; vr++ {
		p.renderRow(s, first+vr, p.y+1+vr, contentX, contentW, gutter)
	}
}

func (p *Pane) renderHeader(s *Screen) {
	style := s.HeaderStyle()
	if p.Focused {
		style = s.FocusedHeaderStyle()
	}

	name := p.buf.Name()
	switch {
	case p.Snapshot:
		name += " (last save)"
	case p.ReadOnly:
		name += " [ro]"
	case p.Modified:
		name += " [+]"
	}

	text := " " + TruncateToWidthWithEllipsis(name, p.width-2)
	s.DrawString(p.x, p.y, PadStringToWidth(text, p.width), style)
}

func (p *Pane) renderRow(s *Screen, row, y, contentX, contentW, gutter int) {
	// Past the end of the document: plain background
	if row >= p.buf.RowCount() {
		for col := 0; col < p.width; col++ {
			s.SetCell(p.x+col, y, ' ', s.BackgroundStyle())
		}
		return
	}

	line := p.buf.LineFromRow(row)

	// Padding rows carry no number and no text, just the blank tint
	if p.buf.RowFromLine(line) != row {
		for col := 0; col < gutter; col++ {
			s.SetCell(p.x+col, y, ' ', s.GutterStyle())
		}
		for col := 0; col < contentW; col++ {
			s.SetCell(contentX+col, y, ' ', s.BlankStyle())
		}
		return
	}

	marker := p.buf.Marker(line)

	base := s.TextStyle()
	if marker&textview.MaskChanges != 0 {
		base = s.MarkerStyle(marker)
	}

	sel := p.buf.SelectedLineRange()
	switch {
	case p.buf.HasSelection() && line >= sel.First && line <= sel.Last:
		base = s.SelectionStyle()
	case p.tempFirst >= 0 && line >= p.tempFirst && line <= p.tempLast:
		base = s.TempRangeStyle()
	case p.Focused && line == p.buf.CaretLine() && marker&textview.MaskChanges == 0:
		base = s.CaretLineStyle()
	}

	p.renderGutter(s, y, line, marker, gutter)

	var spans []engine.Span
	if marker&textview.MarkerChanged != 0 {
		spans = p.Spans[line]
	}
	p.renderLine(s, y, contentX, contentW, p.buf.Line(line), base, spans)
}

func (p *Pane) renderGutter(s *Screen, y, line int, marker textview.Marker, gutter int) {
	number := fmt.Sprintf("%*d", gutter-2, line+1)
	s.DrawString(p.x, y, number, s.GutterStyle())

	glyph, style := p.glyphFor(marker, s)
	s.SetCell(p.x+gutter-2, y, glyph, style)
	s.SetCell(p.x+gutter-1, y, ' ', s.GutterStyle())
}

// glyphFor picks the gutter symbol for a line's markers. The transient
// arrow outranks the diff classes.
func (p *Pane) glyphFor(marker textview.Marker, s *Screen) (rune, tcell.Style) {
	switch {
	case marker&textview.MarkerArrow != 0:
		return '>', s.ArrowStyle()
	case marker&textview.MarkerChanged != 0:
		return '!', s.MarkerStyle(marker)
	case marker&textview.MarkerAdded != 0:
		return '+', s.MarkerStyle(marker)
	case marker&textview.MarkerRemoved != 0:
		return '-', s.MarkerStyle(marker)
	case marker&textview.MarkerMoved != 0:
		return '^', s.MarkerStyle(marker)
	}
	return ' ', s.GutterStyle()
}

// renderLine draws one document line, expanding tabs and painting the
// changed spans. Span offsets are byte offsets into the line text.
func (p *Pane) renderLine(s *Screen, y, x, width int, text string, base tcell.Style, spans []engine.Span) {
	col := 0
	byteOff := 0

	for _, r := range text {
		if col >= width {
			break
		}

		style := base
		if inSpan(spans, byteOff) {
			style = s.HighlightStyle()
		}

		if r == '\t' {
			next := (col/tabWidth + 1) * tabWidth
			for col < next && col < width {
				s.SetCell(x+col, y, ' ', style)
				col++
			}
			byteOff++
			continue
		}

		w := RuneWidth(r)
		if w == 0 {
			byteOff += utf8.RuneLen(r)
			continue
		}
		if col+w > width {
			break
		}

		s.SetCell(x+col, y, r, style)
		col += w
		byteOff += utf8.RuneLen(r)
	}

	for ; col < width; col++ {
		s.SetCell(x+col, y, ' ', base)
	}
}

func inSpan(spans []engine.Span, off int) bool {
	for _, sp := range spans {
		if off >= sp.Start && off < sp.End {
			return true
		}
	}
	return false
}
