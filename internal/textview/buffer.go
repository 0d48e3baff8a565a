package textview

import (
	"sort"
	"strings"
)

// Buffer is the in-memory View implementation used by the application. It
// keeps the document as a slice of lines, mirrors the editor behaviors the
// compare bookkeeping depends on (markers merging into the following line on
// delete, action-tagged undo/redo replay, before-delete notification), and
// tracks the viewport.
//
// A Buffer always holds at least one line; the empty document is one empty
// line.
type Buffer struct {
	side Side
	name string

	lines       []string
	markers     []Marker
	annotations []int
	hidden      []bool

	firstRow   int
	screenRows int

	selAnchor int
	selCaret  int

	undoStack  []undoGroup
	redoStack  []undoGroup
	pending    undoGroup
	groupDepth int
	replaying  bool

	onEdit func(EditEvent)

	lineStarts []int // byte offset of each line start, nil when stale
	rowStarts  []int // screen row of each line plus a total, nil when stale
}

type editOp struct {
	insert bool
	pos    int
	text   string
}

type undoGroup []editOp

// NewBuffer returns a Buffer for the given side holding text. Line endings
// in text must already be normalized to "\n".
func NewBuffer(side Side, name, text string) *Buffer {
	b := &Buffer{side: side, name: name, screenRows: 25}
	b.setLines(strings.Split(text, "\n"))
	return b
}

func (b *Buffer) setLines(lines []string) {
	if len(lines) == 0 {
		lines = []string{""}
	}
	b.lines = lines
	b.markers = make([]Marker, len(lines))
	b.annotations = make([]int, len(lines))
	b.hidden = make([]bool, len(lines))
	b.invalidate()
}

// SetText replaces the whole document, clearing markers, annotations and
// history. No edit notifications fire; callers re-compare afterwards.
func (b *Buffer) SetText(text string) {
	b.setLines(strings.Split(text, "\n"))
	b.undoStack = nil
	b.redoStack = nil
	b.pending = nil
	b.groupDepth = 0
	b.selAnchor = 0
	b.selCaret = 0
	b.firstRow = 0
}

// SetEditFunc registers the single edit notification handler.
func (b *Buffer) SetEditFunc(f func(EditEvent)) { b.onEdit = f }

func (b *Buffer) emit(ev EditEvent) {
	if b.onEdit != nil {
		ev.Side = b.side
		b.onEdit(ev)
	}
}

func (b *Buffer) Side() Side   { return b.side }
func (b *Buffer) Name() string { return b.name }

func (b *Buffer) invalidate() {
	b.lineStarts = nil
	b.rowStarts = nil
}

func (b *Buffer) ensureLineStarts() {
	if b.lineStarts != nil {
		return
	}
	b.lineStarts = make([]int, len(b.lines))
	acc := 0
	for i, l := range b.lines {
		b.lineStarts[i] = acc
		acc += len(l) + 1
	}
}

func (b *Buffer) ensureRows() {
	if b.rowStarts != nil {
		return
	}
	b.rowStarts = make([]int, len(b.lines)+1)
	acc := 0
	for i := range b.lines {
		b.rowStarts[i] = acc
		if !b.hidden[i] {
			acc += 1 + b.annotations[i]
		}
	}
	b.rowStarts[len(b.lines)] = acc
}

func (b *Buffer) clampLine(line int) int {
	if line < 0 {
		return 0
	}
	if line >= len(b.lines) {
		return len(b.lines) - 1
	}
	return line
}

func (b *Buffer) clampPos(pos int) int {
	if pos < 0 {
		return 0
	}
	if l := b.Length(); pos > l {
		return l
	}
	return pos
}

// LineCount returns the number of document lines.
func (b *Buffer) LineCount() int { return len(b.lines) }

// Line returns the text of the given line, "" when out of range.
func (b *Buffer) Line(line int) string {
	if line < 0 || line >= len(b.lines) {
		return ""
	}
	return b.lines[line]
}

// Length returns the document length in bytes, with lines joined by "\n".
func (b *Buffer) Length() int {
	b.ensureLineStarts()
	last := len(b.lines) - 1
	return b.lineStarts[last] + len(b.lines[last])
}

// Text returns the whole document.
func (b *Buffer) Text() string { return strings.Join(b.lines, "\n") }

// LineStart returns the position of the first byte of line.
func (b *Buffer) LineStart(line int) int {
	b.ensureLineStarts()
	return b.lineStarts[b.clampLine(line)]
}

// LineEnd returns the position just past the last byte of line, excluding
// the line break.
func (b *Buffer) LineEnd(line int) int {
	line = b.clampLine(line)
	return b.LineStart(line) + len(b.lines[line])
}

// LineFromPosition returns the line containing pos; the line break belongs
// to the line it terminates.
func (b *Buffer) LineFromPosition(pos int) int {
	b.ensureLineStarts()
	pos = b.clampPos(pos)
	i := sort.Search(len(b.lineStarts), func(i int) bool { return b.lineStarts[i] > pos })
	return i - 1
}

// TextRange returns the document text between two positions.
func (b *Buffer) TextRange(startPos, endPos int) string {
	startPos = b.clampPos(startPos)
	endPos = b.clampPos(endPos)
	if endPos <= startPos {
		return ""
	}
	return b.Text()[startPos:endPos]
}

// Insert splices text in at pos and returns the number of lines added. The
// EditInsert notification fires after the splice.
func (b *Buffer) Insert(pos int, text string, action Action) int {
	if text == "" {
		return 0
	}
	pos = b.clampPos(pos)

	line := b.LineFromPosition(pos)
	col := pos - b.LineStart(line)
	head := b.lines[line][:col]
	tail := b.lines[line][col:]

	segs := strings.Split(text, "\n")
	added := len(segs) - 1

	if added == 0 {
		b.lines[line] = head + text + tail
	} else {
		newLines := make([]string, 0, len(b.lines)+added)
		newLines = append(newLines, b.lines[:line]...)
		newLines = append(newLines, head+segs[0])
		newLines = append(newLines, segs[1:len(segs)-1]...)
		newLines = append(newLines, segs[len(segs)-1]+tail)
		newLines = append(newLines, b.lines[line+1:]...)
		b.lines = newLines

		// An insert at a line start pushes that line down whole, and its
		// marker, padding and fold state travel with it. A mid-line insert
		// keeps them on the first half of the split.
		after := line
		if col == 0 {
			after = line - 1
		}
		b.markers = spliceMarkers(b.markers, after, added)
		b.annotations = spliceInts(b.annotations, after, added)
		b.hidden = spliceBools(b.hidden, after, added)
		b.hidden[0] = false
	}

	if b.selAnchor >= pos {
		b.selAnchor += len(text)
	}
	if b.selCaret >= pos {
		b.selCaret += len(text)
	}

	b.invalidate()
	b.record(editOp{insert: true, pos: pos, text: text})
	b.emit(EditEvent{Kind: EditInsert, Pos: pos, LinesDelta: added, Action: action})
	return added
}

// Delete removes the range [startPos, endPos) and returns the number of
// lines removed. EditBeforeDelete fires while the text is still present,
// EditDelete after it is gone. Markers of removed lines merge into the line
// the range collapses onto, matching editor behavior; the change tracker
// relies on this when it reconciles the boundary marker on undo.
func (b *Buffer) Delete(startPos, endPos int, action Action) int {
	startPos = b.clampPos(startPos)
	endPos = b.clampPos(endPos)
	if endPos <= startPos {
		return 0
	}

	b.emit(EditEvent{Kind: EditBeforeDelete, Pos: startPos, EndPos: endPos, Action: action})

	removedText := b.TextRange(startPos, endPos)

	startLine := b.LineFromPosition(startPos)
	endLine := b.LineFromPosition(endPos)
	removed := endLine - startLine

	head := b.lines[startLine][:startPos-b.LineStart(startLine)]
	tail := b.lines[endLine][endPos-b.LineStart(endLine):]

	merged := b.markers[startLine]
	for i := startLine + 1; i <= endLine; i++ {
		merged |= b.markers[i]
	}

	newLines := make([]string, 0, len(b.lines)-removed)
	newLines = append(newLines, b.lines[:startLine]...)
	newLines = append(newLines, head+tail)
	newLines = append(newLines, b.lines[endLine+1:]...)
	b.lines = newLines

	b.markers = append(b.markers[:startLine], b.markers[endLine:]...)
	b.markers[startLine] = merged
	b.annotations = append(b.annotations[:startLine], b.annotations[endLine:]...)
	b.hidden = append(b.hidden[:startLine], b.hidden[endLine:]...)
	b.hidden[0] = false

	b.selAnchor = adjustPos(b.selAnchor, startPos, endPos)
	b.selCaret = adjustPos(b.selCaret, startPos, endPos)

	b.invalidate()
	b.record(editOp{insert: false, pos: startPos, text: removedText})
	b.emit(EditEvent{Kind: EditDelete, Pos: startPos, LinesDelta: -removed, Action: action})
	return removed
}

func adjustPos(pos, start, end int) int {
	if pos <= start {
		return pos
	}
	if pos <= end {
		return start
	}
	return pos - (end - start)
}

func spliceMarkers(s []Marker, after, n int) []Marker {
	out := make([]Marker, 0, len(s)+n)
	out = append(out, s[:after+1]...)
	out = append(out, make([]Marker, n)...)
	return append(out, s[after+1:]...)
}

func spliceInts(s []int, after, n int) []int {
	out := make([]int, 0, len(s)+n)
	out = append(out, s[:after+1]...)
	out = append(out, make([]int, n)...)
	return append(out, s[after+1:]...)
}

func spliceBools(s []bool, after, n int) []bool {
	out := make([]bool, 0, len(s)+n)
	out = append(out, s[:after+1]...)
	out = append(out, make([]bool, n)...)
	return append(out, s[after+1:]...)
}

// BeginUndoAction opens an undo group; edits until the matching
// EndUndoAction revert as one step. Groups nest.
func (b *Buffer) BeginUndoAction() { b.groupDepth++ }

// EndUndoAction closes the innermost undo group.
func (b *Buffer) EndUndoAction() {
	if b.groupDepth == 0 {
		return
	}
	b.groupDepth--
	if b.groupDepth == 0 && len(b.pending) > 0 {
		b.undoStack = append(b.undoStack, b.pending)
		b.pending = nil
	}
}

func (b *Buffer) record(op editOp) {
	if b.replaying {
		return
	}
	b.redoStack = nil
	if b.groupDepth > 0 {
		b.pending = append(b.pending, op)
		return
	}
	b.undoStack = append(b.undoStack, undoGroup{op})
}

// CanUndo reports whether an undo step is available.
func (b *Buffer) CanUndo() bool { return len(b.undoStack) > 0 }

// CanRedo reports whether a redo step is available.
func (b *Buffer) CanRedo() bool { return len(b.redoStack) > 0 }

// Undo reverts the most recent undo group, replaying each edit in reverse
// with the undo action tag so the bookkeeping notifications pair up.
func (b *Buffer) Undo() bool {
	if len(b.undoStack) == 0 {
		return false
	}
	g := b.undoStack[len(b.undoStack)-1]
	b.undoStack = b.undoStack[:len(b.undoStack)-1]

	b.replaying = true
	for i := len(g) - 1; i >= 0; i-- {
		op := g[i]
		if op.insert {
			b.Delete(op.pos, op.pos+len(op.text), ActionUndo)
		} else {
			b.Insert(op.pos, op.text, ActionUndo)
		}
	}
	b.replaying = false

	b.redoStack = append(b.redoStack, g)
	return true
}

// Redo re-applies the most recently undone group with the redo action tag.
func (b *Buffer) Redo() bool {
	if len(b.redoStack) == 0 {
		return false
	}
	g := b.redoStack[len(b.redoStack)-1]
	b.redoStack = b.redoStack[:len(b.redoStack)-1]

	b.replaying = true
	for _, op := range g {
		if op.insert {
			b.Insert(op.pos, op.text, ActionRedo)
		} else {
			b.Delete(op.pos, op.pos+len(op.text), ActionRedo)
		}
	}
	b.replaying = false

	b.undoStack = append(b.undoStack, g)
	return true
}

// Marker returns the marker bits of line.
func (b *Buffer) Marker(line int) Marker {
	if line < 0 || line >= len(b.markers) {
		return 0
	}
	return b.markers[line]
}

// AddMarker sets marker bits on line.
func (b *Buffer) AddMarker(line int, m Marker) {
	if line < 0 || line >= len(b.markers) {
		return
	}
	b.markers[line] |= m
}

// ClearMarker clears the masked bits on line.
func (b *Buffer) ClearMarker(line int, mask Marker) {
	if line < 0 || line >= len(b.markers) {
		return
	}
	b.markers[line] &^= mask
}

// ClearAllMarkers clears the masked bits on every line.
func (b *Buffer) ClearAllMarkers(mask Marker) {
	for i := range b.markers {
		b.markers[i] &^= mask
	}
}

// Markers returns the masked marker bits for count lines from startLine,
// clearing them from the buffer when clear is set.
func (b *Buffer) Markers(startLine, count int, mask Marker, clear bool) []Marker {
	out := make([]Marker, 0, count)
	for i := 0; i < count; i++ {
		line := startLine + i
		if line < 0 || line >= len(b.markers) {
			out = append(out, 0)
			continue
		}
		out = append(out, b.markers[line]&mask)
		if clear {
			b.markers[line] &^= mask
		}
	}
	return out
}

// SetMarkers replaces the marker bits of consecutive lines from startLine.
func (b *Buffer) SetMarkers(startLine int, marks []Marker) {
	for i, m := range marks {
		line := startLine + i
		if line < 0 || line >= len(b.markers) {
			continue
		}
		b.markers[line] = m
	}
}

// NextMarked returns the first line at or after fromLine carrying any masked
// marker, -1 when there is none.
func (b *Buffer) NextMarked(fromLine int, mask Marker) int {
	if fromLine < 0 {
		fromLine = 0
	}
	for line := fromLine; line < len(b.markers); line++ {
		if b.markers[line]&mask != 0 {
			return line
		}
	}
	return -1
}

// PrevMarked returns the last line at or before fromLine carrying any masked
// marker, -1 when there is none.
func (b *Buffer) PrevMarked(fromLine int, mask Marker) int {
	if fromLine >= len(b.markers) {
		fromLine = len(b.markers) - 1
	}
	for line := fromLine; line >= 0; line-- {
		if b.markers[line]&mask != 0 {
			return line
		}
	}
	return -1
}

// Annotation returns the number of blank padding rows rendered after line.
func (b *Buffer) Annotation(line int) int {
	if line < 0 || line >= len(b.annotations) {
		return 0
	}
	return b.annotations[line]
}

// SetAnnotation sets the number of blank padding rows rendered after line.
func (b *Buffer) SetAnnotation(line, rows int) {
	if line < 0 || line >= len(b.annotations) {
		return
	}
	if rows < 0 {
		rows = 0
	}
	b.annotations[line] = rows
	b.rowStarts = nil
}

// ClearAnnotations removes all blank padding.
func (b *Buffer) ClearAnnotations() {
	for i := range b.annotations {
		b.annotations[i] = 0
	}
	b.rowStarts = nil
}

// HideLines folds away the inclusive line range. Line 0 stays visible.
func (b *Buffer) HideLines(first, last int) {
	if first < 1 {
		first = 1
	}
	last = b.clampLine(last)
	for i := first; i <= last; i++ {
		b.hidden[i] = true
	}
	b.rowStarts = nil
}

// ShowLines unfolds the inclusive line range.
func (b *Buffer) ShowLines(first, last int) {
	first = b.clampLine(first)
	last = b.clampLine(last)
	for i := first; i <= last; i++ {
		b.hidden[i] = false
	}
	b.rowStarts = nil
}

// ShowAllLines unfolds everything.
func (b *Buffer) ShowAllLines() {
	for i := range b.hidden {
		b.hidden[i] = false
	}
	b.rowStarts = nil
}

// LineHidden reports whether line is folded away.
func (b *Buffer) LineHidden(line int) bool {
	if line < 0 || line >= len(b.hidden) {
		return false
	}
	return b.hidden[line]
}

// RowFromLine returns the screen row of a document line, counting the blank
// padding and skipping hidden lines above it.
func (b *Buffer) RowFromLine(line int) int {
	b.ensureRows()
	if line < 0 {
		line = 0
	}
	if line > len(b.lines) {
		line = len(b.lines)
	}
	return b.rowStarts[line]
}

// LineFromRow returns the document line occupying a screen row; padding rows
// map to the line they follow.
func (b *Buffer) LineFromRow(row int) int {
	b.ensureRows()
	if row < 0 {
		row = 0
	}
	n := len(b.lines)
	i := sort.Search(n, func(i int) bool { return b.rowStarts[i+1] > row })
	if i >= n {
		// Past the last row: the last visible line
		for i = n - 1; i > 0 && b.hidden[i]; i-- {
		}
		return i
	}
	return i
}

// RowCount returns the total number of screen rows.
func (b *Buffer) RowCount() int {
	b.ensureRows()
	return b.rowStarts[len(b.lines)]
}

// FirstVisibleRow returns the row at the top of the viewport.
func (b *Buffer) FirstVisibleRow() int { return b.firstRow }

// SetFirstVisibleRow scrolls the viewport, clamped to the document.
func (b *Buffer) SetFirstVisibleRow(row int) {
	max := b.RowCount() - 1
	if row > max {
		row = max
	}
	if row < 0 {
		row = 0
	}
	b.firstRow = row
}

// RowsOnScreen returns the viewport height in rows.
func (b *Buffer) RowsOnScreen() int { return b.screenRows }

// SetRowsOnScreen sets the viewport height; the UI calls this on resize.
func (b *Buffer) SetRowsOnScreen(rows int) {
	if rows < 1 {
		rows = 1
	}
	b.screenRows = rows
}

// LineOnScreen reports whether the line's row falls inside the viewport.
func (b *Buffer) LineOnScreen(line int) bool {
	if b.LineHidden(line) {
		return false
	}
	row := b.RowFromLine(line)
	return row >= b.firstRow && row < b.firstRow+b.screenRows
}

// CenterAt scrolls so the line sits in the middle of the viewport.
func (b *Buffer) CenterAt(line int) {
	b.SetFirstVisibleRow(b.RowFromLine(b.clampLine(line)) - b.screenRows/2)
}

// CaretPosition returns the caret position.
func (b *Buffer) CaretPosition() int { return b.selCaret }

// CaretLine returns the line the caret is on.
func (b *Buffer) CaretLine() int { return b.LineFromPosition(b.selCaret) }

// Selection returns the selection anchor and caret.
func (b *Buffer) Selection() (anchor, caret int) { return b.selAnchor, b.selCaret }

// SetSelection sets the selection anchor and caret.
func (b *Buffer) SetSelection(anchor, caret int) {
	b.selAnchor = b.clampPos(anchor)
	b.selCaret = b.clampPos(caret)
}

// SetEmptySelection collapses the selection to a caret at pos.
func (b *Buffer) SetEmptySelection(pos int) {
	pos = b.clampPos(pos)
	b.selAnchor = pos
	b.selCaret = pos
}

// HasSelection reports whether any text is selected.
func (b *Buffer) HasSelection() bool { return b.selAnchor != b.selCaret }

// SelectedLineRange returns the lines the selection spans, NoRange when the
// selection is empty. A selection ending at a line start does not include
// that line.
func (b *Buffer) SelectedLineRange() LineRange {
	if !b.HasSelection() {
		return NoRange
	}
	start, end := b.selAnchor, b.selCaret
	if start > end {
		start, end = end, start
	}
	first := b.LineFromPosition(start)
	last := b.LineFromPosition(end)
	if last > first && end == b.LineStart(last) {
		last--
	}
	return LineRange{First: first, Last: last}
}

// GotoLine puts the caret at the start of line, scrolling it into view when
// needed.
func (b *Buffer) GotoLine(line int) {
	line = b.clampLine(line)
	b.SetEmptySelection(b.LineStart(line))
	if !b.LineOnScreen(line) {
		b.CenterAt(line)
	}
}
