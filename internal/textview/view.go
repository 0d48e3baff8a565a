package textview

// View is the capability surface the compare engine needs from an editor
// view. Buffer implements it; tests may substitute instrumented views. All
// methods are synchronous and must only be called from the owning thread.
//
// Lines and rows are two coordinate systems: a document line is an index
// into the text, a row is a position on screen after blank-padding
// annotations and hidden lines are applied.
type View interface {
	Side() Side
	Name() string

	// Text access. Positions are byte offsets into the document with lines
	// joined by a single newline.
	LineCount() int
	Line(line int) string
	LineStart(line int) int
	LineEnd(line int) int
	LineFromPosition(pos int) int
	TextRange(startPos, endPos int) string
	Length() int

	// Mutation. Insert returns the number of lines added, Delete the number
	// removed. Both fire the edit notifications the engine's bookkeeping is
	// built on. Edits between BeginUndoAction and EndUndoAction revert as a
	// single step.
	Insert(pos int, text string, action Action) int
	Delete(startPos, endPos int, action Action) int
	BeginUndoAction()
	EndUndoAction()

	// Per-line diff markers.
	Marker(line int) Marker
	AddMarker(line int, m Marker)
	ClearMarker(line int, mask Marker)
	ClearAllMarkers(mask Marker)
	Markers(startLine, count int, mask Marker, clear bool) []Marker
	SetMarkers(startLine int, marks []Marker)
	NextMarked(fromLine int, mask Marker) int
	PrevMarked(fromLine int, mask Marker) int

	// Blank-padding annotations: extra rows rendered after a line.
	Annotation(line int) int
	SetAnnotation(line, rows int)
	ClearAnnotations()

	// Hidden (folded away) lines. Line 0 can never be hidden.
	HideLines(first, last int)
	ShowLines(first, last int)
	ShowAllLines()
	LineHidden(line int) bool

	// Row arithmetic.
	RowFromLine(line int) int
	LineFromRow(row int) int
	RowCount() int

	// Viewport.
	FirstVisibleRow() int
	SetFirstVisibleRow(row int)
	RowsOnScreen() int
	LineOnScreen(line int) bool
	CenterAt(line int)

	// Caret and selection. The selection is a pair of positions; an empty
	// selection is just the caret.
	CaretPosition() int
	CaretLine() int
	Selection() (anchor, caret int)
	SetSelection(anchor, caret int)
	SetEmptySelection(pos int)
	HasSelection() bool
	SelectedLineRange() LineRange
	GotoLine(line int)
}

// EditKind discriminates the edit notifications a view emits.
type EditKind int

const (
	// EditBeforeDelete fires before a range is removed; the text is still
	// present so handlers can capture markers.
	EditBeforeDelete EditKind = iota
	// EditInsert fires after text was inserted.
	EditInsert
	// EditDelete fires after a range was removed.
	EditDelete
)

func (k EditKind) String() string {
	switch k {
	case EditBeforeDelete:
		return "before-delete"
	case EditInsert:
		return "insert"
	case EditDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// EditEvent describes one mutation of a view. For EditBeforeDelete, Pos and
// EndPos bound the doomed range and LinesDelta is 0. For EditInsert and
// EditDelete, Pos is the edit position and LinesDelta the signed change in
// line count.
type EditEvent struct {
	Kind       EditKind
	Side       Side
	Pos        int
	EndPos     int
	LinesDelta int
	Action     Action
}

// MatchingLine maps a line in one view to the line occupying the same row in
// the other view. With the pair aligned this is the visual counterpart of
// the given line. The result is clamped to a valid line of to.
func MatchingLine(from, to View, line int) int {
	row := from.RowFromLine(line)
	return to.LineFromRow(row)
}
