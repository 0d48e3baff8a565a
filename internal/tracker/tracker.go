// Package tracker records multi-line deletions so the compare bookkeeping
// can be undone when the editor replays them. Editors report logically
// atomic operations (undo, redo, in-place replace) as independent delete and
// insert notifications; the stack pairs them back up by start line, action
// tag and a short time window.
package tracker

import (
	"time"

	"github.com/JehleM/compare-plugin/internal/align"
	"github.com/JehleM/compare-plugin/internal/sched"
	"github.com/JehleM/compare-plugin/internal/textview"
)

// DefaultReplaceWindow is how soon after a multi-line delete an insert at
// the same line is taken for the second half of an in-place replace. An
// empirical heuristic, not a guarantee: very large pastes or slow storage
// may exceed it.
const DefaultReplaceWindow = 40 * time.Millisecond

// UndoData is the session bookkeeping captured alongside a deletion and
// handed back to the caller when the matching insert pops it.
type UndoData struct {
	// Selection holds the selection-compare bounds of the view at deletion
	// time, NoRange when selection compare was off.
	Selection textview.LineRange
	// Alignment is the full table snapshot, nil when auto-recompare makes
	// restoring it pointless.
	Alignment align.Table
	// OtherViewMarks carries markers an equalize action transplanted from
	// the other view, to be re-applied there on undo.
	OtherViewMarks []textview.Marker
}

// NewUndoData returns an UndoData with no selection recorded.
func NewUndoData() *UndoData {
	return &UndoData{Selection: textview.NoRange}
}

// DeletedSection is one recorded multi-line deletion.
type DeletedSection struct {
	startLine      int
	restoreAction  textview.Action
	lineReplace    bool
	markers        []textview.Marker
	nextLineMarker textview.Marker
	undo           *UndoData
}

// Stack tracks the deleted sections of one view, newest last.
type Stack struct {
	view  textview.View
	clock sched.Clock

	// ReplaceWindow is the replace-detection threshold, tunable per stack.
	ReplaceWindow time.Duration

	sections     []DeletedSection
	lastPushTime time.Time
}

// NewStack returns a Stack tracking view, reading time from clock.
func NewStack(view textview.View, clock sched.Clock) *Stack {
	if clock == nil {
		clock = sched.System
	}
	return &Stack{view: view, clock: clock, ReplaceWindow: DefaultReplaceWindow}
}

// Push records a deletion of length lines at startLine performed by action.
// The markers of the doomed range and of the boundary line after it are
// captured, unless clearOnly is set (auto-recompare will rebuild them from
// scratch), in which case they are cleared instead. Returns false without
// recording when length < 1 or when the top of the stack is the delete half
// of a replace this action is reverting.
func (s *Stack) Push(action textview.Action, startLine, length int, clearOnly bool, undo *UndoData) bool {
	if length < 1 {
		return false
	}

	// The revert of a line replacement deletes the inserted half first; that
	// deletion is already accounted for by the recorded section.
	if n := len(s.sections); n > 0 && s.sections[n-1].restoreAction == action && s.sections[n-1].lineReplace {
		return false
	}

	sec := DeletedSection{
		startLine:     startLine,
		restoreAction: action.Reverse(),
		undo:          undo,
	}

	if clearOnly {
		for i := 0; i < length; i++ {
			s.view.ClearMarker(startLine+i, textview.MaskAll)
		}
	} else {
		sec.markers = s.view.Markers(startLine, length, textview.MaskAll, true)
		if startLine+length < s.view.LineCount() {
			sec.nextLineMarker = s.view.Marker(startLine+length) & textview.MaskAll
		}
	}

	s.sections = append(s.sections, sec)
	s.lastPushTime = s.clock.Now()

	return true
}

// Pop consumes the top section if an insert at startLine performed by action
// is its revert, restoring the captured markers and reconciling the boundary
// line after them, and returns the section's UndoData. Returns nil when the
// stack is empty or the start line differs. When only the action tag
// mismatches and the insert arrived within ReplaceWindow of the push, the
// top section is flagged as the delete half of an in-place replace so a
// later genuine revert is not misread.
func (s *Stack) Pop(action textview.Action, startLine int) *UndoData {
	if len(s.sections) == 0 {
		return nil
	}

	top := &s.sections[len(s.sections)-1]

	if top.startLine != startLine {
		return nil
	}

	if top.restoreAction != action {
		if s.clock.Now().Before(s.lastPushTime.Add(s.ReplaceWindow)) {
			top.lineReplace = true
		}
		return nil
	}

	if len(top.markers) > 0 {
		s.view.SetMarkers(top.startLine, top.markers)

		if top.nextLineMarker != 0 {
			boundary := startLine + len(top.markers)
			s.view.ClearMarker(boundary, textview.MaskAll)
			s.view.AddMarker(boundary, top.nextLineMarker)
		}
	}

	undo := top.undo
	s.sections = s.sections[:len(s.sections)-1]

	return undo
}

// Len returns the number of recorded sections.
func (s *Stack) Len() int { return len(s.sections) }

// Clear drops every recorded section.
func (s *Stack) Clear() { s.sections = nil }
