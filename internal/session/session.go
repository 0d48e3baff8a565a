// Package session binds two views into a live comparison and keeps the
// bookkeeping honest while the user edits: tracked deletions, alignment
// shifts, dirty severity, debounced auto-recompare and the deferred
// alignment passes.
package session

import (
	"log"
	"time"

	"github.com/JehleM/compare-plugin/internal/engine"
	"github.com/JehleM/compare-plugin/internal/nav"
	"github.com/JehleM/compare-plugin/internal/sched"
	"github.com/JehleM/compare-plugin/internal/textview"
	"github.com/JehleM/compare-plugin/internal/tracker"
	"github.com/JehleM/compare-plugin/internal/viewsync"
)

const (
	alignDelay        = 30 * time.Millisecond
	multiLineDelay    = 500 * time.Millisecond
	singleLineDelay   = 1000 * time.Millisecond
	transientLifetime = 2 * time.Second
)

// StatusType selects what the status line shows next to the compare mode.
type StatusType int

const (
	// StatusSummary shows the difference counts.
	StatusSummary StatusType = iota
	// StatusOptions shows the active ignore/detect options.
	StatusOptions
)

// Settings are the toggles shared by every session. The manager owns one
// instance; sessions read it live, so flipping a toggle affects the next
// operation without re-pairing.
type Settings struct {
	RecompareOnChange  bool
	GotoFirstDiff      bool
	WrapAround         bool
	FollowingCaret     bool
	ShowOnlyDiffs      bool
	ShowOnlySelections bool
	StatusType         StatusType

	// Engine holds the default compare options applied on every manually
	// triggered compare.
	Engine engine.Options
}

// DefaultSettings mirrors a fresh install: caret following and move
// detection on, everything else conservative.
func DefaultSettings() *Settings {
	return &Settings{
		FollowingCaret: true,
		Engine: engine.Options{
			DetectMoves:   true,
			CharPrecision: true,
		},
	}
}

// State is the lifecycle stage of a session. The unpaired stage has no
// session at all; the manager holds at most a pending first mark then.
type State int

const (
	// StatePaired means two views are bound but never compared.
	StatePaired State = iota
	// StateActive means the last comparison is trusted.
	StateActive
	// StateDirty means the comparison may no longer reflect the documents.
	StateDirty
)

func (s State) String() string {
	switch s {
	case StatePaired:
		return "paired"
	case StateActive:
		return "active"
	case StateDirty:
		return "dirty"
	default:
		return "unknown"
	}
}

// Binding ties one side's view to its deletion bookkeeping. The session owns
// both bindings by value; a binding reaches its counterpart only through
// Side.Other on the session.
type Binding struct {
	View    textview.View
	Deleted *tracker.Stack
}

type arrowMark struct {
	side textview.Side
	line int
	down bool
	set  bool
}

type tempRange struct {
	side       textview.Side
	start, end int
	set        bool
}

// Session is the comparison state machine for one pair of views.
type Session struct {
	sch      *sched.Scheduler
	guard    *textview.Guard
	settings *Settings

	bindings [2]Binding

	opts    engine.Options
	summary *engine.Summary

	compared   bool
	dirty      bool
	userEdited bool
	inEqualize int

	// notReverting distinguishes a fresh edit from the replay of a tracked
	// deletion; the dirty flag is only raised for the former.
	notReverting bool

	focused textview.Side

	navigator *nav.Navigator
	coord     *viewsync.Coordinator

	alignTask  *sched.Task
	updateTask *sched.Task
	arrowTask  *sched.Task
	rangeTask  *sched.Task

	autoUpdateDelay   time.Duration
	storedLoc         *viewsync.Location
	goToFirst         bool
	selAutoRecompare  bool
	consecutiveAligns int

	// copiedMarks holds markers an equalize action captured from the other
	// view; the very next tracked deletion claims them for its undo data.
	copiedMarks []textview.Marker

	arrow arrowMark
	temp  tempRange

	// StatusFunc, when set, is called whenever the status text may have
	// changed.
	StatusFunc func()
	// FocusFunc, when set, is called when navigation moves the focus to the
	// other view.
	FocusFunc func(textview.Side)

	clearFunc func()
}

// New binds main and sub into a paired, not yet compared session.
func New(sch *sched.Scheduler, guard *textview.Guard, settings *Settings, main, sub textview.View) *Session {
	s := &Session{
		sch:          sch,
		guard:        guard,
		settings:     settings,
		notReverting: true,
	}
	s.bindings[textview.Main] = Binding{View: main, Deleted: tracker.NewStack(main, sch.Clock())}
	s.bindings[textview.Sub] = Binding{View: sub, Deleted: tracker.NewStack(sub, sch.Clock())}

	s.navigator = nav.New(main, sub)
	s.coord = viewsync.New(main, sub, guard)

	s.alignTask = sch.Task("align", s.delayedAlign)
	s.updateTask = sch.Task("auto-recompare", s.autoRecompare)
	s.arrowTask = sch.Task("arrow-clear", s.clearArrow)
	s.rangeTask = sch.Task("range-clear", s.clearTempRange)

	s.applySettings()
	return s
}

// View returns the bound view of one side.
func (s *Session) View(side textview.Side) textview.View { return s.bindings[side].View }

// Focused returns the side the session considers focused.
func (s *Session) Focused() textview.Side { return s.focused }

// SetFocused records which side holds the focus. Navigation and alignment
// passes bias toward it.
func (s *Session) SetFocused(side textview.Side) { s.focused = side }

// State reports the lifecycle stage.
func (s *Session) State() State {
	switch {
	case !s.compared:
		return StatePaired
	case s.dirty:
		return StateDirty
	default:
		return StateActive
	}
}

// Summary returns the last compare result, nil before the first compare.
func (s *Session) Summary() *engine.Summary { return s.summary }

// Options returns the compare options of the last compare.
func (s *Session) Options() engine.Options { return s.opts }

// applySettings pushes the shared toggles into the navigator and the sync
// coordinator.
func (s *Session) applySettings() {
	s.navigator.FollowingCaret = s.settings.FollowingCaret
	s.navigator.ShowOnlyDiffs = s.settings.ShowOnlyDiffs
	s.navigator.FindUnique = s.opts.FindUnique

	s.coord.FollowingCaret = s.settings.FollowingCaret
	s.coord.ShowOnlyDiffs = s.settings.ShowOnlyDiffs
	s.coord.ShowOnlySelections = s.settings.ShowOnlySelections
}

func (s *Session) markDirty() {
	s.dirty = true
	if s.inEqualize == 0 {
		s.userEdited = true
	}
}

func (s *Session) notifyStatus() {
	if s.StatusFunc != nil {
		s.StatusFunc()
	}
}

func (s *Session) requestClear() {
	if s.clearFunc != nil {
		s.clearFunc()
	}
}

// HandleEdit is the session's notification entry point. The manager routes
// every edit of a bound view here unless the guard is raised.
func (s *Session) HandleEdit(ev textview.EditEvent) {
	side := ev.Side
	b := &s.bindings[side]

	if ev.Kind == textview.EditBeforeDelete {
		startLine := b.View.LineFromPosition(ev.Pos)
		endLine := b.View.LineFromPosition(ev.EndPos)

		// Single-line changes need no deletion tracking.
		if endLine <= startLine {
			return
		}

		s.guard.Raise()
		defer s.guard.Release()

		var undo *tracker.UndoData

		if s.opts.SelectionCompare {
			undo = tracker.NewUndoData()
			undo.Selection = s.opts.Selections[side]
		}

		if !s.settings.RecompareOnChange {
			if undo == nil {
				undo = tracker.NewUndoData()
			}
			if s.summary != nil {
				undo.Alignment = s.summary.Alignment.Clone()
			}
			if s.inEqualize > 0 && len(s.copiedMarks) > 0 {
				undo.OtherViewMarks = s.copiedMarks
				s.copiedMarks = nil
			}
		}

		s.notReverting = b.Deleted.Push(ev.Action, startLine, endLine-startLine,
			s.settings.RecompareOnChange, undo)
		return
	}

	var undo *tracker.UndoData
	selectionsAdjusted := false

	if ev.Kind == textview.EditInsert && ev.LinesDelta != 0 {
		startLine := b.View.LineFromPosition(ev.Pos)

		s.guard.Raise()

		s.notReverting = true
		undo = b.Deleted.Pop(ev.Action, startLine)

		if undo != nil {
			if undo.Selection.First < undo.Selection.Last && s.opts.Selections[side] != undo.Selection {
				s.opts.Selections[side] = undo.Selection
				selectionsAdjusted = true
			}

			if !s.settings.RecompareOnChange && s.summary != nil {
				s.summary.Alignment = undo.Alignment

				if len(undo.OtherViewMarks) > 0 {
					if alignLine := s.summary.Alignment.CorrespondingLine(side, startLine); alignLine >= 0 {
						other := s.bindings[side.Other()].View
						other.SetMarkers(alignLine, undo.OtherViewMarks)

						if s.settings.ShowOnlyDiffs {
							other.ShowLines(alignLine, alignLine+len(undo.OtherViewMarks)-1)
						}
					}
				}
			}
		}

		s.guard.Release()
	}

	if ev.Kind != textview.EditDelete && ev.Kind != textview.EditInsert {
		return
	}

	s.alignTask.Cancel()
	s.updateTask.Cancel()

	if ev.LinesDelta == 0 {
		s.notReverting = true
	}

	startLine := b.View.LineFromPosition(ev.Pos)
	updateStatus := false

	if !s.settings.RecompareOnChange && s.notReverting && undo == nil {
		if !s.dirty || (s.inEqualize == 0 && !s.userEdited) {
			if !s.opts.SelectionCompare {
				s.markDirty()
				updateStatus = true
			} else {
				if s.opts.Selections[side].Contains(startLine) {
					s.markDirty()
					updateStatus = true
				}
				if !updateStatus && ev.LinesDelta != 0 && ev.Kind == textview.EditDelete {
					if s.opts.Selections[side].Contains(startLine + ev.LinesDelta + 1) {
						s.markDirty()
						updateStatus = true
					}
				}
			}
		}
	}

	if s.opts.SelectionCompare && ev.LinesDelta != 0 && undo == nil && !selectionsAdjusted {
		adjusted, collapsed := s.adjustSelections(side, startLine, ev.LinesDelta)
		if collapsed {
			log.Printf("session: selection compare range collapsed, clearing pair")
			s.requestClear()
			return
		}
		selectionsAdjusted = adjusted
	}

	if s.settings.RecompareOnChange {
		if ev.LinesDelta != 0 {
			s.autoUpdateDelay = multiLineDelay
		} else {
			// A single-line change usually means the user is typing; leave a
			// longer pause before recomparing under their hands.
			s.autoUpdateDelay = singleLineDelay
		}
		return
	}

	if ev.LinesDelta != 0 {
		if undo == nil && s.summary != nil {
			if !s.opts.SelectionCompare || selectionsAdjusted {
				s.summary.Alignment.Shift(side, startLine, ev.LinesDelta)
			}
		}

		if selectionsAdjusted {
			s.guard.Raise()
			s.bindings[textview.Main].View.ClearAnnotations()
			s.bindings[textview.Sub].View.ClearAnnotations()
			s.guard.Release()

			// Force a re-alignment on the next paint.
			s.selAutoRecompare = true
		}
	}

	if updateStatus {
		s.notifyStatus()
	}
}

// adjustSelections moves the tracked selection-compare bounds of side after
// an edit of delta lines at startLine. Reports whether anything moved and
// whether the range collapsed.
func (s *Session) adjustSelections(side textview.Side, startLine, delta int) (adjusted, collapsed bool) {
	sel := &s.opts.Selections[side]

	removed := delta
	if removed < 0 {
		removed = -removed
	}
	endLine := startLine + removed - 1

	if sel.First > startLine {
		if delta > 0 {
			sel.First += delta
		} else if sel.First > endLine {
			sel.First += delta
		} else {
			sel.First -= sel.First - startLine
		}
		adjusted = true
	}

	// An equalize replacing the block at the very end of the range reports
	// its insert one line past it; grow the range to keep the new block in.
	probe := startLine
	if s.inEqualize > 0 && sel.Last == startLine-1 && delta > 0 {
		probe--
	}

	if sel.Last >= probe {
		if delta > 0 {
			sel.Last += delta
		} else if sel.Last >= endLine {
			sel.Last += delta
		} else {
			sel.Last -= sel.Last - startLine + 1
		}
		adjusted = true
	}

	if s.inEqualize == 0 && sel.Last < sel.First {
		return adjusted, true
	}
	return adjusted, false
}

// shutdown cancels pending work and restores both views to their normal,
// uncompared look.
func (s *Session) shutdown() {
	s.alignTask.Cancel()
	s.updateTask.Cancel()
	s.clearArrow()
	s.clearTempRange()

	for i := range s.bindings {
		v := s.bindings[i].View
		v.ClearAllMarkers(textview.MaskAll)
		v.ClearAnnotations()
		v.ShowAllLines()
		s.bindings[i].Deleted.Clear()
	}
}
