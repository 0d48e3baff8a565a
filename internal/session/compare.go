package session

import (
	"errors"
	"log"

	"github.com/JehleM/compare-plugin/internal/engine"
	"github.com/JehleM/compare-plugin/internal/nav"
	"github.com/JehleM/compare-plugin/internal/textview"
	"github.com/JehleM/compare-plugin/internal/viewsync"
)

// ErrNoSelections is returned by a selection compare when one of the views
// has no line selection to compare.
var ErrNoSelections = errors.New("session: both views need a line selection")

// Compare runs a full comparison with the shared settings. On a recompare
// the current location is kept unless the go-to-first-diff setting asks
// otherwise. Returns true when the documents match under the options, in
// which case the caller normally clears the pair.
func (s *Session) Compare() (bool, error) {
	return s.compare(false, false, false)
}

// CompareSelections compares only the selected line ranges of the two views.
func (s *Session) CompareSelections() (bool, error) {
	return s.compare(true, false, false)
}

// FindUnique marks the lines of each view that do not occur in the other.
// Returns true when there are none.
func (s *Session) FindUnique() (bool, error) {
	return s.compare(false, true, false)
}

// FindUniqueSelections runs find-unique over the selected ranges only.
func (s *Session) FindUniqueSelections() (bool, error) {
	return s.compare(true, true, false)
}

// autoRecompare is the debounced recompare behind RecompareOnChange.
func (s *Session) autoRecompare() {
	matched, err := s.compare(false, false, true)
	if err != nil {
		log.Printf("session: auto recompare: %v", err)
		return
	}
	if matched {
		log.Printf("session: documents match after edit, clearing pair")
		s.requestClear()
	}
}

func (s *Session) compare(selectionCompare, findUnique, autoUpdating bool) (bool, error) {
	s.updateTask.Cancel()

	s.guard.Raise()
	defer s.guard.Release()

	s.storedLoc = nil
	s.goToFirst = false
	s.copiedMarks = nil
	s.clearArrow()
	s.clearTempRange()

	main := s.bindings[textview.Main].View
	sub := s.bindings[textview.Sub].View

	recompare := s.compared
	recompareSameSelections := false

	if recompare {
		s.autoUpdateDelay = 0

		if !autoUpdating && selectionCompare {
			mainSel := main.SelectedLineRange()
			subSel := sub.SelectedLineRange()

			// Fresh selections replace the tracked ones side by side; a side
			// without a new selection keeps its previous range.
			checkSelections := false
			switch {
			case mainSel.Valid() && subSel.Valid():
				checkSelections = true
			case mainSel.Valid() && s.opts.Selections[textview.Sub].Valid():
				s.opts.Selections[textview.Main] = mainSel
				recompareSameSelections = true
			case subSel.Valid() && s.opts.Selections[textview.Main].Valid():
				s.opts.Selections[textview.Sub] = subSel
				recompareSameSelections = true
			default:
				if !s.opts.Selections[textview.Main].Valid() || !s.opts.Selections[textview.Sub].Valid() {
					checkSelections = true
				}
				recompareSameSelections = true
			}

			if checkSelections && (!mainSel.Valid() || !subSel.Valid()) {
				return false, ErrNoSelections
			}
		}

		if (!s.settings.GotoFirstDiff && !selectionCompare) || autoUpdating {
			s.storedLoc = s.coord.SaveLocation(s.focused)
		}

		if !autoUpdating {
			s.bindings[textview.Main].Deleted.Clear()
			s.bindings[textview.Sub].Deleted.Clear()
		}
	} else if selectionCompare {
		if !main.SelectedLineRange().Valid() || !sub.SelectedLineRange().Valid() {
			return false, ErrNoSelections
		}
	}

	if !autoUpdating {
		opts := s.settings.Engine
		opts.FindUnique = findUnique
		opts.SelectionCompare = selectionCompare
		opts.Selections = s.opts.Selections

		if selectionCompare {
			if !recompareSameSelections {
				opts.Selections[textview.Main] = main.SelectedLineRange()
				opts.Selections[textview.Sub] = sub.SelectedLineRange()
			}
		} else {
			opts.Selections = [2]textview.LineRange{textview.NoRange, textview.NoRange}
		}

		s.opts = opts
		s.applySettings()
	}

	s.selAutoRecompare = autoUpdating && s.opts.SelectionCompare

	for i := range s.bindings {
		v := s.bindings[i].View
		v.ClearAllMarkers(textview.MaskAll)
		v.ClearAnnotations()
	}

	s.summary = engine.Compare(main, sub, s.opts)
	s.compared = true
	s.dirty = false
	s.userEdited = false

	log.Printf("session: compared %q and %q: %d diff lines (%d added, %d removed, %d changed, %d moved)",
		main.Name(), sub.Name(),
		s.summary.DiffLines, s.summary.Added, s.summary.Removed, s.summary.Changed, s.summary.Moved)

	if s.summary.DiffLines == 0 {
		return true, nil
	}

	if s.storedLoc == nil {
		if s.opts.SelectionCompare {
			main.SetEmptySelection(main.CaretPosition())
			sub.SetEmptySelection(sub.CaretPosition())
		}

		s.goToFirst = true

		// Bring the first difference near the viewport now so the alignment
		// pass that follows works against settled geometry.
		for _, e := range s.summary.Alignment {
			if e.Views[textview.Main].Mask != 0 {
				if !main.LineOnScreen(e.Views[textview.Main].Line) {
					main.CenterAt(e.Views[textview.Main].Line)
				}
				if !sub.LineOnScreen(e.Views[textview.Sub].Line) {
					sub.CenterAt(e.Views[textview.Sub].Line)
				}
				break
			}
		}
	}

	s.alignTask.Post(alignDelay)

	return false, nil
}

// OnPaint schedules the deferred alignment pass. The app calls it after
// every frame while the pair is on screen.
func (s *Session) OnPaint() {
	if s.summary == nil || s.updateTask.Pending() {
		return
	}
	s.alignTask.Post(alignDelay)
}

// OnUpdateUI mirrors a scroll or caret move of side to the other view and
// remembers the location for the next alignment pass.
func (s *Session) OnUpdateUI(side textview.Side) {
	if s.summary == nil || s.storedLoc != nil || s.goToFirst || s.updateTask.Pending() {
		return
	}

	s.guard.Raise()
	defer s.guard.Release()

	s.storedLoc = s.coord.SaveLocation(side)
	s.coord.Sync(side, side == s.focused)
}

// OnSave turns a pending auto-recompare into an almost immediate one: saving
// is a natural settle point, no reason to keep the user waiting.
func (s *Session) OnSave(side textview.Side) {
	if s.settings.RecompareOnChange && s.autoUpdateDelay > 0 {
		s.alignTask.Cancel()
		s.updateTask.Post(alignDelay)
	}
}

// OnAutoRecompareEnabled recompares promptly when the toggle is switched on
// over a dirty pair.
func (s *Session) OnAutoRecompareEnabled() {
	if s.dirty {
		s.updateTask.Post(alignDelay)
	}
}

// MarkStale flags the results after a view was reloaded from disk. Reloading
// replaces the buffer wholesale, so the recorded deletions would match
// unrelated undos and are dropped. The dirty state is not an edit of the
// user's making, hence userEdited stays down.
func (s *Session) MarkStale() {
	if !s.compared {
		return
	}

	s.dirty = true
	s.bindings[textview.Main].Deleted.Clear()
	s.bindings[textview.Sub].Deleted.Clear()
	s.notifyStatus()

	if s.settings.RecompareOnChange {
		s.updateTask.Post(alignDelay)
	}
}

// delayedAlign is the deferred alignment pass. It defers again to a pending
// auto-recompare, re-renders padding when the table and the screen disagree,
// then settles the viewport: either onto the first difference after a fresh
// compare or back to the stored location.
func (s *Session) delayedAlign() {
	if s.autoUpdateDelay > 0 {
		s.updateTask.Post(s.autoUpdateDelay)
		return
	}

	if s.summary == nil {
		return
	}

	realign := false

	s.guard.Raise()
	defer s.guard.Release()

	// Find-unique leaves the table empty: nothing to align then, but the
	// first jump and the stored location still settle below.
	if !s.summary.Alignment.Empty() {
		realign = s.goToFirst || s.selAutoRecompare

		if !realign {
			side := s.focused
			if s.storedLoc != nil {
				side = s.storedLoc.Side
			}
			realign = s.coord.AlignmentNeeded(side, s.summary.Alignment)
		}

		if realign {
			if s.storedLoc == nil && !s.goToFirst {
				s.storedLoc = s.coord.SaveLocation(s.focused)
			}

			s.selAutoRecompare = false

			s.coord.AlignViews(s.summary.Alignment, s.opts.SelectionCompare, s.opts.Selections)
		}
	} else {
		s.selAutoRecompare = false
	}

	switch {
	case s.goToFirst:
		s.goToFirst = false

		res := s.navigator.First(s.focused)
		s.applyJump(res, true)
		if res.Found {
			s.coord.Sync(res.Side, true)
		}

		s.notifyStatus()

	case s.storedLoc != nil:
		if !realign {
			s.consecutiveAligns = 0
		} else if s.consecutiveAligns++; s.consecutiveAligns > 1 {
			// Two aligns in a row means the padding is oscillating; stop
			// feeding it and settle where we are.
			s.consecutiveAligns = 0
		} else if s.coord.RestoreLocation(s.storedLoc) {
			s.coord.SyncScroll(s.storedLoc.Side)
		}

		if s.consecutiveAligns > 0 {
			s.alignTask.Post(alignDelay)
		} else {
			if realign {
				s.coord.RestoreLocation(s.storedLoc)
			}
			s.coord.SyncScroll(s.storedLoc.Side)
			s.storedLoc = nil
			s.notifyStatus()
		}

	case s.opts.FindUnique:
		s.coord.SyncScroll(s.focused)
	}
}

// NextDiff moves to the difference after the caret, wrapping per settings.
func (s *Session) NextDiff() nav.Result {
	return s.jump(func() nav.Result {
		return s.navigator.Next(s.focused, s.settings.WrapAround)
	}, true)
}

// PrevDiff moves to the difference before the caret.
func (s *Session) PrevDiff() nav.Result {
	return s.jump(func() nav.Result {
		return s.navigator.Previous(s.focused, s.settings.WrapAround)
	}, false)
}

// FirstDiff jumps to the first difference of the pair.
func (s *Session) FirstDiff() nav.Result {
	return s.jump(func() nav.Result { return s.navigator.First(s.focused) }, true)
}

// LastDiff jumps to the last difference of the pair.
func (s *Session) LastDiff() nav.Result {
	return s.jump(func() nav.Result { return s.navigator.Last(s.focused) }, false)
}

func (s *Session) jump(move func() nav.Result, down bool) nav.Result {
	if s.summary == nil {
		return nav.Result{Side: s.focused, Line: -1, BlinkLine: -1, ArrowLine: -1}
	}

	s.guard.Raise()
	defer s.guard.Release()

	res := move()
	s.applyJump(res, down)

	if res.Found {
		s.coord.Sync(res.Side, true)
	}
	return res
}

// applyJump realizes the side effects of a navigation result: the transient
// arrow next to blank padding and the focus switch in find-unique mode.
func (s *Session) applyJump(res nav.Result, down bool) {
	if res.ArrowLine >= 0 {
		s.setArrow(res.Side, res.ArrowLine, down)
	} else {
		s.clearArrow()
	}

	if res.Found && res.Side != s.focused && s.opts.FindUnique {
		s.focused = res.Side
		if s.FocusFunc != nil {
			s.FocusFunc(res.Side)
		}
	}
}

// RealignAll rebuilds the padding from scratch the way the show-mode
// toggles do: annotations are dropped wholesale and the table re-rendered,
// keeping the caret line in view.
func (s *Session) RealignAll() {
	if s.summary == nil {
		return
	}

	s.guard.Raise()
	defer s.guard.Release()

	s.applySettings()

	v := s.bindings[s.focused].View
	current := v.CaretLine()

	if s.settings.ShowOnlyDiffs && v.Marker(current)&textview.MaskChanges == 0 {
		if next := v.NextMarked(current, textview.MaskChanges); next >= 0 {
			if !v.LineOnScreen(next) {
				v.CenterAt(next)
			}
			v.GotoLine(next)
			current = next
		}
	}

	firstLine := -1
	var loc *viewsync.Location
	if v.LineOnScreen(current) {
		loc = s.coord.SaveLocation(s.focused)
	} else {
		firstLine = v.LineFromRow(v.FirstVisibleRow())
	}

	s.bindings[textview.Main].View.ClearAnnotations()
	s.bindings[textview.Sub].View.ClearAnnotations()

	s.coord.AlignViews(s.summary.Alignment, s.opts.SelectionCompare, s.opts.Selections)

	if loc != nil {
		s.coord.RestoreLocation(loc)
	} else if firstLine >= 0 {
		v.SetFirstVisibleRow(v.RowFromLine(firstLine))
	}
}

// setArrow drops a transient arrow marker that points at the blank padding
// adjacent to line. It clears itself after a couple of seconds.
func (s *Session) setArrow(side textview.Side, line int, down bool) {
	s.clearArrow()
	if line < 0 {
		return
	}

	s.bindings[side].View.AddMarker(line, textview.MarkerArrow)
	s.arrow = arrowMark{side: side, line: line, down: down, set: true}
	s.arrowTask.Post(transientLifetime)
}

func (s *Session) clearArrow() {
	if !s.arrow.set {
		return
	}
	s.bindings[s.arrow.side].View.ClearMarker(s.arrow.line, textview.MarkerArrow)
	s.arrow = arrowMark{}
	s.arrowTask.Cancel()
}

// Arrow reports the transient arrow mark, if any.
func (s *Session) Arrow() (side textview.Side, line int, down, ok bool) {
	return s.arrow.side, s.arrow.line, s.arrow.down, s.arrow.set
}

// setTempRange highlights [startPos, endPos) of side for a couple of
// seconds, used to preview the counterpart of a clicked block.
func (s *Session) setTempRange(side textview.Side, startPos, endPos int) {
	s.clearTempRange()
	if startPos < 0 || endPos < startPos {
		return
	}
	s.temp = tempRange{side: side, start: startPos, end: endPos, set: true}
	s.rangeTask.Post(transientLifetime)
}

func (s *Session) clearTempRange() {
	if !s.temp.set {
		return
	}
	s.temp = tempRange{}
	s.rangeTask.Cancel()
}

// TempRange reports the transient counterpart highlight, if any.
func (s *Session) TempRange() (side textview.Side, startPos, endPos int, ok bool) {
	return s.temp.side, s.temp.start, s.temp.end, s.temp.set
}
