package session

import (
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JehleM/compare-plugin/internal/align"
	"github.com/JehleM/compare-plugin/internal/sched"
	"github.com/JehleM/compare-plugin/internal/textview"
)

var (
	leftLines = []string{"alpha", "bravo", "charlie",
		"delta-1", "delta-2", "delta-3", "tango", "uniform", "victor", "whiskey"}
	rightLines = []string{"alpha", "bravo", "charlie",
		"delta-A", "delta-B", "tango", "uniform", "victor", "whiskey"}
)

type fixture struct {
	clock *sched.ManualClock
	sch   *sched.Scheduler
	mgr   *Manager
	s     *Session
	main  *textview.Buffer
	sub   *textview.Buffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := sched.NewManualClock(time.Unix(1000, 0))
	sch := sched.NewScheduler(clock)
	mgr := NewManager(sch, DefaultSettings())

	main := textview.NewBuffer(textview.Main, "left.txt", strings.Join(leftLines, "\n"))
	sub := textview.NewBuffer(textview.Sub, "right.txt", strings.Join(rightLines, "\n"))

	return &fixture{
		clock: clock,
		sch:   sch,
		mgr:   mgr,
		s:     mgr.Pair(main, sub),
		main:  main,
		sub:   sub,
	}
}

// settle pumps the scheduler until the deferred alignment passes quiesce.
func (f *fixture) settle() {
	for i := 0; i < 4; i++ {
		f.clock.Advance(alignDelay)
		f.sch.RunDue()
	}
}

func entry(mainLine int, mainMask textview.Marker, subLine int, subMask textview.Marker) align.Entry {
	var e align.Entry
	e.Views[textview.Main] = align.Point{Line: mainLine, Mask: mainMask}
	e.Views[textview.Sub] = align.Point{Line: subLine, Mask: subMask}
	return e
}

func canonicalTable() align.Table {
	return align.Table{
		entry(0, 0, 0, 0),
		entry(3, textview.MarkerChanged, 3, textview.MarkerChanged),
		entry(6, 0, 5, 0),
	}
}

func TestCompareMarksAlignsAndJumpsToFirst(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, StatePaired, f.s.State())
	assert.Equal(t, "", f.s.StatusText())

	matched, err := f.s.Compare()
	require.NoError(t, err)
	assert.False(t, matched)
	assert.Equal(t, StateActive, f.s.State())

	assert.Equal(t, textview.MarkerChanged, f.main.Marker(3))
	assert.Equal(t, textview.MarkerChanged, f.main.Marker(4))
	assert.Equal(t, textview.MarkerRemoved, f.main.Marker(5))
	assert.Equal(t, textview.MarkerChanged, f.sub.Marker(3))
	assert.Equal(t, textview.MarkerChanged, f.sub.Marker(4))

	if d := cmp.Diff(canonicalTable(), f.s.Summary().Alignment); d != "" {
		t.Errorf("alignment mismatch (-want +got):\n%s", d)
	}

	f.settle()

	// The shorter block is padded so the tails share screen rows.
	assert.Equal(t, 1, f.sub.Annotation(4))
	assert.Equal(t, f.main.RowFromLine(6), f.sub.RowFromLine(5))

	// The fresh compare lands on the first difference in both views.
	assert.Equal(t, 3, f.main.CaretLine())
	assert.Equal(t, 3, f.sub.CaretLine())
}

func TestCompareOfIdenticalDocumentsReportsMatch(t *testing.T) {
	clock := sched.NewManualClock(time.Unix(1000, 0))
	sch := sched.NewScheduler(clock)
	mgr := NewManager(sch, DefaultSettings())

	main := textview.NewBuffer(textview.Main, "a.txt", "same\ntext")
	sub := textview.NewBuffer(textview.Sub, "b.txt", "same\ntext")
	s := mgr.Pair(main, sub)

	matched, err := s.Compare()
	require.NoError(t, err)
	assert.True(t, matched)
}

func TestStatusTextSummaryMode(t *testing.T) {
	f := newFixture(t)

	_, err := f.s.Compare()
	require.NoError(t, err)

	assert.Equal(t,
		"Compare *** 3 Diff Lines:  1 Removed , 2 Changed.  7 Match",
		f.s.StatusText())
}

func TestStatusTextOptionsMode(t *testing.T) {
	f := newFixture(t)
	f.mgr.Settings().StatusType = StatusOptions
	f.mgr.Settings().Engine.IgnoreSpaces = true

	_, err := f.s.Compare()
	require.NoError(t, err)

	assert.Equal(t, "Compare *** Ignore Spaces , Detect Moves", f.s.StatusText())
}

func TestStatusTextFindUnique(t *testing.T) {
	f := newFixture(t)

	matched, err := f.s.FindUnique()
	require.NoError(t, err)
	assert.False(t, matched)

	assert.Equal(t,
		"Find Unique *** 5 Diff Lines:  2 Added , 3 Removed.  7 Match",
		f.s.StatusText())

	assert.Equal(t, textview.MarkerRemoved, f.main.Marker(3))
	assert.Equal(t, textview.MarkerAdded, f.sub.Marker(4))
	assert.True(t, f.s.Summary().Alignment.Empty())
}

func TestDeleteMarksDirtyAndShiftsAlignment(t *testing.T) {
	f := newFixture(t)
	_, err := f.s.Compare()
	require.NoError(t, err)
	f.settle()

	// Delete the whole changed block of the main view.
	f.main.Delete(f.main.LineStart(3), f.main.LineStart(6), textview.ActionUser)

	assert.Equal(t, StateDirty, f.s.State())
	assert.Equal(t, "FILE MANUALLY CHANGED, PLEASE RE-COMPARE!", f.s.StatusText())
	assert.Equal(t, 1, f.s.bindings[textview.Main].Deleted.Len())

	// The block's entry is erased, the tail entry pulled up by three lines.
	want := align.Table{entry(0, 0, 0, 0), entry(3, 0, 5, 0)}
	if d := cmp.Diff(want, f.s.Summary().Alignment); d != "" {
		t.Errorf("alignment mismatch (-want +got):\n%s", d)
	}

	// The capture cleared the doomed markers, so nothing merged onto tango.
	assert.Equal(t, textview.Marker(0), f.main.Marker(3))
}

func TestUndoRestoresMarkersAndAlignment(t *testing.T) {
	f := newFixture(t)
	_, err := f.s.Compare()
	require.NoError(t, err)
	f.settle()

	f.main.Delete(f.main.LineStart(3), f.main.LineStart(6), textview.ActionUser)
	require.True(t, f.main.Undo())

	assert.Equal(t, "delta-1", f.main.Line(3))
	assert.Equal(t, "delta-2", f.main.Line(4))
	assert.Equal(t, "delta-3", f.main.Line(5))

	assert.Equal(t, textview.MarkerChanged, f.main.Marker(3))
	assert.Equal(t, textview.MarkerChanged, f.main.Marker(4))
	assert.Equal(t, textview.MarkerRemoved, f.main.Marker(5))

	if d := cmp.Diff(canonicalTable(), f.s.Summary().Alignment); d != "" {
		t.Errorf("alignment mismatch (-want +got):\n%s", d)
	}

	// The dirty flag survives the undo; only a recompare clears it.
	assert.Equal(t, StateDirty, f.s.State())

	matched, err := f.s.Compare()
	require.NoError(t, err)
	assert.False(t, matched)
	assert.Equal(t, StateActive, f.s.State())
}

func TestAutoRecompareDebouncesMultiLineEdits(t *testing.T) {
	f := newFixture(t)
	f.mgr.Settings().RecompareOnChange = true

	_, err := f.s.Compare()
	require.NoError(t, err)
	f.settle()

	f.main.Delete(f.main.LineStart(3), f.main.LineStart(6), textview.ActionUser)
	f.s.OnPaint()

	f.clock.Advance(alignDelay)
	f.sch.RunDue() // alignment pass defers to the pending recompare

	f.clock.Advance(200 * time.Millisecond)
	f.sch.RunDue()
	assert.Equal(t, 3, f.s.Summary().DiffLines, "recompared before the debounce elapsed")

	f.clock.Advance(300 * time.Millisecond)
	f.sch.RunDue()

	assert.Equal(t, 2, f.s.Summary().DiffLines)
	assert.Equal(t, 2, f.s.Summary().Added)
	assert.Equal(t, textview.MarkerAdded, f.sub.Marker(3))
	assert.Equal(t, textview.MarkerAdded, f.sub.Marker(4))
	assert.Equal(t, textview.Marker(0), f.main.Marker(3))
	assert.Equal(t, StateActive, f.s.State())
}

func TestAutoRecompareSingleLineEditWaitsLonger(t *testing.T) {
	f := newFixture(t)
	f.mgr.Settings().RecompareOnChange = true

	_, err := f.s.Compare()
	require.NoError(t, err)
	f.settle()

	f.main.Insert(f.main.LineStart(0), "x", textview.ActionUser)
	f.s.OnPaint()

	f.clock.Advance(alignDelay)
	f.sch.RunDue()

	f.clock.Advance(999 * time.Millisecond)
	f.sch.RunDue()
	assert.Equal(t, 3, f.s.Summary().DiffLines, "recompared before the single-line debounce elapsed")

	f.clock.Advance(1 * time.Millisecond)
	f.sch.RunDue()
	assert.Equal(t, 4, f.s.Summary().DiffLines)
	assert.Equal(t, textview.MarkerChanged, f.main.Marker(0))
}

func TestAutoRecompareRestartsOnNewEdit(t *testing.T) {
	f := newFixture(t)
	f.mgr.Settings().RecompareOnChange = true

	_, err := f.s.Compare()
	require.NoError(t, err)
	f.settle()

	f.main.Delete(f.main.LineStart(3), f.main.LineStart(6), textview.ActionUser)
	f.s.OnPaint()
	f.clock.Advance(alignDelay)
	f.sch.RunDue() // recompare armed 500ms out

	f.clock.Advance(300 * time.Millisecond)
	old := f.s.Summary()

	// A second edit restarts the debounce.
	f.main.Insert(f.main.LineStart(0), "x", textview.ActionUser)
	f.s.OnPaint()
	f.clock.Advance(alignDelay)
	f.sch.RunDue()

	f.clock.Advance(400 * time.Millisecond)
	f.sch.RunDue()
	assert.Same(t, old, f.s.Summary(), "first deadline must have been replaced")

	f.clock.Advance(600 * time.Millisecond)
	f.sch.RunDue()
	assert.NotSame(t, old, f.s.Summary())
}

func TestOnSaveRunsPendingRecomparePromptly(t *testing.T) {
	f := newFixture(t)
	f.mgr.Settings().RecompareOnChange = true

	_, err := f.s.Compare()
	require.NoError(t, err)
	f.settle()

	f.main.Delete(f.main.LineStart(3), f.main.LineStart(6), textview.ActionUser)
	f.s.OnSave(textview.Main)

	f.clock.Advance(alignDelay)
	f.sch.RunDue()

	assert.Equal(t, 2, f.s.Summary().DiffLines)
}

func TestEqualizeCopiesCounterpartBlock(t *testing.T) {
	f := newFixture(t)
	_, err := f.s.Compare()
	require.NoError(t, err)
	f.settle()

	require.True(t, f.s.Equalize(textview.Main, 4))

	assert.Equal(t, 9, f.main.LineCount())
	assert.Equal(t, "delta-A", f.main.Line(3))
	assert.Equal(t, "delta-B", f.main.Line(4))
	assert.Equal(t, "tango", f.main.Line(5))
	assert.Equal(t, f.sub.Text(), f.main.Text())

	// Both blocks lost their markers and the padding is gone.
	for line := 3; line <= 5; line++ {
		assert.Equal(t, textview.Marker(0), f.main.Marker(line), "main line %d", line)
	}
	assert.Equal(t, textview.Marker(0), f.sub.Marker(3))
	assert.Equal(t, textview.Marker(0), f.sub.Marker(4))
	assert.Equal(t, 0, f.sub.Annotation(4))

	want := align.Table{entry(0, 0, 0, 0), entry(5, 0, 5, 0)}
	if d := cmp.Diff(want, f.s.Summary().Alignment); d != "" {
		t.Errorf("alignment mismatch (-want +got):\n%s", d)
	}

	// Indirectly changed, not manually: the milder warning.
	assert.Equal(t, StateDirty, f.s.State())
	assert.Equal(t, "FILE CHANGED, COMPARE RESULTS MIGHT BE INACCURATE!", f.s.StatusText())
}

func TestEqualizeUndoRestoresBothViews(t *testing.T) {
	f := newFixture(t)
	_, err := f.s.Compare()
	require.NoError(t, err)
	f.settle()

	require.True(t, f.s.Equalize(textview.Main, 4))
	require.True(t, f.main.Undo())

	assert.Equal(t, strings.Join(leftLines, "\n"), f.main.Text())

	assert.Equal(t, textview.MarkerChanged, f.main.Marker(3))
	assert.Equal(t, textview.MarkerChanged, f.main.Marker(4))
	assert.Equal(t, textview.MarkerRemoved, f.main.Marker(5))

	// The other view's markers ride along in the undo data.
	assert.Equal(t, textview.MarkerChanged, f.sub.Marker(3))
	assert.Equal(t, textview.MarkerChanged, f.sub.Marker(4))

	if d := cmp.Diff(canonicalTable(), f.s.Summary().Alignment); d != "" {
		t.Errorf("alignment mismatch (-want +got):\n%s", d)
	}
}

func TestSelectBlockHighlightsCounterpart(t *testing.T) {
	f := newFixture(t)
	_, err := f.s.Compare()
	require.NoError(t, err)
	f.settle()

	require.True(t, f.s.SelectBlock(textview.Main, 3))

	assert.Equal(t, textview.LineRange{First: 3, Last: 5}, f.main.SelectedLineRange())

	side, start, end, ok := f.s.TempRange()
	require.True(t, ok)
	assert.Equal(t, textview.Sub, side)
	assert.Equal(t, f.sub.LineStart(3), start)
	assert.Equal(t, f.sub.LineStart(5), end)

	// The counterpart highlight clears itself.
	f.clock.Advance(transientLifetime)
	f.sch.RunDue()
	_, _, _, ok = f.s.TempRange()
	assert.False(t, ok)
}

func TestSelectionCompareTracksEdits(t *testing.T) {
	f := newFixture(t)

	f.main.SetSelection(f.main.LineStart(2), f.main.LineStart(6))
	f.sub.SetSelection(f.sub.LineStart(2), f.sub.LineStart(5))

	matched, err := f.s.CompareSelections()
	require.NoError(t, err)
	assert.False(t, matched)

	assert.Equal(t, textview.LineRange{First: 2, Last: 5}, f.s.Options().Selections[textview.Main])
	assert.Equal(t, textview.LineRange{First: 2, Last: 4}, f.s.Options().Selections[textview.Sub])
	assert.Equal(t,
		"Compare Selections - 3-6 vs. 3-5 *** 3 Diff Lines:  1 Removed , 2 Changed.  1 Match",
		f.s.StatusText())

	// Deleting a line inside the range shrinks it and dirties the compare.
	f.main.Delete(f.main.LineStart(3), f.main.LineStart(4), textview.ActionUser)

	assert.Equal(t, textview.LineRange{First: 2, Last: 4}, f.s.Options().Selections[textview.Main])
	assert.Equal(t, StateDirty, f.s.State())

	// Undo brings the tracked range back with the markers.
	require.True(t, f.main.Undo())
	assert.Equal(t, textview.LineRange{First: 2, Last: 5}, f.s.Options().Selections[textview.Main])
	assert.Equal(t, textview.MarkerChanged, f.main.Marker(3))
	assert.Equal(t, textview.MarkerChanged, f.main.Marker(4))
	assert.Equal(t, textview.MarkerRemoved, f.main.Marker(5))
}

func TestSelectionCollapseClearsPair(t *testing.T) {
	f := newFixture(t)

	f.main.SetSelection(f.main.LineStart(2), f.main.LineStart(6))
	f.sub.SetSelection(f.sub.LineStart(2), f.sub.LineStart(5))

	_, err := f.s.CompareSelections()
	require.NoError(t, err)

	// Deleting the whole compared range dissolves the session.
	f.main.Delete(f.main.LineStart(2), f.main.LineStart(6), textview.ActionUser)

	assert.Nil(t, f.mgr.SessionFor(f.main))
	assert.Empty(t, f.mgr.Sessions())
	assert.Equal(t, textview.Marker(0), f.sub.Marker(3), "markers must be cleaned up")
}

func TestCompareSelectionsRequiresBothSelections(t *testing.T) {
	f := newFixture(t)

	f.main.SetSelection(f.main.LineStart(2), f.main.LineStart(6))

	_, err := f.s.CompareSelections()
	assert.ErrorIs(t, err, ErrNoSelections)
	assert.Equal(t, StatePaired, f.s.State())
}

func TestNavigationSticksToBoundaries(t *testing.T) {
	f := newFixture(t)
	_, err := f.s.Compare()
	require.NoError(t, err)
	f.settle()

	require.Equal(t, 3, f.main.CaretLine())

	// No difference below the block: stick to its last line.
	res := f.s.NextDiff()
	require.True(t, res.Found)
	assert.Equal(t, textview.Main, res.Side)
	assert.Equal(t, 5, res.Line)
	assert.Equal(t, 5, f.main.CaretLine())

	// And back up to the first.
	res = f.s.PrevDiff()
	require.True(t, res.Found)
	assert.Equal(t, 3, res.Line)
	assert.Equal(t, 3, f.main.CaretLine())

	res = f.s.LastDiff()
	require.True(t, res.Found)
	assert.Equal(t, 5, res.Line)

	res = f.s.FirstDiff()
	require.True(t, res.Found)
	assert.Equal(t, 3, res.Line)
	assert.Equal(t, 3, f.sub.CaretLine(), "caret sync mirrors the jump")
}

func TestFindUniqueNavigationSwitchesFocus(t *testing.T) {
	clock := sched.NewManualClock(time.Unix(1000, 0))
	sch := sched.NewScheduler(clock)
	mgr := NewManager(sch, DefaultSettings())

	main := textview.NewBuffer(textview.Main, "a.txt", "one\ntwo\nthree")
	sub := textview.NewBuffer(textview.Sub, "b.txt", "one\nextra\ntwo\nthree")
	s := mgr.Pair(main, sub)

	_, err := s.FindUnique()
	require.NoError(t, err)

	var focused []textview.Side
	s.FocusFunc = func(side textview.Side) { focused = append(focused, side) }

	// The only unique line lives in the other view; the jump hands it the
	// focus instead of translating the line.
	res := s.FirstDiff()
	require.True(t, res.Found)
	assert.Equal(t, textview.Sub, res.Side)
	assert.Equal(t, 1, res.Line)
	assert.Equal(t, textview.Sub, s.Focused())
	assert.Equal(t, []textview.Side{textview.Sub}, focused)
	assert.Equal(t, 1, sub.CaretLine())
}

func TestJumpBeforeCompareFindsNothing(t *testing.T) {
	f := newFixture(t)

	res := f.s.NextDiff()
	assert.False(t, res.Found)
	assert.Equal(t, -1, res.Line)
}

func TestScrollSyncMirrorsViewport(t *testing.T) {
	f := newFixture(t)
	_, err := f.s.Compare()
	require.NoError(t, err)
	f.settle()

	f.main.SetFirstVisibleRow(2)
	f.s.OnUpdateUI(textview.Main)

	assert.Equal(t, 2, f.sub.FirstVisibleRow())

	// The stored location settles on the next alignment pass.
	f.s.OnPaint()
	f.settle()
	assert.Nil(t, f.s.storedLoc)
}

func TestRealignAllRebuildsPadding(t *testing.T) {
	f := newFixture(t)
	_, err := f.s.Compare()
	require.NoError(t, err)
	f.settle()
	require.Equal(t, 1, f.sub.Annotation(4))

	f.sub.ClearAnnotations()
	f.s.RealignAll()

	assert.Equal(t, 1, f.sub.Annotation(4))
	assert.Equal(t, f.main.RowFromLine(6), f.sub.RowFromLine(5))
}

func TestManagerDropsEventsWhileGuardHeld(t *testing.T) {
	f := newFixture(t)

	f.mgr.Guard().Raise()
	f.main.Delete(f.main.LineStart(3), f.main.LineStart(6), textview.ActionUser)
	f.mgr.Guard().Release()

	assert.Equal(t, 0, f.s.bindings[textview.Main].Deleted.Len())
}

func TestManagerPairReplacesExistingSession(t *testing.T) {
	f := newFixture(t)

	other := textview.NewBuffer(textview.Sub, "other.txt", "x\ny")
	s2 := f.mgr.Pair(f.main, other)

	assert.Len(t, f.mgr.Sessions(), 1)
	assert.Same(t, s2, f.mgr.SessionFor(f.main))
	assert.Nil(t, f.mgr.SessionFor(f.sub))
}

func TestManagerFirstMark(t *testing.T) {
	f := newFixture(t)

	b := textview.NewBuffer(textview.Main, "new.txt", "n")
	f.mgr.MarkFirst(b)
	assert.Same(t, b, f.mgr.FirstMarked())

	// Pairing consumes the mark.
	other := textview.NewBuffer(textview.Sub, "o.txt", "o")
	f.mgr.Pair(b, other)
	assert.Nil(t, f.mgr.FirstMarked())
}

func TestStatusCallbackFiresOnDirty(t *testing.T) {
	f := newFixture(t)
	_, err := f.s.Compare()
	require.NoError(t, err)
	f.settle()

	calls := 0
	f.s.StatusFunc = func() { calls++ }

	f.main.Delete(f.main.LineStart(3), f.main.LineStart(6), textview.ActionUser)
	assert.Greater(t, calls, 0)
}

func TestMarkStaleFlagsReloadedComparison(t *testing.T) {
	f := newFixture(t)

	// Before the first compare a reload is uninteresting.
	f.s.MarkStale()
	assert.Equal(t, StatePaired, f.s.State())

	_, err := f.s.Compare()
	require.NoError(t, err)
	f.settle()

	f.sub.SetText(strings.Join(leftLines, "\n"))
	f.s.MarkStale()

	assert.Equal(t, StateDirty, f.s.State())
	// Not a user edit, so the softer warning.
	assert.Equal(t, "FILE CHANGED, COMPARE RESULTS MIGHT BE INACCURATE!", f.s.StatusText())
}

func TestMarkStaleRecomparesWhenAutoRecompareIsOn(t *testing.T) {
	f := newFixture(t)
	f.mgr.Settings().RecompareOnChange = true

	_, err := f.s.Compare()
	require.NoError(t, err)
	f.settle()

	// Disk reload: new content arrives without edit notifications.
	f.sub.SetText("alpha\nbravo\ncharlie\ndelta-A\ntango\nuniform\nvictor\nwhiskey")
	f.s.MarkStale()
	assert.Equal(t, StateDirty, f.s.State())

	f.clock.Advance(alignDelay)
	f.sch.RunDue()
	f.settle()

	assert.Equal(t, StateActive, f.s.State())
	assert.Equal(t, textview.MarkerChanged, f.sub.Marker(3))
}
