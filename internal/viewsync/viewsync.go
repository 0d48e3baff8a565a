// Package viewsync keeps the two compared views moving as one: it mirrors
// scrolling and the caret between them and renders the alignment table as
// blank padding rows so corresponding lines share a screen row.
package viewsync

import (
	"github.com/JehleM/compare-plugin/internal/align"
	"github.com/JehleM/compare-plugin/internal/textview"
)

// Coordinator synchronizes the pair. The settings mirror the app-level
// toggles; the guard is raised around every mutation so the session's edit
// handlers ignore the echo.
type Coordinator struct {
	views [2]textview.View
	guard *textview.Guard

	FollowingCaret     bool
	ShowOnlyDiffs      bool
	ShowOnlySelections bool
}

func New(main, sub textview.View, guard *textview.Guard) *Coordinator {
	c := &Coordinator{guard: guard, FollowingCaret: true}
	c.views[textview.Main] = main
	c.views[textview.Sub] = sub
	return c
}

// Sync aligns the other view to the bias view: viewport always, caret only
// when the bias view holds the focus and caret following is on.
func (c *Coordinator) Sync(bias textview.Side, biasFocused bool) {
	c.SyncScroll(bias)
	if c.FollowingCaret && biasFocused {
		c.SyncCaret(bias)
	}
}

// SyncScroll scrolls the other view to the bias view's first visible row,
// clamped so the other document's last line stays reachable.
func (c *Coordinator) SyncScroll(bias textview.Side) {
	v, o := c.views[bias], c.views[bias.Other()]

	firstVisible := v.FirstVisibleRow()
	otherFirstVisible := o.FirstVisibleRow()
	firstLine := v.LineFromRow(firstVisible)

	otherRow := -1
	if firstLine < v.LineCount()-1 {
		if firstVisible != otherFirstVisible {
			otherLastVisible := o.RowFromLine(o.LineCount() - 1)
			if firstVisible > otherLastVisible {
				otherRow = otherLastVisible
			} else {
				otherRow = firstVisible
			}
		}
	} else if firstVisible > otherFirstVisible {
		otherRow = firstVisible
	}

	if otherRow >= 0 {
		c.guard.Raise()
		o.SetFirstVisibleRow(otherRow)
		c.guard.Release()
	}
}

// SyncCaret places an empty selection in the other view on the line sharing
// the bias caret's screen row. An active selection there is left alone.
func (c *Coordinator) SyncCaret(bias textview.Side) {
	v, o := c.views[bias], c.views[bias.Other()]

	otherLine := textview.MatchingLine(v, o, v.CaretLine())
	if otherLine == o.CaretLine() || o.HasSelection() {
		return
	}

	c.guard.Raise()
	o.SetEmptySelection(o.LineStart(otherLine))
	c.guard.Release()
}

// AlignmentNeeded reports whether any alignment point near the viewport of
// the given side sits on mismatched screen rows. Points through line 0 are
// skipped since padding cannot be drawn above the first line.
func (c *Coordinator) AlignmentNeeded(side textview.Side, table align.Table) bool {
	v := c.views[side]
	firstLine := v.LineFromRow(v.FirstVisibleRow())
	lastLine := v.LineFromRow(v.FirstVisibleRow() + v.RowsOnScreen() - 1)

	i := table.IndexAtOrAfter(side, firstLine)
	if i >= len(table) {
		return false
	}
	if i > 0 {
		i--
	}
	for i < len(table) &&
		(table[i].Views[textview.Main].Line == 0 || table[i].Views[textview.Sub].Line == 0) {
		i++
	}

	for ; i < len(table); i++ {
		e := table[i]
		mainMask := e.Views[textview.Main].Mask
		subMask := e.Views[textview.Sub].Mask

		rowsDiffer := c.views[textview.Main].RowFromLine(e.Views[textview.Main].Line) !=
			c.views[textview.Sub].RowFromLine(e.Views[textview.Sub].Line)

		if c.ShowOnlyDiffs {
			if mainMask != 0 && subMask != 0 && rowsDiffer {
				return true
			}
		} else if mainMask == subMask && rowsDiffer {
			return true
		}

		if e.Views[side].Line > lastLine {
			break
		}
	}
	return false
}

// AlignViews renders the table: folding per the show modes, then one blank
// padding block per misaligned point, sized by the visible-row mismatch.
// Alignment through line 0 is skipped and compensated at the next point with
// an extra padding row on both sides.
func (c *Coordinator) AlignViews(table align.Table, selectionCompare bool, selections [2]textview.LineRange) {
	c.guard.Raise()
	defer c.guard.Release()

	switch {
	case c.ShowOnlyDiffs:
		c.hideUnmarked(textview.Main)
		c.hideUnmarked(textview.Sub)
	case selectionCompare && c.ShowOnlySelections:
		c.hideOutside(textview.Main, selections[textview.Main])
		c.hideOutside(textview.Sub, selections[textview.Sub])
	default:
		c.views[textview.Main].ShowAllLines()
		c.views[textview.Sub].ShowAllLines()
	}

	mainEnd := c.views[textview.Main].LineCount() - 1
	subEnd := c.views[textview.Sub].LineCount() - 1

	lineZeroSkipped := false

	for i := 0; i < len(table) &&
		table[i].Views[textview.Main].Line <= mainEnd &&
		table[i].Views[textview.Sub].Line <= subEnd; i++ {
		e := table[i]
		mainLine := e.Views[textview.Main].Line
		subLine := e.Views[textview.Sub].Line

		c.clearBlank(textview.Main, mainLine)
		c.clearBlank(textview.Sub, subLine)

		mismatch := c.views[textview.Main].RowFromLine(mainLine) -
			c.views[textview.Sub].RowFromLine(subLine)

		if mismatch != 0 && (mainLine == 0 || subLine == 0) {
			lineZeroSkipped = true
			continue
		}

		switch {
		case mismatch > 0:
			if i+1 < len(table) && subLine == table[i+1].Views[textview.Sub].Line {
				continue
			}
			if lineZeroSkipped {
				c.addBlank(textview.Main, mainLine, 1)
				c.addBlank(textview.Sub, subLine, mismatch+1)
				lineZeroSkipped = false
			} else {
				c.addBlank(textview.Sub, subLine, mismatch)
			}
		case mismatch < 0:
			if i+1 < len(table) && mainLine == table[i+1].Views[textview.Main].Line {
				continue
			}
			if lineZeroSkipped {
				c.addBlank(textview.Main, mainLine, -mismatch+1)
				c.addBlank(textview.Sub, subLine, 1)
				lineZeroSkipped = false
			} else {
				c.addBlank(textview.Main, mainLine, -mismatch)
			}
		}
	}

	if selectionCompare {
		c.markSelectionEdges(selections)
	}
}

// markSelectionEdges pads a separator row around the compared ranges so the
// block boundaries stand out.
func (c *Coordinator) markSelectionEdges(selections [2]textview.LineRange) {
	selMain := selections[textview.Main]
	selSub := selections[textview.Sub]

	if selMain.First > 0 && selSub.First > 0 {
		mainRows := c.blankAbove(textview.Main, selMain.First)
		subRows := c.blankAbove(textview.Sub, selSub.First)
		if mainRows == 0 || subRows == 0 {
			mainRows++
			subRows++
		}
		c.addBlank(textview.Main, selMain.First, mainRows)
		c.addBlank(textview.Sub, selSub.First, subRows)
	}

	mainRows := c.blankAbove(textview.Main, selMain.Last+1)
	subRows := c.blankAbove(textview.Sub, selSub.Last+1)
	if mainRows == 0 || subRows == 0 {
		mainRows++
		subRows++
	}
	c.addBlank(textview.Main, selMain.Last+1, mainRows)
	c.addBlank(textview.Sub, selSub.Last+1, subRows)
}

// addBlank renders rows of blank padding just above line by annotating the
// previous unhidden line.
func (c *Coordinator) addBlank(side textview.Side, line, rows int) {
	v := c.views[side]
	if at := prevUnhidden(v, line); at >= 0 {
		v.SetAnnotation(at, rows)
	}
}

func (c *Coordinator) clearBlank(side textview.Side, line int) {
	v := c.views[side]
	if at := prevUnhidden(v, line); at >= 0 && v.Annotation(at) > 0 {
		v.SetAnnotation(at, 0)
	}
}

func (c *Coordinator) blankAbove(side textview.Side, line int) int {
	v := c.views[side]
	at := prevUnhidden(v, line)
	if at < 0 {
		return 0
	}
	return v.Annotation(at)
}

func (c *Coordinator) hideUnmarked(side textview.Side) {
	v := c.views[side]
	v.ShowAllLines()

	count := v.LineCount()
	for line := 0; line < count; {
		if v.Marker(line)&textview.MaskChanges != 0 {
			line++
			continue
		}
		first := line
		for line < count && v.Marker(line)&textview.MaskChanges == 0 {
			line++
		}
		v.HideLines(first, line-1)
	}
}

func (c *Coordinator) hideOutside(side textview.Side, r textview.LineRange) {
	v := c.views[side]
	v.ShowAllLines()
	if !r.Valid() {
		return
	}
	if r.First > 0 {
		v.HideLines(0, r.First-1)
	}
	if last := v.LineCount() - 1; r.Last < last {
		v.HideLines(r.Last+1, last)
	}
}

func prevUnhidden(v textview.View, line int) int {
	for l := line - 1; l >= 0; l-- {
		if !v.LineHidden(l) {
			return l
		}
	}
	return -1
}

// Location remembers where the caret sat on screen so alignment passes can
// put the viewport back; annotations shuffle rows around, not text, so the
// caret position itself is stable.
type Location struct {
	Side   textview.Side
	caret  int
	offset int
}

// SaveLocation captures the focused view's caret and its row offset from
// the top of the viewport.
func (c *Coordinator) SaveLocation(side textview.Side) *Location {
	v := c.views[side]
	line := v.CaretLine()
	return &Location{
		Side:   side,
		caret:  v.CaretPosition(),
		offset: v.RowFromLine(line) - v.FirstVisibleRow(),
	}
}

// RestoreLocation scrolls the view so the caret returns to its saved screen
// offset. Reports whether the caret line ended up visible.
func (c *Coordinator) RestoreLocation(loc *Location) bool {
	v := c.views[loc.Side]
	c.guard.Raise()
	defer c.guard.Release()

	line := v.LineFromPosition(loc.caret)
	v.SetFirstVisibleRow(v.RowFromLine(line) - loc.offset)
	return v.LineOnScreen(line)
}
