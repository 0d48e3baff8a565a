// Package nav moves the caret and viewport between differences. Candidates
// are searched per view and the earlier one (by screen row) wins, switching
// focus when the other view's difference comes first.
package nav

import (
	"github.com/JehleM/compare-plugin/internal/textview"
)

// Result reports where a navigation command landed.
type Result struct {
	// Side and Line locate the difference that was jumped to. Line is -1
	// when the jump only blinked the edge of a wrapped-around document.
	Side textview.Side
	Line int

	// BlinkLine asks the UI to briefly highlight a line that was already on
	// screen, -1 when the jump scrolled instead.
	BlinkLine int

	// ArrowLine places the transient arrow mark on an unmarked line sitting
	// next to visible blank padding, -1 for none.
	ArrowLine int

	// Wrapped is set when the search passed a document boundary and
	// restarted from the opposite corner.
	Wrapped bool

	// Found is false when the pair has no difference to move to.
	Found bool
}

// Navigator walks the diff markers of both views. The settings mirror the
// app-level toggles that change how jumps behave.
type Navigator struct {
	views [2]textview.View

	// FollowingCaret biases jumps from the caret line instead of the
	// viewport edge and moves the caret to the destination.
	FollowingCaret bool
	// ShowOnlyDiffs tracks the folding mode; going up does not step over
	// blank padding when everything shown is a difference anyway.
	ShowOnlyDiffs bool
	// FindUnique switches focus to the other view instead of translating
	// its candidate line, since unique lines have no counterpart.
	FindUnique bool
}

func New(main, sub textview.View) *Navigator {
	n := &Navigator{FollowingCaret: true}
	n.views[textview.Main] = main
	n.views[textview.Sub] = sub
	return n
}

// Next jumps to the first difference after the current position.
func (n *Navigator) Next(focused textview.Side, wrapAround bool) Result {
	return n.step(focused, true, wrapAround)
}

// Previous jumps to the last difference before the current position.
func (n *Navigator) Previous(focused textview.Side, wrapAround bool) Result {
	return n.step(focused, false, wrapAround)
}

// First jumps to the first difference of the pair.
func (n *Navigator) First(focused textview.Side) Result {
	return n.jump(focused, 0, 0, true, true, false)
}

// Last jumps to the last difference of the pair.
func (n *Navigator) Last(focused textview.Side) Result {
	return n.last(focused, true, false)
}

func (n *Navigator) last(focused textview.Side, corner, noBlink bool) Result {
	return n.jump(focused,
		n.views[textview.Main].LineCount(),
		n.views[textview.Sub].LineCount(),
		false, corner, noBlink)
}

func (n *Navigator) step(focused textview.Side, down, wrapAround bool) Result {
	cur := n.views[focused]
	other := n.views[focused.Other()]

	var starts [2]int
	var res Result
	jumped := false

	if down {
		currentLine := n.lastSeen(focused)
		if n.FollowingCaret {
			currentLine = cur.CaretLine()
		}

		if n.FollowingCaret && n.marked(focused, currentLine) && currentLine > n.lastSeen(focused) {
			// Current line is marked but scrolled off - get it into view.
			cur.CenterAt(currentLine)
			res = Result{Side: focused, Line: currentLine, BlinkLine: -1, ArrowLine: -1, Found: true}
			jumped = true
		} else {
			notAnnotated := cur.Annotation(currentLine) == 0
			if !notAnnotated && n.visibleAdjacentAnnotation(focused, currentLine, down) {
				currentLine++
			}

			otherLine := n.lastSeen(focused.Other())
			if n.FollowingCaret {
				otherLine = textview.MatchingLine(cur, other, currentLine)
			}
			if notAnnotated && other.Annotation(otherLine) > 0 {
				otherLine++
			}

			starts[focused] = currentLine
			starts[focused.Other()] = otherLine
		}
	} else {
		currentLine := n.firstSeen(focused)
		if n.FollowingCaret {
			currentLine = cur.CaretLine()
		}

		if n.FollowingCaret && n.marked(focused, currentLine) && currentLine < n.firstSeen(focused) {
			cur.CenterAt(currentLine)
			res = Result{Side: focused, Line: currentLine, BlinkLine: -1, ArrowLine: -1, Found: true}
			jumped = true
		} else {
			if n.visibleAdjacentAnnotation(focused, currentLine, down) {
				currentLine--
			}

			otherLine := n.firstSeen(focused.Other())
			if n.FollowingCaret {
				otherLine = textview.MatchingLine(cur, other, currentLine)
			}

			starts[focused] = currentLine
			starts[focused.Other()] = otherLine
		}
	}

	if !jumped {
		if down {
			res = n.jump(focused,
				nextUnmarked(n.views[textview.Main], starts[textview.Main]),
				nextUnmarked(n.views[textview.Sub], starts[textview.Sub]),
				true, false, false)
		} else {
			res = n.jump(focused,
				prevUnmarked(n.views[textview.Main], starts[textview.Main]),
				prevUnmarked(n.views[textview.Sub], starts[textview.Sub]),
				false, false, false)
		}
	}

	if !res.Found {
		if wrapAround {
			if down {
				res = n.jump(focused, 0, 0, true, true, true)
			} else {
				res = n.last(focused, true, true)
			}
			res.Wrapped = res.Found
		} else {
			// Stick to the boundary difference instead.
			if down {
				res = n.last(focused, false, false)
			} else {
				res = n.jump(focused, 0, 0, true, false, false)
			}
		}
	}
	return res
}

// jump resolves the per-view candidates starting at mainStart/subStart and
// moves there. Negative start lines mean the search already ran off the
// document; corner mode re-issues from the boundary unconditionally.
func (n *Navigator) jump(focused textview.Side, mainStart, subStart int, down, corner, noBlink bool) Result {
	res := Result{Side: focused, Line: -1, BlinkLine: -1, ArrowLine: -1}
	view := focused
	other := view.Other()

	if !n.FindUnique && !corner {
		current := n.edgeLine(view, down)
		if n.FollowingCaret {
			current = n.views[view].CaretLine()
		}

		// The bias line sits right next to blank padding that is scrolled
		// off screen and covers a marked line in the other view. Bring it
		// into view instead of skipping past it.
		if !n.marked(view, current) &&
			n.adjacentAnnotation(view, current, down) &&
			!n.visibleAdjacentAnnotation(view, current, down) &&
			n.marked(other, textview.MatchingLine(n.views[view], n.views[other], current)+1) {
			n.views[view].CenterAt(current)
			res.Line = current
			res.Found = true
			n.arrowAt(&res, view, current, down)
			return res
		}
	}

	cornerStart := mainStart < 0 && subStart < 0
	if cornerStart {
		if down {
			mainStart, subStart = 0, 0
		} else {
			mainStart = n.views[textview.Main].LineCount() - 1
			subStart = n.views[textview.Sub].LineCount() - 1
		}
	}

	var mainNext, subNext int
	if down {
		mainNext = n.views[textview.Main].NextMarked(mainStart, textview.MaskChanges)
		subNext = n.views[textview.Sub].NextMarked(subStart, textview.MaskChanges)
	} else {
		mainNext = n.views[textview.Main].PrevMarked(mainStart, textview.MaskChanges)
		subNext = n.views[textview.Sub].PrevMarked(subStart, textview.MaskChanges)
	}
	// A candidate on the start line itself only counts when jumping straight
	// to a corner; relative steps must move.
	if mainNext == mainStart && !corner && !cornerStart {
		mainNext = -1
	}
	if subNext == subStart && !corner && !cornerStart {
		subNext = -1
	}

	line, otherLine := mainNext, subNext
	if view == textview.Sub {
		line, otherLine = subNext, mainNext
	}

	if line < 0 {
		if otherLine < 0 {
			return res
		}
		if n.FindUnique {
			view, other = other, view
			line = otherLine
		} else {
			line = textview.MatchingLine(n.views[other], n.views[view], otherLine)
		}
	} else if otherLine >= 0 {
		vis := n.views[view].RowFromLine(line)
		otherVis := n.views[other].RowFromLine(otherLine)

		switchViews := otherVis < vis
		if !down {
			switchViews = otherVis > vis
		}
		if switchViews {
			if n.FindUnique {
				view, other = other, view
				line = otherLine
			} else {
				line = textview.MatchingLine(n.views[other], n.views[view], otherLine)
			}
		}
	}

	if !down && !n.ShowOnlyDiffs && n.views[view].Annotation(line) > 0 {
		line++
	}

	// The search wrapped on its own - the up/down notion is inverted now,
	// so moving could drag the caret backwards. Blink instead.
	if !corner && cornerStart {
		edge := n.edgeLine(view, down)
		current := edge
		if n.FollowingCaret {
			current = n.views[view].CaretLine()
		}

		dontChange := (down && current <= line) || (!down && current >= line)
		if dontChange {
			blink := line
			if !n.views[view].LineOnScreen(line) {
				blink = edge
				if (down && edge > line) || (!down && edge < line) {
					dontChange = false
				}
			}
			if dontChange {
				res.Side = view
				res.BlinkLine = blink
				res.Found = true
				if n.FollowingCaret {
					n.arrowAt(&res, view, n.views[view].CaretLine(), down)
				}
				return res
			}
		}
	}

	if !n.views[view].LineOnScreen(line) ||
		(!n.marked(view, line) && n.adjacentAnnotation(view, line, down) &&
			!n.visibleAdjacentAnnotation(view, line, down)) {
		n.views[view].CenterAt(line)
		noBlink = true
	}

	if n.FollowingCaret && line != n.views[view].CaretLine() {
		pos := n.views[view].LineStart(line)
		if down && n.views[view].Annotation(line) > 0 && !n.marked(view, line) {
			pos = n.views[view].LineEnd(line)
		}
		n.views[view].SetEmptySelection(pos)
		noBlink = true
	}

	if !noBlink {
		res.BlinkLine = line
	}
	res.Side = view
	res.Line = line
	res.Found = true
	n.arrowAt(&res, view, line, down)
	return res
}

// arrowAt marks the landing spot with the transient arrow when it is an
// unmarked line next to visible blank padding, so the user sees which blank
// block the jump meant.
func (n *Navigator) arrowAt(res *Result, side textview.Side, line int, down bool) {
	if line >= 0 && !n.marked(side, line) && n.visibleAdjacentAnnotation(side, line, down) {
		res.ArrowLine = line
	}
}

func (n *Navigator) marked(side textview.Side, line int) bool {
	return n.views[side].Marker(line)&textview.MaskChanges != 0
}

// firstSeen and lastSeen are the top and bottom document lines of the
// viewport.
func (n *Navigator) firstSeen(side textview.Side) int {
	v := n.views[side]
	return v.LineFromRow(v.FirstVisibleRow())
}

func (n *Navigator) lastSeen(side textview.Side) int {
	v := n.views[side]
	return v.LineFromRow(v.FirstVisibleRow() + v.RowsOnScreen() - 1)
}

func (n *Navigator) edgeLine(side textview.Side, down bool) int {
	if down {
		return n.lastSeen(side)
	}
	return n.firstSeen(side)
}

// adjacentAnnotation reports blank padding right next to line in the walk
// direction: below the line itself going down, above it (attached to the
// previous line) going up.
func (n *Navigator) adjacentAnnotation(side textview.Side, line int, down bool) bool {
	v := n.views[side]
	if down {
		return v.Annotation(line) > 0
	}
	return line > 0 && v.Annotation(line-1) > 0
}

// visibleAdjacentAnnotation additionally requires the nearest padding row to
// be inside the viewport.
func (n *Navigator) visibleAdjacentAnnotation(side textview.Side, line int, down bool) bool {
	v := n.views[side]
	first := v.FirstVisibleRow()
	last := first + v.RowsOnScreen() - 1

	if down {
		if v.Annotation(line) == 0 {
			return false
		}
		row := v.RowFromLine(line) + 1
		return row >= first && row <= last
	}
	if line <= 0 || v.Annotation(line-1) == 0 {
		return false
	}
	row := v.RowFromLine(line) - 1
	return row >= first && row <= last
}

func nextUnmarked(v textview.View, from int) int {
	for line := max(from, 0); line < v.LineCount(); line++ {
		if v.Marker(line)&textview.MaskChanges == 0 {
			return line
		}
	}
	return -1
}

func prevUnmarked(v textview.View, from int) int {
	for line := min(from, v.LineCount()-1); line >= 0; line-- {
		if v.Marker(line)&textview.MaskChanges == 0 {
			return line
		}
	}
	return -1
}
