package session

import (
	"log"

	"github.com/JehleM/compare-plugin/internal/textview"
)

// markedBlock expands line to the contiguous run of marked lines around it.
// NoRange when line itself is not marked.
func markedBlock(v textview.View, line int) textview.LineRange {
	if line < 0 || line >= v.LineCount() || v.Marker(line)&textview.MaskChanges == 0 {
		return textview.NoRange
	}

	r := textview.LineRange{First: line, Last: line}
	for r.First > 0 && v.Marker(r.First-1)&textview.MaskChanges != 0 {
		r.First--
	}
	for r.Last+1 < v.LineCount() && v.Marker(r.Last+1)&textview.MaskChanges != 0 {
		r.Last++
	}
	return r
}

// blockEndPos is the position just past the last line of the block: the
// start of the following line, or the end of the document.
func blockEndPos(v textview.View, last int) int {
	if last+1 < v.LineCount() {
		return v.LineStart(last + 1)
	}
	return v.Length()
}

// rowMatch maps the screen row of line in v, shifted by offset rows, to the
// document line of o occupying it.
func rowMatch(v, o textview.View, line, offset int) int {
	return o.LineFromRow(v.RowFromLine(line) + offset)
}

// rowMatchExact is rowMatch returning -1 unless a line of o starts exactly
// on that row (the row may fall inside blank padding).
func rowMatchExact(v, o textview.View, line, offset int) int {
	row := v.RowFromLine(line) + offset
	l := o.LineFromRow(row)
	if o.RowFromLine(l) != row {
		return -1
	}
	return l
}

// counterpartBlock finds the other view's marked block facing the given own
// block, or facing the padding below line when ownBlock is invalid. The row
// window covers adjacent padding so blocks shifted by alignment still meet.
func (s *Session) counterpartBlock(side textview.Side, line int, ownBlock textview.LineRange) textview.LineRange {
	v := s.bindings[side].View
	o := s.bindings[side.Other()].View

	var r textview.LineRange

	if !ownBlock.Valid() {
		r.First = rowMatch(v, o, line, 1)
		r.Last = rowMatch(v, o, line+1, -1)
	} else {
		startLine := ownBlock.First
		startOffset := 0

		if !s.settings.ShowOnlyDiffs && startLine > 1 && v.Annotation(startLine-1) > 0 {
			startLine--
			startOffset = 1
		}

		endLine := ownBlock.Last
		endOffset := 0
		if !s.settings.ShowOnlyDiffs {
			endOffset += v.Annotation(endLine)
		}

		r.First = rowMatchExact(v, o, startLine, startOffset)
		if r.First < 0 {
			r.First = rowMatch(v, o, startLine, startOffset) + 1
		}
		r.Last = rowMatch(v, o, endLine, endOffset)
	}

	// Trim the row window inward to actual marked lines.
	if !s.settings.ShowOnlyDiffs {
		for r.First <= r.Last && o.Marker(r.First)&textview.MaskChanges == 0 {
			r.First++
		}
	} else {
		l := r.Last
		for l > r.First && o.Marker(l)&textview.MaskChanges != 0 {
			l--
		}
		if l > r.First {
			r.First = l + 1
		}
	}

	if r.First > r.Last {
		return textview.NoRange
	}

	for r.Last >= r.First && o.Marker(r.Last)&textview.MaskChanges == 0 {
		r.Last--
	}
	if r.Last < r.First {
		return textview.NoRange
	}
	return r
}

// blockAt resolves the clicked line into the own block (possibly invalid
// when the click sat on pure padding) or reports that nothing is there.
func (s *Session) blockAt(side textview.Side, line int) (textview.LineRange, bool) {
	v := s.bindings[side].View

	if line < 0 || line >= v.LineCount() {
		return textview.NoRange, false
	}
	if v.Marker(line)&textview.MaskChanges == 0 && v.Annotation(line) == 0 {
		return textview.NoRange, false
	}

	block := markedBlock(v, line)
	if !block.Valid() {
		block = markedBlock(v, line+1)
	}
	return block, true
}

// SelectBlock selects the diff block at line and briefly highlights its
// counterpart in the other view. In find-unique mode only the own block is
// selected since there is no counterpart.
func (s *Session) SelectBlock(side textview.Side, line int) bool {
	if s.summary == nil {
		return false
	}

	block, ok := s.blockAt(side, line)
	if !ok {
		return false
	}

	v := s.bindings[side].View

	s.guard.Raise()
	defer s.guard.Release()

	if s.opts.FindUnique {
		if block.Valid() {
			v.SetSelection(v.LineStart(block.First), blockEndPos(v, block.Last))
		} else {
			v.SetEmptySelection(v.CaretPosition())
		}
		s.clearTempRange()
		return block.Valid()
	}

	other := s.counterpartBlock(side, line, block)

	if block.Valid() {
		v.SetSelection(v.LineStart(block.First), blockEndPos(v, block.Last))
	} else {
		v.SetEmptySelection(v.CaretPosition())
	}

	if other.Valid() {
		o := s.bindings[side.Other()].View
		s.setTempRange(side.Other(), o.LineStart(other.First), blockEndPos(o, other.Last))
	} else {
		s.clearTempRange()
	}

	return block.Valid() || other.Valid()
}

// Equalize copies the counterpart diff block from the other view over the
// block at line, leaving both sides equal there. The other view's markers
// are captured first so undoing the edit can put them back. Returns false
// when line carries no block to equalize.
func (s *Session) Equalize(side textview.Side, line int) bool {
	if s.summary == nil || s.opts.FindUnique {
		return false
	}

	block, ok := s.blockAt(side, line)
	if !ok {
		return false
	}

	v := s.bindings[side].View
	o := s.bindings[side.Other()].View

	other := s.counterpartBlock(side, line, block)
	if !block.Valid() && !other.Valid() {
		return false
	}

	s.inEqualize++
	defer func() { s.inEqualize-- }()

	v.BeginUndoAction()
	defer v.EndUndoAction()

	firstVisible := v.FirstVisibleRow()
	defer v.SetFirstVisibleRow(firstVisible)

	v.SetEmptySelection(v.CaretPosition())
	s.clearTempRange()

	oStartPos, oEndPos := -1, -1

	if other.Valid() {
		count := other.Len()
		oStartPos = o.LineStart(other.First)
		oEndPos = blockEndPos(o, other.Last)

		if !s.settings.RecompareOnChange {
			s.copiedMarks = o.Markers(other.First, count, textview.MaskAll, true)
			for l := other.First; l <= other.Last; l++ {
				o.SetAnnotation(l, 0)
			}
		} else {
			for l := other.First; l <= other.Last; l++ {
				o.ClearMarker(l, textview.MaskAll)
			}
		}
	}

	ownStartPos := -1

	if block.Valid() {
		ownStartPos = v.LineStart(block.First)
		endPos := blockEndPos(v, block.Last)

		if other.Valid() && block.First > 0 {
			v.SetAnnotation(block.First-1, 0)
		}

		lastMarked := endPos == v.Length()

		v.Delete(ownStartPos, endPos, textview.ActionUser)

		if lastMarked {
			v.ClearMarker(v.LineFromPosition(ownStartPos), textview.MaskAll)
		}
	}

	if other.Valid() {
		lastLine := v.LineCount() - 1
		copyTillEnd := false
		insertPos := -1

		if !block.Valid() {
			if line < lastLine {
				at := line + 1
				if s.settings.ShowOnlyDiffs {
					at = s.summary.Alignment.CorrespondingLine(side.Other(), other.First)
					if at < 0 {
						return false
					}
				}
				insertPos = v.LineStart(at)
			} else {
				// Padding after the last line: append, bringing the leading
				// newline from the other document.
				insertPos = v.LineEnd(line)
				if other.First > 0 {
					oStartPos = o.LineEnd(other.First - 1)
				}
				copyTillEnd = true
			}
			v.SetAnnotation(line, 0)
		} else {
			insertPos = ownStartPos
			if v.LineFromPosition(ownStartPos) == lastLine {
				copyTillEnd = true
			}
		}

		if copyTillEnd {
			oEndPos = o.Length()
		}

		text := o.TextRange(oStartPos, oEndPos)

		if other.First > 0 {
			o.SetAnnotation(other.First-1, 0)
		}

		v.Insert(insertPos, text, textview.ActionUser)
	}

	log.Printf("session: equalized block at %s line %d", side, line+1)

	if !s.settings.RecompareOnChange && s.settings.ShowOnlyDiffs {
		s.coord.AlignViews(s.summary.Alignment, s.opts.SelectionCompare, s.opts.Selections)
	}

	return true
}
