// Package align keeps the bidirectional line-correspondence table between
// the two compared views. Each entry pins a main line to the sub line it
// must share a screen row with; the table is rebuilt wholesale on compare
// and shifted incrementally as edits move lines around.
package align

import "github.com/JehleM/compare-plugin/internal/textview"

// Point is one side of an alignment entry: a document line and the diff
// classification of the block starting there.
type Point struct {
	Line int
	Mask textview.Marker
}

// Entry pairs the corresponding lines of the two views, indexed by side.
type Entry struct {
	Views [2]Point
}

// Table is the ordered list of alignment entries. Entries are strictly
// ascending by main line and non-decreasing by sub line; every operation
// preserves that ordering.
type Table []Entry

// IndexAtOrAfter returns the index of the first entry whose line on the
// given side is at or after line, or len(t) when there is none. The search
// gallops with halving steps and finishes with a short linear scan.
func (t Table) IndexAtOrAfter(side textview.Side, line int) int {
	idx := 0
	for step := len(t) / 2; step > 0; step /= 2 {
		if t[idx+step].Views[side].Line < line {
			idx += step
		}
	}
	for idx < len(t) && t[idx].Views[side].Line < line {
		idx++
	}
	return idx
}

// CorrespondingLine returns the other side's line for an exact alignment
// boundary at line, or -1 when line is not a boundary on the given side.
func (t Table) CorrespondingLine(side textview.Side, line int) int {
	if line < 0 {
		return -1
	}
	idx := t.IndexAtOrAfter(side, line)
	if idx >= len(t) || t[idx].Views[side].Line != line {
		return -1
	}
	return t[idx].Views[side.Other()].Line
}

// Shift adjusts the table for an edit at fromLine on the given side. A
// positive delta (insert) moves every entry at or after fromLine down by
// delta. A negative delta (delete of -delta lines) first erases the entries
// whose line falls inside the deleted range [fromLine, fromLine-delta), then
// moves the remainder up.
func (t *Table) Shift(side textview.Side, fromLine, delta int) {
	if delta == 0 {
		return
	}
	s := *t
	start := s.IndexAtOrAfter(side, fromLine)
	if start >= len(s) {
		return
	}
	if delta < 0 {
		end := s.IndexAtOrAfter(side, fromLine-delta)
		if start < end {
			s = append(s[:start], s[end:]...)
			*t = s
		}
	}
	for i := start; i < len(s); i++ {
		s[i].Views[side].Line += delta
	}
}

// Clone returns an independent copy for undo snapshots.
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	copy(out, t)
	return out
}

// Empty reports whether the table has no entries.
func (t Table) Empty() bool { return len(t) == 0 }
