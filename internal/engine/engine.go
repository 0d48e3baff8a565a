// Package engine computes the line diff between two views and turns it into
// per-line markers, an alignment table and summary counts. It only adds
// markers; clearing stale state before a run is the caller's job.
package engine

import (
	"github.com/sergi/go-diff/diffmatchpatch"
	"znkr.io/diff"
	"znkr.io/diff/textdiff"

	"github.com/JehleM/compare-plugin/internal/align"
	"github.com/JehleM/compare-plugin/internal/textview"
)

// Span is a half-open byte range [Start, End) within one line's text.
type Span struct {
	Start int
	End   int
}

// Summary is the result of one comparison: the counts shown in the status
// bar, the alignment table the session keeps live afterwards, and the
// intra-line changed ranges when char precision is on.
type Summary struct {
	DiffLines int
	Added     int
	Removed   int
	Changed   int
	Moved     int
	Match     int

	Alignment align.Table

	// ChangedRanges maps a line to its changed spans, per side. Nil maps
	// when char precision is off.
	ChangedRanges [2]map[int][]Span
}

// Compare diffs the two views line by line, marks every classified line and
// returns the summary. Changed lines are the paired halves of replace
// blocks, the excess is added or removed, and with DetectMoves relocated
// lines are re-marked as moved.
func Compare(main, sub textview.View, opts Options) *Summary {
	if opts.FindUnique {
		return findUnique(main, sub, opts)
	}

	pm := prepare(main, opts, opts.Selections[textview.Main])
	ps := prepare(sub, opts, opts.Selections[textview.Sub])

	edits := textdiff.Edits(pm.text, ps.text, textdiff.IndentHeuristic())

	sum := &Summary{}
	if opts.CharPrecision {
		sum.ChangedRanges[textview.Main] = make(map[int][]Span)
		sum.ChangedRanges[textview.Sub] = make(map[int][]Span)
	}

	var (
		table      align.Table
		mi, si     int
		dels, inss []int
		inMatch    bool
	)

	flushBlock := func() {
		if len(dels) == 0 && len(inss) == 0 {
			return
		}
		pairs := min(len(dels), len(inss))

		entry := align.Entry{}
		entry.Views[textview.Main] = align.Point{Line: pm.lineAfter(mi-len(dels), main)}
		entry.Views[textview.Sub] = align.Point{Line: ps.lineAfter(si-len(inss), sub)}
		switch {
		case pairs > 0:
			entry.Views[textview.Main].Mask = textview.MarkerChanged
			entry.Views[textview.Sub].Mask = textview.MarkerChanged
		case len(dels) > 0:
			entry.Views[textview.Main].Mask = textview.MarkerRemoved
		default:
			entry.Views[textview.Sub].Mask = textview.MarkerAdded
		}
		table = append(table, entry)

		for i := 0; i < pairs; i++ {
			main.AddMarker(dels[i], textview.MarkerChanged)
			sub.AddMarker(inss[i], textview.MarkerChanged)
			sum.Changed++
			if opts.CharPrecision {
				sm, ss := charRanges(main.Line(dels[i]), sub.Line(inss[i]))
				if len(sm) > 0 {
					sum.ChangedRanges[textview.Main][dels[i]] = sm
				}
				if len(ss) > 0 {
					sum.ChangedRanges[textview.Sub][inss[i]] = ss
				}
			}
		}
		for _, l := range dels[pairs:] {
			main.AddMarker(l, textview.MarkerRemoved)
			sum.Removed++
		}
		for _, l := range inss[pairs:] {
			sub.AddMarker(l, textview.MarkerAdded)
			sum.Added++
		}
		dels, inss = nil, nil
	}

	for _, ed := range edits {
		switch ed.Op {
		case diff.Match:
			flushBlock()
			if !inMatch {
				e := align.Entry{}
				e.Views[textview.Main] = align.Point{Line: pm.kept[mi]}
				e.Views[textview.Sub] = align.Point{Line: ps.kept[si]}
				table = append(table, e)
				inMatch = true
			}
			sum.Match++
			mi++
			si++
		case diff.Delete:
			inMatch = false
			dels = append(dels, pm.kept[mi])
			mi++
		case diff.Insert:
			inMatch = false
			inss = append(inss, ps.kept[si])
			si++
		}
	}
	flushBlock()

	if opts.DetectMoves {
		detectMoves(main, sub, pm, ps, sum)
	}

	sum.Alignment = table
	sum.DiffLines = sum.Added + sum.Removed + sum.Changed + sum.Moved
	return sum
}

// detectMoves re-pairs removed lines with added lines of identical
// normalized text, in document order, and re-marks both halves as moved.
// Lines that normalize to nothing never count as moves.
func detectMoves(main, sub textview.View, pm, ps prepared, sum *Summary) {
	added := make(map[string][]int)
	for i, line := range ps.kept {
		if sub.Marker(line)&textview.MarkerAdded != 0 && ps.norm[i] != "" {
			added[ps.norm[i]] = append(added[ps.norm[i]], line)
		}
	}
	for i, line := range pm.kept {
		if main.Marker(line)&textview.MarkerRemoved == 0 || pm.norm[i] == "" {
			continue
		}
		q := added[pm.norm[i]]
		if len(q) == 0 {
			continue
		}
		other := q[0]
		added[pm.norm[i]] = q[1:]

		main.ClearMarker(line, textview.MarkerRemoved)
		main.AddMarker(line, textview.MarkerMoved)
		sub.ClearMarker(other, textview.MarkerAdded)
		sub.AddMarker(other, textview.MarkerMoved)
		sum.Removed--
		sum.Added--
		sum.Moved++
	}
}

// findUnique marks the lines that have no counterpart anywhere in the other
// document. No pairing, no alignment.
func findUnique(main, sub textview.View, opts Options) *Summary {
	pm := prepare(main, opts, opts.Selections[textview.Main])
	ps := prepare(sub, opts, opts.Selections[textview.Sub])

	mainHas := make(map[string]bool, len(pm.norm))
	for _, n := range pm.norm {
		mainHas[n] = true
	}
	subHas := make(map[string]bool, len(ps.norm))
	for _, n := range ps.norm {
		subHas[n] = true
	}

	sum := &Summary{}
	for i, line := range pm.kept {
		if !subHas[pm.norm[i]] {
			main.AddMarker(line, textview.MarkerRemoved)
			sum.Removed++
		} else {
			sum.Match++
		}
	}
	for i, line := range ps.kept {
		if !mainHas[ps.norm[i]] {
			sub.AddMarker(line, textview.MarkerAdded)
			sum.Added++
		}
	}
	sum.DiffLines = sum.Added + sum.Removed
	return sum
}

// charRanges diffs two raw lines character by character and returns the
// changed spans of each.
func charRanges(a, b string) (am, bm []Span) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	ai, bi := 0, 0
	for _, d := range diffs {
		n := len(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			ai += n
			bi += n
		case diffmatchpatch.DiffDelete:
			am = append(am, Span{Start: ai, End: ai + n})
			ai += n
		case diffmatchpatch.DiffInsert:
			bm = append(bm, Span{Start: bi, End: bi + n})
			bi += n
		}
	}
	return am, bm
}
