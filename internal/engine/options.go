package engine

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/JehleM/compare-plugin/internal/textview"
)

// Options selects what the engine compares and how strictly lines have to
// match. The zero value compares everything verbatim.
type Options struct {
	IgnoreSpaces     bool
	IgnoreAllSpaces  bool
	IgnoreCase       bool
	IgnoreEmptyLines bool
	// IgnoreRegex excludes lines matching the pattern from the comparison
	// entirely. Nil disables the filter.
	IgnoreRegex *regexp.Regexp

	DetectMoves   bool
	CharPrecision bool

	// FindUnique switches classification to marking only lines absent from
	// the other document. No alignment table is produced in this mode.
	FindUnique bool

	// SelectionCompare restricts the comparison to one line range per view.
	SelectionCompare bool
	Selections       [2]textview.LineRange
}

// normalizeLine applies the ignore options to one line. Two lines compare
// equal exactly when their normalized forms are equal.
func normalizeLine(s string, opts Options) string {
	if opts.IgnoreCase {
		s = strings.ToLower(s)
	}
	switch {
	case opts.IgnoreAllSpaces:
		s = strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, s)
	case opts.IgnoreSpaces:
		s = strings.Join(strings.Fields(s), " ")
	}
	return s
}

// prepared is one view's input to the diff: the document lines that survive
// the ignore filters, their normalized forms, and the normalized text joined
// with one trailing newline per line so the line diff sees exactly len(kept)
// lines.
type prepared struct {
	kept []int
	norm []string
	text string
}

func prepare(v textview.View, opts Options, sel textview.LineRange) prepared {
	first, last := 0, v.LineCount()-1
	if opts.SelectionCompare && sel.Valid() {
		first, last = sel.First, sel.Last
		if last > v.LineCount()-1 {
			last = v.LineCount() - 1
		}
	}

	var p prepared
	var b strings.Builder
	for line := first; line <= last; line++ {
		raw := v.Line(line)
		if opts.IgnoreRegex != nil && opts.IgnoreRegex.MatchString(raw) {
			continue
		}
		n := normalizeLine(raw, opts)
		if opts.IgnoreEmptyLines && n == "" {
			continue
		}
		p.kept = append(p.kept, line)
		p.norm = append(p.norm, n)
		b.WriteString(n)
		b.WriteByte('\n')
	}
	p.text = b.String()
	return p
}

// lineAfter is the document line the next consumed entry would land on, or
// one past the last line when the side is exhausted. Used as the anchor for
// blocks that have no lines of their own on this side.
func (p prepared) lineAfter(i int, v textview.View) int {
	if i < len(p.kept) {
		return p.kept[i]
	}
	return v.LineCount()
}
