package session

import (
	"fmt"
	"strings"

	"github.com/JehleM/compare-plugin/internal/textview"
)

// Status texts for the two dirty severities. A manual edit invalidates the
// comparison outright; indirect changes (equalize bookkeeping) merely make it
// suspect.
const (
	statusManuallyChanged = "FILE MANUALLY CHANGED, PLEASE RE-COMPARE!"
	statusChanged         = "FILE CHANGED, COMPARE RESULTS MIGHT BE INACCURATE!"
)

// StatusText renders the status-bar line for the session: the dirty warning
// when the comparison is stale, otherwise the compare mode with either the
// active options or the difference counts, per the StatusType setting.
// Empty before the first compare.
func (s *Session) StatusText() string {
	if !s.compared {
		return ""
	}

	if s.dirty {
		if s.userEdited {
			return statusManuallyChanged
		}
		return statusChanged
	}

	var b strings.Builder

	if s.opts.FindUnique {
		b.WriteString("Find Unique")
	} else {
		b.WriteString("Compare")
	}

	if s.opts.SelectionCompare {
		fmt.Fprintf(&b, " Selections - %d-%d vs. %d-%d ***",
			s.opts.Selections[textview.Main].First+1, s.opts.Selections[textview.Main].Last+1,
			s.opts.Selections[textview.Sub].First+1, s.opts.Selections[textview.Sub].Last+1)
	} else {
		b.WriteString(" ***")
	}

	switch s.settings.StatusType {
	case StatusOptions:
		if s.opts.IgnoreSpaces {
			b.WriteString(" Ignore Spaces ,")
		}
		if s.opts.IgnoreAllSpaces {
			b.WriteString(" Ignore All Spaces ,")
		}
		if s.opts.IgnoreEmptyLines {
			b.WriteString(" Ignore Empty Lines ,")
		}
		if s.opts.IgnoreCase {
			b.WriteString(" Ignore Case ,")
		}
		if s.opts.DetectMoves {
			b.WriteString(" Detect Moves ,")
		}

	case StatusSummary:
		if s.summary.DiffLines > 0 {
			fmt.Fprintf(&b, " %d Diff Lines: ", s.summary.DiffLines)
		}
		if s.summary.Added > 0 {
			fmt.Fprintf(&b, " %d Added ,", s.summary.Added)
		}
		if s.summary.Removed > 0 {
			fmt.Fprintf(&b, " %d Removed ,", s.summary.Removed)
		}
		if s.summary.Changed > 0 {
			fmt.Fprintf(&b, " %d Changed ,", s.summary.Changed)
		}
		if s.summary.Moved > 0 {
			fmt.Fprintf(&b, " %d Moved ,", s.summary.Moved)
		}
		if s.summary.Match > 0 {
			// The match count splices over the previous fragment's trailing
			// separator to read as a sentence end.
			text := b.String()
			b.Reset()
			b.WriteString(text[:len(text)-2])
			fmt.Fprintf(&b, ".  %d Match ,", s.summary.Match)
		}
	}

	text := b.String()
	if len(text) >= 2 && text[len(text)-2] == ' ' {
		text = text[:len(text)-2]
	}
	return text
}
