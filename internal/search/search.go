// Package search filters the lines a comparison marked as different.
package search

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/JehleM/compare-plugin/internal/textview"
)

// Result is one difference line matched by a query.
type Result struct {
	Side textview.Side
	Line int
	Text string

	// rank orders matches, lower is better. Exact difference listing
	// (empty query) ranks everything equal.
	rank int
}

// Matcher ranks difference lines of a compared pair against fuzzy queries.
// It reads the views live, so results always reflect the current markers.
type Matcher struct {
	views [2]textview.View
}

// NewMatcher creates a matcher over the two sides of a comparison.
func NewMatcher(main, sub textview.View) *Matcher {
	return &Matcher{views: [2]textview.View{main, sub}}
}

// Match returns the difference lines matching query, best matches first and
// ties in document order. An empty query lists every difference line.
// Matching is fuzzy and case-insensitive: the query's characters must appear
// in order, not necessarily adjacent.
func (m *Matcher) Match(query string) []Result {
	var results []Result

	for _, side := range []textview.Side{textview.Main, textview.Sub} {
		v := m.views[side]
		if v == nil {
			continue
		}
		for line := 0; line < v.LineCount(); line++ {
			if v.Marker(line)&textview.MaskChanges == 0 {
				continue
			}

			text := v.Line(line)
			rank := 0
			if query != "" {
				rank = fuzzy.RankMatchFold(query, text)
				if rank < 0 {
					continue
				}
			}

			results = append(results, Result{
				Side: side,
				Line: line,
				Text: text,
				rank: rank,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].rank != results[j].rank {
			return results[i].rank < results[j].rank
		}
		if results[i].Line != results[j].Line {
			return results[i].Line < results[j].Line
		}
		return results[i].Side < results[j].Side
	})

	return results
}

// Matches reports whether query fuzzy-matches text, case-insensitively.
func Matches(query, text string) bool {
	if query == "" {
		return true
	}
	return fuzzy.MatchFold(query, text)
}
