package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/JehleM/compare-plugin/internal/history"
	"github.com/JehleM/compare-plugin/internal/search"
)

// SearchBar is the incremental search over difference lines. Results update
// on every keystroke; after Enter the bar closes and the caller cycles
// through the surviving matches with Next/Prev.
type SearchBar struct {
	matcher *search.Matcher
	query   []rune
	cursor  int
	active  bool

	results []search.Result
	current int

	history *History
}

// NewSearchBar creates a search bar without history persistence.
func NewSearchBar(matcher *search.Matcher) *SearchBar {
	return &SearchBar{
		matcher: matcher,
		history: NewHistory(50),
	}
}

// NewSearchBarWithHistory creates a search bar whose query history is
// persisted through the given manager.
func NewSearchBarWithHistory(matcher *search.Matcher, manager *history.Manager) *SearchBar {
	h, err := NewHistoryWithManager(50, manager, "search.toml")
	if err != nil {
		// If history loading fails, continue with empty history
		h = NewHistory(50)
	}

	return &SearchBar{
		matcher: matcher,
		history: h,
	}
}

// Start enters search mode with an empty query.
func (s *SearchBar) Start() {
	s.active = true
	s.query = nil
	s.cursor = 0
	s.results = nil
	s.current = 0
	s.history.Reset()
}

// Stop leaves search mode. Results survive so matches can still be cycled.
func (s *SearchBar) Stop() {
	s.active = false
	s.history.Reset()
}

// IsActive returns whether search mode is active.
func (s *SearchBar) IsActive() bool {
	return s.active
}

// HandleKey handles key presses during search mode. It returns true when
// Enter confirmed a query with matches, signalling the caller to jump to
// the current match.
func (s *SearchBar) HandleKey(ev *tcell.EventKey) bool {
	if !s.active {
		return false
	}

	switch ev.Key() {
	case tcell.KeyEscape:
		s.results = nil
		s.Stop()
		return false
	case tcell.KeyEnter:
		if len(s.query) > 0 {
			s.history.Add(string(s.query))
		}
		s.Stop()
		return len(s.results) > 0
	case tcell.KeyUp:
		// Store the typed query before navigating history (on first Up press)
		if !s.history.IsNavigating() {
			s.history.SetTemporary(string(s.query))
		}
		if prev, ok := s.history.Previous(); ok {
			s.query = []rune(prev)
			s.cursor = len(s.query)
			s.updateResults()
		}
		return false
	case tcell.KeyDown:
		if next, ok := s.history.Next(); ok {
			s.query = []rune(next)
			s.cursor = len(s.query)
			s.updateResults()
		}
		return false
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if s.cursor > 0 {
			s.query = append(s.query[:s.cursor-1], s.query[s.cursor:]...)
			s.cursor--
			s.updateResults()
		}
		return false
	case tcell.KeyDelete:
		if s.cursor < len(s.query) {
			s.query = append(s.query[:s.cursor], s.query[s.cursor+1:]...)
			s.updateResults()
		}
		return false
	case tcell.KeyLeft:
		if s.cursor > 0 {
			s.cursor--
		}
		return false
	case tcell.KeyRight:
		if s.cursor < len(s.query) {
			s.cursor++
		}
		return false
	case tcell.KeyHome:
		s.cursor = 0
		return false
	case tcell.KeyEnd:
		s.cursor = len(s.query)
		return false
	case tcell.KeyCtrlU:
		s.query = append([]rune(nil), s.query[s.cursor:]...)
		s.cursor = 0
		s.updateResults()
		return false
	default:
		if ch := ev.Rune(); ch > 0 {
			s.query = append(s.query[:s.cursor], append([]rune{ch}, s.query[s.cursor:]...)...)
			s.cursor++
			s.updateResults()
		}
		return false
	}
}

// updateResults re-ranks the difference lines against the current query.
func (s *SearchBar) updateResults() {
	s.results = s.matcher.Match(string(s.query))
	s.current = 0
}

// Refresh re-runs the last query against the live views. Called after a
// recompare moves or clears markers so stale lines drop out.
func (s *SearchBar) Refresh() {
	if s.results == nil {
		return
	}
	s.results = s.matcher.Match(string(s.query))
	if s.current >= len(s.results) {
		s.current = 0
	}
}

// Query returns the current search query.
func (s *SearchBar) Query() string {
	return string(s.query)
}

// HasResults returns true when the last query matched at least one line.
func (s *SearchBar) HasResults() bool {
	return len(s.results) > 0
}

// MatchCount returns the number of matches.
func (s *SearchBar) MatchCount() int {
	return len(s.results)
}

// CurrentNumber returns the 1-based number of the current match, 0 when
// there are none.
func (s *SearchBar) CurrentNumber() int {
	if len(s.results) == 0 {
		return 0
	}
	return s.current + 1
}

// Current returns the match the cursor is on.
func (s *SearchBar) Current() (search.Result, bool) {
	if len(s.results) == 0 || s.current >= len(s.results) {
		return search.Result{}, false
	}
	return s.results[s.current], true
}

// Next advances to the next match, wrapping past the last.
func (s *SearchBar) Next() bool {
	if len(s.results) == 0 {
		return false
	}
	s.current++
	if s.current >= len(s.results) {
		s.current = 0
	}
	return true
}

// Prev moves to the previous match, wrapping before the first.
func (s *SearchBar) Prev() bool {
	if len(s.results) == 0 {
		return false
	}
	s.current--
	if s.current < 0 {
		s.current = len(s.results) - 1
	}
	return true
}

// Render draws the search bar on the given row.
func (s *SearchBar) Render(screen *Screen, y int) {
	labelStyle := screen.SearchLabelStyle()
	textStyle := screen.SearchTextStyle()
	cursorStyle := screen.SearchCursorStyle()
	countStyle := screen.SearchCountStyle()
	screenWidth := screen.GetWidth()

	screen.DrawString(0, y, "Search: ", labelStyle)

	x := 8
	for i, r := range s.query {
		charStyle := textStyle
		if i == s.cursor {
			charStyle = cursorStyle
		}
		if x >= screenWidth {
			break
		}
		screen.SetCell(x, y, r, charStyle)
		x += RuneWidth(r)
	}

	// Draw cursor at end if needed
	if s.cursor >= len(s.query) && x < screenWidth {
		screen.SetCell(x, y, ' ', cursorStyle)
		x++
	}

	// Clear remainder of line
	for x < screenWidth {
		screen.SetCell(x, y, ' ', textStyle)
		x++
	}

	var countText string
	switch {
	case len(s.query) == 0 && len(s.results) == 0:
		countText = ""
	case len(s.results) == 0:
		countText = " (no matches)"
	default:
		countText = fmt.Sprintf(" (%d of %d matches)", s.CurrentNumber(), s.MatchCount())
	}
	if countText != "" {
		screen.DrawString(screenWidth-len(countText), y, countText, countStyle)
	}
}
