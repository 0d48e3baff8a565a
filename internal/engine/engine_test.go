package engine

import (
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JehleM/compare-plugin/internal/align"
	"github.com/JehleM/compare-plugin/internal/textview"
)

func pair(mainLines, subLines []string) (*textview.Buffer, *textview.Buffer) {
	m := textview.NewBuffer(textview.Main, "main.txt", strings.Join(mainLines, "\n"))
	s := textview.NewBuffer(textview.Sub, "sub.txt", strings.Join(subLines, "\n"))
	return m, s
}

func entry(mainLine int, mainMask textview.Marker, subLine int, subMask textview.Marker) align.Entry {
	var e align.Entry
	e.Views[textview.Main] = align.Point{Line: mainLine, Mask: mainMask}
	e.Views[textview.Sub] = align.Point{Line: subLine, Mask: subMask}
	return e
}

func TestCompareIdentical(t *testing.T) {
	m, s := pair([]string{"alpha", "bravo"}, []string{"alpha", "bravo"})

	sum := Compare(m, s, Options{})

	assert.Equal(t, 0, sum.DiffLines)
	assert.Equal(t, 2, sum.Match)
	assert.Equal(t, textview.Marker(0), m.Marker(0))
	assert.Equal(t, textview.Marker(0), s.Marker(1))

	want := align.Table{entry(0, 0, 0, 0)}
	if d := cmp.Diff(want, sum.Alignment); d != "" {
		t.Errorf("alignment mismatch (-want +got):\n%s", d)
	}
}

func TestCompareClassifiesReplaceBlock(t *testing.T) {
	m, s := pair(
		[]string{"alpha", "bravo", "charlie", "delta-1", "delta-2", "delta-3", "tango", "uniform", "victor", "whiskey"},
		[]string{"alpha", "bravo", "charlie", "delta-A", "delta-B", "tango", "uniform", "victor", "whiskey"},
	)

	sum := Compare(m, s, Options{})

	assert.Equal(t, 2, sum.Changed)
	assert.Equal(t, 1, sum.Removed)
	assert.Equal(t, 0, sum.Added)
	assert.Equal(t, 7, sum.Match)
	assert.Equal(t, 3, sum.DiffLines)

	assert.Equal(t, textview.MarkerChanged, m.Marker(3))
	assert.Equal(t, textview.MarkerChanged, m.Marker(4))
	assert.Equal(t, textview.MarkerRemoved, m.Marker(5))
	assert.Equal(t, textview.Marker(0), m.Marker(6))
	assert.Equal(t, textview.MarkerChanged, s.Marker(3))
	assert.Equal(t, textview.MarkerChanged, s.Marker(4))
	assert.Equal(t, textview.Marker(0), s.Marker(5))

	want := align.Table{
		entry(0, 0, 0, 0),
		entry(3, textview.MarkerChanged, 3, textview.MarkerChanged),
		entry(6, 0, 5, 0),
	}
	if d := cmp.Diff(want, sum.Alignment); d != "" {
		t.Errorf("alignment mismatch (-want +got):\n%s", d)
	}
}

func TestCompareTrailingInsert(t *testing.T) {
	m, s := pair([]string{"alpha"}, []string{"alpha", "bravo", "charlie"})

	sum := Compare(m, s, Options{})

	assert.Equal(t, 2, sum.Added)
	assert.Equal(t, textview.MarkerAdded, s.Marker(1))
	assert.Equal(t, textview.MarkerAdded, s.Marker(2))

	want := align.Table{
		entry(0, 0, 0, 0),
		entry(1, 0, 1, textview.MarkerAdded),
	}
	if d := cmp.Diff(want, sum.Alignment); d != "" {
		t.Errorf("alignment mismatch (-want +got):\n%s", d)
	}
}

func TestCompareIgnoreSpacesAndCase(t *testing.T) {
	m, s := pair(
		[]string{"Hello   World", "tail"},
		[]string{"hello world", "tail"},
	)

	sum := Compare(m, s, Options{IgnoreSpaces: true, IgnoreCase: true})

	assert.Equal(t, 0, sum.DiffLines)
	assert.Equal(t, 2, sum.Match)
	assert.Equal(t, textview.Marker(0), m.Marker(0))
	assert.Equal(t, textview.Marker(0), s.Marker(0))
}

func TestCompareIgnoreAllSpaces(t *testing.T) {
	m, s := pair([]string{"a b\tc"}, []string{"abc"})

	sum := Compare(m, s, Options{IgnoreAllSpaces: true})

	assert.Equal(t, 0, sum.DiffLines)
	assert.Equal(t, 1, sum.Match)
}

func TestCompareIgnoreEmptyLines(t *testing.T) {
	m, s := pair(
		[]string{"alpha", "", "bravo"},
		[]string{"alpha", "bravo"},
	)

	sum := Compare(m, s, Options{IgnoreEmptyLines: true})

	assert.Equal(t, 0, sum.DiffLines)
	assert.Equal(t, 2, sum.Match)
	assert.Equal(t, textview.Marker(0), m.Marker(1))
}

func TestCompareIgnoreRegex(t *testing.T) {
	m, s := pair(
		[]string{"# header", "body"},
		[]string{"body", "# trailer"},
	)

	opts := Options{IgnoreRegex: regexp.MustCompile(`^#`)}
	sum := Compare(m, s, opts)

	assert.Equal(t, 0, sum.DiffLines)
	assert.Equal(t, 1, sum.Match)
	assert.Equal(t, textview.Marker(0), m.Marker(0))
	assert.Equal(t, textview.Marker(0), s.Marker(1))
}

func TestCompareDetectMoves(t *testing.T) {
	m, s := pair(
		[]string{"alpha", "bravo", "charlie", "delta"},
		[]string{"bravo", "charlie", "delta", "alpha"},
	)

	sum := Compare(m, s, Options{DetectMoves: true})

	assert.Equal(t, 1, sum.Moved)
	assert.Equal(t, 0, sum.Added)
	assert.Equal(t, 0, sum.Removed)
	assert.Equal(t, 3, sum.Match)
	assert.Equal(t, 1, sum.DiffLines)

	assert.Equal(t, textview.MarkerMoved, m.Marker(0))
	assert.Equal(t, textview.MarkerMoved, s.Marker(3))
}

func TestCompareMovesSkipBlankLines(t *testing.T) {
	m, s := pair(
		[]string{"", "alpha", "bravo"},
		[]string{"alpha", "bravo", ""},
	)

	sum := Compare(m, s, Options{DetectMoves: true})

	assert.Equal(t, 0, sum.Moved)
	assert.Equal(t, 1, sum.Added)
	assert.Equal(t, 1, sum.Removed)
}

func TestCompareFindUnique(t *testing.T) {
	m, s := pair(
		[]string{"alpha", "bravo", "charlie"},
		[]string{"bravo", "delta"},
	)

	sum := Compare(m, s, Options{FindUnique: true})

	assert.Equal(t, 2, sum.Removed)
	assert.Equal(t, 1, sum.Added)
	assert.Equal(t, 1, sum.Match)
	assert.True(t, sum.Alignment.Empty())

	assert.Equal(t, textview.MarkerRemoved, m.Marker(0))
	assert.Equal(t, textview.Marker(0), m.Marker(1))
	assert.Equal(t, textview.MarkerRemoved, m.Marker(2))
	assert.Equal(t, textview.MarkerAdded, s.Marker(1))
}

func TestCompareCharPrecision(t *testing.T) {
	m, s := pair(
		[]string{"function foo(a, b)"},
		[]string{"function bar(a, b)"},
	)

	sum := Compare(m, s, Options{CharPrecision: true})

	require.Equal(t, 1, sum.Changed)
	require.NotNil(t, sum.ChangedRanges[textview.Main])
	require.NotNil(t, sum.ChangedRanges[textview.Sub])

	assert.Equal(t, []Span{{Start: 9, End: 12}}, sum.ChangedRanges[textview.Main][0])
	assert.Equal(t, []Span{{Start: 9, End: 12}}, sum.ChangedRanges[textview.Sub][0])
}

func TestCompareSelections(t *testing.T) {
	m, s := pair(
		[]string{"zero", "one", "two", "three", "four"},
		[]string{"one", "TWO", "three"},
	)

	opts := Options{
		SelectionCompare: true,
		Selections: [2]textview.LineRange{
			textview.Main: {First: 1, Last: 3},
			textview.Sub:  {First: 0, Last: 2},
		},
	}
	sum := Compare(m, s, opts)

	assert.Equal(t, 1, sum.Changed)
	assert.Equal(t, 2, sum.Match)

	assert.Equal(t, textview.Marker(0), m.Marker(0), "line outside the compared range must stay unmarked")
	assert.Equal(t, textview.MarkerChanged, m.Marker(2))
	assert.Equal(t, textview.Marker(0), m.Marker(4))
	assert.Equal(t, textview.MarkerChanged, s.Marker(1))

	want := align.Table{
		entry(1, 0, 0, 0),
		entry(2, textview.MarkerChanged, 1, textview.MarkerChanged),
		entry(3, 0, 2, 0),
	}
	if d := cmp.Diff(want, sum.Alignment); d != "" {
		t.Errorf("alignment mismatch (-want +got):\n%s", d)
	}
}
