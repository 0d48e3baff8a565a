package align

import (
	"math/rand"
	"testing"

	"github.com/JehleM/compare-plugin/internal/textview"
)

func entry(mainLine, subLine int) Entry {
	var e Entry
	e.Views[textview.Main] = Point{Line: mainLine, Mask: textview.MarkerChanged}
	e.Views[textview.Sub] = Point{Line: subLine, Mask: textview.MarkerChanged}
	return e
}

// randomTable builds a table with strictly increasing main lines and
// non-decreasing sub lines, the ordering the engine guarantees.
func randomTable(rng *rand.Rand, size int) Table {
	t := make(Table, 0, size)
	mainLine := rng.Intn(3)
	subLine := rng.Intn(3)
	for i := 0; i < size; i++ {
		t = append(t, entry(mainLine, subLine))
		mainLine += 1 + rng.Intn(10)
		subLine += rng.Intn(10)
	}
	return t
}

func TestIndexAtOrAfterMatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for _, size := range []int{0, 1, 2, 3, 7, 50, 1000, 10000} {
		table := randomTable(rng, size)

		for _, side := range []textview.Side{textview.Main, textview.Sub} {
			maxLine := 5
			if size > 0 {
				maxLine = table[size-1].Views[side].Line + 5
			}
			for q := 0; q < 300; q++ {
				line := rng.Intn(maxLine+2) - 1

				want := len(table)
				for i := range table {
					if table[i].Views[side].Line >= line {
						want = i
						break
					}
				}

				if got := table.IndexAtOrAfter(side, line); got != want {
					t.Fatalf("size=%d side=%v line=%d: got index %d, want %d",
						size, side, line, got, want)
				}
			}
		}
	}
}

func TestCorrespondingLine(t *testing.T) {
	table := Table{entry(0, 0), entry(3, 3), entry(6, 5), entry(9, 9)}

	if got := table.CorrespondingLine(textview.Main, 6); got != 5 {
		t.Errorf("Expected sub line 5 for main 6, got %d", got)
	}
	if got := table.CorrespondingLine(textview.Sub, 5); got != 6 {
		t.Errorf("Expected main line 6 for sub 5, got %d", got)
	}
	if got := table.CorrespondingLine(textview.Main, 4); got != -1 {
		t.Errorf("Expected -1 for non-boundary line, got %d", got)
	}
	if got := table.CorrespondingLine(textview.Main, -2); got != -1 {
		t.Errorf("Expected -1 for negative line, got %d", got)
	}
	if got := Table(nil).CorrespondingLine(textview.Main, 0); got != -1 {
		t.Errorf("Expected -1 on empty table, got %d", got)
	}
}

func TestShiftInsertMovesTail(t *testing.T) {
	table := Table{entry(0, 0), entry(3, 3), entry(6, 5), entry(9, 9)}
	table.Shift(textview.Main, 4, 2)

	want := Table{entry(0, 0), entry(3, 3), entry(8, 5), entry(11, 9)}
	for i := range want {
		if table[i] != want[i] {
			t.Errorf("Entry %d: got %+v, want %+v", i, table[i], want[i])
		}
	}
}

func TestShiftDeleteErasesCoveredEntries(t *testing.T) {
	table := Table{entry(0, 0), entry(3, 3), entry(5, 4), entry(6, 5), entry(9, 9)}

	// Deleting main lines [3,6) erases the entries at 3 and 5 and pulls the
	// rest up by three.
	table.Shift(textview.Main, 3, -3)

	want := Table{entry(0, 0), entry(3, 5), entry(6, 9)}
	if len(table) != len(want) {
		t.Fatalf("Expected %d entries, got %d", len(want), len(table))
	}
	for i := range want {
		if table[i] != want[i] {
			t.Errorf("Entry %d: got %+v, want %+v", i, table[i], want[i])
		}
	}
}

func TestShiftPreservesOrderingAndHead(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for trial := 0; trial < 50; trial++ {
		table := randomTable(rng, 200)
		side := textview.Side(rng.Intn(2))
		from := rng.Intn(500)
		delta := rng.Intn(21) - 10

		head := table.Clone()[:table.IndexAtOrAfter(side, from)]

		shifted := table.Clone()
		shifted.Shift(side, from, delta)

		for i := range head {
			if shifted[i] != head[i] {
				t.Fatalf("trial %d: entry %d before line %d changed: %+v -> %+v",
					trial, i, from, head[i], shifted[i])
			}
		}
		for i := 1; i < len(shifted); i++ {
			if shifted[i].Views[side].Line < shifted[i-1].Views[side].Line {
				t.Fatalf("trial %d: ordering broken at %d: %+v after %+v",
					trial, i, shifted[i], shifted[i-1])
			}
		}
		if delta < 0 {
			for i := range shifted {
				l := shifted[i].Views[side].Line
				if l >= from && l < from-delta {
					// Lines in the erased window may only appear if they
					// were shifted into it from behind.
					orig := l - delta
					found := false
					for j := range table {
						if table[j].Views[side].Line == orig {
							found = true
							break
						}
					}
					if !found {
						t.Fatalf("trial %d: entry in deleted window survived: %+v", trial, shifted[i])
					}
				}
			}
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	table := Table{entry(0, 0), entry(3, 3)}
	snap := table.Clone()

	table.Shift(textview.Main, 0, 5)

	if snap[0].Views[textview.Main].Line != 0 || snap[1].Views[textview.Main].Line != 3 {
		t.Error("Clone changed when the original was shifted")
	}
}
