package textview

// Marker is a per-line bitmask of diff classifications. A line can carry
// several markers at once (a moved line inside a changed block, the
// transient navigation arrow on any marked line).
type Marker uint32

const (
	MarkerAdded Marker = 1 << iota
	MarkerRemoved
	MarkerChanged
	MarkerMoved
	MarkerArrow
)

// MaskChanges covers every diff classification marker.
const MaskChanges = MarkerAdded | MarkerRemoved | MarkerChanged | MarkerMoved

// MaskAll additionally covers the transient navigation arrow.
const MaskAll = MaskChanges | MarkerArrow

func (m Marker) String() string {
	if m == 0 {
		return "none"
	}
	names := []struct {
		bit  Marker
		name string
	}{
		{MarkerAdded, "added"},
		{MarkerRemoved, "removed"},
		{MarkerChanged, "changed"},
		{MarkerMoved, "moved"},
		{MarkerArrow, "arrow"},
	}
	s := ""
	for _, n := range names {
		if m&n.bit != 0 {
			if s != "" {
				s += "+"
			}
			s += n.name
		}
	}
	return s
}
