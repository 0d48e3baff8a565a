// Package textview models the per-view editing surface the compare engine
// works against: line storage, markers, blank-padding annotations, hidden
// lines, viewport state and undo with action tags. The engine consumes it
// through the View interface; Buffer is the in-memory implementation.
package textview

// Side identifies one of the two compared views. It doubles as the index
// into every [2]T pair in the engine.
type Side int

const (
	Main Side = iota
	Sub
)

// Other returns the opposite side.
func (s Side) Other() Side {
	if s == Main {
		return Sub
	}
	return Main
}

func (s Side) String() string {
	if s == Main {
		return "main"
	}
	return "sub"
}

// Action tags an edit with the logical operation that produced it, so that
// delete/insert notification pairs can be matched up again when the editor
// replays history.
type Action int

const (
	ActionUser Action = iota
	ActionUndo
	ActionRedo
)

func (a Action) String() string {
	switch a {
	case ActionUser:
		return "user"
	case ActionUndo:
		return "undo"
	case ActionRedo:
		return "redo"
	default:
		return "unknown"
	}
}

// Reverse returns the action that would revert an edit performed with a:
// an undo is reverted by a redo, anything else by an undo.
func (a Action) Reverse() Action {
	if a == ActionUndo {
		return ActionRedo
	}
	return ActionUndo
}

// LineRange is an inclusive range of document lines. The zero range is not
// valid; “no range” is conventionally {-1, -1}.
type LineRange struct {
	First int
	Last  int
}

// NoRange is the sentinel for an absent line range.
var NoRange = LineRange{First: -1, Last: -1}

// Valid reports whether the range denotes at least one line.
func (r LineRange) Valid() bool { return r.First >= 0 && r.Last >= r.First }

// Len returns the number of lines in the range, 0 when invalid.
func (r LineRange) Len() int {
	if !r.Valid() {
		return 0
	}
	return r.Last - r.First + 1
}

// Contains reports whether line falls inside the range.
func (r LineRange) Contains(line int) bool {
	return r.Valid() && line >= r.First && line <= r.Last
}
