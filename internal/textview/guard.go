package textview

// Guard is the reentrancy counter raised around programmatic view mutations
// so the edit handlers can tell them apart from user edits. Not safe for
// concurrent use; everything runs on the event loop.
type Guard struct {
	depth int
}

func (g *Guard) Raise()     { g.depth++ }
func (g *Guard) Release()   { g.depth-- }
func (g *Guard) Held() bool { return g.depth > 0 }
