package ui

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func typeRunes(c *CommandMode, s string) {
	for _, r := range s {
		c.HandleKey(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}
}

func pressKey(c *CommandMode, key tcell.Key) (string, bool) {
	return c.HandleKey(tcell.NewEventKey(key, 0, tcell.ModNone))
}

func TestCommandModeTypeAndConfirm(t *testing.T) {
	c := NewCommandMode()
	c.Start()
	if !c.IsActive() {
		t.Fatal("expected command mode active after Start")
	}

	typeRunes(c, "set ignore_case on")
	cmd, done := pressKey(c, tcell.KeyEnter)
	if !done {
		t.Error("expected Enter to finish command entry")
	}
	if cmd != "set ignore_case on" {
		t.Errorf("expected command %q, got %q", "set ignore_case on", cmd)
	}
	if c.IsActive() {
		t.Error("expected command mode inactive after Enter")
	}
}

func TestCommandModeEscapeCancels(t *testing.T) {
	c := NewCommandMode()
	c.Start()
	typeRunes(c, "quit")

	cmd, done := pressKey(c, tcell.KeyEscape)
	if !done {
		t.Error("expected Escape to finish command entry")
	}
	if cmd != "" {
		t.Errorf("expected empty command on Escape, got %q", cmd)
	}
	if c.IsActive() {
		t.Error("expected command mode inactive after Escape")
	}
}

func TestCommandModeCursorEditing(t *testing.T) {
	c := NewCommandMode()
	c.Start()

	typeRunes(c, "cmpare")
	pressKey(c, tcell.KeyHome)
	pressKey(c, tcell.KeyRight)
	typeRunes(c, "o")
	if got := c.GetInput(); got != "compare" {
		t.Errorf("expected %q after mid-line insert, got %q", "compare", got)
	}

	pressKey(c, tcell.KeyEnd)
	pressKey(c, tcell.KeyBackspace2)
	if got := c.GetInput(); got != "compar" {
		t.Errorf("expected %q after backspace, got %q", "compar", got)
	}

	pressKey(c, tcell.KeyHome)
	pressKey(c, tcell.KeyDelete)
	if got := c.GetInput(); got != "ompar" {
		t.Errorf("expected %q after delete at home, got %q", "ompar", got)
	}
}

func TestCommandModeUnicodeBackspace(t *testing.T) {
	c := NewCommandMode()
	c.Start()

	typeRunes(c, "thé")
	pressKey(c, tcell.KeyBackspace2)
	if got := c.GetInput(); got != "th" {
		t.Errorf("expected backspace to remove one rune, got %q", got)
	}
}

func TestCommandModeDeleteWordBackwards(t *testing.T) {
	c := NewCommandMode()
	c.Start()

	typeRunes(c, "set wrap_around  ")
	c.HandleKey(tcell.NewEventKey(tcell.KeyCtrlW, 0, tcell.ModNone))
	if got := c.GetInput(); got != "set" {
		t.Errorf("expected Ctrl+W to drop the last word, got %q", got)
	}
}

func TestCommandModeKillLine(t *testing.T) {
	c := NewCommandMode()
	c.Start()

	typeRunes(c, "export report.diff")
	pressKey(c, tcell.KeyHome)
	for i := 0; i < 6; i++ {
		pressKey(c, tcell.KeyRight)
	}
	c.HandleKey(tcell.NewEventKey(tcell.KeyCtrlK, 0, tcell.ModNone))
	if got := c.GetInput(); got != "export" {
		t.Errorf("expected Ctrl+K to truncate at cursor, got %q", got)
	}

	typeRunes(c, " out.diff")
	pressKey(c, tcell.KeyHome)
	for i := 0; i < 7; i++ {
		pressKey(c, tcell.KeyRight)
	}
	c.HandleKey(tcell.NewEventKey(tcell.KeyCtrlU, 0, tcell.ModNone))
	if got := c.GetInput(); got != "out.diff" {
		t.Errorf("expected Ctrl+U to drop text before cursor, got %q", got)
	}
}

func TestCommandModeBackspaceOnEmptyExits(t *testing.T) {
	c := NewCommandMode()
	c.Start()

	cmd, done := pressKey(c, tcell.KeyBackspace2)
	if !done || cmd != "" {
		t.Errorf("expected backspace on empty input to cancel, got (%q, %v)", cmd, done)
	}
	if c.IsActive() {
		t.Error("expected command mode inactive")
	}
}

func TestCommandModeHistoryNavigation(t *testing.T) {
	c := NewCommandMode()

	c.Start()
	typeRunes(c, "compare")
	pressKey(c, tcell.KeyEnter)

	c.Start()
	typeRunes(c, "set detect_moves off")
	pressKey(c, tcell.KeyEnter)

	c.Start()
	typeRunes(c, "exp")

	pressKey(c, tcell.KeyUp)
	if got := c.GetInput(); got != "set detect_moves off" {
		t.Errorf("expected most recent history entry, got %q", got)
	}
	pressKey(c, tcell.KeyUp)
	if got := c.GetInput(); got != "compare" {
		t.Errorf("expected older history entry, got %q", got)
	}
	pressKey(c, tcell.KeyDown)
	if got := c.GetInput(); got != "set detect_moves off" {
		t.Errorf("expected to move forward in history, got %q", got)
	}
	pressKey(c, tcell.KeyDown)
	if got := c.GetInput(); got != "exp" {
		t.Errorf("expected typed input restored past newest entry, got %q", got)
	}
}
