package session

import (
	"log"

	"github.com/JehleM/compare-plugin/internal/sched"
	"github.com/JehleM/compare-plugin/internal/textview"
)

// Manager owns the live sessions, the shared settings and the single
// notification guard. Buffers route their edit events through the manager,
// which drops them while the guard is raised and otherwise hands them to the
// session the buffer belongs to. Unpaired buffers stay bound; their events
// just find no session.
type Manager struct {
	sch      *sched.Scheduler
	guard    *textview.Guard
	settings *Settings

	sessions []*Session

	// first is the buffer marked to become the main side of the next pair.
	first *textview.Buffer
}

// NewManager returns an empty manager. A nil settings gets the defaults.
func NewManager(sch *sched.Scheduler, settings *Settings) *Manager {
	if settings == nil {
		settings = DefaultSettings()
	}
	return &Manager{
		sch:      sch,
		guard:    &textview.Guard{},
		settings: settings,
	}
}

// Guard returns the shared notification guard.
func (m *Manager) Guard() *textview.Guard { return m.guard }

// Settings returns the shared settings; mutations apply to every session on
// its next operation.
func (m *Manager) Settings() *Settings { return m.settings }

// Scheduler returns the scheduler sessions post their deferred work on.
func (m *Manager) Scheduler() *sched.Scheduler { return m.sch }

// MarkFirst remembers b as the main side of the next pairing.
func (m *Manager) MarkFirst(b *textview.Buffer) { m.first = b }

// FirstMarked returns the pending first mark, nil when none is set.
func (m *Manager) FirstMarked() *textview.Buffer { return m.first }

// ClearFirst drops the pending first mark.
func (m *Manager) ClearFirst() { m.first = nil }

// Pair binds main and sub into a new session, unpairing either buffer's
// previous session first. The buffers must carry the matching sides.
func (m *Manager) Pair(main, sub *textview.Buffer) *Session {
	if s := m.SessionFor(main); s != nil {
		m.Clear(s)
	}
	if s := m.SessionFor(sub); s != nil {
		m.Clear(s)
	}

	s := New(m.sch, m.guard, m.settings, main, sub)
	s.clearFunc = func() { m.Clear(s) }

	m.bind(main)
	m.bind(sub)

	m.sessions = append(m.sessions, s)
	m.first = nil

	log.Printf("session: paired %q with %q", main.Name(), sub.Name())
	return s
}

func (m *Manager) bind(b *textview.Buffer) {
	b.SetEditFunc(func(ev textview.EditEvent) {
		if m.guard.Held() {
			return
		}
		if s := m.SessionFor(b); s != nil {
			s.HandleEdit(ev)
		}
	})
}

// SessionFor returns the session the view is bound into, nil when unpaired.
func (m *Manager) SessionFor(v textview.View) *Session {
	for _, s := range m.sessions {
		if s.bindings[textview.Main].View == v || s.bindings[textview.Sub].View == v {
			return s
		}
	}
	return nil
}

// Sessions returns the live sessions in pairing order.
func (m *Manager) Sessions() []*Session { return m.sessions }

// Clear unpairs the session: pending work is cancelled and both views are
// restored to their plain look. The views' edit bindings stay; events for an
// unpaired buffer are simply dropped.
func (m *Manager) Clear(s *Session) {
	for i, cur := range m.sessions {
		if cur != s {
			continue
		}
		m.sessions = append(m.sessions[:i], m.sessions[i+1:]...)

		m.guard.Raise()
		s.shutdown()
		m.guard.Release()

		log.Printf("session: cleared pair %q / %q",
			s.View(textview.Main).Name(), s.View(textview.Sub).Name())
		return
	}
}

// ClearAll unpairs every session.
func (m *Manager) ClearAll() {
	for len(m.sessions) > 0 {
		m.Clear(m.sessions[len(m.sessions)-1])
	}
}
