package sched

import (
	"sort"
	"time"
)

// Clock supplies the current time. Every timing decision in the compare
// engine (debounces, the replace-detection window) goes through a Clock so
// tests can drive time explicitly instead of sleeping.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System is the Clock used outside of tests.
var System Clock = systemClock{}

// ManualClock is a Clock for tests, advanced explicitly.
type ManualClock struct {
	now time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time { return c.now }

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// Task is one kind of deferred work. At most one run is pending per task:
// Post replaces any earlier deadline, Cancel disarms it. Tasks never fire on
// their own, they run when the owning Scheduler's RunDue is pumped.
type Task struct {
	s    *Scheduler
	name string
	fn   func()

	due   time.Time
	armed bool
}

// Post arms the task to run once the given delay has elapsed, replacing any
// pending deadline.
func (t *Task) Post(d time.Duration) {
	t.due = t.s.clock.Now().Add(d)
	t.armed = true
}

// Cancel disarms the task. Canceling an idle task is a no-op.
func (t *Task) Cancel() { t.armed = false }

// Pending reports whether a run is scheduled.
func (t *Task) Pending() bool { return t.armed }

// Name returns the name the task was registered with.
func (t *Task) Name() string { return t.name }

// Scheduler runs deferred tasks cooperatively on the caller's thread. The
// application loop pumps RunDue from its ticker; nothing runs concurrently.
type Scheduler struct {
	clock Clock
	tasks []*Task
}

// NewScheduler returns a Scheduler reading time from clock. A nil clock
// means the system clock.
func NewScheduler(clock Clock) *Scheduler {
	if clock == nil {
		clock = System
	}
	return &Scheduler{clock: clock}
}

// Clock returns the clock the scheduler was built with.
func (s *Scheduler) Clock() Clock { return s.clock }

// Task registers a named kind of deferred work and returns its handle.
func (s *Scheduler) Task(name string, fn func()) *Task {
	t := &Task{s: s, name: name, fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

// RunDue runs every armed task whose deadline has passed, in deadline order,
// and returns how many ran. A task body may cancel other due tasks (the
// cancellation is honored within the same pass) or re-post itself or others
// (those wait for a later pass).
func (s *Scheduler) RunDue() int {
	now := s.clock.Now()

	var due []*Task
	for _, t := range s.tasks {
		if t.armed && !t.due.After(now) {
			due = append(due, t)
		}
	}
	sort.SliceStable(due, func(i, j int) bool { return due[i].due.Before(due[j].due) })

	ran := 0
	for _, t := range due {
		if !t.armed || t.due.After(now) {
			continue
		}
		t.armed = false
		t.fn()
		ran++
	}
	return ran
}

// Pending reports whether any task is armed.
func (s *Scheduler) Pending() bool {
	for _, t := range s.tasks {
		if t.armed {
			return true
		}
	}
	return false
}
