package sched

import (
	"testing"
	"time"
)

func TestPostReplacesPending(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	s := NewScheduler(clock)

	runs := 0
	task := s.Task("update", func() { runs++ })

	task.Post(100 * time.Millisecond)
	clock.Advance(50 * time.Millisecond)
	if s.RunDue() != 0 {
		t.Error("Task ran before its deadline")
	}

	// Re-posting moves the deadline, it must not queue a second run
	task.Post(100 * time.Millisecond)
	clock.Advance(60 * time.Millisecond)
	if s.RunDue() != 0 {
		t.Error("Task ran at the replaced deadline")
	}

	clock.Advance(40 * time.Millisecond)
	if s.RunDue() != 1 {
		t.Error("Task did not run at the new deadline")
	}
	if runs != 1 {
		t.Errorf("Expected 1 run, got %d", runs)
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	s := NewScheduler(clock)

	runs := 0
	task := s.Task("align", func() { runs++ })

	task.Cancel()
	task.Post(10 * time.Millisecond)
	task.Cancel()
	task.Cancel()

	clock.Advance(20 * time.Millisecond)
	if s.RunDue() != 0 || runs != 0 {
		t.Errorf("Cancelled task ran, runs=%d", runs)
	}
	if task.Pending() {
		t.Error("Cancelled task still pending")
	}
}

func TestRunsInDeadlineOrder(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	s := NewScheduler(clock)

	var order []string
	second := s.Task("second", func() { order = append(order, "second") })
	first := s.Task("first", func() { order = append(order, "first") })

	second.Post(50 * time.Millisecond)
	first.Post(10 * time.Millisecond)

	clock.Advance(100 * time.Millisecond)
	if s.RunDue() != 2 {
		t.Fatal("Expected both tasks to run")
	}
	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("Wrong run order: %v", order)
	}
}

func TestCancelWithinPass(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	s := NewScheduler(clock)

	var alignRuns int
	align := s.Task("align", func() { alignRuns++ })
	update := s.Task("update", func() { align.Cancel() })

	update.Post(10 * time.Millisecond)
	align.Post(20 * time.Millisecond)

	clock.Advance(30 * time.Millisecond)
	s.RunDue()

	if alignRuns != 0 {
		t.Error("Task cancelled during the pass still ran")
	}
}

func TestRepostFromOwnBody(t *testing.T) {
	clock := NewManualClock(time.Unix(0, 0))
	s := NewScheduler(clock)

	runs := 0
	var task *Task
	task = s.Task("align", func() {
		runs++
		if runs == 1 {
			task.Post(30 * time.Millisecond)
		}
	})

	task.Post(10 * time.Millisecond)
	clock.Advance(10 * time.Millisecond)

	if s.RunDue() != 1 {
		t.Fatal("Expected one run on first pass")
	}
	if !task.Pending() {
		t.Fatal("Re-posted task not pending")
	}

	clock.Advance(30 * time.Millisecond)
	if s.RunDue() != 1 || runs != 2 {
		t.Errorf("Expected re-posted run, runs=%d", runs)
	}
}
