package scheduler_test

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/shadowboxlive/shadowbox/internal/sim/scheduler"
)

func newScheduler(t *testing.T) *scheduler.Scheduler {
	t.Helper()
	return scheduler.New(zaptest.NewLogger(t))
}

// TestSchedule_FiresOnceWhenDue: a one-shot fires during the Update that
// passes its due time and never again.
func TestSchedule_FiresOnceWhenDue(t *testing.T) {
	s := newScheduler(t)
	fired := 0
	s.Schedule("hit", 0.5, func() { fired++ })

	s.Update(0.4)
	if fired != 0 {
		t.Fatalf("fired before due: %d", fired)
	}
	s.Update(0.2)
	if fired != 1 {
		t.Fatalf("expected 1 firing, got %d", fired)
	}
	s.Update(10)
	if fired != 1 {
		t.Fatalf("one-shot fired again: %d", fired)
	}
	if s.Pending() != 0 {
		t.Fatalf("expected no pending actions, got %d", s.Pending())
	}
}

// TestScheduleRepeating_AdvancesByInterval: a repeating action fires once
// per elapsed interval and stays registered.
func TestScheduleRepeating_AdvancesByInterval(t *testing.T) {
	s := newScheduler(t)
	fired := 0
	s.ScheduleRepeating("pulse", 1.0, func() { fired++ }, 0)

	for i := 0; i < 5; i++ {
		s.Update(1.0)
	}
	// startDelay 0 means the first firing happens on the first Update.
	if fired != 5 {
		t.Fatalf("expected 5 firings, got %d", fired)
	}
	if s.Pending() != 1 {
		t.Fatalf("repeating action was removed")
	}
}

// TestCancel_PreventsFiring: cancelled actions never run.
func TestCancel_PreventsFiring(t *testing.T) {
	s := newScheduler(t)
	fired := false
	s.Schedule("ko", 1.0, func() { fired = true })
	s.Cancel("ko")
	s.Update(2.0)
	if fired {
		t.Fatal("cancelled action fired")
	}
}

// TestReset_ClearsActionsAndClock: Reset is the track-change primitive.
func TestReset_ClearsActionsAndClock(t *testing.T) {
	s := newScheduler(t)
	s.Schedule("a", 1.0, func() {})
	s.Update(0.25)
	s.Reset()
	if s.Now() != 0 {
		t.Fatalf("clock not reset: %f", s.Now())
	}
	if s.Pending() != 0 {
		t.Fatalf("actions not cleared: %d", s.Pending())
	}
}

// TestUpdate_PanickingCallbackDoesNotBlockOthers: one failing callback is
// recovered and the rest of the queue still dispatches.
func TestUpdate_PanickingCallbackDoesNotBlockOthers(t *testing.T) {
	s := newScheduler(t)
	fired := false
	s.Schedule("bad", 0.1, func() { panic("boom") })
	s.Schedule("good", 0.2, func() { fired = true })
	s.Update(1.0)
	if !fired {
		t.Fatal("surviving action did not fire")
	}
}

// TestUpdate_DispatchOrderIsDeterministic: due actions fire by due time,
// ties broken by id.
func TestUpdate_DispatchOrderIsDeterministic(t *testing.T) {
	s := newScheduler(t)
	var order []string
	s.Schedule("b", 0.2, func() { order = append(order, "b") })
	s.Schedule("a", 0.2, func() { order = append(order, "a") })
	s.Schedule("c", 0.1, func() { order = append(order, "c") })
	s.Update(1.0)

	want := []string{"c", "a", "b"}
	if len(order) != len(want) {
		t.Fatalf("expected %d firings, got %d", len(want), len(order))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order[%d] = %q, want %q (full order %v)", i, order[i], want[i], order)
		}
	}
}

// TestUpdate_CallbackCancellingSibling: a callback may cancel a not-yet-run
// due action; the cancelled action must not fire.
func TestUpdate_CallbackCancellingSibling(t *testing.T) {
	s := newScheduler(t)
	fired := false
	s.Schedule("a", 0.1, func() { s.Cancel("z") })
	s.Schedule("z", 0.2, func() { fired = true })
	s.Update(1.0)
	if fired {
		t.Fatal("cancelled sibling fired during the same dispatch")
	}
}
