// Package scheduler provides a simulation-time delayed and repeating
// callback queue. No wall-clock timers are involved: the clock only moves
// when Update(dt) is called, so a fixed dt sequence replays identically.
package scheduler

import (
	"sort"

	"go.uber.org/zap"
)

// Action is one scheduled callback. Actions are owned exclusively by the
// Scheduler and never shared.
type Action struct {
	// ID uniquely identifies the action for cancellation.
	ID string
	// ExecuteAt is the simulation time at which the callback fires.
	ExecuteAt float64
	// Callback runs when ExecuteAt elapses.
	Callback func()
	// Repeat reschedules the action every Interval after it fires.
	Repeat bool
	// Interval is the repeat period in simulation seconds.
	Interval float64
}

// Scheduler dispatches Actions against an internal simulation clock.
// It is not safe for concurrent use; the frame loop serialises access.
type Scheduler struct {
	now     float64
	actions map[string]*Action
	logger  *zap.Logger
}

// New creates an empty Scheduler with its clock at zero.
//
// Precondition: logger must be non-nil.
func New(logger *zap.Logger) *Scheduler {
	return &Scheduler{
		actions: make(map[string]*Action),
		logger:  logger,
	}
}

// Now returns the current simulation time in seconds.
func (s *Scheduler) Now() float64 { return s.now }

// Schedule registers a one-shot action firing delay seconds from now.
// An existing action with the same id is replaced.
//
// Precondition: cb must be non-nil; delay >= 0.
// Postcondition: the action fires during the Update call in which the clock
// passes now+delay, then is removed.
func (s *Scheduler) Schedule(id string, delay float64, cb func()) {
	s.actions[id] = &Action{
		ID:        id,
		ExecuteAt: s.now + delay,
		Callback:  cb,
	}
}

// ScheduleRepeating registers an action firing every interval seconds,
// first after startDelay. An existing action with the same id is replaced.
//
// Precondition: cb must be non-nil; interval > 0; startDelay >= 0.
func (s *Scheduler) ScheduleRepeating(id string, interval float64, cb func(), startDelay float64) {
	s.actions[id] = &Action{
		ID:        id,
		ExecuteAt: s.now + startDelay,
		Callback:  cb,
		Repeat:    true,
		Interval:  interval,
	}
}

// Cancel removes the action with the given id. Unknown ids are a no-op.
//
// Postcondition: the action will not fire after Cancel returns.
func (s *Scheduler) Cancel(id string) {
	delete(s.actions, id)
}

// CancelAll removes every pending action without touching the clock.
func (s *Scheduler) CancelAll() {
	s.actions = make(map[string]*Action)
}

// Reset clears all pending actions and returns the clock to zero.
// Invoked wholesale on track change.
//
// Postcondition: Now() == 0 and no actions are pending.
func (s *Scheduler) Reset() {
	s.actions = make(map[string]*Action)
	s.now = 0
}

// Pending returns the number of registered actions.
func (s *Scheduler) Pending() int { return len(s.actions) }

// Update advances the clock by dt and fires every due action exactly once,
// in deterministic order (due time, then id). A panicking callback is
// recovered and logged so it cannot block the rest of the queue. Repeating
// actions are rescheduled by advancing ExecuteAt by Interval; one-shots are
// removed. Callbacks may schedule or cancel actions; actions scheduled
// during dispatch run no earlier than the next Update.
//
// Precondition: dt >= 0.
func (s *Scheduler) Update(dt float64) {
	s.now += dt

	var due []*Action
	for _, a := range s.actions {
		if a.ExecuteAt <= s.now {
			due = append(due, a)
		}
	}
	if len(due) == 0 {
		return
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].ExecuteAt != due[j].ExecuteAt {
			return due[i].ExecuteAt < due[j].ExecuteAt
		}
		return due[i].ID < due[j].ID
	})

	for _, a := range due {
		// The action may have been cancelled by an earlier callback
		// in this same dispatch pass.
		current, ok := s.actions[a.ID]
		if !ok || current != a {
			continue
		}
		if a.Repeat {
			a.ExecuteAt += a.Interval
		} else {
			delete(s.actions, a.ID)
		}
		s.invoke(a)
	}
}

// invoke runs one callback with panic recovery.
func (s *Scheduler) invoke(a *Action) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("scheduled action panicked",
				zap.String("action", a.ID),
				zap.Any("panic", r),
			)
		}
	}()
	a.Callback()
}
