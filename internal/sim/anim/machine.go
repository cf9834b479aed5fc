package anim

import (
	"math"

	"go.uber.org/zap"
)

// State is the top-level animation state of one fighter.
type State int

const (
	Idle State = iota
	Attack
	Defense
	StaggerState
	Combo
	Counter
	KO
)

// String returns the human-readable state name.
func (s State) String() string {
	switch s {
	case Attack:
		return "attack"
	case Defense:
		return "defense"
	case StaggerState:
		return "stagger"
	case Combo:
		return "combo"
	case Counter:
		return "counter"
	case KO:
		return "ko"
	default:
		return "idle"
	}
}

// transitions is the table of legal top-level moves. KO has no outgoing
// transitions: it is terminal.
var transitions = map[State][]State{
	Idle:         {Attack, Defense, StaggerState, KO},
	Attack:       {Idle, Combo, Defense, StaggerState, KO},
	Defense:      {Idle, Counter, StaggerState, KO},
	StaggerState: {Idle, KO},
	Combo:        {Idle, Attack, StaggerState, KO},
	Counter:      {Idle, Attack, StaggerState, KO},
	KO:           {},
}

// fadeRate is the per-second rate at which an expired layer's weight decays
// toward zero.
const fadeRate = 6.0

// Machine drives the layered animation state for one fighter.
// It is not safe for concurrent use; the frame loop serialises access.
type Machine struct {
	state  State
	layers [4]Layer // indexed by LayerKind
	logger *zap.Logger
}

// NewMachine creates a Machine in Idle with an always-active locomotion
// layer holding the given base pose.
//
// Precondition: logger must be non-nil; basePose must not be nil.
func NewMachine(basePose map[string]float64, logger *zap.Logger) *Machine {
	m := &Machine{logger: logger}
	m.layers[Locomotion] = Layer{
		Kind:     Locomotion,
		Active:   true,
		Duration: math.Inf(1),
		Weight:   1,
		Mode:     Replace,
		Targets:  basePose,
	}
	return m
}

// State returns the current top-level state.
func (m *Machine) State() State { return m.state }

// CanTransition reports whether the move from the current state to next is
// present in the transition table.
func (m *Machine) CanTransition(next State) bool {
	for _, s := range transitions[m.state] {
		if s == next {
			return true
		}
	}
	return false
}

// TransitionTo moves to next if the transition table allows it. Illegal
// transitions are rejected with a warning log and leave the state
// unchanged; combat simply continues in the prior state.
//
// Postcondition: returns true iff the state changed to next.
func (m *Machine) TransitionTo(next State) bool {
	if next == m.state {
		return true
	}
	if !m.CanTransition(next) {
		m.logger.Warn("illegal animation transition rejected",
			zap.String("from", m.state.String()),
			zap.String("to", next.String()),
		)
		return false
	}
	m.state = next
	return true
}

// Play activates the layer of the given kind with the supplied targets,
// duration, weight, and blend mode, restarting its clock.
//
// Precondition: kind must not be Locomotion; duration > 0; targets non-nil.
func (m *Machine) Play(kind LayerKind, targets map[string]float64, duration, weight float64, mode BlendMode) {
	if kind == Locomotion {
		m.logger.Warn("attempt to restart locomotion layer ignored")
		return
	}
	m.layers[kind] = Layer{
		Kind:     kind,
		Active:   true,
		Duration: duration,
		Weight:   weight,
		Mode:     mode,
		Targets:  targets,
	}
}

// SetLocomotion swaps the base pose without touching the other layers.
func (m *Machine) SetLocomotion(targets map[string]float64) {
	m.layers[Locomotion].Targets = targets
}

// Layers returns a copy of the current layer array for blending and
// inspection. Target maps are shared; callers must not modify them.
func (m *Machine) Layers() []Layer {
	out := make([]Layer, len(m.layers))
	copy(out, m.layers[:])
	return out
}

// Update advances active layer timers by dt. A layer past its duration
// fades its weight toward zero and deactivates once fully faded. When the
// state is an action state and every non-locomotion layer has decayed, the
// machine returns to Idle. KO never decays back to Idle.
//
// Precondition: dt >= 0.
func (m *Machine) Update(dt float64) {
	for kind := range m.layers {
		l := &m.layers[kind]
		if !l.Active || LayerKind(kind) == Locomotion {
			continue
		}
		l.Time += dt
		if l.Time >= l.Duration {
			l.Weight -= fadeRate * dt
			if l.Weight <= 0 {
				l.Weight = 0
				l.Active = false
			}
		}
	}

	if m.state != Idle && m.state != KO && !m.anyActionLayerActive() {
		// Direct return to idle; every non-terminal state lists Idle.
		m.state = Idle
	}
}

// BlendedPose composes the active layers into the per-joint pose map.
func (m *Machine) BlendedPose() map[string]float64 {
	return Blend(m.Layers())
}

// ValidateState scans the blended pose for non-finite values. If any are
// found the machine force-resets to Idle (layers zeroed) and logs the
// offending joint. This is a recoverable self-heal against numerical
// blow-ups, not a fatal error.
//
// Postcondition: returns true when the pose was valid; false when a reset
// was forced. After a forced reset BlendedPose contains only finite values.
func (m *Machine) ValidateState() bool {
	pose := m.BlendedPose()
	for joint, v := range pose {
		if finite(v) {
			continue
		}
		m.logger.Warn("non-finite pose value, forcing idle",
			zap.String("joint", joint),
			zap.Float64("value", v),
			zap.String("state", m.state.String()),
		)
		m.forceIdle()
		return false
	}
	return true
}

// Reset returns the machine to Idle and clears all non-locomotion layers.
// Unlike TransitionTo, Reset escapes even KO; it is only invoked on track
// change when the fighters are rebuilt.
func (m *Machine) Reset() {
	m.forceIdle()
}

func (m *Machine) forceIdle() {
	m.state = Idle
	for kind := range m.layers {
		if LayerKind(kind) == Locomotion {
			continue
		}
		m.layers[kind] = Layer{Kind: LayerKind(kind)}
	}
}

func (m *Machine) anyActionLayerActive() bool {
	for kind, l := range m.layers {
		if LayerKind(kind) == Locomotion {
			continue
		}
		if l.Active {
			return true
		}
	}
	return false
}
