// Package bout defines the shared vocabulary of a boxing exchange: attack
// and defense types, hands, and the HitResult record passed between the
// collision detector, the fighters, the camera, and the overlay.
package bout

// AttackType identifies one of the four punch archetypes.
// The zero value (AttackNone) means no attack is active.
type AttackType int

const (
	AttackNone AttackType = iota // zero value; no active attack
	Jab
	Cross
	Hook
	Uppercut
)

// String returns the human-readable name of the AttackType.
// Postcondition: returns "none", "jab", "cross", "hook", or "uppercut".
func (a AttackType) String() string {
	switch a {
	case Jab:
		return "jab"
	case Cross:
		return "cross"
	case Hook:
		return "hook"
	case Uppercut:
		return "uppercut"
	default:
		return "none"
	}
}

// BasePower returns the raw impact strength of the attack before timing and
// stamina scaling. Heavier punches hit harder.
//
// Postcondition: Returns a value in (0, 1] for valid attacks, 0 for AttackNone.
func (a AttackType) BasePower() float64 {
	switch a {
	case Jab:
		return 0.35
	case Cross:
		return 0.55
	case Hook:
		return 0.75
	case Uppercut:
		return 1.0
	default:
		return 0
	}
}

// Duration returns the full swing time of the attack in simulation seconds.
// Heavier punches take longer to land and to recover from.
//
// Postcondition: Returns > 0 for valid attacks, 0 for AttackNone.
func (a AttackType) Duration() float64 {
	switch a {
	case Jab:
		return 0.35
	case Cross:
		return 0.45
	case Hook:
		return 0.55
	case Uppercut:
		return 0.65
	default:
		return 0
	}
}

// DefenseType identifies the defender's current guard posture.
type DefenseType int

const (
	DefenseIdle DefenseType = iota
	Block
	Duck
	SlipLeft
	SlipRight
	Weave
	Stagger
	KnockedOut
)

// String returns the human-readable name of the DefenseType.
func (d DefenseType) String() string {
	switch d {
	case Block:
		return "block"
	case Duck:
		return "duck"
	case SlipLeft:
		return "slipLeft"
	case SlipRight:
		return "slipRight"
	case Weave:
		return "weave"
	case Stagger:
		return "stagger"
	case KnockedOut:
		return "knockedOut"
	default:
		return "idle"
	}
}

// IsEvasive reports whether the defense moves the head off the centre line.
// Evasive defenses open counter windows on success; a static block does not
// reposition and earns only the shortest window.
func (d DefenseType) IsEvasive() bool {
	switch d {
	case Duck, SlipLeft, SlipRight, Weave:
		return true
	default:
		return false
	}
}

// Hand identifies which glove throws a punch.
type Hand int

const (
	LeadHand Hand = iota
	RearHand
)

// String returns "lead" or "rear".
func (h Hand) String() string {
	if h == RearHand {
		return "rear"
	}
	return "lead"
}

// HitResult describes the resolution of one swing. It is an ephemeral
// record: created when the swing resolves, consumed the same tick.
type HitResult struct {
	// AttackerID and TargetID identify the fighters involved.
	AttackerID string
	TargetID   string
	// Attack is the punch type that was thrown.
	Attack AttackType
	// Defense is the defense posture the target held at resolution time.
	Defense DefenseType
	// Hit is true when the swing connected.
	Hit bool
	// Power is the final impact strength after timing, stamina, and
	// mitigation, in [0, 1].
	Power float64
	// Mitigated is true when the defense meaningfully reduced the blow
	// (mitigation fraction >= 0.5).
	Mitigated bool
	// ImpactPoint is where the strike landed, in rig space.
	ImpactPoint Vec3
	// ImpactDirection is the unit direction of travel at impact.
	ImpactDirection Vec3
}
