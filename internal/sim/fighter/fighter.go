// Package fighter holds the per-combatant model: defense and attack state,
// the stamina manager, the animation machine, and the command/query surface
// the orchestrator drives.
package fighter

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shadowboxlive/shadowbox/internal/sim/anim"
	"github.com/shadowboxlive/shadowbox/internal/sim/bout"
	"github.com/shadowboxlive/shadowbox/internal/sim/stamina"
)

// Config holds the fighter tuning constants.
type Config struct {
	// CommitThreshold is the attack progress past which a swing can no
	// longer be replaced by a new one.
	CommitThreshold float64
	// ApexStart and ApexEnd bound the progress window where a punch's
	// power peaks.
	ApexStart float64
	ApexEnd   float64
	// StaggerPowerThreshold is the landed power above which the fighter
	// staggers.
	StaggerPowerThreshold float64
	// StaggerDuration is how long a stagger holds before relaxing to idle.
	StaggerDuration float64
	// HeavyHitPower is the landed power above which an exhausted fighter
	// is knocked out.
	HeavyHitPower float64
	// PostAttackCooldown is the base recovery time after a completed swing.
	PostAttackCooldown float64
	// DefenseHold is how long an explicit defense posture is held.
	DefenseHold float64
}

// DefaultConfig returns the tuned constants used by the live overlay.
func DefaultConfig() Config {
	return Config{
		CommitThreshold:       0.7,
		ApexStart:             0.4,
		ApexEnd:               0.7,
		StaggerPowerThreshold: 0.55,
		StaggerDuration:       0.7,
		HeavyHitPower:         0.5,
		PostAttackCooldown:    0.2,
		DefenseHold:           0.6,
	}
}

// Fighter is one combatant. Created at match start, reset on track change,
// discarded at teardown. All mutation happens on the frame loop; the
// renderer and camera only read.
//
// Invariant: once the defense state is KnockedOut, no command changes any
// state until Reset.
type Fighter struct {
	ID   string
	Name string

	cfg  Config
	stam *stamina.Manager
	anim *anim.Machine

	defense     bout.DefenseType
	defenseHold float64

	attack         bout.AttackType
	attackHand     bout.Hand
	attackElapsed  float64
	attackDuration float64

	cooldown float64
	logger   *zap.Logger
}

// New creates a Fighter at full stamina in the idle guard stance.
//
// Precondition: logger must be non-nil.
func New(name string, cfg Config, stamCfg stamina.Config, logger *zap.Logger) *Fighter {
	return &Fighter{
		ID:     uuid.NewString(),
		Name:   name,
		cfg:    cfg,
		stam:   stamina.NewManager(stamCfg, logger),
		anim:   anim.NewMachine(BasePose(), logger),
		logger: logger,
	}
}

// Stamina exposes the fighter's resource manager for read access and
// song-energy mirroring.
func (f *Fighter) Stamina() *stamina.Manager { return f.stam }

// Defense returns the current defense posture.
func (f *Fighter) Defense() bout.DefenseType { return f.defense }

// Attack returns the active attack type, or AttackNone.
func (f *Fighter) Attack() bout.AttackType { return f.attack }

// AttackHand returns which glove is throwing the active attack.
func (f *Fighter) AttackHand() bout.Hand { return f.attackHand }

// IsKnockedOut reports whether the fighter has reached the terminal state.
func (f *Fighter) IsKnockedOut() bool { return f.defense == bout.KnockedOut }

// AttackProgress returns the active swing's progress in [0, 1], or 0 when
// no attack is active.
func (f *Fighter) AttackProgress() float64 {
	if f.attack == bout.AttackNone || f.attackDuration <= 0 {
		return 0
	}
	p := f.attackElapsed / f.attackDuration
	if p > 1 {
		return 1
	}
	return p
}

// IsInAttackApex reports whether the active swing is inside the 40-70%
// progress window where its power peaks.
func (f *Fighter) IsInAttackApex() bool {
	if f.attack == bout.AttackNone {
		return false
	}
	p := f.AttackProgress()
	return p >= f.cfg.ApexStart && p <= f.cfg.ApexEnd
}

// IsPastApex reports whether the active swing is beyond its apex window,
// at which point defending against it no longer pays.
func (f *Fighter) IsPastApex() bool {
	return f.attack != bout.AttackNone && f.AttackProgress() > f.cfg.ApexEnd
}

// StaminaFactor returns the stamina-derived attack power multiplier,
// consumed by the collision detector.
func (f *Fighter) StaminaFactor() float64 { return f.stam.AttackPowerModifier() }

// AnimState returns the top-level animation state.
func (f *Fighter) AnimState() anim.State { return f.anim.State() }

// BlendedPose returns the current per-joint pose targets.
func (f *Fighter) BlendedPose() map[string]float64 { return f.anim.BlendedPose() }

// StartAttack begins a new swing. The command is dropped (returns false)
// when the fighter is knocked out, staggered, cooling down, or committed to
// a swing past CommitThreshold. An uncommitted swing is replaced.
//
// Postcondition: on success the attack state is active at zero progress and
// the stamina cost has been charged.
func (f *Fighter) StartAttack(attack bout.AttackType) bool {
	if f.IsKnockedOut() || attack == bout.AttackNone {
		return false
	}
	if f.defense == bout.Stagger {
		return false
	}
	if f.cooldown > 0 {
		return false
	}
	if f.attack != bout.AttackNone && f.AttackProgress() >= f.cfg.CommitThreshold {
		// The current swing is committed; spam is rejected.
		return false
	}

	var target anim.State
	switch {
	case f.anim.State() == anim.Defense || f.anim.State() == anim.Counter:
		// Punching out of a defense posture is a counter.
		target = anim.Counter
	case f.attack != bout.AttackNone:
		target = anim.Combo
	default:
		target = anim.Attack
	}
	if !f.anim.TransitionTo(target) {
		return false
	}

	f.stam.ConsumeForAttack(attack)
	f.attack = attack
	f.attackHand = handFor(attack)
	f.attackElapsed = 0
	// Tired fighters swing slower.
	f.attackDuration = attack.Duration() / f.stam.SpeedModifier()
	f.anim.Play(anim.AttackLayer, attackPose(attack, f.attackHand), f.attackDuration, 1.0, anim.Additive)
	return true
}

// SetDefense adopts a defense posture. The command is dropped when the
// fighter is knocked out or staggered, or when asked for Stagger/KnockedOut
// directly (those are outcomes, not choices).
//
// Postcondition: on success Defense() == d and the posture holds for the
// configured window.
func (f *Fighter) SetDefense(d bout.DefenseType) bool {
	if f.IsKnockedOut() {
		return false
	}
	if d == bout.KnockedOut || d == bout.Stagger {
		return false
	}
	if f.defense == bout.Stagger {
		return false
	}
	if d == bout.DefenseIdle {
		f.defense = bout.DefenseIdle
		f.defenseHold = 0
		return true
	}
	if !f.anim.TransitionTo(anim.Defense) {
		return false
	}
	f.defense = d
	f.defenseHold = f.cfg.DefenseHold
	f.anim.Play(anim.DefenseLayer, defensePose(d), f.cfg.DefenseHold, 1.0, anim.Replace)
	return true
}

// TakeHit applies a landed blow: stamina drain, reaction animation, a
// stagger above the power threshold, and a knockout when a heavy hit lands
// on an exhausted fighter. No-op once knocked out.
func (f *Fighter) TakeHit(r bout.HitResult) {
	if f.IsKnockedOut() {
		return
	}
	f.stam.TakeDamage(r.Power)

	// A solid hit interrupts whatever swing was in flight.
	if r.Power >= f.cfg.StaggerPowerThreshold {
		f.attack = bout.AttackNone
		f.defense = bout.Stagger
		f.defenseHold = f.cfg.StaggerDuration
		f.anim.TransitionTo(anim.StaggerState)
		f.anim.Play(anim.DefenseLayer, defensePose(bout.Stagger), f.cfg.StaggerDuration, 1.0, anim.Replace)
	}
	f.anim.Play(anim.ReactionLayer, reactionPose(r.Power), 0.3, clamp01(r.Power), anim.Additive)

	if f.stam.Stamina() <= 0 && r.Power >= f.cfg.HeavyHitPower {
		f.logger.Info("fighter knocked out by exhaustion",
			zap.String("fighter", f.Name),
			zap.Float64("power", r.Power),
		)
		f.KnockOut()
	}
}

// KnockOut puts the fighter in the terminal state. Every further command is
// dropped until Reset.
//
// Postcondition: IsKnockedOut() is true.
func (f *Fighter) KnockOut() {
	if f.IsKnockedOut() {
		return
	}
	f.defense = bout.KnockedOut
	f.attack = bout.AttackNone
	f.defenseHold = 0
	f.anim.TransitionTo(anim.KO)
	f.anim.Play(anim.ReactionLayer, map[string]float64{"body.collapse": 1.0}, 1.2, 1.0, anim.Replace)
}

// Update advances attack progress, cooldowns, defense holds, and stamina by
// dt. Knocked-out fighters do not recover.
//
// Precondition: dt >= 0.
func (f *Fighter) Update(dt float64) {
	if f.IsKnockedOut() {
		return
	}

	if f.cooldown > 0 {
		f.cooldown -= dt
		if f.cooldown < 0 {
			f.cooldown = 0
		}
	}

	if f.attack != bout.AttackNone {
		f.attackElapsed += dt
		if f.attackElapsed >= f.attackDuration {
			f.attack = bout.AttackNone
			f.cooldown = f.cfg.PostAttackCooldown / f.stam.SpeedModifier()
		}
	}

	if f.defenseHold > 0 {
		f.defenseHold -= dt
		if f.defenseHold <= 0 {
			f.defenseHold = 0
			f.defense = bout.DefenseIdle
		}
	}

	f.stam.Update(dt)
}

// UpdatePose advances the animation layers and runs the numerical
// fail-safe. Called after all state changes for the tick so the blend
// reflects the tick's final state.
func (f *Fighter) UpdatePose(dt float64) {
	f.anim.Update(dt)
	f.anim.ValidateState()
}

// Reset restores the fighter to idle at full stamina, escaping even a
// knockout. Only the track-change path calls this.
//
// Postcondition: Defense() == DefenseIdle, Attack() == AttackNone,
// stamina == 1.
func (f *Fighter) Reset() {
	f.defense = bout.DefenseIdle
	f.defenseHold = 0
	f.attack = bout.AttackNone
	f.attackElapsed = 0
	f.attackDuration = 0
	f.cooldown = 0
	f.stam.Reset()
	f.anim.Reset()
}

// DebugInfo is a read-only snapshot for the telemetry sink.
type DebugInfo struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Defense        string             `json:"defense"`
	Attack         string             `json:"attack"`
	AttackProgress float64            `json:"attackProgress"`
	KnockedOut     bool               `json:"knockedOut"`
	Stamina        stamina.DebugInfo  `json:"stamina"`
	Pose           map[string]float64 `json:"pose"`
}

// Debug returns the current snapshot.
func (f *Fighter) Debug() DebugInfo {
	return DebugInfo{
		ID:             f.ID,
		Name:           f.Name,
		Defense:        f.defense.String(),
		Attack:         f.attack.String(),
		AttackProgress: f.AttackProgress(),
		KnockedOut:     f.IsKnockedOut(),
		Stamina:        f.stam.Debug(),
		Pose:           f.BlendedPose(),
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
