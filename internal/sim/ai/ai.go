// Package ai implements the per-fighter decision policy: when to attack,
// which punch to throw, how to react to an incoming swing, and when an
// earned counter window justifies a fast reply. All randomness flows
// through an injected rng.Source so decision sequences are reproducible.
package ai

import (
	"go.uber.org/zap"

	"github.com/shadowboxlive/shadowbox/internal/rng"
	"github.com/shadowboxlive/shadowbox/internal/sim/bout"
)

// Config holds the live decision knobs, all in [0, 1]. Stamina and
// SongEnergy mirror external live values; the orchestrator keeps them
// current.
type Config struct {
	Aggressiveness float64
	Skill          float64
	Stamina        float64
	SongEnergy     float64
}

// DecisionKind identifies what the policy chose this tick.
type DecisionKind int

const (
	Wait DecisionKind = iota
	AttackDecision
	DefendDecision
	CounterDecision
)

// Decision is the outcome of one policy evaluation.
type Decision struct {
	Kind    DecisionKind
	Attack  bout.AttackType  // valid for AttackDecision and CounterDecision
	Defense bout.DefenseType // valid for DefendDecision
}

// Opponent is the read-only view of the other fighter the policy consults.
// A nil-safe value type: the zero Opponent reads as "no threat".
type Opponent struct {
	Attacking      bool
	Attack         bout.AttackType
	AttackProgress float64
	PastApex       bool
	KnockedOut     bool
}

// minAttackStamina is the stamina floor below which the policy stops
// initiating attacks.
const minAttackStamina = 0.3

// CounterWindowFor returns the counter-window duration a successful
// defense of the given type earns. More committed evasions earn longer
// windows; a static block earns the shortest.
//
// Postcondition: Returns 0.8 for slips, 0.6 for weave, 0.4 for duck, 0.2
// for block, 0 otherwise.
func CounterWindowFor(d bout.DefenseType) float64 {
	switch d {
	case bout.SlipLeft, bout.SlipRight:
		return 0.8
	case bout.Weave:
		return 0.6
	case bout.Duck:
		return 0.4
	case bout.Block:
		return 0.2
	default:
		return 0
	}
}

// BoxingAI is the decision policy for one fighter.
// It is not safe for concurrent use; the frame loop serialises access.
type BoxingAI struct {
	cfg           Config
	src           rng.Source
	counterWindow float64
	comboCount    int
	logger        *zap.Logger
}

// New creates a BoxingAI with the given starting config.
//
// Precondition: src and logger must be non-nil.
func New(cfg Config, src rng.Source, logger *zap.Logger) *BoxingAI {
	return &BoxingAI{cfg: cfg, src: src, logger: logger}
}

// Config returns the current knob values.
func (b *BoxingAI) Config() Config { return b.cfg }

// ComboCount returns the number of consecutive landed hits.
func (b *BoxingAI) ComboCount() int { return b.comboCount }

// CounterWindowOpen reports whether an earned counter window is still
// ticking.
func (b *BoxingAI) CounterWindowOpen() bool { return b.counterWindow > 0 }

// ApplyPreset installs a named strategy's slow-moving knobs.
func (b *BoxingAI) ApplyPreset(p Preset) {
	b.cfg.Aggressiveness = clamp01(p.Aggressiveness)
	b.cfg.Skill = clamp01(p.Skill)
	b.logger.Debug("strategy preset applied",
		zap.String("preset", p.Name),
		zap.Float64("aggressiveness", b.cfg.Aggressiveness),
		zap.Float64("skill", b.cfg.Skill),
	)
}

// UpdateSongEnergy mirrors the live track energy.
func (b *BoxingAI) UpdateSongEnergy(v float64) { b.cfg.SongEnergy = clamp01(v) }

// UpdateSkill adjusts the skill knob live.
func (b *BoxingAI) UpdateSkill(v float64) { b.cfg.Skill = clamp01(v) }

// UpdateAggressiveness adjusts the aggressiveness knob live.
func (b *BoxingAI) UpdateAggressiveness(v float64) { b.cfg.Aggressiveness = clamp01(v) }

// UpdateStamina mirrors the fighter's live stamina.
func (b *BoxingAI) UpdateStamina(v float64) { b.cfg.Stamina = clamp01(v) }

// Update advances the counter-window countdown.
//
// Precondition: dt >= 0.
func (b *BoxingAI) Update(dt float64) {
	if b.counterWindow > 0 {
		b.counterWindow -= dt
		if b.counterWindow < 0 {
			b.counterWindow = 0
		}
	}
}

// OnDefenseSuccess opens a counter window sized to the defense that
// succeeded.
//
// Postcondition: CounterWindowOpen() iff the defense type earns a window.
func (b *BoxingAI) OnDefenseSuccess(d bout.DefenseType) {
	b.counterWindow = CounterWindowFor(d)
}

// OnTookHit clears the counter state and the running combo.
func (b *BoxingAI) OnTookHit() {
	b.counterWindow = 0
	b.comboCount = 0
}

// OnHitLanded extends the running combo.
func (b *BoxingAI) OnHitLanded() { b.comboCount++ }

// TriggerCounter consumes the open counter window. A consumed window
// cannot be triggered twice.
//
// Postcondition: returns true at most once per OnDefenseSuccess.
func (b *BoxingAI) TriggerCounter() bool {
	if b.counterWindow <= 0 {
		return false
	}
	b.counterWindow = 0
	return true
}

// DecideOnBeat evaluates the policy on a musical pulse, where attacks are
// committed with full beat-paced probability.
func (b *BoxingAI) DecideOnBeat(opp Opponent) Decision {
	attackProb := (0.35 + 0.5*b.cfg.Aggressiveness) * (0.4 + 0.6*b.cfg.SongEnergy)
	return b.decide(opp, attackProb)
}

// Decide evaluates the policy for one simulation tick of length dt.
// Attack initiative is rate-scaled by dt so tick frequency does not change
// behavior.
//
// Precondition: dt >= 0.
func (b *BoxingAI) Decide(opp Opponent, dt float64) Decision {
	attackRate := (0.3 + 1.1*b.cfg.Aggressiveness) * (0.5 + 0.5*b.cfg.SongEnergy)
	return b.decide(opp, attackRate*dt)
}

// decide applies the priority order: counter, defend, attack, wait.
func (b *BoxingAI) decide(opp Opponent, attackProb float64) Decision {
	if opp.KnockedOut {
		return Decision{Kind: Wait}
	}

	// Priority 1: an open counter window after a successful defense.
	if b.counterWindow > 0 && b.TriggerCounter() {
		return Decision{Kind: CounterDecision, Attack: b.counterPunch()}
	}

	// Priority 2: the opponent is mid-swing and has not reached the apex;
	// react with a defense keyed to the incoming punch.
	if opp.Attacking && !opp.PastApex {
		if rng.Chance(b.src, 0.35+0.55*b.cfg.Skill) {
			return Decision{Kind: DefendDecision, Defense: b.defenseAgainst(opp.Attack)}
		}
		return Decision{Kind: Wait}
	}

	// Priority 3: probabilistic initiative, gated on stamina.
	if b.cfg.Stamina >= minAttackStamina && rng.Chance(b.src, attackProb) {
		return Decision{Kind: AttackDecision, Attack: b.selectAttack()}
	}

	return Decision{Kind: Wait}
}

// counterPunch picks the fast reply thrown out of a counter window:
// jab or cross, strongly favoring the lead-hand jab.
func (b *BoxingAI) counterPunch() bout.AttackType {
	if rng.Chance(b.src, 0.65) {
		return bout.Jab
	}
	return bout.Cross
}

// selectAttack samples the punch type from four weights. The jab is
// favored when tired; cross, hook, and uppercut demand progressively more
// stamina and song energy.
func (b *BoxingAI) selectAttack() bout.AttackType {
	m := b.cfg.Stamina * b.cfg.SongEnergy
	weights := []float64{
		0.35 + 0.25*(1-b.cfg.Stamina), // jab
		0.30 * min1(1.5*m),            // cross
		0.22 * min1(1.2*m),            // hook
		0.18 * min1(m),                // uppercut
	}
	switch rng.WeightedIndex(b.src, weights) {
	case 1:
		return bout.Cross
	case 2:
		return bout.Hook
	case 3:
		return bout.Uppercut
	default:
		return bout.Jab
	}
}

// defenseAgainst picks the defensive reaction to an incoming punch with
// hand-tuned probability branches. Skill tilts the pick toward evasive
// moves, which earn longer counter windows.
func (b *BoxingAI) defenseAgainst(attack bout.AttackType) bout.DefenseType {
	evasive := 0.6 + 0.8*b.cfg.Skill

	switch attack {
	case bout.Hook:
		// Against a hook: prefer weave, then duck, then block.
		idx := rng.WeightedIndex(b.src, []float64{0.5 * evasive, 0.3 * evasive, 0.2})
		return [...]bout.DefenseType{bout.Weave, bout.Duck, bout.Block}[idx]
	case bout.Cross:
		idx := rng.WeightedIndex(b.src, []float64{0.4 * evasive, 0.4, 0.2})
		if idx == 0 {
			return b.slip()
		}
		return [...]bout.DefenseType{bout.SlipLeft, bout.Block, bout.Duck}[idx]
	case bout.Uppercut:
		// The mitigation table punishes ducking a straight threat but the
		// uppercut row rewards it; lean on block and slips anyway to keep
		// the silhouette readable.
		idx := rng.WeightedIndex(b.src, []float64{0.5, 0.3 * evasive, 0.2 * evasive})
		switch idx {
		case 1:
			return b.slip()
		case 2:
			return bout.Weave
		default:
			return bout.Block
		}
	default: // jab
		idx := rng.WeightedIndex(b.src, []float64{0.45 * evasive, 0.35, 0.2})
		if idx == 0 {
			return b.slip()
		}
		return [...]bout.DefenseType{bout.SlipLeft, bout.Block, bout.Duck}[idx]
	}
}

// slip picks a slip side uniformly.
func (b *BoxingAI) slip() bout.DefenseType {
	if b.src.Intn(2) == 0 {
		return bout.SlipLeft
	}
	return bout.SlipRight
}

func min1(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
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
