// Package match is the composition root of the simulation: the
// Orchestrator owns both fighters, their decision policies, the scheduler,
// the collision detector, and the camera, and drives them per frame tick
// and per musical pulse. All collaborators arrive through injection; there
// are no ambient globals.
package match

import (
	"go.uber.org/zap"

	"github.com/shadowboxlive/shadowbox/internal/rng"
	"github.com/shadowboxlive/shadowbox/internal/sim/ai"
	"github.com/shadowboxlive/shadowbox/internal/sim/anim"
	"github.com/shadowboxlive/shadowbox/internal/sim/bout"
	"github.com/shadowboxlive/shadowbox/internal/sim/camera"
	"github.com/shadowboxlive/shadowbox/internal/sim/collision"
	"github.com/shadowboxlive/shadowbox/internal/sim/fighter"
	"github.com/shadowboxlive/shadowbox/internal/sim/scheduler"
	"github.com/shadowboxlive/shadowbox/internal/sim/stamina"
)

// tensionActionID keys the scheduled extra-exchange action during the
// end-of-track tension window.
const tensionActionID = "tension-exchange"

// EffectsSink receives resolved hits for cosmetic responses (particle
// bursts, glove flashes). The simulation has no dependency on how effects
// render.
type EffectsSink interface {
	OnHit(r bout.HitResult)
}

// Config holds the orchestrator tuning plus the sub-configs of the
// components it owns.
type Config struct {
	// TensionThreshold is the remaining track time, in seconds, below which
	// the match raises its exchange rate.
	TensionThreshold float64
	// TensionInterval is the period of the extra scheduled exchanges inside
	// the tension window.
	TensionInterval float64
	// KnockoutWindow is the remaining track time, in seconds, inside which
	// exactly one scripted knockout is forced.
	KnockoutWindow float64
	// LosingSideBias is the probability the forced knockout falls on the
	// fighter with less stamina.
	LosingSideBias float64

	RedName  string
	BlueName string

	Fighter   fighter.Config
	Stamina   stamina.Config
	Camera    camera.Config
	Collision collision.Config
}

// DefaultConfig returns the tuned constants used by the live overlay.
func DefaultConfig() Config {
	return Config{
		TensionThreshold: 9.0,
		TensionInterval:  0.75,
		KnockoutWindow:   1.5,
		LosingSideBias:   0.7,
		RedName:          "red",
		BlueName:         "blue",
		Fighter:          fighter.DefaultConfig(),
		Stamina:          stamina.DefaultConfig(),
		Camera:           camera.DefaultConfig(),
		Collision:        collision.DefaultConfig(),
	}
}

// Orchestrator drives one two-fighter match. Not safe for concurrent use;
// the host loop serialises frame ticks and beat pulses.
//
// Invariant: after the scripted knockout fires, no further attack or
// defense decisions are issued until OnTrackChanged.
type Orchestrator struct {
	cfg    Config
	src    rng.Source
	logger *zap.Logger

	sched    *scheduler.Scheduler
	fighters [2]*fighter.Fighter
	ais      [2]*ai.BoxingAI
	detector *collision.Detector
	cam      *camera.Director
	effects  EffectsSink

	nextAttacker int
	songEnergy   float64
	remaining    float64
	total        float64
	tensionOn    bool
	koIssued     bool
}

// New wires a fresh match. Both corners start on the balanced strategy.
//
// Precondition: rig, src, and logger must be non-nil; effects may be nil.
func New(cfg Config, rig collision.Rig, effects EffectsSink, src rng.Source, logger *zap.Logger) *Orchestrator {
	o := &Orchestrator{
		cfg:     cfg,
		src:     src,
		logger:  logger,
		sched:   scheduler.New(logger),
		cam:     camera.New(cfg.Camera),
		effects: effects,
	}
	o.fighters[0] = fighter.New(cfg.RedName, cfg.Fighter, cfg.Stamina, logger)
	o.fighters[1] = fighter.New(cfg.BlueName, cfg.Fighter, cfg.Stamina, logger)

	balanced := ai.BuiltinPresets()["balanced"]
	for i := range o.ais {
		o.ais[i] = ai.New(ai.Config{
			Aggressiveness: balanced.Aggressiveness,
			Skill:          balanced.Skill,
			Stamina:        1,
		}, src, logger)
	}

	o.detector = collision.NewDetector(cfg.Collision, rig, o, logger)
	return o
}

// Fighter returns the corner's combatant (0 = red, 1 = blue).
func (o *Orchestrator) Fighter(i int) *fighter.Fighter { return o.fighters[i] }

// AI returns the corner's decision policy (0 = red, 1 = blue).
func (o *Orchestrator) AI(i int) *ai.BoxingAI { return o.ais[i] }

// Camera returns the match camera director.
func (o *Orchestrator) Camera() *camera.Director { return o.cam }

// Clock returns the simulation time since the last track change.
func (o *Orchestrator) Clock() float64 { return o.sched.Now() }

// KnockoutIssued reports whether this track's scripted knockout has fired.
func (o *Orchestrator) KnockoutIssued() bool { return o.koIssued }

// TensionActive reports whether the end-of-track exchange raiser is
// currently scheduled.
func (o *Orchestrator) TensionActive() bool { return o.tensionOn }

// UsePreset installs a named strategy on one corner.
func (o *Orchestrator) UsePreset(i int, p ai.Preset) { o.ais[i].ApplyPreset(p) }

// SetSongEnergy mirrors the live track energy into both stamina managers
// and both policies.
func (o *Orchestrator) SetSongEnergy(v float64) {
	o.songEnergy = v
	for i := range o.fighters {
		o.fighters[i].Stamina().SetSongEnergy(v)
		o.ais[i].UpdateSongEnergy(v)
	}
}

// SetReducedMotion forwards the viewer's accessibility preference to the
// camera.
func (o *Orchestrator) SetReducedMotion(on bool) { o.cam.SetReducedMotion(on) }

// DefenseOf implements collision.FighterQuery.
func (o *Orchestrator) DefenseOf(fighterID string) bout.DefenseType {
	if f := o.fighterByID(fighterID); f != nil {
		return f.Defense()
	}
	return bout.DefenseIdle
}

// AttackPowerOf implements collision.FighterQuery.
func (o *Orchestrator) AttackPowerOf(fighterID string) float64 {
	if f := o.fighterByID(fighterID); f != nil {
		return f.StaminaFactor()
	}
	return 0
}

// OnBeat runs one exchange: the beat's attacker consults its policy with
// full initiative, then the other corner gets its reaction. Attackers
// alternate beat to beat. No-op once the scripted knockout has fired.
func (o *Orchestrator) OnBeat() {
	if o.koIssued {
		return
	}
	attacker := o.nextAttacker
	o.nextAttacker = 1 - o.nextAttacker

	o.applyDecision(attacker, o.ais[attacker].DecideOnBeat(o.opponentView(attacker)))

	defender := 1 - attacker
	o.applyDecision(defender, o.ais[defender].DecideOnBeat(o.opponentView(defender)))
}

// OnDownbeat adds the camera emphasis pulse and runs a beat exchange.
func (o *Orchestrator) OnDownbeat() {
	o.cam.OnDownbeat()
	o.OnBeat()
}

// SetTrackProgress feeds the transport countdown, in milliseconds. Inside
// the tension window it schedules extra exchanges; inside the knockout
// window it forces exactly one knockout.
//
// Precondition: totalMs > 0 and 0 <= remainingMs <= totalMs.
func (o *Orchestrator) SetTrackProgress(remainingMs, totalMs float64) {
	o.remaining = remainingMs / 1000
	o.total = totalMs / 1000

	o.cam.OnNearKO(o.remaining, o.total)

	if o.koIssued {
		return
	}
	if o.remaining < o.cfg.TensionThreshold && !o.tensionOn {
		o.tensionOn = true
		o.sched.ScheduleRepeating(tensionActionID, o.cfg.TensionInterval, o.OnBeat, 0)
		o.logger.Debug("tension window opened", zap.Float64("remaining", o.remaining))
	} else if o.remaining >= o.cfg.TensionThreshold && o.tensionOn {
		// A backwards seek left the window; drop the extra exchanges.
		o.tensionOn = false
		o.sched.Cancel(tensionActionID)
		o.logger.Debug("tension window closed", zap.Float64("remaining", o.remaining))
	}
	if o.remaining <= o.cfg.KnockoutWindow {
		o.forceKnockout()
	}
}

// OnTrackChanged resets the whole match for a new song: fighters to idle
// at full stamina, scheduler clock to zero, camera to rest, countdown
// re-armed.
func (o *Orchestrator) OnTrackChanged(totalMs float64) {
	o.sched.Reset()
	o.detector.Reset()
	o.cam.Reset()
	for i := range o.fighters {
		o.fighters[i].Reset()
		o.ais[i].OnTookHit()
		o.ais[i].UpdateStamina(1)
	}
	o.nextAttacker = 0
	o.tensionOn = false
	o.koIssued = false
	o.total = totalMs / 1000
	o.remaining = o.total
	o.logger.Info("track changed, match reset", zap.Float64("totalSec", o.total))
}

// Update advances one frame. Order matters: scheduled actions and AI
// windows first, then fighter state, then collision, then hit routing and
// camera, and pose blending last so the blend reflects the tick's final
// state.
//
// Precondition: dt >= 0.
func (o *Orchestrator) Update(dt float64) {
	o.sched.Update(dt)

	for i := range o.ais {
		o.ais[i].Update(dt)
		o.ais[i].UpdateStamina(o.fighters[i].Stamina().Stamina())
	}

	if !o.koIssued {
		for i := range o.fighters {
			o.applyDecision(i, o.ais[i].Decide(o.opponentView(i), dt))
		}
	}

	for _, f := range o.fighters {
		f.Update(dt)
	}

	for _, r := range o.detector.Update(dt) {
		o.routeHit(r)
	}

	o.cam.Update(dt)

	for _, f := range o.fighters {
		f.UpdatePose(dt)
	}
}

// DebugInfo is the read-only telemetry snapshot the overlay broadcasts.
type DebugInfo struct {
	Clock        float64             `json:"clock"`
	RemainingSec float64             `json:"remainingSec"`
	KnockedOut   bool                `json:"knockedOut"`
	Camera       camera.State        `json:"camera"`
	Fighters     []fighter.DebugInfo `json:"fighters"`
}

// Debug returns the current snapshot.
func (o *Orchestrator) Debug() DebugInfo {
	return DebugInfo{
		Clock:        o.sched.Now(),
		RemainingSec: o.remaining,
		KnockedOut:   o.koIssued,
		Camera:       o.cam.State(),
		Fighters: []fighter.DebugInfo{
			o.fighters[0].Debug(),
			o.fighters[1].Debug(),
		},
	}
}

// StartAttack issues an attack command for corner i and begins collision
// tracking on success. The scripted-knockout freeze still applies.
func (o *Orchestrator) StartAttack(i int, attack bout.AttackType) bool {
	if o.koIssued {
		return false
	}
	f := o.fighters[i]
	if !f.StartAttack(attack) {
		return false
	}
	o.detector.StartAttack(f.ID, o.fighters[1-i].ID, attack, f.AttackHand())
	if f.AnimState() == anim.Combo {
		o.cam.OnComboStart()
	}
	return true
}

// SetDefense issues a defense command for corner i.
func (o *Orchestrator) SetDefense(i int, d bout.DefenseType) bool {
	if o.koIssued {
		return false
	}
	return o.fighters[i].SetDefense(d)
}

// applyDecision turns one policy outcome into fighter commands and
// collision tracking.
func (o *Orchestrator) applyDecision(i int, d ai.Decision) {
	switch d.Kind {
	case ai.AttackDecision, ai.CounterDecision:
		o.StartAttack(i, d.Attack)
	case ai.DefendDecision:
		o.SetDefense(i, d.Defense)
	}
}

// routeHit fans a resolved hit out to the target, both policies, the
// camera, and the effects sink.
func (o *Orchestrator) routeHit(r bout.HitResult) {
	target := o.fighterByID(r.TargetID)
	if target == nil {
		return
	}
	target.TakeHit(r)

	ti, ai0 := o.indexByID(r.TargetID), o.indexByID(r.AttackerID)
	if r.Mitigated {
		// The defense did its job; the defender earns a counter window.
		if ti >= 0 {
			o.ais[ti].OnDefenseSuccess(r.Defense)
		}
	} else if ti >= 0 {
		o.ais[ti].OnTookHit()
	}
	if ai0 >= 0 {
		o.ais[ai0].OnHitLanded()
	}

	o.cam.OnHit(r)
	if o.effects != nil {
		o.effects.OnHit(r)
	}
}

// forceKnockout scripts the track-end knockout exactly once, weighted
// toward the fighter with less stamina left.
func (o *Orchestrator) forceKnockout() {
	losing := 0
	if o.fighters[1].Stamina().Stamina() < o.fighters[0].Stamina().Stamina() {
		losing = 1
	}
	victim := losing
	if !rng.Chance(o.src, o.cfg.LosingSideBias) {
		victim = 1 - losing
	}

	o.koIssued = true
	o.sched.Cancel(tensionActionID)
	o.detector.AbortAttack(o.fighters[victim].ID)
	o.fighters[victim].KnockOut()
	o.cam.OnRoundEnd()
	o.logger.Info("scripted knockout",
		zap.String("fighter", o.fighters[victim].Name),
		zap.Float64("remaining", o.remaining),
	)
}

// opponentView builds the read-only snapshot of corner i's opponent.
func (o *Orchestrator) opponentView(i int) ai.Opponent {
	opp := o.fighters[1-i]
	return ai.Opponent{
		Attacking:      opp.Attack() != bout.AttackNone,
		Attack:         opp.Attack(),
		AttackProgress: opp.AttackProgress(),
		PastApex:       opp.IsPastApex(),
		KnockedOut:     opp.IsKnockedOut(),
	}
}

func (o *Orchestrator) fighterByID(id string) *fighter.Fighter {
	for _, f := range o.fighters {
		if f.ID == id {
			return f
		}
	}
	return nil
}

func (o *Orchestrator) indexByID(id string) int {
	for i, f := range o.fighters {
		if f.ID == id {
			return i
		}
	}
	return -1
}
