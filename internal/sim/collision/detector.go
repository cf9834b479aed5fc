// Package collision resolves whether punches land. Each active attack is a
// small lifecycle state machine (pending -> hit-resolved | expired); every
// tick the attacker's strike point sweeps a segment that is tested against
// a sphere around the defender's vulnerable point. A swing can land at most
// once.
package collision

import (
	"math"

	"go.uber.org/zap"

	"github.com/shadowboxlive/shadowbox/internal/sim/bout"
)

// Phase is the lifecycle state of one tracked swing.
type Phase int

const (
	// Pending swings are still sweeping and may land.
	Pending Phase = iota
	// HitResolved swings have landed; further intersections are ignored.
	HitResolved
	// Expired swings ran their full duration; the detector disposes them.
	Expired
)

// String returns the human-readable phase name.
func (p Phase) String() string {
	switch p {
	case HitResolved:
		return "hit-resolved"
	case Expired:
		return "expired"
	default:
		return "pending"
	}
}

// Rig supplies concrete positions for strike and vulnerable points. The
// detector treats these as opaque coordinates; pose math lives outside the
// core.
type Rig interface {
	// StrikePoint returns the current glove position for the fighter's hand.
	StrikePoint(fighterID string, hand bout.Hand) bout.Vec3
	// VulnerablePoint returns the centre of the fighter's hittable sphere.
	VulnerablePoint(fighterID string) bout.Vec3
}

// FighterQuery is the read-only view of fighter state the detector needs
// at resolution time. A local interface avoids a dependency on the fighter
// package.
type FighterQuery interface {
	// DefenseOf returns the fighter's current defense posture.
	DefenseOf(fighterID string) bout.DefenseType
	// AttackPowerOf returns the fighter's stamina-derived power factor.
	AttackPowerOf(fighterID string) float64
}

// Attack tracks one swing through its lifetime.
type Attack struct {
	AttackerID string
	TargetID   string
	Type       bout.AttackType
	Hand       bout.Hand
	Elapsed    float64
	Duration   float64
	phase      Phase
	prevStrike bout.Vec3
	havePrev   bool
}

// Progress returns the swing progress in [0, 1].
func (a *Attack) Progress() float64 {
	if a.Duration <= 0 {
		return 1
	}
	p := a.Elapsed / a.Duration
	if p > 1 {
		return 1
	}
	return p
}

// Phase returns the swing's lifecycle phase.
func (a *Attack) Phase() Phase { return a.phase }

// Config holds the detector's tuning constants.
type Config struct {
	// HitRadius is the radius of the defender's vulnerable sphere, in rig
	// units.
	HitRadius float64
}

// DefaultConfig returns the tuned constants used by the live overlay.
func DefaultConfig() Config {
	return Config{HitRadius: 0.25}
}

// Detector tracks active swings for the whole match.
// It is not safe for concurrent use; the frame loop serialises access.
type Detector struct {
	cfg     Config
	rig     Rig
	query   FighterQuery
	attacks map[string]*Attack // keyed by attacker ID; one swing per attacker
	order   []string           // attacker IDs in registration order; Update sweeps in this order
	logger  *zap.Logger
}

// NewDetector creates an empty Detector.
//
// Precondition: rig, query, and logger must be non-nil.
func NewDetector(cfg Config, rig Rig, query FighterQuery, logger *zap.Logger) *Detector {
	return &Detector{
		cfg:     cfg,
		rig:     rig,
		query:   query,
		attacks: make(map[string]*Attack),
		logger:  logger,
	}
}

// StartAttack begins tracking a swing from attacker toward target. A swing
// already in flight for the attacker is replaced (the fighter model gates
// committed swings before this is called). Invalid arguments no-op.
//
// Postcondition: returns true iff the swing is now tracked.
func (d *Detector) StartAttack(attackerID, targetID string, attack bout.AttackType, hand bout.Hand) bool {
	if attackerID == "" || targetID == "" || attack == bout.AttackNone {
		d.logger.Warn("rejected invalid attack registration",
			zap.String("attacker", attackerID),
			zap.String("target", targetID),
			zap.String("attack", attack.String()),
		)
		return false
	}
	if _, tracked := d.attacks[attackerID]; !tracked {
		d.order = append(d.order, attackerID)
	}
	d.attacks[attackerID] = &Attack{
		AttackerID: attackerID,
		TargetID:   targetID,
		Type:       attack,
		Hand:       hand,
		Duration:   attack.Duration(),
	}
	return true
}

// AbortAttack stops tracking the attacker's in-flight swing, if any. Used
// when a fighter replaces an uncommitted punch.
func (d *Detector) AbortAttack(attackerID string) {
	if _, tracked := d.attacks[attackerID]; !tracked {
		return
	}
	delete(d.attacks, attackerID)
	for i, id := range d.order {
		if id == attackerID {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
}

// ActiveAttack returns the attacker's in-flight swing, or nil.
func (d *Detector) ActiveAttack(attackerID string) *Attack {
	return d.attacks[attackerID]
}

// Reset drops all tracked swings, used on track change.
func (d *Detector) Reset() {
	d.attacks = make(map[string]*Attack)
	d.order = d.order[:0]
}

// Update advances every tracked swing by dt and returns the hits resolved
// this tick, in swing registration order so an identical input sequence
// always yields an identical hit sequence. Swings self-dispose once their
// duration elapses even if they never hit; the expiring tick's partial
// segment is deliberately not swept, since the timing curve has already
// decayed a last-instant graze to zero power. The first intersecting tick
// resolves the hit; the swing then ignores all further intersections (one
// hit per swing).
//
// Precondition: dt >= 0.
func (d *Detector) Update(dt float64) []bout.HitResult {
	var results []bout.HitResult

	kept := d.order[:0]
	for _, attacker := range d.order {
		a := d.attacks[attacker]
		a.Elapsed += dt
		if a.Elapsed >= a.Duration {
			a.phase = Expired
			delete(d.attacks, attacker)
			continue
		}
		kept = append(kept, attacker)

		current := d.rig.StrikePoint(a.AttackerID, a.Hand)
		if !current.IsFinite() {
			// A corrupted rig sample never produces a hit; skip the tick.
			d.logger.Warn("non-finite strike point, skipping swing tick",
				zap.String("attacker", a.AttackerID),
			)
			continue
		}
		if !a.havePrev {
			a.prevStrike = current
			a.havePrev = true
			continue
		}

		if a.phase == Pending {
			centre := d.rig.VulnerablePoint(a.TargetID)
			if point, ok := segmentSphereIntersection(a.prevStrike, current, centre, d.cfg.HitRadius); ok {
				results = append(results, d.resolve(a, point, current))
				a.phase = HitResolved
			}
		}
		a.prevStrike = current
	}
	d.order = kept
	return results
}

// resolve computes the final HitResult for a landed swing.
// Power peaks near 50-70% of the swing and is zero at the ends:
// timing = sin(pi * progress^0.8).
func (d *Detector) resolve(a *Attack, impact, current bout.Vec3) bout.HitResult {
	timing := math.Sin(math.Pi * math.Pow(a.Progress(), 0.8))
	staminaFactor := d.query.AttackPowerOf(a.AttackerID)
	raw := a.Type.BasePower() * timing * staminaFactor

	defense := d.query.DefenseOf(a.TargetID)
	mit := Mitigation(defense, a.Type)
	power := raw * (1 - mit)

	direction := current.Sub(a.prevStrike).Normalized()
	d.logger.Debug("hit resolved",
		zap.String("attacker", a.AttackerID),
		zap.String("target", a.TargetID),
		zap.String("attack", a.Type.String()),
		zap.String("defense", defense.String()),
		zap.Float64("power", power),
		zap.Float64("mitigation", mit),
	)
	return bout.HitResult{
		AttackerID:      a.AttackerID,
		TargetID:        a.TargetID,
		Attack:          a.Type,
		Defense:         defense,
		Hit:             true,
		Power:           power,
		Mitigated:       mit >= mitigatedThreshold,
		ImpactPoint:     impact,
		ImpactDirection: direction,
	}
}

// segmentSphereIntersection tests the segment from p0 to p1 against the
// sphere at centre with the given radius. On intersection it returns the
// closest point on the segment to the sphere centre.
func segmentSphereIntersection(p0, p1, centre bout.Vec3, radius float64) (bout.Vec3, bool) {
	seg := p1.Sub(p0)
	lenSq := seg.Dot(seg)

	t := 0.0
	if lenSq > 0 {
		t = centre.Sub(p0).Dot(seg) / lenSq
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
	}
	closest := p0.Add(seg.Scale(t))
	if closest.Sub(centre).Length() > radius {
		return bout.Vec3{}, false
	}
	return closest, true
}
