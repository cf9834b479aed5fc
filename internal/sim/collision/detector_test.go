package collision_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/shadowboxlive/shadowbox/internal/sim/bout"
	"github.com/shadowboxlive/shadowbox/internal/sim/collision"
)

// scriptedRig serves strike points from a queue and a fixed vulnerable
// point, letting tests drive the glove along an arbitrary path.
type scriptedRig struct {
	strikes    []bout.Vec3
	i          int
	vulnerable bout.Vec3
}

func (r *scriptedRig) StrikePoint(string, bout.Hand) bout.Vec3 {
	if r.i >= len(r.strikes) {
		return r.strikes[len(r.strikes)-1]
	}
	p := r.strikes[r.i]
	r.i++
	return p
}

func (r *scriptedRig) VulnerablePoint(string) bout.Vec3 { return r.vulnerable }

// fixedQuery returns a constant defense and power factor.
type fixedQuery struct {
	defense bout.DefenseType
	power   float64
}

func (q fixedQuery) DefenseOf(string) bout.DefenseType { return q.defense }
func (q fixedQuery) AttackPowerOf(string) float64      { return q.power }

func newDetector(t *testing.T, rig collision.Rig, q collision.FighterQuery) *collision.Detector {
	t.Helper()
	return collision.NewDetector(collision.DefaultConfig(), rig, q, zaptest.NewLogger(t))
}

// TestMitigation_TableValues: the table is deterministic and exact.
func TestMitigation_TableValues(t *testing.T) {
	assert.Equal(t, 0.4, collision.Mitigation(bout.Block, bout.Uppercut))
	assert.Equal(t, 0.8, collision.Mitigation(bout.Block, bout.Jab))
	assert.Equal(t, 0.8, collision.Mitigation(bout.Block, bout.Cross))
	assert.Equal(t, 0.4, collision.Mitigation(bout.Block, bout.Hook))

	// The duck row keeps its observed inversion: strong against uppercut,
	// near-useless against straight punches.
	assert.Equal(t, 0.9, collision.Mitigation(bout.Duck, bout.Uppercut))
	assert.Equal(t, 0.1, collision.Mitigation(bout.Duck, bout.Jab))
	assert.Equal(t, 0.1, collision.Mitigation(bout.Duck, bout.Cross))

	assert.Equal(t, 0.85, collision.Mitigation(bout.Weave, bout.Hook))

	// Postures with no row mitigate nothing.
	assert.Equal(t, 0.0, collision.Mitigation(bout.DefenseIdle, bout.Hook))
	assert.Equal(t, 0.0, collision.Mitigation(bout.Stagger, bout.Uppercut))
}

// path drives the glove from x=-1 to x=+1 through the target at origin.
func approachPath(n int) []bout.Vec3 {
	out := make([]bout.Vec3, n)
	for i := range out {
		out[i] = bout.Vec3{X: -1 + 2*float64(i)/float64(n-1)}
	}
	return out
}

// TestUpdate_OneHitPerSwing: a glove passing through the sphere on several
// consecutive ticks still resolves exactly one hit.
func TestUpdate_OneHitPerSwing(t *testing.T) {
	rig := &scriptedRig{strikes: approachPath(12), vulnerable: bout.Vec3{}}
	d := newDetector(t, rig, fixedQuery{defense: bout.DefenseIdle, power: 1})
	require.True(t, d.StartAttack("red", "blue", bout.Cross, bout.RearHand))

	hits := 0
	for i := 0; i < 10; i++ {
		for _, r := range d.Update(0.04) {
			if r.Hit {
				hits++
			}
		}
	}
	assert.Equal(t, 1, hits, "one-hit-per-swing")
}

// TestUpdate_SweptSegmentCatchesTunneling: a glove that jumps across the
// sphere in a single tick still hits — the segment is tested, not the
// sample points.
func TestUpdate_SweptSegmentCatchesTunneling(t *testing.T) {
	rig := &scriptedRig{
		strikes:    []bout.Vec3{{X: -2}, {X: 2}},
		vulnerable: bout.Vec3{},
	}
	d := newDetector(t, rig, fixedQuery{defense: bout.DefenseIdle, power: 1})
	require.True(t, d.StartAttack("red", "blue", bout.Jab, bout.LeadHand))

	// First tick seeds the previous sample; second sweeps across.
	results := d.Update(0.05)
	assert.Empty(t, results)
	results = d.Update(0.05)
	require.Len(t, results, 1)
	assert.True(t, results[0].Hit)
	assert.InDelta(t, 0.0, results[0].ImpactPoint.X, 1e-9)
	assert.InDelta(t, 1.0, results[0].ImpactDirection.X, 1e-9)
}

// TestUpdate_MissedSwingExpires: a swing that never intersects disposes
// itself at the end of its duration with no result.
func TestUpdate_MissedSwingExpires(t *testing.T) {
	rig := &scriptedRig{
		strikes:    []bout.Vec3{{Y: 5}, {Y: 5.1}, {Y: 5.2}},
		vulnerable: bout.Vec3{},
	}
	d := newDetector(t, rig, fixedQuery{defense: bout.DefenseIdle, power: 1})
	require.True(t, d.StartAttack("red", "blue", bout.Jab, bout.LeadHand))

	total := 0
	for i := 0; i < 20; i++ {
		total += len(d.Update(0.05))
	}
	assert.Zero(t, total)
	assert.Nil(t, d.ActiveAttack("red"), "expired swing must be disposed")
}

// TestResolve_MitigationReducesPowerAndSetsFlag: a blocked jab loses 80% of
// its raw power and reports Mitigated.
func TestResolve_MitigationReducesPowerAndSetsFlag(t *testing.T) {
	hitAt := func(defense bout.DefenseType) bout.HitResult {
		rig := &scriptedRig{strikes: approachPath(12), vulnerable: bout.Vec3{}}
		d := newDetector(t, rig, fixedQuery{defense: defense, power: 1})
		require.True(t, d.StartAttack("red", "blue", bout.Jab, bout.LeadHand))
		for i := 0; i < 10; i++ {
			if rs := d.Update(0.03); len(rs) > 0 {
				return rs[0]
			}
		}
		t.Fatal("swing never landed")
		return bout.HitResult{}
	}

	open := hitAt(bout.DefenseIdle)
	blocked := hitAt(bout.Block)

	assert.False(t, open.Mitigated)
	assert.True(t, blocked.Mitigated)
	assert.InDelta(t, open.Power*(1-0.8), blocked.Power, 1e-9)
}

// TestResolve_PowerPeaksMidSwing: the timing factor rises from near zero at
// the start of the swing toward the apex.
func TestResolve_PowerPeaksMidSwing(t *testing.T) {
	// Land very early in the swing: jab duration 0.35s, hit on tick 2.
	earlyRig := &scriptedRig{strikes: []bout.Vec3{{X: -2}, {X: 2}}, vulnerable: bout.Vec3{}}
	early := newDetector(t, earlyRig, fixedQuery{defense: bout.DefenseIdle, power: 1})
	require.True(t, early.StartAttack("red", "blue", bout.Jab, bout.LeadHand))
	early.Update(0.01)
	earlyHits := early.Update(0.01)
	require.Len(t, earlyHits, 1)

	// Land near mid-swing.
	midRig := &scriptedRig{strikes: []bout.Vec3{{X: -2}, {X: -2}, {X: 2}}, vulnerable: bout.Vec3{}}
	mid := newDetector(t, midRig, fixedQuery{defense: bout.DefenseIdle, power: 1})
	require.True(t, mid.StartAttack("red", "blue", bout.Jab, bout.LeadHand))
	mid.Update(0.08)
	mid.Update(0.08)
	midHits := mid.Update(0.08)
	require.Len(t, midHits, 1)

	assert.Greater(t, midHits[0].Power, earlyHits[0].Power)
}

// pathRig serves each fighter its own scripted strike path, holding the
// last sample once a path runs out.
type pathRig struct {
	paths      map[string][]bout.Vec3
	idx        map[string]int
	vulnerable bout.Vec3
}

func (r *pathRig) StrikePoint(fighterID string, _ bout.Hand) bout.Vec3 {
	path := r.paths[fighterID]
	i := r.idx[fighterID]
	if i >= len(path) {
		return path[len(path)-1]
	}
	r.idx[fighterID] = i + 1
	return path[i]
}

func (r *pathRig) VulnerablePoint(string) bout.Vec3 { return r.vulnerable }

// TestUpdate_ResolvesHitsInRegistrationOrder: when both corners' swings
// land on the same tick, the results come back in the order the swings
// were registered, every run, so a seeded match replays the same hit
// sequence.
func TestUpdate_ResolvesHitsInRegistrationOrder(t *testing.T) {
	crossing := func(first, second string) []string {
		rig := &pathRig{
			paths: map[string][]bout.Vec3{
				first:  {{X: -2}, {X: 2}},
				second: {{X: -2}, {X: 2}},
			},
			idx: map[string]int{},
		}
		d := newDetector(t, rig, fixedQuery{defense: bout.DefenseIdle, power: 1})
		require.True(t, d.StartAttack(first, second, bout.Jab, bout.LeadHand))
		require.True(t, d.StartAttack(second, first, bout.Jab, bout.LeadHand))

		// First tick seeds both sweeps, second resolves both crossings.
		require.Empty(t, d.Update(0.05))
		results := d.Update(0.05)
		require.Len(t, results, 2)
		return []string{results[0].AttackerID, results[1].AttackerID}
	}

	for i := 0; i < 50; i++ {
		assert.Equal(t, []string{"red", "blue"}, crossing("red", "blue"))
	}
	assert.Equal(t, []string{"blue", "red"}, crossing("blue", "red"),
		"order follows registration, not ids")
}

// TestUpdate_ExpiringTickNotSwept: a crossing that would only occur on the
// tick the swing expires produces no hit; the swing just disposes.
func TestUpdate_ExpiringTickNotSwept(t *testing.T) {
	// Jab duration 0.35s at dt 0.05: the seventh tick expires the swing,
	// and only that tick's segment crosses the sphere.
	rig := &scriptedRig{
		strikes:    []bout.Vec3{{X: -2}, {X: -2}, {X: -2}, {X: -2}, {X: -2}, {X: -2}, {X: 2}},
		vulnerable: bout.Vec3{},
	}
	d := newDetector(t, rig, fixedQuery{defense: bout.DefenseIdle, power: 1})
	require.True(t, d.StartAttack("red", "blue", bout.Jab, bout.LeadHand))

	total := 0
	for i := 0; i < 8; i++ {
		total += len(d.Update(0.05))
	}
	assert.Zero(t, total)
	assert.Nil(t, d.ActiveAttack("red"), "expired swing must be disposed")
}

// TestStartAttack_RejectsInvalidArguments: missing ids or AttackNone no-op.
func TestStartAttack_RejectsInvalidArguments(t *testing.T) {
	rig := &scriptedRig{strikes: approachPath(4), vulnerable: bout.Vec3{}}
	d := newDetector(t, rig, fixedQuery{power: 1})

	assert.False(t, d.StartAttack("", "blue", bout.Jab, bout.LeadHand))
	assert.False(t, d.StartAttack("red", "", bout.Jab, bout.LeadHand))
	assert.False(t, d.StartAttack("red", "blue", bout.AttackNone, bout.LeadHand))
	assert.Nil(t, d.ActiveAttack("red"))
}
