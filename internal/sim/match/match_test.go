package match_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/shadowboxlive/shadowbox/internal/sim/bout"
	"github.com/shadowboxlive/shadowbox/internal/sim/match"
)

// constSrc always returns the same float draw. 0 makes every chance pass
// and every weighted pick take the first bucket; 0.99 makes the
// probabilistic branches stay quiet so tests can drive fighters manually.
type constSrc struct{ v float64 }

func (s constSrc) Float64() float64 { return s.v }
func (s constSrc) Intn(int) int     { return 0 }

// farRig keeps the gloves far away from anything hittable.
type farRig struct{}

func (farRig) StrikePoint(string, bout.Hand) bout.Vec3 { return bout.Vec3{X: 5} }
func (farRig) VulnerablePoint(string) bout.Vec3        { return bout.Vec3{} }

// lineRig replays a scripted strike-point path, holding the last sample.
type lineRig struct {
	strikes []bout.Vec3
	i       int
}

func (r *lineRig) StrikePoint(string, bout.Hand) bout.Vec3 {
	if r.i >= len(r.strikes) {
		return r.strikes[len(r.strikes)-1]
	}
	v := r.strikes[r.i]
	r.i++
	return v
}

func (r *lineRig) VulnerablePoint(string) bout.Vec3 { return bout.Vec3{} }

type recordSink struct{ hits []bout.HitResult }

func (s *recordSink) OnHit(r bout.HitResult) { s.hits = append(s.hits, r) }

func koCount(o *match.Orchestrator) int {
	n := 0
	for i := 0; i < 2; i++ {
		if o.Fighter(i).IsKnockedOut() {
			n++
		}
	}
	return n
}

// TestOnBeat_RunsExchange: the beat's attacker throws and the other corner
// reacts with a defense keyed to the incoming punch.
func TestOnBeat_RunsExchange(t *testing.T) {
	o := match.New(match.DefaultConfig(), farRig{}, nil, constSrc{0}, zaptest.NewLogger(t))

	o.OnBeat()
	assert.Equal(t, bout.Jab, o.Fighter(0).Attack())
	assert.Equal(t, bout.SlipLeft, o.Fighter(1).Defense())
}

// TestUpdate_RoutesHitToEveryConsumer: a resolved hit reaches the target,
// both policies, the camera, and the effects sink.
func TestUpdate_RoutesHitToEveryConsumer(t *testing.T) {
	rig := &lineRig{strikes: []bout.Vec3{{X: 1}, {X: -1}}}
	sink := &recordSink{}
	o := match.New(match.DefaultConfig(), rig, sink, constSrc{0.99}, zaptest.NewLogger(t))

	require.True(t, o.StartAttack(0, bout.Jab))
	require.True(t, o.SetDefense(1, bout.SlipLeft))

	// First tick seeds the sweep, second resolves the crossing.
	o.Update(0.05)
	o.Update(0.05)

	require.Len(t, sink.hits, 1)
	hit := sink.hits[0]
	assert.True(t, hit.Hit)
	assert.True(t, hit.Mitigated, "slip vs jab mitigates above the threshold")
	assert.Equal(t, bout.SlipLeft, hit.Defense)

	assert.True(t, o.AI(1).CounterWindowOpen(), "mitigating defense earns a counter window")
	assert.Equal(t, 1, o.AI(0).ComboCount())
	assert.Greater(t, o.Camera().State().Shake, 0.0)
}

// TestSetTrackProgress_ForcesExactlyOneKnockout: inside the final window
// one fighter goes down and the match stops issuing decisions.
func TestSetTrackProgress_ForcesExactlyOneKnockout(t *testing.T) {
	o := match.New(match.DefaultConfig(), farRig{}, nil, constSrc{0}, zaptest.NewLogger(t))
	o.OnTrackChanged(180000)

	// Put corner 1 behind on stamina so the bias has a target.
	o.Fighter(1).TakeHit(bout.HitResult{Hit: true, Power: 0.4})

	o.SetTrackProgress(1000, 180000)
	require.True(t, o.KnockoutIssued())
	assert.Equal(t, 1, koCount(o))
	assert.True(t, o.Fighter(1).IsKnockedOut(), "bias favors the losing side")

	// Repeated transport updates never issue a second knockout.
	o.SetTrackProgress(500, 180000)
	o.SetTrackProgress(100, 180000)
	assert.Equal(t, 1, koCount(o))

	// No further decisions for this track, scripted or manual.
	o.OnBeat()
	o.Update(0.1)
	assert.Equal(t, bout.AttackNone, o.Fighter(0).Attack())
	assert.False(t, o.StartAttack(0, bout.Jab))
	assert.False(t, o.SetDefense(0, bout.Block))
}

// TestOnTrackChanged_FullReset: a new song revives both fighters at full
// stamina with the clock at zero.
func TestOnTrackChanged_FullReset(t *testing.T) {
	o := match.New(match.DefaultConfig(), farRig{}, nil, constSrc{0}, zaptest.NewLogger(t))
	o.OnTrackChanged(180000)
	o.OnBeat()
	o.Update(0.25)
	o.SetTrackProgress(1000, 180000)
	require.True(t, o.KnockoutIssued())

	o.OnTrackChanged(200000)
	assert.False(t, o.KnockoutIssued())
	assert.Zero(t, o.Clock())
	for i := 0; i < 2; i++ {
		f := o.Fighter(i)
		assert.False(t, f.IsKnockedOut())
		assert.Equal(t, bout.DefenseIdle, f.Defense())
		assert.Equal(t, bout.AttackNone, f.Attack())
		assert.Equal(t, 1.0, f.Stamina().Stamina())
	}

	// The revived match fights again.
	o.OnBeat()
	assert.Equal(t, bout.Jab, o.Fighter(0).Attack())
}

// TestSetTrackProgress_NearKOPushIn: under the tension threshold the
// camera ramps its push-in.
func TestSetTrackProgress_NearKOPushIn(t *testing.T) {
	o := match.New(match.DefaultConfig(), farRig{}, nil, constSrc{0.99}, zaptest.NewLogger(t))
	o.OnTrackChanged(180000)

	o.SetTrackProgress(4500, 180000)
	for i := 0; i < 600; i++ {
		o.Update(1.0 / 60.0)
	}
	assert.InDelta(t, 0.25, o.Camera().State().Zoom, 1e-2)
}

// TestDebug_SnapshotShape.
func TestDebug_SnapshotShape(t *testing.T) {
	o := match.New(match.DefaultConfig(), farRig{}, nil, constSrc{0.99}, zaptest.NewLogger(t))
	o.OnTrackChanged(180000)
	o.Update(0.016)

	d := o.Debug()
	require.Len(t, d.Fighters, 2)
	assert.Equal(t, "red", d.Fighters[0].Name)
	assert.Equal(t, "blue", d.Fighters[1].Name)
	assert.InDelta(t, 0.016, d.Clock, 1e-9)
	assert.False(t, d.KnockedOut)
}
