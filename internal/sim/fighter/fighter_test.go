package fighter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/shadowboxlive/shadowbox/internal/sim/bout"
	"github.com/shadowboxlive/shadowbox/internal/sim/fighter"
	"github.com/shadowboxlive/shadowbox/internal/sim/stamina"
)

func newFighter(t *testing.T) *fighter.Fighter {
	t.Helper()
	return fighter.New("Red", fighter.DefaultConfig(), stamina.DefaultConfig(), zaptest.NewLogger(t))
}

// TestStartAttack_Basics: a fresh fighter can attack; the swing progresses
// and completes.
func TestStartAttack_Basics(t *testing.T) {
	f := newFighter(t)
	require.True(t, f.StartAttack(bout.Jab))
	assert.Equal(t, bout.Jab, f.Attack())
	assert.Equal(t, bout.LeadHand, f.AttackHand())
	assert.Zero(t, f.AttackProgress())

	// Advance past the full swing (duration is speed-scaled, jab ~0.35s).
	for i := 0; i < 20; i++ {
		f.Update(0.05)
	}
	assert.Equal(t, bout.AttackNone, f.Attack())
}

// TestStartAttack_CommittedSwingRejectsReplacement: past 70% progress the
// swing is committed; before that a new punch replaces it.
func TestStartAttack_CommittedSwingRejectsReplacement(t *testing.T) {
	f := newFighter(t)
	require.True(t, f.StartAttack(bout.Cross))

	// Early in the swing a replacement is allowed.
	f.Update(0.05)
	assert.Less(t, f.AttackProgress(), 0.7)
	assert.True(t, f.StartAttack(bout.Jab), "uncommitted swing should be replaceable")

	// Drive the jab past the commit threshold.
	for f.AttackProgress() < 0.75 {
		f.Update(0.02)
	}
	assert.False(t, f.StartAttack(bout.Hook), "committed swing must reject a new attack")
	assert.Equal(t, bout.Jab, f.Attack())
}

// TestStartAttack_ApexWindow: the apex covers 40-70% of the swing.
func TestStartAttack_ApexWindow(t *testing.T) {
	f := newFighter(t)
	require.True(t, f.StartAttack(bout.Hook))

	assert.False(t, f.IsInAttackApex(), "apex should not be open at the start")
	for f.AttackProgress() < 0.5 {
		f.Update(0.01)
	}
	assert.True(t, f.IsInAttackApex())
	for f.AttackProgress() < 0.8 {
		f.Update(0.01)
	}
	assert.False(t, f.IsInAttackApex(), "apex closes past 70%")
}

// TestSetDefense_HoldsAndRelaxes: an adopted posture holds for its window
// then relaxes to idle.
func TestSetDefense_HoldsAndRelaxes(t *testing.T) {
	f := newFighter(t)
	require.True(t, f.SetDefense(bout.Weave))
	assert.Equal(t, bout.Weave, f.Defense())

	for i := 0; i < 20; i++ {
		f.Update(0.05)
	}
	assert.Equal(t, bout.DefenseIdle, f.Defense())
}

// TestSetDefense_OutcomesAreNotChoices: stagger and knockout cannot be
// adopted as postures.
func TestSetDefense_OutcomesAreNotChoices(t *testing.T) {
	f := newFighter(t)
	assert.False(t, f.SetDefense(bout.Stagger))
	assert.False(t, f.SetDefense(bout.KnockedOut))
	assert.Equal(t, bout.DefenseIdle, f.Defense())
}

// TestTakeHit_HeavyHitStaggersAndInterrupts: a heavy blow cancels the
// in-flight swing and staggers the fighter.
func TestTakeHit_HeavyHitStaggersAndInterrupts(t *testing.T) {
	f := newFighter(t)
	require.True(t, f.StartAttack(bout.Uppercut))

	f.TakeHit(bout.HitResult{Hit: true, Power: 0.8})
	assert.Equal(t, bout.AttackNone, f.Attack(), "heavy hit interrupts the swing")
	assert.Equal(t, bout.Stagger, f.Defense())

	// Staggered fighters can neither punch nor change posture.
	assert.False(t, f.StartAttack(bout.Jab))
	assert.False(t, f.SetDefense(bout.Block))

	// The stagger relaxes after its duration.
	for i := 0; i < 20; i++ {
		f.Update(0.05)
	}
	assert.Equal(t, bout.DefenseIdle, f.Defense())
}

// TestTakeHit_LightHitDoesNotStagger.
func TestTakeHit_LightHitDoesNotStagger(t *testing.T) {
	f := newFighter(t)
	f.TakeHit(bout.HitResult{Hit: true, Power: 0.2})
	assert.Equal(t, bout.DefenseIdle, f.Defense())
}

// TestKnockOut_IsTerminal: after KnockOut no command changes any state.
func TestKnockOut_IsTerminal(t *testing.T) {
	f := newFighter(t)
	f.KnockOut()
	require.True(t, f.IsKnockedOut())

	assert.False(t, f.StartAttack(bout.Jab))
	assert.Equal(t, bout.AttackNone, f.Attack())

	assert.False(t, f.SetDefense(bout.Block))
	assert.Equal(t, bout.KnockedOut, f.Defense())

	before := f.Stamina().Stamina()
	f.TakeHit(bout.HitResult{Hit: true, Power: 1.0})
	assert.Equal(t, before, f.Stamina().Stamina(), "hits on a downed fighter are ignored")

	f.Update(1.0)
	assert.True(t, f.IsKnockedOut())
}

// TestTakeHit_ExhaustionKnockout: a heavy hit landing on a fighter with no
// stamina left knocks them out.
func TestTakeHit_ExhaustionKnockout(t *testing.T) {
	f := newFighter(t)
	for i := 0; i < 10 && !f.IsKnockedOut(); i++ {
		f.TakeHit(bout.HitResult{Hit: true, Power: 0.9})
		// Let the stagger relax so the next hit registers its own outcome.
		for j := 0; j < 20 && f.Defense() == bout.Stagger; j++ {
			f.Update(0.05)
		}
	}
	assert.True(t, f.IsKnockedOut())
}

// TestReset_RestoresIdleFullStamina: the track-change path revives even a
// knocked-out fighter.
func TestReset_RestoresIdleFullStamina(t *testing.T) {
	f := newFighter(t)
	f.TakeHit(bout.HitResult{Hit: true, Power: 0.9})
	f.KnockOut()

	f.Reset()
	assert.Equal(t, bout.DefenseIdle, f.Defense())
	assert.Equal(t, bout.AttackNone, f.Attack())
	assert.Equal(t, 1.0, f.Stamina().Stamina())
	assert.False(t, f.IsKnockedOut())
	assert.True(t, f.StartAttack(bout.Jab), "revived fighter can act again")
}
