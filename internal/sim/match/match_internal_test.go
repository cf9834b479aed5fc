package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/shadowboxlive/shadowbox/internal/sim/bout"
)

// quietSrc keeps every probabilistic branch from firing.
type quietSrc struct{}

func (quietSrc) Float64() float64 { return 0.99 }
func (quietSrc) Intn(int) int     { return 0 }

// stillRig keeps the gloves far away from anything hittable.
type stillRig struct{}

func (stillRig) StrikePoint(string, bout.Hand) bout.Vec3 { return bout.Vec3{X: 5} }
func (stillRig) VulnerablePoint(string) bout.Vec3        { return bout.Vec3{} }

// TestSetTrackProgress_BackwardSeekClosesTension: scrubbing back out of the
// end-of-track window unschedules the extra exchanges instead of leaving
// them running for the rest of the song.
func TestSetTrackProgress_BackwardSeekClosesTension(t *testing.T) {
	o := New(DefaultConfig(), stillRig{}, nil, quietSrc{}, zaptest.NewLogger(t))
	o.OnTrackChanged(180000)

	o.SetTrackProgress(5000, 180000)
	require.True(t, o.TensionActive())
	require.Equal(t, 1, o.sched.Pending())

	o.SetTrackProgress(20000, 180000)
	assert.False(t, o.TensionActive())
	assert.Zero(t, o.sched.Pending(), "the exchange raiser must be cancelled")

	// Dropping back under the threshold re-arms it.
	o.SetTrackProgress(4000, 180000)
	assert.True(t, o.TensionActive())
	assert.Equal(t, 1, o.sched.Pending())
}
