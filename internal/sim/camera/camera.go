// Package camera derives the overlay's shake and zoom values from combat
// events. The Director is the single writer of CameraState; everything else
// reads snapshots. All of the math is a pure function of the current state
// and the event payload.
package camera

import (
	"math"

	"github.com/shadowboxlive/shadowbox/internal/sim/bout"
)

// Config holds the camera tuning constants.
type Config struct {
	// MaxShake caps the accumulated shake impulse. Rapid hits compound up
	// to this value and never past it.
	MaxShake float64
	// MaxZoom caps the push-in target.
	MaxZoom float64
	// ShakeDecay is the exponential decay rate of shake, per second.
	ShakeDecay float64
	// ZoomDamping controls how fast zoom chases its target, per second.
	ZoomDamping float64
	// NearKOWindow is the remaining-time threshold, in seconds, below which
	// the end-of-track push-in ramps up.
	NearKOWindow float64
	// HitShakeScale converts landed power into shake impulse.
	HitShakeScale float64
	// MitigatedShakeFactor scales the impulse of a mitigated hit.
	MitigatedShakeFactor float64
	// ReducedMotionFactor scales every impulse when the viewer prefers
	// reduced motion.
	ReducedMotionFactor float64
	// DownbeatBump is the small shake pulse added on each musical downbeat.
	DownbeatBump float64
	// ComboZoomNudge is the zoom-target bump when a combo opens.
	ComboZoomNudge float64
}

// DefaultConfig returns the tuned constants used by the live overlay.
func DefaultConfig() Config {
	return Config{
		MaxShake:             1.0,
		MaxZoom:              1.0,
		ShakeDecay:           5.0,
		ZoomDamping:          4.0,
		NearKOWindow:         9.0,
		HitShakeScale:        0.8,
		MitigatedShakeFactor: 0.4,
		ReducedMotionFactor:  0.3,
		DownbeatBump:         0.05,
		ComboZoomNudge:       0.15,
	}
}

// State is the derived camera value the renderer consumes.
type State struct {
	Shake float64 `json:"shake"`
	Zoom  float64 `json:"zoom"`
}

// Director owns the camera state. Not safe for concurrent use; the frame
// loop serialises access.
//
// Invariant: Shake stays in [0, MaxShake] and Zoom in [0, MaxZoom].
type Director struct {
	cfg           Config
	shake         float64
	zoom          float64
	zoomTarget    float64
	reducedMotion bool
}

// New creates a Director at rest.
func New(cfg Config) *Director {
	return &Director{cfg: cfg}
}

// State returns the current shake and zoom snapshot.
func (d *Director) State() State {
	return State{Shake: d.shake, Zoom: d.zoom}
}

// SetReducedMotion installs the viewer's accessibility preference. The
// flag comes from the host; the Director never infers device capability.
func (d *Director) SetReducedMotion(on bool) { d.reducedMotion = on }

// ReducedMotion reports the current accessibility preference.
func (d *Director) ReducedMotion() bool { return d.reducedMotion }

// OnHit adds shake proportional to the landed power. Mitigated hits shake
// much less; reduced motion scales the impulse down again.
//
// Postcondition: Shake <= MaxShake.
func (d *Director) OnHit(r bout.HitResult) {
	impulse := r.Power * d.cfg.HitShakeScale
	if r.Mitigated {
		impulse *= d.cfg.MitigatedShakeFactor
	}
	if d.reducedMotion {
		impulse *= d.cfg.ReducedMotionFactor
	}
	d.addShake(impulse)
}

// OnDownbeat adds a small shake pulse on the musical downbeat. Skipped
// entirely under reduced motion.
func (d *Director) OnDownbeat() {
	if d.reducedMotion {
		return
	}
	d.addShake(d.cfg.DownbeatBump)
}

// OnNearKO ramps the push-in as the track runs out. Below the window the
// target follows endFactor squared for an accelerating zoom; outside it
// the target relaxes to zero.
//
// Precondition: total > 0 and 0 <= remaining <= total.
func (d *Director) OnNearKO(remaining, total float64) {
	if remaining >= d.cfg.NearKOWindow || total <= 0 {
		d.zoomTarget = 0
		return
	}
	endFactor := 1 - remaining/d.cfg.NearKOWindow
	d.zoomTarget = d.cfg.MaxZoom * endFactor * endFactor
}

// OnComboStart nudges the zoom target toward the action.
func (d *Director) OnComboStart() {
	d.zoomTarget += d.cfg.ComboZoomNudge
	if d.zoomTarget > d.cfg.MaxZoom {
		d.zoomTarget = d.cfg.MaxZoom
	}
}

// OnRoundEnd releases the push-in.
func (d *Director) OnRoundEnd() { d.zoomTarget = 0 }

// Update decays shake exponentially and damps zoom toward its target.
//
// Precondition: dt >= 0.
func (d *Director) Update(dt float64) {
	d.shake *= math.Exp(-d.cfg.ShakeDecay * dt)
	if d.shake < 1e-4 {
		d.shake = 0
	}
	// Frame-rate independent damping toward the target.
	alpha := 1 - math.Exp(-d.cfg.ZoomDamping*dt)
	d.zoom += (d.zoomTarget - d.zoom) * alpha
	if d.zoom < 0 {
		d.zoom = 0
	}
	if d.zoom > d.cfg.MaxZoom {
		d.zoom = d.cfg.MaxZoom
	}
}

// Reset returns the camera to rest. The track-change path calls this.
func (d *Director) Reset() {
	d.shake = 0
	d.zoom = 0
	d.zoomTarget = 0
}

func (d *Director) addShake(impulse float64) {
	d.shake += impulse
	if d.shake > d.cfg.MaxShake {
		d.shake = d.cfg.MaxShake
	}
	if d.shake < 0 {
		d.shake = 0
	}
}
