// Package anim implements the layered pose-blend state machine that turns
// combat decisions into blendable joint targets. A locomotion layer is
// always active; attack, defense, and reaction layers come and go, fading
// their weights out once their durations elapse.
package anim

import "math"

// LayerKind tags the role of a blend layer. Layers are an explicit tagged
// union rather than a shared mutable map so blend correctness cannot depend
// on update order.
type LayerKind int

const (
	Locomotion LayerKind = iota
	AttackLayer
	DefenseLayer
	ReactionLayer
)

// String returns the human-readable layer name.
func (k LayerKind) String() string {
	switch k {
	case AttackLayer:
		return "attack"
	case DefenseLayer:
		return "defense"
	case ReactionLayer:
		return "reaction"
	default:
		return "locomotion"
	}
}

// BlendMode controls how a layer's targets combine with the base pose.
type BlendMode int

const (
	// Replace overwrites the base value weighted by the layer weight.
	Replace BlendMode = iota
	// Additive adds weight-scaled targets onto the base value.
	Additive
	// Multiply scales the base value toward the target by weight.
	Multiply
)

// Layer is one weighted pose contribution.
type Layer struct {
	Kind     LayerKind
	Active   bool
	Time     float64
	Duration float64 // math.Inf(1) for locomotion
	Weight   float64
	Mode     BlendMode
	// Targets maps joint names to target values.
	Targets map[string]float64
}

// Blend composes the given layers onto a per-joint result map. The
// locomotion layer is the base; other active layers apply by weight
// according to their BlendMode. Blend is a pure function: it never mutates
// its inputs and allocates a fresh result.
//
// Postcondition: every joint present in any active layer appears in the
// result.
func Blend(layers []Layer) map[string]float64 {
	result := make(map[string]float64)

	for _, l := range layers {
		if l.Kind == Locomotion && l.Active {
			for joint, v := range l.Targets {
				result[joint] = v * l.Weight
			}
		}
	}

	for _, l := range layers {
		if !l.Active || l.Kind == Locomotion || l.Weight <= 0 {
			continue
		}
		for joint, v := range l.Targets {
			base := result[joint]
			switch l.Mode {
			case Additive:
				result[joint] = base + v*l.Weight
			case Multiply:
				result[joint] = base * (1 + (v-1)*l.Weight)
			default:
				result[joint] = base*(1-l.Weight) + v*l.Weight
			}
		}
	}
	return result
}

// finite reports whether v is a usable pose value.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
