package collision

import "github.com/shadowboxlive/shadowbox/internal/sim/bout"

// mitigationTable maps (defense, attack) to the fraction of damage removed
// when the swing lands. The duck row is intentionally inverted from boxing
// intuition (very effective against uppercuts, near-useless against
// straight punches); the choreography reads better on camera that way and
// the values are preserved as observed.
var mitigationTable = map[bout.DefenseType]map[bout.AttackType]float64{
	bout.Block: {
		bout.Jab:      0.8,
		bout.Cross:    0.8,
		bout.Hook:     0.4,
		bout.Uppercut: 0.4,
	},
	bout.Duck: {
		bout.Jab:      0.1,
		bout.Cross:    0.1,
		bout.Hook:     0.5,
		bout.Uppercut: 0.9,
	},
	bout.SlipLeft: {
		bout.Jab:      0.75,
		bout.Cross:    0.6,
		bout.Hook:     0.3,
		bout.Uppercut: 0.25,
	},
	bout.SlipRight: {
		bout.Jab:      0.6,
		bout.Cross:    0.75,
		bout.Hook:     0.3,
		bout.Uppercut: 0.25,
	},
	bout.Weave: {
		bout.Jab:      0.4,
		bout.Cross:    0.4,
		bout.Hook:     0.85,
		bout.Uppercut: 0.3,
	},
}

// mitigatedThreshold is the table value at or above which a hit is reported
// as meaningfully mitigated.
const mitigatedThreshold = 0.5

// Mitigation returns the fractional damage reduction for the given defense
// against the given attack. Idle, stagger, and knocked-out postures
// mitigate nothing.
//
// Postcondition: Returns a value in [0, 1].
func Mitigation(defense bout.DefenseType, attack bout.AttackType) float64 {
	row, ok := mitigationTable[defense]
	if !ok {
		return 0
	}
	return row[attack]
}
