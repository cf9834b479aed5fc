package fighter

import "github.com/shadowboxlive/shadowbox/internal/sim/bout"

// Pose target maps for the animation layers. Joint values are normalised
// rig-space targets; the external pose provider turns them into world
// positions.

// BasePose is the locomotion guard stance every fighter sways in.
func BasePose() map[string]float64 {
	return map[string]float64{
		"spine.sway":     0.2,
		"spine.bob":      0.15,
		"arm.lead.guard": 0.8,
		"arm.rear.guard": 0.85,
		"head.tuck":      0.3,
	}
}

// attackPose returns the additive attack-layer targets for a punch.
func attackPose(attack bout.AttackType, hand bout.Hand) map[string]float64 {
	arm := "arm.lead"
	if hand == bout.RearHand {
		arm = "arm.rear"
	}
	switch attack {
	case bout.Jab:
		return map[string]float64{arm + ".extend": 1.0, "spine.twist": 0.1}
	case bout.Cross:
		return map[string]float64{arm + ".extend": 1.0, "spine.twist": 0.45, "hip.drive": 0.3}
	case bout.Hook:
		return map[string]float64{arm + ".hook": 1.0, "spine.twist": 0.7, "hip.drive": 0.4}
	case bout.Uppercut:
		return map[string]float64{arm + ".lift": 1.0, "spine.dip": 0.5, "hip.drive": 0.5}
	default:
		return map[string]float64{}
	}
}

// defensePose returns the defense-layer targets for a posture.
func defensePose(defense bout.DefenseType) map[string]float64 {
	switch defense {
	case bout.Block:
		return map[string]float64{"arm.lead.guard": 1.0, "arm.rear.guard": 1.0, "head.tuck": 0.8}
	case bout.Duck:
		return map[string]float64{"spine.dip": 0.9, "head.tuck": 1.0}
	case bout.SlipLeft:
		return map[string]float64{"head.slip": -0.8, "spine.lean": -0.4}
	case bout.SlipRight:
		return map[string]float64{"head.slip": 0.8, "spine.lean": 0.4}
	case bout.Weave:
		return map[string]float64{"spine.dip": 0.6, "head.slip": 0.5, "spine.lean": 0.3}
	case bout.Stagger:
		return map[string]float64{"spine.lean": 0.7, "arm.lead.guard": 0.2, "arm.rear.guard": 0.2}
	default:
		return map[string]float64{}
	}
}

// reactionPose returns the reaction-layer targets for taking a hit of the
// given power.
func reactionPose(power float64) map[string]float64 {
	return map[string]float64{
		"head.snap":  power,
		"spine.lean": 0.4 * power,
	}
}

// handFor returns the glove that conventionally throws the punch: straights
// alternate lead/rear, hooks come off the lead, uppercuts off the rear.
func handFor(attack bout.AttackType) bout.Hand {
	switch attack {
	case bout.Cross, bout.Uppercut:
		return bout.RearHand
	default:
		return bout.LeadHand
	}
}
