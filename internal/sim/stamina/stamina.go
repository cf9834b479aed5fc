// Package stamina implements the per-fighter resource model: a 0..1
// stamina pool depleted by punches and damage, recovered over time, and a
// slower-decaying fatigue layer that represents cumulative tiredness. The
// modifiers derived here shape attack power, defense success, and speed
// without the manager needing write access to any other component.
package stamina

import (
	"go.uber.org/zap"

	"github.com/shadowboxlive/shadowbox/internal/sim/bout"
)

// Config holds the tuning constants of the resource model.
type Config struct {
	// RecoveryRate is the base stamina regained per simulation second.
	RecoveryRate float64
	// FatigueThreshold is the stamina level below which attack costs incur
	// the tired penalty.
	FatigueThreshold float64
	// FatigueDecayDelay is the seconds of inactivity required before
	// fatigue starts to decay.
	FatigueDecayDelay float64
	// FatigueDecayRate is fatigue lost per second once decaying.
	FatigueDecayRate float64
	// DamageDrain scales how much stamina a landed hit removes per unit of
	// power.
	DamageDrain float64
	// FatigueDamageThreshold is the hit power above which fatigue is added
	// directly.
	FatigueDamageThreshold float64
}

// DefaultConfig returns the tuned constants used by the live overlay.
func DefaultConfig() Config {
	return Config{
		RecoveryRate:           0.08,
		FatigueThreshold:       0.3,
		FatigueDecayDelay:      2.0,
		FatigueDecayRate:       0.05,
		DamageDrain:            0.18,
		FatigueDamageThreshold: 0.5,
	}
}

// tiredCostPenalty is the multiplier applied to attack costs below the
// fatigue threshold.
const tiredCostPenalty = 1.5

// Manager tracks one fighter's stamina and fatigue.
// It is not safe for concurrent use; the frame loop serialises access.
//
// Invariant: stamina and fatigue are always in [0, 1].
type Manager struct {
	cfg        Config
	stamina    float64
	fatigue    float64
	songEnergy float64
	idleTime   float64
	logger     *zap.Logger
}

// NewManager creates a Manager at full stamina and zero fatigue.
//
// Precondition: logger must be non-nil.
func NewManager(cfg Config, logger *zap.Logger) *Manager {
	return &Manager{
		cfg:     cfg,
		stamina: 1.0,
		logger:  logger,
	}
}

// Stamina returns the current stamina in [0, 1].
func (m *Manager) Stamina() float64 { return m.stamina }

// Fatigue returns the current fatigue in [0, 1].
func (m *Manager) Fatigue() float64 { return m.fatigue }

// SetSongEnergy mirrors the live track energy into the recovery model.
// Values are clamped to [0, 1].
func (m *Manager) SetSongEnergy(e float64) {
	m.songEnergy = clamp01(e)
}

// Reset restores full stamina and clears fatigue, used on track change.
//
// Postcondition: Stamina() == 1, Fatigue() == 0.
func (m *Manager) Reset() {
	m.stamina = 1.0
	m.fatigue = 0
	m.idleTime = 0
}

// Update advances recovery and fatigue decay by dt simulation seconds.
// Recovery scales up with song energy and down with accumulated fatigue.
// Fatigue only decays after FatigueDecayDelay seconds without any
// cost-incurring action.
//
// Precondition: dt >= 0.
// Postcondition: stamina and fatigue remain in [0, 1].
func (m *Manager) Update(dt float64) {
	recovery := m.cfg.RecoveryRate * (0.5 + 0.5*m.songEnergy) * (1 - 0.6*m.fatigue)
	m.stamina = clamp01(m.stamina + recovery*dt)

	m.idleTime += dt
	if m.idleTime >= m.cfg.FatigueDecayDelay {
		m.fatigue = clamp01(m.fatigue - m.cfg.FatigueDecayRate*dt)
	}
}

// ConsumeForAttack spends the stamina cost of throwing the given punch and
// returns the cost actually charged. Costs rise with punch weight; below
// FatigueThreshold the tired penalty multiplies the cost.
//
// Postcondition: stamina remains in [0, 1]; returns the charged cost >= 0.
func (m *Manager) ConsumeForAttack(attack bout.AttackType) float64 {
	cost := attackCost(attack)
	if m.stamina < m.cfg.FatigueThreshold {
		cost *= tiredCostPenalty
	}
	m.stamina = clamp01(m.stamina - cost)
	m.idleTime = 0
	m.logger.Debug("stamina spent on attack",
		zap.String("attack", attack.String()),
		zap.Float64("cost", cost),
		zap.Float64("stamina", m.stamina),
	)
	return cost
}

// TakeDamage drains stamina proportionally to the hit power and, above
// FatigueDamageThreshold, adds lingering fatigue independent of stamina.
//
// Precondition: power >= 0.
// Postcondition: stamina and fatigue remain in [0, 1].
func (m *Manager) TakeDamage(power float64) {
	m.stamina = clamp01(m.stamina - power*m.cfg.DamageDrain)
	if power > m.cfg.FatigueDamageThreshold {
		m.fatigue = clamp01(m.fatigue + power*0.12)
	}
	m.idleTime = 0
}

// AttackPowerModifier returns the multiplier applied to outgoing punch
// power. Pure function of current stamina and fatigue.
//
// Postcondition: Returns a value in (0, 1].
func (m *Manager) AttackPowerModifier() float64 {
	return clamp(0.4+0.6*m.stamina*(1-0.3*m.fatigue), 0.1, 1)
}

// DefenseSuccessModifier returns the multiplier applied to the chance that
// a chosen defense actually takes effect.
//
// Postcondition: Returns a value in (0, 1].
func (m *Manager) DefenseSuccessModifier() float64 {
	return clamp(0.5+0.5*m.stamina-0.2*m.fatigue, 0.1, 1)
}

// SpeedModifier returns the multiplier applied to action speed and
// cooldowns.
//
// Postcondition: Returns a value in (0, 1].
func (m *Manager) SpeedModifier() float64 {
	return clamp(0.7+0.3*m.stamina-0.1*m.fatigue, 0.3, 1)
}

// RecoveryModifier returns the multiplier the current fatigue applies to
// recovery, exposed for telemetry.
//
// Postcondition: Returns a value in (0, 1].
func (m *Manager) RecoveryModifier() float64 {
	return clamp(1-0.6*m.fatigue, 0.1, 1)
}

// DebugInfo is a read-only snapshot for the telemetry sink.
type DebugInfo struct {
	Stamina        float64 `json:"stamina"`
	Fatigue        float64 `json:"fatigue"`
	AttackPower    float64 `json:"attackPower"`
	DefenseSuccess float64 `json:"defenseSuccess"`
	Speed          float64 `json:"speed"`
}

// Debug returns the current snapshot.
func (m *Manager) Debug() DebugInfo {
	return DebugInfo{
		Stamina:        m.stamina,
		Fatigue:        m.fatigue,
		AttackPower:    m.AttackPowerModifier(),
		DefenseSuccess: m.DefenseSuccessModifier(),
		Speed:          m.SpeedModifier(),
	}
}

// attackCost returns the stamina cost of a punch before penalties.
func attackCost(a bout.AttackType) float64 {
	switch a {
	case bout.Jab:
		return 0.04
	case bout.Cross:
		return 0.07
	case bout.Hook:
		return 0.10
	case bout.Uppercut:
		return 0.14
	default:
		return 0
	}
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
