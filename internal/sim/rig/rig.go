// Package rig provides a built-in procedural pose provider for hosts with
// no external rig: glove and target positions are derived from fighter
// placement and attack progress. A renderer with its own skeleton can
// replace this entirely; the detector only sees opaque coordinates.
package rig

import (
	"github.com/shadowboxlive/shadowbox/internal/sim/bout"
	"github.com/shadowboxlive/shadowbox/internal/sim/fighter"
)

const (
	// chestHeight is where the vulnerable sphere sits.
	chestHeight = 1.4
	// guardDistance is how far the gloves float in front of the chest at
	// rest.
	guardDistance = 0.3
	// reach is the additional extension of a fully committed punch.
	reach = 0.9
	// handOffset is the lateral glove spacing, collapsing as a punch
	// extends toward the centre line.
	handOffset = 0.12
)

// Procedural places both fighters on a line and extends gloves toward the
// opponent with attack progress. Read-only with respect to fighter state;
// only the simulation goroutine calls it.
type Procedural struct {
	fighters  map[string]*fighter.Fighter
	positions map[string]bout.Vec3
}

// NewProcedural creates an empty rig.
func NewProcedural() *Procedural {
	return &Procedural{
		fighters:  make(map[string]*fighter.Fighter),
		positions: make(map[string]bout.Vec3),
	}
}

// Place registers a fighter at a floor position.
//
// Precondition: f must be non-nil.
func (p *Procedural) Place(f *fighter.Fighter, pos bout.Vec3) {
	p.fighters[f.ID] = f
	p.positions[f.ID] = pos
}

// VulnerablePoint returns the centre of the fighter's hittable sphere.
func (p *Procedural) VulnerablePoint(fighterID string) bout.Vec3 {
	pos := p.positions[fighterID]
	return bout.Vec3{X: pos.X, Y: chestHeight, Z: pos.Z}
}

// StrikePoint returns the glove position for the fighter's hand, extended
// toward the opponent by the active swing's progress.
func (p *Procedural) StrikePoint(fighterID string, hand bout.Hand) bout.Vec3 {
	f := p.fighters[fighterID]
	pos := p.positions[fighterID]
	chest := bout.Vec3{X: pos.X, Y: chestHeight, Z: pos.Z}

	dir := p.facing(fighterID)
	progress := 0.0
	if f != nil {
		progress = f.AttackProgress()
	}

	// Perpendicular on the floor plane for the lateral glove offset.
	side := bout.Vec3{X: -dir.Z, Z: dir.X}
	lateral := handOffset * (1 - progress)
	if hand == bout.LeadHand {
		lateral = -lateral
	}

	extension := guardDistance + reach*progress
	return chest.
		Add(dir.Scale(extension)).
		Add(side.Scale(lateral))
}

// facing returns the unit direction from the fighter toward its opponent,
// or +X when the rig holds fewer than two fighters.
func (p *Procedural) facing(fighterID string) bout.Vec3 {
	from := p.positions[fighterID]
	for id, pos := range p.positions {
		if id == fighterID {
			continue
		}
		d := bout.Vec3{X: pos.X - from.X, Z: pos.Z - from.Z}
		if d.Length() == 0 {
			break
		}
		return d.Normalized()
	}
	return bout.Vec3{X: 1}
}
