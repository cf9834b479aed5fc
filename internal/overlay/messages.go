// Package overlay bridges the browser overlay onto the simulation over a
// websocket: it broadcasts per-frame state and hit events outward and
// translates inbound beat, transport, and accessibility messages into
// orchestrator calls on the simulation loop's goroutine.
package overlay

import (
	"github.com/shadowboxlive/shadowbox/internal/sim/bout"
	"github.com/shadowboxlive/shadowbox/internal/sim/match"
)

// Inbound message types.
const (
	MessageBeat          = "beat"
	MessageDownbeat      = "downbeat"
	MessageTrack         = "track"
	MessageReducedMotion = "reduced_motion"
	MessageSongEnergy    = "song_energy"
)

// Outbound frame types.
const (
	FrameState = "state"
	FrameHit   = "hit"
)

// InboundMessage is the single envelope for everything a client may send.
// Fields are interpreted per Type.
type InboundMessage struct {
	Type string `json:"type"`

	// track
	RemainingMs float64 `json:"remainingMs,omitempty"`
	TotalMs     float64 `json:"totalMs,omitempty"`
	Changed     bool    `json:"changed,omitempty"`
	Title       string  `json:"title,omitempty"`

	// reduced_motion
	Enabled bool `json:"enabled,omitempty"`

	// song_energy
	Energy float64 `json:"energy,omitempty"`
}

// StateFrame is the per-frame match snapshot broadcast to every client.
type StateFrame struct {
	Type  string          `json:"type"`
	Match match.DebugInfo `json:"match"`
}

// HitEvent is broadcast once per resolved hit for effects consumers.
type HitEvent struct {
	Type string         `json:"type"`
	Hit  bout.HitResult `json:"hit"`
}
