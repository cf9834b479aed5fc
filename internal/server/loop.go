package server

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shadowboxlive/shadowbox/internal/overlay"
	"github.com/shadowboxlive/shadowbox/internal/sim/match"
)

// SimLoop is the fixed-rate simulation service. Each tick it drains queued
// overlay messages onto the orchestrator, advances the match, and
// broadcasts the resulting state frame. The orchestrator is only ever
// touched from this goroutine.
type SimLoop struct {
	tickRate int
	hub      *overlay.Hub
	orch     *match.Orchestrator
	logger   *zap.Logger

	stopOnce sync.Once
	stop     chan struct{}
}

// NewSimLoop creates a loop ticking tickRate times per second.
//
// Precondition: tickRate >= 1; hub, orch, and logger must be non-nil.
func NewSimLoop(tickRate int, hub *overlay.Hub, orch *match.Orchestrator, logger *zap.Logger) *SimLoop {
	return &SimLoop{
		tickRate: tickRate,
		hub:      hub,
		orch:     orch,
		logger:   logger,
		stop:     make(chan struct{}),
	}
}

// Start runs the loop until Stop is called. Implements Service.
func (s *SimLoop) Start() error {
	dt := 1.0 / float64(s.tickRate)
	ticker := time.NewTicker(time.Second / time.Duration(s.tickRate))
	defer ticker.Stop()

	s.logger.Info("simulation loop started", zap.Int("tickRate", s.tickRate))
	for {
		select {
		case <-ticker.C:
			s.hub.Dispatch(s.orch)
			s.orch.Update(dt)
			s.hub.Broadcast(overlay.StateFrame{
				Type:  overlay.FrameState,
				Match: s.orch.Debug(),
			})
		case <-s.stop:
			return nil
		}
	}
}

// Stop terminates the loop. Implements Service. Safe to call twice.
func (s *SimLoop) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}
