package overlay

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/shadowboxlive/shadowbox/internal/sim/bout"
)

const (
	writeTimeout   = 10 * time.Second
	readTimeout    = 60 * time.Second
	pingInterval   = 25 * time.Second
	maxMessageSize = 1 << 16
	inboundBuffer  = 256
)

// Control is the slice of the orchestrator the hub drives. Every call
// happens on the simulation goroutine via Dispatch, never from a
// connection's read goroutine.
type Control interface {
	OnBeat()
	OnDownbeat()
	SetTrackProgress(remainingMs, totalMs float64)
	OnTrackChanged(totalMs float64)
	SetSongEnergy(v float64)
	SetReducedMotion(on bool)
}

// subscriber is one connected overlay client. The mutex serialises writes;
// gorilla/websocket allows at most one concurrent writer per connection.
type subscriber struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *subscriber) write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub accepts overlay websocket connections, fans state frames out to all
// of them, and queues inbound messages for the simulation loop to drain.
type Hub struct {
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu          sync.Mutex
	subscribers map[*subscriber]struct{}

	inbound chan InboundMessage

	downbeats int

	// Optional hooks invoked during Dispatch, after the Control call.
	// The server wires these to the tuning-script manager.
	OnTrack         func(title string, totalMs float64)
	OnDownbeatCount func(count int)
}

// NewHub creates an empty Hub.
//
// Precondition: logger must be non-nil.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		logger: logger,
		upgrader: websocket.Upgrader{
			// The overlay runs on a local or venue network.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		subscribers: make(map[*subscriber]struct{}),
		inbound:     make(chan InboundMessage, inboundBuffer),
	}
}

// Subscribers returns the number of connected clients.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// ServeHTTP upgrades the request and runs the connection's read loop until
// the client disconnects.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	sub := &subscriber{conn: conn}
	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	h.mu.Unlock()
	h.logger.Info("overlay client connected", zap.String("remote", conn.RemoteAddr().String()))

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	done := make(chan struct{})
	go h.pingLoop(sub, done)

	h.readLoop(sub)
	close(done)
	h.drop(sub)
}

// Broadcast marshals the frame once and writes it to every client.
// Clients whose write fails are dropped.
func (h *Hub) Broadcast(frame any) {
	data, err := json.Marshal(frame)
	if err != nil {
		h.logger.Error("marshaling broadcast frame", zap.Error(err))
		return
	}

	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subscribers))
	for s := range h.subscribers {
		subs = append(subs, s)
	}
	h.mu.Unlock()

	for _, s := range subs {
		if err := s.write(data); err != nil {
			h.drop(s)
		}
	}
}

// OnHit implements match.EffectsSink by broadcasting the hit to effects
// consumers.
func (h *Hub) OnHit(r bout.HitResult) {
	h.Broadcast(HitEvent{Type: FrameHit, Hit: r})
}

// Dispatch drains queued inbound messages onto the control surface. Called
// once per simulation frame from the loop goroutine, which is the only
// place ctrl is ever touched.
func (h *Hub) Dispatch(ctrl Control) {
	for {
		select {
		case m := <-h.inbound:
			h.apply(ctrl, m)
		default:
			return
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subscribers))
	for s := range h.subscribers {
		subs = append(subs, s)
	}
	h.subscribers = make(map[*subscriber]struct{})
	h.mu.Unlock()

	for _, s := range subs {
		s.conn.Close()
	}
}

func (h *Hub) apply(ctrl Control, m InboundMessage) {
	switch m.Type {
	case MessageBeat:
		ctrl.OnBeat()
	case MessageDownbeat:
		h.downbeats++
		ctrl.OnDownbeat()
		if h.OnDownbeatCount != nil {
			h.OnDownbeatCount(h.downbeats)
		}
	case MessageTrack:
		if m.Changed {
			h.downbeats = 0
			ctrl.OnTrackChanged(m.TotalMs)
			if h.OnTrack != nil {
				h.OnTrack(m.Title, m.TotalMs)
			}
			return
		}
		ctrl.SetTrackProgress(m.RemainingMs, m.TotalMs)
	case MessageReducedMotion:
		ctrl.SetReducedMotion(m.Enabled)
	case MessageSongEnergy:
		ctrl.SetSongEnergy(m.Energy)
	default:
		h.logger.Warn("unknown overlay message", zap.String("type", m.Type))
	}
}

func (h *Hub) readLoop(sub *subscriber) {
	for {
		_, payload, err := sub.conn.ReadMessage()
		if err != nil {
			return
		}
		var m InboundMessage
		if err := json.Unmarshal(payload, &m); err != nil {
			h.logger.Warn("discarding malformed overlay message", zap.Error(err))
			continue
		}
		select {
		case h.inbound <- m:
		default:
			h.logger.Warn("inbound queue full, dropping message", zap.String("type", m.Type))
		}
	}
}

func (h *Hub) pingLoop(sub *subscriber, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			sub.mu.Lock()
			sub.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			err := sub.conn.WriteMessage(websocket.PingMessage, nil)
			sub.mu.Unlock()
			if err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

func (h *Hub) drop(sub *subscriber) {
	h.mu.Lock()
	_, ok := h.subscribers[sub]
	delete(h.subscribers, sub)
	h.mu.Unlock()
	if ok {
		sub.conn.Close()
		h.logger.Info("overlay client disconnected")
	}
}
