// Package stream fans live plan events out to WebSocket subscribers.
// Each plan has its own subscriber set; a slow subscriber gets dropped
// rather than blocking the rest.
package stream

import (
	"log/slog"
	"sync"
	"time"

	"github.com/MrMark1127/arma-tactical/pkg/streaming"
	"github.com/goccy/go-json"
	ws "github.com/gorilla/websocket"
)

const (
	sendChSize = 256
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// subscriber manages one WebSocket connection with a single write
// goroutine.
type subscriber struct {
	conn   *ws.Conn
	sendCh chan []byte
	done   chan struct{}
	once   sync.Once
}

func (s *subscriber) close() {
	s.once.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

// writeLoop drains sendCh and writes frames to the connection. It returns
// on write error or shutdown, pinging on an interval to detect dead peers.
func (s *subscriber) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case data := <-s.sendCh:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				s.close()
				return
			}
			if err := s.conn.WriteMessage(ws.TextMessage, data); err != nil {
				s.close()
				return
			}
		case <-ticker.C:
			if err := s.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				s.close()
				return
			}
			if err := s.conn.WriteMessage(ws.PingMessage, nil); err != nil {
				s.close()
				return
			}
		}
	}
}

// readLoop discards incoming frames. Subscribers are read-only; the loop
// exists to notice closed connections and service pongs.
func (s *subscriber) readLoop(onClose func()) {
	defer func() {
		s.close()
		onClose()
	}()

	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Hub tracks WebSocket subscribers per plan.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*subscriber]struct{} // plan ID -> subscribers

	logger *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]map[*subscriber]struct{}),
		logger: logger,
	}
}

// Subscribe registers an upgraded connection for a plan's events and
// starts its read/write loops. The hub owns the connection from here on.
func (h *Hub) Subscribe(planID string, conn *ws.Conn) {
	sub := &subscriber{
		conn:   conn,
		sendCh: make(chan []byte, sendChSize),
		done:   make(chan struct{}),
	}

	h.mu.Lock()
	set, ok := h.subs[planID]
	if !ok {
		set = make(map[*subscriber]struct{})
		h.subs[planID] = set
	}
	set[sub] = struct{}{}
	h.mu.Unlock()

	go sub.writeLoop()
	go sub.readLoop(func() { h.remove(planID, sub) })

	h.logger.Debug("WebSocket subscriber added", "planId", planID)
}

func (h *Hub) remove(planID string, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[planID]
	if !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, planID)
	}
}

// SubscriberCount returns the number of live subscribers for a plan.
func (h *Hub) SubscriberCount(planID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[planID])
}

// Stats returns the number of plans with live subscribers and the total
// subscriber count across all plans.
func (h *Hub) Stats() (plans, subscribers int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, set := range h.subs {
		subscribers += len(set)
	}
	return len(h.subs), subscribers
}

// Broadcast sends an event to every subscriber of a plan. Subscribers
// whose buffers are full are dropped; they can reconnect and refetch.
func (h *Hub) Broadcast(planID string, env streaming.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		h.logger.Warn("Failed to marshal broadcast", "type", env.Type, "error", err)
		return
	}

	h.mu.RLock()
	var stale []*subscriber
	for sub := range h.subs[planID] {
		select {
		case sub.sendCh <- data:
		default:
			stale = append(stale, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range stale {
		h.logger.Warn("Dropping slow WebSocket subscriber", "planId", planID)
		sub.close()
		h.remove(planID, sub)
	}
}

// Close disconnects all subscribers.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for planID, set := range h.subs {
		for sub := range set {
			sub.close()
		}
		delete(h.subs, planID)
	}
}
