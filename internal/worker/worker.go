// Package worker moves plan events from the REST handlers to the
// WebSocket fan-out without blocking the request path. Handlers push
// onto a queue and a single pump goroutine drains it into the hub.
package worker

import (
	"log/slog"
	"sync"
	"time"

	"github.com/MrMark1127/arma-tactical/internal/queue"
	"github.com/MrMark1127/arma-tactical/internal/stream"
	"github.com/MrMark1127/arma-tactical/pkg/streaming"
)

// flushInterval bounds how long a queued event can wait when the notify
// channel signal is lost to a concurrent drain.
const flushInterval = 250 * time.Millisecond

// planEvent pairs an envelope with the plan it belongs to.
type planEvent struct {
	planID string
	env    streaming.Envelope
}

// Dependencies holds what the manager needs to run.
type Dependencies struct {
	Hub    *stream.Hub
	Logger *slog.Logger
}

// Manager owns the event queue and the pump goroutine.
type Manager struct {
	deps   Dependencies
	events *queue.Queue[planEvent]
	notify chan struct{}

	mu        sync.Mutex
	isRunning bool
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

// NewManager creates a manager. Call Start before publishing.
func NewManager(deps Dependencies) *Manager {
	return &Manager{
		deps:   deps,
		events: queue.New[planEvent](),
		notify: make(chan struct{}, 1),
	}
}

// Broadcast queues a plan event for delivery. Safe to call from any
// goroutine; never blocks the caller.
func (m *Manager) Broadcast(planID string, env streaming.Envelope) {
	m.events.Push(planEvent{planID: planID, env: env})
	select {
	case m.notify <- struct{}{}:
	default:
	}
}

// Depth returns the number of events waiting for delivery.
func (m *Manager) Depth() int {
	return m.events.Len()
}

// Start launches the pump goroutine. Calling Start on a running manager
// is a no-op.
func (m *Manager) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.isRunning {
		return
	}
	m.isRunning = true
	m.stopChan = make(chan struct{})
	m.wg.Add(1)
	go m.run(m.stopChan)
}

func (m *Manager) run(stop chan struct{}) {
	defer m.wg.Done()

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			m.flush()
			return
		case <-m.notify:
			m.flush()
		case <-ticker.C:
			m.flush()
		}
	}
}

func (m *Manager) flush() {
	batch := m.events.Drain()
	for _, ev := range batch {
		m.deps.Hub.Broadcast(ev.planID, ev.env)
	}
	if len(batch) > 0 && m.deps.Logger != nil {
		m.deps.Logger.Debug("Delivered plan events", "count", len(batch))
	}
}

// Stop drains remaining events and stops the pump goroutine.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.isRunning {
		m.mu.Unlock()
		return
	}
	m.isRunning = false
	close(m.stopChan)
	m.mu.Unlock()
	m.wg.Wait()
}
