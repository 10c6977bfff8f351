// Package monitor periodically samples runtime health: goroutines, heap
// use, WebSocket fan-out load and the event queue depth. Snapshots are
// logged and optionally mirrored to a JSON status file for external
// health checks.
package monitor

import (
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// Snapshot is one sampled view of the process.
type Snapshot struct {
	Time          time.Time `json:"time"`
	UptimeSeconds int64     `json:"uptimeSeconds"`
	Goroutines    int       `json:"goroutines"`
	HeapAllocMB   float64   `json:"heapAllocMB"`
	ActivePlans   int       `json:"activePlans"`
	Subscribers   int       `json:"subscribers"`
	QueuedEvents  int       `json:"queuedEvents"`
}

// Dependencies holds all dependencies for the monitor service.
type Dependencies struct {
	Logger   *slog.Logger
	Interval time.Duration
	// StatusPath, when set, receives each snapshot as pretty JSON.
	StatusPath string
	// HubStats reports plans with live subscribers and total subscribers.
	HubStats func() (plans, subscribers int)
	// QueueDepth reports pending plan events awaiting delivery.
	QueueDepth func() int
}

// Service manages the status monitor goroutine.
type Service struct {
	deps    Dependencies
	started time.Time

	mu        sync.RWMutex
	isRunning bool
	stopChan  chan struct{}
}

// NewService creates a monitor service.
func NewService(deps Dependencies) *Service {
	if deps.Interval <= 0 {
		deps.Interval = 10 * time.Second
	}
	return &Service{
		deps:    deps,
		started: time.Now(),
	}
}

// IsRunning returns whether the monitor goroutine is active.
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Sample takes one snapshot of the process.
func (s *Service) Sample() Snapshot {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	snap := Snapshot{
		Time:          time.Now(),
		UptimeSeconds: int64(time.Since(s.started).Seconds()),
		Goroutines:    runtime.NumGoroutine(),
		HeapAllocMB:   float64(mem.HeapAlloc) / (1024 * 1024),
	}
	if s.deps.HubStats != nil {
		snap.ActivePlans, snap.Subscribers = s.deps.HubStats()
	}
	if s.deps.QueueDepth != nil {
		snap.QueuedEvents = s.deps.QueueDepth()
	}
	return snap
}

func (s *Service) report(snap Snapshot) {
	if s.deps.Logger != nil {
		s.deps.Logger.Debug("Status",
			"uptimeSeconds", snap.UptimeSeconds,
			"goroutines", snap.Goroutines,
			"heapAllocMB", snap.HeapAllocMB,
			"activePlans", snap.ActivePlans,
			"subscribers", snap.Subscribers,
			"queuedEvents", snap.QueuedEvents,
		)
	}
	if s.deps.StatusPath != "" {
		data, err := json.MarshalIndent(snap, "", "  ")
		if err == nil {
			err = os.WriteFile(s.deps.StatusPath, data, 0o644)
		}
		if err != nil && s.deps.Logger != nil {
			s.deps.Logger.Error("Error writing status file", "error", err)
		}
	}
}

// Start launches the monitor goroutine. Calling Start on a running
// service is a no-op.
func (s *Service) Start() {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = true
	s.stopChan = make(chan struct{})
	stop := s.stopChan
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			s.isRunning = false
			s.mu.Unlock()
		}()

		ticker := time.NewTicker(s.deps.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.report(s.Sample())
			}
		}
	}()
}

// Stop stops the monitor goroutine.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		close(s.stopChan)
		s.isRunning = false
	}
}
