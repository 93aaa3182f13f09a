package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/SurakshaKumari/gt-3D-backend/internal/metrics"
	"github.com/SurakshaKumari/gt-3D-backend/internal/room"
)

// Pinger is a backend whose health can be probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RoomSource provides room occupancy.
type RoomSource interface {
	Stats() room.Stats
}

// Config holds poller configuration.
type Config struct {
	Interval time.Duration // Probe interval (default: 15s)
	Timeout  time.Duration // Per-probe timeout (default: 2s)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Interval: 15 * time.Second,
		Timeout:  2 * time.Second,
	}
}

// Status is the result of the most recent probe.
type Status struct {
	StoreUp   bool
	LastError string
	CheckedAt time.Time
	Latency   time.Duration
	Rooms     room.Stats
}

// Poller periodically probes the store and samples room occupancy.
type Poller struct {
	cfg     Config
	store   Pinger
	rooms   RoomSource
	logger  *slog.Logger
	metrics *metrics.Metrics

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	last   Status
	probed bool
}

// New creates a new Poller. rooms and m may be nil.
func New(cfg Config, store Pinger, rooms RoomSource, logger *slog.Logger, m *metrics.Metrics) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	return &Poller{
		cfg:     cfg,
		store:   store,
		rooms:   rooms,
		logger:  logger,
		metrics: m,
	}
}

// Start begins the probe loop.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("health poller started", "interval", p.cfg.Interval)
	return nil
}

// Stop gracefully shuts down the poller.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("health poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Last returns the most recent probe result. ok is false before the first
// probe completes.
func (p *Poller) Last() (s Status, ok bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.last, p.probed
}

func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Probe immediately on start.
	p.probe(p.ctx)

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.probe(p.ctx)
		}
	}
}

// probe runs one health check and records it.
func (p *Poller) probe(ctx context.Context) Status {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	start := time.Now()
	err := p.store.Ping(ctx)
	s := Status{
		StoreUp:   err == nil,
		CheckedAt: start,
		Latency:   time.Since(start),
	}
	if err != nil {
		s.LastError = err.Error()
	}
	if p.rooms != nil {
		s.Rooms = p.rooms.Stats()
		p.metrics.SetRooms(s.Rooms.Rooms, s.Rooms.Memberships)
	}
	p.metrics.StoreProbe(s.StoreUp, s.Latency)

	p.mu.Lock()
	prev, seen := p.last, p.probed
	p.last, p.probed = s, true
	p.mu.Unlock()

	switch {
	case !s.StoreUp && (!seen || prev.StoreUp):
		p.logger.Warn("store unreachable", "error", err, "latency", s.Latency)
	case s.StoreUp && seen && !prev.StoreUp:
		p.logger.Info("store reachable again", "latency", s.Latency)
	}
	return s
}
