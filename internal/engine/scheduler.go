// Scheduler: the periodic loop that collects taxes and reclaims expired
// transient records. Correctness never depends on it — every expiry check
// is lazy on access — the sweep only keeps memory tidy.
package engine

import (
	"log/slog"
	"sync"
	"time"
)

// Scheduler drives the engine's periodic work. Wire callbacks, then Run in
// a goroutine; Stop halts the loop.
type Scheduler struct {
	Interval time.Duration // sweep tick interval
	Running  bool

	// OnSave is called every SaveInterval worth of ticks, for snapshot
	// persistence. Optional.
	OnSave func()

	engine   *Engine
	stop     chan struct{}
	stopOnce sync.Once

	tick         uint64
	ticksPerTax  uint64
	ticksPerSave uint64
}

// NewScheduler creates a scheduler for the engine using its configured
// intervals.
func NewScheduler(e *Engine) *Scheduler {
	cfg := e.Config()
	interval := cfg.SweepInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	perTax := uint64(cfg.TaxInterval / interval)
	if perTax == 0 {
		perTax = 1
	}
	perSave := uint64(cfg.SaveInterval / interval)
	if perSave == 0 {
		perSave = 1
	}
	return &Scheduler{
		Interval:     interval,
		engine:       e,
		stop:         make(chan struct{}),
		ticksPerTax:  perTax,
		ticksPerSave: perSave,
	}
}

// Run starts the loop. Blocks until Stop is called.
func (s *Scheduler) Run() {
	s.Running = true
	slog.Info("scheduler started", "interval", s.Interval, "ticks_per_tax", s.ticksPerTax)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			s.Running = false
			slog.Info("scheduler stopped", "tick", s.tick)
			return
		case <-ticker.C:
			s.step()
		}
	}
}

// Stop halts the loop. Safe to call more than once, including concurrently.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
}

// step advances one tick: sweep every tick, tax and save on their cadence.
func (s *Scheduler) step() {
	s.tick++
	s.engine.Sweep()

	if s.tick%s.ticksPerTax == 0 {
		s.engine.CollectTaxes()
	}
	if s.OnSave != nil && s.tick%s.ticksPerSave == 0 {
		s.OnSave()
	}
}

// Sweep reclaims every expired transient record and lapsed cooldown.
func (e *Engine) Sweep() {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	swept := 0

	for p, rec := range e.placements {
		if rec.Expired(now) {
			delete(e.placements, p)
			swept++
		}
	}
	for target, inv := range e.invites {
		if inv.Expired(now) {
			delete(e.invites, target)
			swept++
		}
	}
	for player, jr := range e.joinRequests {
		if jr.Expired(now) {
			delete(e.joinRequests, player)
			swept++
		}
	}
	for attacker, c := range e.condemnations {
		if c.Expired(now) {
			delete(e.condemnations, attacker)
			swept++
		}
	}
	for initiator, r := range e.surrenders {
		if r.Expired(now) {
			delete(e.surrenders, initiator)
			swept++
		}
	}
	// Gift offers outlive their expiry until the anti-spam cooldown also
	// lapses, so repeat offers keep reporting the remaining time.
	kept := e.gifts[:0]
	for _, g := range e.gifts {
		if g.Expired(now) && now.After(g.CreatedAt.Add(e.cfg.GiftCooldown)) {
			swept++
			continue
		}
		kept = append(kept, g)
	}
	e.gifts = kept
	for key, until := range e.cooldowns {
		if !now.Before(until) {
			delete(e.cooldowns, key)
			swept++
		}
	}

	if swept > 0 {
		slog.Debug("sweep reclaimed records", "count", swept)
	}
}
