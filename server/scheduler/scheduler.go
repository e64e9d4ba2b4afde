// Package scheduler drives the fixed-rate simulation tick: one update() per
// interval, held as close to the configured rate as a hybrid sleep-plus-spin
// loop can manage on a commodity OS scheduler.
package scheduler

import (
	"log/slog"
	"time"

	"github.com/vxlcore/server/server/internal/runtime"
)

// spinThreshold is the point below which an OS sleep's overshoot risk
// outweighs its benefit; the loop spins through the remainder instead.
// Coarse sleeps alone overshoot by several milliseconds on commodity OSes,
// which corrupts the tick rate the rest of the simulation budgets against.
const spinThreshold = 7 * time.Millisecond

// Update is run once per tick. It returns shutdown true to stop the
// Scheduler cleanly (distinct from the runtime being stopped out-of-band).
type Update func(tick int64, delta time.Duration) (shutdown bool)

// Config configures a Scheduler.
type Config struct {
	// Rate is the target ticks-per-second. Defaults to 60 if zero.
	Rate int
	Rt   *runtime.State
	Log  *slog.Logger
}

// Scheduler runs Update at Config.Rate ticks per second until Update
// signals shutdown or the runtime is stopped.
type Scheduler struct {
	interval time.Duration
	rt       *runtime.State
	log      *slog.Logger
}

// New constructs a Scheduler from cfg.
func New(cfg Config) *Scheduler {
	rate := cfg.Rate
	if rate <= 0 {
		rate = 60
	}
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		interval: time.Second / time.Duration(rate),
		rt:       cfg.Rt,
		log:      log.With("component", "scheduler"),
	}
}

// Run drives update once per interval until it signals shutdown or the
// runtime is stopped. Run blocks until the loop exits.
func (s *Scheduler) Run(update Update) {
	var tick int64
	next := time.Now()
	for {
		if s.rt != nil && s.rt.IsStopped() {
			s.log.Info("scheduler stopping: runtime stopped")
			return
		}

		start := time.Now()
		if update(tick, s.interval) {
			s.log.Info("scheduler stopping: update requested shutdown", "tick", tick)
			return
		}
		tick++

		next = next.Add(s.interval)
		if overran := s.waitUntil(next); overran {
			s.log.Warn("tick overran budget", "elapsed", time.Since(start), "budget", s.interval)
			// A single slow tick must not force every subsequent tick to
			// busy-spin trying to catch up: resynchronise the deadline to
			// now instead of compounding the delay.
			next = time.Now()
		}
	}
}

// waitUntil blocks until deadline using a hybrid sleep-plus-spin strategy:
// sleep past the bulk of the remaining time, leaving only the last
// spinThreshold to a tight spin loop, which is bounded and cheap but immune
// to the scheduler-wakeup jitter a full sleep would incur. It reports
// whether the deadline had already passed when called.
func (s *Scheduler) waitUntil(deadline time.Time) (overran bool) {
	remaining := time.Until(deadline)
	if remaining <= 0 {
		return true
	}
	if remaining > spinThreshold {
		time.Sleep(remaining - spinThreshold)
	}
	for time.Now().Before(deadline) {
		// Busy-spin the final stretch; sleeping here risks overshooting
		// the deadline by more than the stretch itself.
	}
	return false
}
