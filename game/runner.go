package game

import (
	"context"
	"log"
	"sync/atomic"
	"time"
)

const DefaultTickRate = 60

type RunnerConfig struct {
	TickRate int
	// OnTick receives the state produced by every tick.
	OnTick func(State)
	Logger *log.Logger
}

// Runner drives an Authority on a fixed-rate clock.
type Runner struct {
	authority Authority
	interval  time.Duration
	onTick    func(State)
	logger    *log.Logger

	ticks    atomic.Uint64
	overruns atomic.Uint64
}

func NewRunner(authority Authority, cfg RunnerConfig) *Runner {
	rate := cfg.TickRate
	if rate <= 0 {
		rate = DefaultTickRate
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	return &Runner{
		authority: authority,
		interval:  time.Second / time.Duration(rate),
		onTick:    cfg.OnTick,
		logger:    logger,
	}
}

func (r *Runner) Interval() time.Duration {
	return r.interval
}

func (r *Runner) Ticks() uint64 {
	return r.ticks.Load()
}

// Overruns counts ticks whose work took longer than one interval.
func (r *Runner) Overruns() uint64 {
	return r.overruns.Load()
}

// Run ticks until ctx is cancelled. time.Ticker drops ticks a slow receiver
// misses, so a late tick is followed by at most one catch-up tick.
func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			started := time.Now()

			state := r.authority.Tick()
			if r.onTick != nil {
				r.onTick(state)
			}
			r.ticks.Add(1)

			if elapsed := time.Since(started); elapsed > r.interval {
				r.overruns.Add(1)
				r.logger.Printf("tick took %v, longer than the %v interval", elapsed, r.interval)
			}
		}
	}
}
