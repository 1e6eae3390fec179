package measure

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// CycleFunc runs one measurement cycle and reports how it ended.
type CycleFunc func() Result

// State is the scheduler's per-run bookkeeping. It is passed by reference
// into Run so the loop and its stop condition are testable without
// process-wide singletons.
type State struct {
	// LastStart is when the most recent cycle entered Settling.
	LastStart time.Time
	// Cycles counts completed cycles, regardless of outcome.
	Cycles int
	// Running is true while the loop is between Run entry and exit.
	Running bool
}

// Scheduler drives measurement cycles at a fixed period until the context
// is cancelled.
type Scheduler struct {
	period time.Duration
	cycle  CycleFunc
	log    zerolog.Logger
}

// NewScheduler creates a scheduler that invokes cycle once per period.
// Use Period to derive the effective period from a configured rate.
func NewScheduler(period time.Duration, cycle CycleFunc, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		period: period,
		cycle:  cycle,
		log:    log,
	}
}

// Run executes cycles strictly sequentially, the first one immediately.
// Cancellation is observed only at the idle boundary between cycles: an
// in-flight cycle always completes, even a multi-second dark read.
func (s *Scheduler) Run(ctx context.Context, state *State) {
	s.log.Info().Dur("period", s.period).Msg("scheduler started")

	state.Running = true
	defer func() {
		state.Running = false
		s.log.Info().Int("cycles", state.Cycles).Msg("scheduler stopped")
	}()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		// Stop wins over an expired timer so a cancellation delivered
		// between cycles never starts another one.
		select {
		case <-ctx.Done():
			return
		default:
		}

		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		// The period covers the cycle itself. If a cycle overruns, the timer
		// has already fired by the time it completes and the next cycle
		// starts immediately — one cycle per arming, no catch-up.
		timer.Reset(s.period)

		state.LastStart = time.Now()
		s.cycle()
		state.Cycles++
	}
}
