package profiler

import (
	"log"
	"time"
)

// ProfilerOption is a functional option for configuring a Profiler.
type ProfilerOption func(*Profiler)

// WithInterval sets how often stats are logged. Non-positive values keep the default of one second.
//
// Parameters:
//   - interval: the time between stats lines
//
// Returns:
//   - ProfilerOption: option function to apply
func WithInterval(interval time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if interval > 0 {
			p.updateInterval = interval
		}
	}
}

// WithLogger sets the logger stats lines are written to.
//
// Parameters:
//   - logger: the logger, nil keeps log.Default()
//
// Returns:
//   - ProfilerOption: option function to apply
func WithLogger(logger *log.Logger) ProfilerOption {
	return func(p *Profiler) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithClock replaces time.Now, for tests.
//
// Parameters:
//   - now: the clock
//
// Returns:
//   - ProfilerOption: option function to apply
func WithClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		if now != nil {
			p.now = now
		}
	}
}
