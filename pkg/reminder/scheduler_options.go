package reminder

import (
	"log/slog"
	"time"
)

// SchedulerOption is a functional option for configuring a Scheduler.
type SchedulerOption func(*schedulerOptions)

type schedulerOptions struct {
	policy *Policy
	now    func() time.Time
	logger *slog.Logger
}

// WithPolicy sets the reminder policy. Defaults to NewPolicy().
func WithPolicy(policy *Policy) SchedulerOption {
	return func(o *schedulerOptions) {
		if policy != nil {
			o.policy = policy
		}
	}
}

// WithClock sets the time source, mainly for tests.
func WithClock(now func() time.Time) SchedulerOption {
	return func(o *schedulerOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// WithLogger sets the logger for the Scheduler.
func WithLogger(logger *slog.Logger) SchedulerOption {
	return func(o *schedulerOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}
