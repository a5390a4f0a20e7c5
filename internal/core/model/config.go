package model

import "time"

// SessionConfig is the immutable input of a single focus session.
type SessionConfig struct {
	AllowedDisplayNames []string
	FocusMinutes        int
	BreakMinutes        int
}

// FocusDuration converts FocusMinutes into a phase length of whole seconds.
func (config SessionConfig) FocusDuration() time.Duration {
	return time.Duration(config.FocusMinutes) * time.Minute
}

// BreakDuration converts BreakMinutes into a phase length of whole seconds.
func (config SessionConfig) BreakDuration() time.Duration {
	return time.Duration(config.BreakMinutes) * time.Minute
}

// DerivedLists holds the process names resolved from an AppMapping for one session.
type DerivedLists struct {
	AllowedProcesses []string
	BlockList        []string
}

// WorkerTimings controls the cadence of the session workers.
type WorkerTimings struct {
	TickInterval time.Duration
	PollInterval time.Duration
	JoinTimeout  time.Duration
}

// DefaultWorkerTimings returns the reference cadence: 1s ticks, 5s polls, 2s joins.
func DefaultWorkerTimings() WorkerTimings {
	return WorkerTimings{
		TickInterval: time.Second,
		PollInterval: 5 * time.Second,
		JoinTimeout:  2 * time.Second,
	}
}

// WithDefaults fills zero fields from DefaultWorkerTimings.
func (timings WorkerTimings) WithDefaults() WorkerTimings {
	defaults := DefaultWorkerTimings()
	if timings.TickInterval <= 0 {
		timings.TickInterval = defaults.TickInterval
	}
	if timings.PollInterval <= 0 {
		timings.PollInterval = defaults.PollInterval
	}
	if timings.JoinTimeout <= 0 {
		timings.JoinTimeout = defaults.JoinTimeout
	}
	return timings
}
