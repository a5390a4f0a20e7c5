package cycle

import (
	"context"
	"sync"
	"time"

	"focusguard/internal/core/model"
	"focusguard/internal/core/notify"
	"focusguard/internal/metrics"

	"go.uber.org/zap"
)

// Config contains runtime options for a Timer.
type Config struct {
	SessionID    string
	FocusMinutes int
	BreakMinutes int
	TickInterval time.Duration
}

// Timer alternates focus and break countdowns until the session stops.
// Only the Timer moves SessionState between focus and break.
type Timer struct {
	mu        sync.Mutex
	config    Config
	state     *model.SessionState
	events    notify.Publisher
	logger    *zap.Logger
	metrics   *metrics.Metrics
	onStop    func()
	phase     Phase
	remaining int
	cycles    int
}

// New creates a Timer in the focus phase.
func New(config Config, state *model.SessionState, events notify.Publisher, logger *zap.Logger) *Timer {
	if config.TickInterval <= 0 {
		config.TickInterval = time.Second
	}
	if config.FocusMinutes <= 0 {
		config.FocusMinutes = 1
	}
	if config.BreakMinutes <= 0 {
		config.BreakMinutes = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	timer := &Timer{
		config: config,
		state:  state,
		events: events,
		logger: logger.With(zap.String("worker", "cycle_timer")),
		phase:  PhaseFocus,
	}
	timer.remaining = timer.phaseSecondsLocked(PhaseFocus)
	return timer
}

// SetOnStop registers the callback invoked when the countdown is cut short.
func (timer *Timer) SetOnStop(onStop func()) {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	timer.onStop = onStop
}

// SetMetrics injects the metrics collector.
func (timer *Timer) SetMetrics(collector *metrics.Metrics) {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	timer.metrics = collector
}

// Phase returns the current phase.
func (timer *Timer) Phase() Phase {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	return timer.phase
}

// Remaining returns the time left in the current phase.
func (timer *Timer) Remaining() time.Duration {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	return time.Duration(timer.remaining) * time.Second
}

// Cycles returns how many break->focus edges have completed.
func (timer *Timer) Cycles() int {
	timer.mu.Lock()
	defer timer.mu.Unlock()
	return timer.cycles
}

// Run blocks until ctx is cancelled or the session is no longer active.
// Any truncated countdown ends the session through the OnStop callback.
func (timer *Timer) Run(ctx context.Context) {
	ticker := time.NewTicker(timer.config.TickInterval)
	defer ticker.Stop()

	timer.logger.Info("cycle started",
		zap.Int("focus_minutes", timer.config.FocusMinutes),
		zap.Int("break_minutes", timer.config.BreakMinutes))

	for {
		if !timer.countdown(ctx, ticker.C) {
			break
		}
		if !timer.advance() {
			break
		}
	}

	timer.mu.Lock()
	timer.phase = PhaseStopped
	timer.remaining = 0
	onStop := timer.onStop
	cycles := timer.cycles
	timer.mu.Unlock()

	timer.logger.Info("cycle stopped", zap.Int("completed_cycles", cycles))
	if onStop != nil {
		onStop()
	}
}

func (timer *Timer) countdown(ctx context.Context, ticks <-chan time.Time) bool {
	for {
		timer.mu.Lock()
		remaining := timer.remaining
		timer.mu.Unlock()
		if remaining <= 0 {
			return ctx.Err() == nil && timer.state.Active()
		}

		select {
		case <-ctx.Done():
			return false
		case <-ticks:
		}
		if ctx.Err() != nil || !timer.state.Active() {
			return false
		}
		timer.tick()
	}
}

func (timer *Timer) tick() {
	timer.mu.Lock()
	timer.remaining--
	remaining := timer.remaining
	phase := timer.phase
	timer.mu.Unlock()

	timer.events.Publish(notify.TimerTick(timer.config.SessionID, phase.String(), remaining/60, remaining%60))
}

func (timer *Timer) advance() bool {
	timer.mu.Lock()
	next := timer.phase.Next()
	var entered bool
	switch next {
	case PhaseBreak:
		entered = timer.state.EnterBreak()
	case PhaseFocus:
		entered = timer.state.EnterFocus()
	}
	if !entered {
		timer.mu.Unlock()
		return false
	}
	timer.phase = next
	timer.remaining = timer.phaseSecondsLocked(next)
	if next == PhaseFocus {
		timer.cycles++
	}
	collector := timer.metrics
	timer.mu.Unlock()

	message := "Break started, monitoring paused"
	if next == PhaseFocus {
		message = "Focus resumed, monitoring enabled"
	}
	timer.logger.Info("phase changed", zap.String("phase", next.String()))
	collector.RecordPhase(next.String())
	timer.events.Publish(notify.PhaseChanged(timer.config.SessionID, next.String(), message))
	return true
}

func (timer *Timer) phaseSecondsLocked(phase Phase) int {
	if phase == PhaseBreak {
		return timer.config.BreakMinutes * 60
	}
	return timer.config.FocusMinutes * 60
}
