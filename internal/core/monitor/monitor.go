package monitor

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"focusguard/internal/core/model"
	"focusguard/internal/core/notify"
	"focusguard/internal/metrics"

	"go.uber.org/zap"
)

// Config contains runtime options for a Monitor.
type Config struct {
	SessionID    string
	BlockList    []string
	PollInterval time.Duration
}

// Monitor terminates block-listed processes while monitoring is enabled.
type Monitor struct {
	config   Config
	state    *model.SessionState
	provider ProcessProvider
	events   notify.Publisher
	logger   *zap.Logger
	metrics  *metrics.Metrics
	blocked  atomic.Int64
}

// New creates a Monitor. The block list is copied.
func New(config Config, state *model.SessionState, provider ProcessProvider, events notify.Publisher, logger *zap.Logger) *Monitor {
	if config.PollInterval <= 0 {
		config.PollInterval = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	config.BlockList = append([]string(nil), config.BlockList...)

	return &Monitor{
		config:   config,
		state:    state,
		provider: provider,
		events:   events,
		logger:   logger.With(zap.String("worker", "process_monitor")),
	}
}

// SetMetrics injects the metrics collector. Call before Run.
func (monitor *Monitor) SetMetrics(collector *metrics.Metrics) {
	monitor.metrics = collector
}

// Blocked returns how many processes this monitor has terminated.
func (monitor *Monitor) Blocked() int64 {
	return monitor.blocked.Load()
}

// Run polls until ctx is cancelled. The monitoring flag only suppresses the
// blocking action; the polling cadence is unaffected.
func (monitor *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(monitor.config.PollInterval)
	defer ticker.Stop()

	monitor.logger.Info("monitoring started",
		zap.Strings("block_list", monitor.config.BlockList),
		zap.Duration("poll_interval", monitor.config.PollInterval))

	for {
		monitor.pass(ctx)

		select {
		case <-ctx.Done():
			monitor.logger.Info("monitoring stopped", zap.Int64("total_blocked", monitor.Blocked()))
			return
		case <-ticker.C:
		}
	}
}

func (monitor *Monitor) pass(ctx context.Context) {
	defer func() {
		if recovered := recover(); recovered != nil {
			monitor.reportFailure(fmt.Errorf("monitor pass panic: %v", recovered))
		}
	}()

	if ctx.Err() != nil || !monitor.state.MonitoringEnabled() || len(monitor.config.BlockList) == 0 {
		return
	}

	names, err := monitor.provider.ListProcessNames(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		monitor.reportFailure(fmt.Errorf("list processes: %w", err))
		return
	}

	running := make(map[string]int, len(names))
	for _, name := range names {
		running[model.NormalizeProcessName(name)]++
	}

	for _, target := range monitor.config.BlockList {
		key := model.NormalizeProcessName(target)
		instances := running[key]
		delete(running, key)

		for i := 0; i < instances; i++ {
			if ctx.Err() != nil {
				return
			}
			if !monitor.terminate(ctx, target) {
				break
			}
		}
	}
}

func (monitor *Monitor) terminate(ctx context.Context, name string) bool {
	ok, err := monitor.provider.TerminateByName(ctx, name)
	if err != nil {
		category := FailureCategory(err)
		monitor.metrics.RecordTerminateError(category)
		if IsExpected(err) {
			monitor.logger.Warn("termination failed", zap.String("process", name), zap.String("category", category), zap.Error(err))
		} else {
			monitor.logger.Error("unexpected termination error", zap.String("process", name), zap.Error(err))
		}
		return false
	}
	if !ok {
		return false
	}

	monitor.blocked.Add(1)
	monitor.metrics.RecordBlocked(name)
	monitor.logger.Info("blocked", zap.String("process", name))
	monitor.events.Publish(notify.AppBlocked(monitor.config.SessionID, name))
	return true
}

func (monitor *Monitor) reportFailure(err error) {
	monitor.metrics.RecordMonitorError()
	monitor.logger.Error("monitoring error", zap.Error(err))
	monitor.events.Publish(notify.StatusChanged(monitor.config.SessionID, "Monitoring error: "+err.Error()))
}
