package session

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"focusguard/internal/core/cycle"
	"focusguard/internal/core/model"
	"focusguard/internal/core/monitor"
	"focusguard/internal/core/notify"
	"focusguard/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MappingStore loads and persists the display-name to process-name mapping.
type MappingStore interface {
	Load() (*model.AppMapping, error)
	Save(mapping *model.AppMapping) error
}

// Options contains optional collaborators for a Controller.
type Options struct {
	Timings model.WorkerTimings
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// Status is a point-in-time view of the controller for presentation.
type Status struct {
	SessionID string
	State     model.SessionSnapshot
	Phase     cycle.Phase
	Remaining time.Duration
	Blocked   int64
	Config    model.SessionConfig
	Lists     model.DerivedLists
	StartedAt time.Time
}

// Controller owns session state and the lifecycle of the session workers.
type Controller struct {
	mu        sync.Mutex
	mappingMu sync.RWMutex
	state     model.SessionState
	current   atomic.Pointer[run]

	store    MappingStore
	mapping  *model.AppMapping
	provider monitor.ProcessProvider
	events   notify.Publisher
	timings  model.WorkerTimings
	logger   *zap.Logger
	metrics  *metrics.Metrics
}

// NewController loads the app mapping and returns an idle controller.
// A mapping that cannot be loaded is replaced by an empty one.
func NewController(store MappingStore, provider monitor.ProcessProvider, events notify.Publisher, options Options) *Controller {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if events == nil {
		events = notify.PublisherFunc(func(notify.Event) {})
	}

	controller := &Controller{
		store:    store,
		provider: provider,
		events:   events,
		timings:  options.Timings.WithDefaults(),
		logger:   logger,
		metrics:  options.Metrics,
	}

	mapping, err := store.Load()
	if err != nil || mapping == nil {
		logger.Error("load app mappings", zap.Error(err))
		mapping = model.NewAppMapping()
	}
	controller.mapping = mapping
	logger.Info("app mappings loaded", zap.Int("count", mapping.Len()))
	return controller
}

// Start begins a session that allows only allowedDisplayNames.
func (controller *Controller) Start(allowedDisplayNames []string, focusMinutes, breakMinutes int) (string, error) {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	if controller.state.Active() {
		controller.logger.Warn("start ignored, session already active")
		return controller.rejectStart(MessageAlreadyActive, ErrAlreadyActive)
	}
	if len(allowedDisplayNames) == 0 {
		controller.logger.Warn("no apps selected for session")
		return controller.rejectStart(MessageEmptySelection, ErrEmptySelection)
	}
	if focusMinutes <= 0 || breakMinutes <= 0 {
		controller.logger.Warn("invalid session durations",
			zap.Int("focus_minutes", focusMinutes), zap.Int("break_minutes", breakMinutes))
		return controller.rejectStart(MessageInvalidDuration, ErrInvalidDuration)
	}

	config := model.SessionConfig{
		AllowedDisplayNames: append([]string(nil), allowedDisplayNames...),
		FocusMinutes:        focusMinutes,
		BreakMinutes:        breakMinutes,
	}
	controller.mappingMu.RLock()
	lists, unknown := controller.mapping.Resolve(config.AllowedDisplayNames)
	controller.mappingMu.RUnlock()

	sessionID := uuid.NewString()
	logger := controller.logger.With(zap.String("session_id", sessionID))
	if len(unknown) > 0 {
		logger.Debug("allowed apps missing from mapping", zap.Strings("display_names", unknown))
	}

	ctx, cancel := context.WithCancel(context.Background())
	current := &run{
		id:          sessionID,
		config:      config,
		lists:       lists,
		cancel:      cancel,
		sink:        controller.events,
		startedAt:   time.Now(),
		timerDone:   make(chan struct{}),
		monitorDone: make(chan struct{}),
	}

	controller.state.Begin()

	current.timer = cycle.New(cycle.Config{
		SessionID:    sessionID,
		FocusMinutes: focusMinutes,
		BreakMinutes: breakMinutes,
		TickInterval: controller.timings.TickInterval,
	}, &controller.state, current, logger)
	current.timer.SetMetrics(controller.metrics)
	current.timer.SetOnStop(func() { controller.finish(current) })

	current.monitor = monitor.New(monitor.Config{
		SessionID:    sessionID,
		BlockList:    lists.BlockList,
		PollInterval: controller.timings.PollInterval,
	}, &controller.state, controller.provider, current, logger)
	current.monitor.SetMetrics(controller.metrics)

	controller.current.Store(current)
	controller.metrics.RecordSessionStarted()
	logger.Info("session started",
		zap.Duration("focus", config.FocusDuration()),
		zap.Duration("break", config.BreakDuration()),
		zap.Strings("allowed", lists.AllowedProcesses),
		zap.Strings("blocking", lists.BlockList))
	controller.events.Publish(notify.SessionStarted(sessionID, MessageStarted))

	go func() {
		defer close(current.monitorDone)
		current.monitor.Run(ctx)
	}()
	go func() {
		defer close(current.timerDone)
		current.timer.Run(ctx)
	}()
	return MessageStarted, nil
}

// Stop ends the active session and waits, bounded, for both workers to exit.
func (controller *Controller) Stop() (string, error) {
	return controller.stop(nil)
}

// finish is the cycle timer's exit hook. It only stops the session the
// timer belongs to and never waits for the calling timer.
func (controller *Controller) finish(caller *run) {
	if !controller.state.Active() {
		return
	}
	_, _ = controller.stop(caller)
}

func (controller *Controller) stop(caller *run) (string, error) {
	controller.mu.Lock()
	defer controller.mu.Unlock()

	current := controller.current.Load()
	if current == nil || (caller != nil && caller != current) || !controller.state.Deactivate() {
		return MessageNoActiveSession, ErrNoActiveSession
	}

	current.cancel()
	controller.join(current, "process_monitor", current.monitorDone)
	if caller != current {
		controller.join(current, "cycle_timer", current.timerDone)
	}
	current.close()

	controller.current.Store(nil)
	controller.state.Reset()
	controller.metrics.RecordSessionStopped()

	controller.logger.Info("session stopped",
		zap.String("session_id", current.id),
		zap.Int64("total_blocked", current.monitor.Blocked()),
		zap.Duration("elapsed", time.Since(current.startedAt)),
		zap.Bool("self_terminated", caller != nil))
	controller.events.Publish(notify.SessionStopped(current.id, MessageStopped))
	return MessageStopped, nil
}

func (controller *Controller) join(current *run, worker string, done <-chan struct{}) {
	timeout := time.NewTimer(controller.timings.JoinTimeout)
	defer timeout.Stop()

	select {
	case <-done:
	case <-timeout.C:
		controller.metrics.RecordOverrun(worker)
		controller.logger.Warn("worker did not exit within join timeout",
			zap.String("session_id", current.id),
			zap.String("worker", worker),
			zap.Duration("timeout", controller.timings.JoinTimeout))
	}
}

func (controller *Controller) rejectStart(message string, err error) (string, error) {
	controller.events.Publish(notify.StatusChanged("", message))
	return message, err
}

// AppList returns display names in mapping order.
func (controller *Controller) AppList() []string {
	controller.mappingMu.RLock()
	defer controller.mappingMu.RUnlock()
	return controller.mapping.DisplayNames()
}

// Mapping returns a copy of the app mapping.
func (controller *Controller) Mapping() *model.AppMapping {
	controller.mappingMu.RLock()
	defer controller.mappingMu.RUnlock()
	return controller.mapping.Clone()
}

// AddCustomApp inserts or overwrites a mapping entry and persists the whole
// mapping. The in-memory mapping only changes when the write succeeds.
func (controller *Controller) AddCustomApp(displayName, processName string) bool {
	displayName = strings.TrimSpace(displayName)
	processName = strings.TrimSpace(processName)
	if displayName == "" || processName == "" {
		controller.logger.Warn("add custom app rejected, empty name",
			zap.String("display_name", displayName), zap.String("process_name", processName))
		return false
	}

	controller.mappingMu.Lock()
	defer controller.mappingMu.Unlock()

	updated := controller.mapping.Clone()
	updated.Set(displayName, processName)
	if err := controller.store.Save(updated); err != nil {
		controller.logger.Error("add custom app", zap.String("display_name", displayName), zap.Error(err))
		return false
	}
	controller.mapping = updated
	controller.logger.Info("added custom app", zap.String("display_name", displayName), zap.String("process_name", processName))
	return true
}

// Status returns the current session view. It never blocks on a stop in progress.
func (controller *Controller) Status() Status {
	status := Status{
		State: controller.state.Snapshot(),
		Phase: cycle.PhaseStopped,
	}
	current := controller.current.Load()
	if current == nil {
		return status
	}
	status.SessionID = current.id
	status.Phase = current.timer.Phase()
	status.Remaining = current.timer.Remaining()
	status.Blocked = current.monitor.Blocked()
	status.Config = current.config
	status.Lists = current.lists
	status.StartedAt = current.startedAt
	return status
}

// Lists returns the derived lists of the active session.
func (controller *Controller) Lists() model.DerivedLists {
	return controller.Status().Lists
}

// Active reports whether a session is running.
func (controller *Controller) Active() bool {
	return controller.state.Active()
}
