package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"focusguard/internal/core/model"
	"focusguard/internal/core/notify"
	"focusguard/internal/metrics"
	"focusguard/internal/platform/fake"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type eventLog struct {
	mu     sync.Mutex
	events []notify.Event
}

func (log *eventLog) Publish(event notify.Event) {
	log.mu.Lock()
	defer log.mu.Unlock()
	log.events = append(log.events, event)
}

func (log *eventLog) ofType(eventType notify.EventType) []notify.Event {
	log.mu.Lock()
	defer log.mu.Unlock()
	var matched []notify.Event
	for _, event := range log.events {
		if event.Type == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

func activeState() *model.SessionState {
	state := &model.SessionState{}
	state.Begin()
	return state
}

func runMonitor(t *testing.T, monitor *Monitor) (context.CancelFunc, chan struct{}) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		monitor.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return cancel, done
}

func TestMonitorBlocksAppLaunchedMidSession(t *testing.T) {
	processes := fake.NewProcesses("a.exe")
	events := &eventLog{}
	monitor := New(Config{SessionID: "s1", BlockList: []string{"b.exe"}, PollInterval: 5 * time.Millisecond},
		activeState(), processes, events, nil)

	runMonitor(t, monitor)
	require.Eventually(t, func() bool { return processes.ListCalls() >= 2 }, time.Second, time.Millisecond)
	assert.Empty(t, processes.Terminated())

	processes.SetRunning("a.exe", "B.EXE")
	require.Eventually(t, func() bool { return len(events.ofType(notify.EventAppBlocked)) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, []string{"b.exe"}, processes.Terminated())
	assert.EqualValues(t, 1, monitor.Blocked())
}

func TestMonitorBlocksListedProcessWithinOnePoll(t *testing.T) {
	processes := fake.NewProcesses("b.exe", "a.exe")
	processes.Respawn = true
	events := &eventLog{}
	monitor := New(Config{SessionID: "s1", BlockList: []string{"b.exe"}, PollInterval: 10 * time.Millisecond},
		activeState(), processes, events, nil)

	runMonitor(t, monitor)

	require.Eventually(t, func() bool { return len(events.ofType(notify.EventAppBlocked)) > 0 }, time.Second, time.Millisecond)
	assert.Contains(t, processes.Terminated(), "b.exe")
	assert.NotContains(t, processes.Terminated(), "a.exe")

	blocked := events.ofType(notify.EventAppBlocked)[0]
	assert.Equal(t, "b.exe", blocked.Process)
	assert.Equal(t, "s1", blocked.SessionID)
	assert.GreaterOrEqual(t, monitor.Blocked(), int64(1))
}

func TestMonitorSkipsBlockingWhenDisabled(t *testing.T) {
	state := activeState()
	require.True(t, state.EnterBreak())
	processes := fake.NewProcesses("b.exe")
	processes.Respawn = true
	monitor := New(Config{BlockList: []string{"b.exe"}, PollInterval: 5 * time.Millisecond},
		state, processes, &eventLog{}, nil)

	runMonitor(t, monitor)
	time.Sleep(40 * time.Millisecond)
	assert.Empty(t, processes.Terminated())

	require.True(t, state.EnterFocus())
	require.Eventually(t, func() bool { return len(processes.Terminated()) > 0 }, time.Second, time.Millisecond)
}

func TestPassTerminatesEveryInstance(t *testing.T) {
	processes := fake.NewProcesses("B.EXE", "b.exe", "c.exe", "a.exe")
	events := &eventLog{}
	monitor := New(Config{BlockList: []string{"b.exe", "c.exe", "B.exe"}}, activeState(), processes, events, nil)

	monitor.pass(context.Background())

	assert.Equal(t, []string{"b.exe", "b.exe", "c.exe"}, processes.Terminated())
	assert.Len(t, events.ofType(notify.EventAppBlocked), 3)
	assert.Equal(t, int64(3), monitor.Blocked())
}

func TestPassContinuesAfterExpectedFailures(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		category string
	}{
		{name: "not found", err: fmt.Errorf("pid 10: %w", ErrProcessNotFound), category: CategoryNotFound},
		{name: "access denied", err: fmt.Errorf("pid 10: %w", ErrAccessDenied), category: CategoryAccessDenied},
		{name: "zombie", err: fmt.Errorf("pid 10: %w", ErrAlreadyExited), category: CategoryAlreadyExited},
		{name: "other", err: errors.New("kernel said no"), category: CategoryOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			processes := fake.NewProcesses("b.exe", "c.exe")
			processes.FailTerminate("b.exe", tt.err)
			events := &eventLog{}
			collector := metrics.New()
			monitor := New(Config{BlockList: []string{"b.exe", "c.exe"}}, activeState(), processes, events, nil)
			monitor.SetMetrics(collector)

			monitor.pass(context.Background())

			assert.Equal(t, []string{"c.exe"}, processes.Terminated())
			blocked := events.ofType(notify.EventAppBlocked)
			require.Len(t, blocked, 1)
			assert.Equal(t, "c.exe", blocked[0].Process)
			assert.Empty(t, events.ofType(notify.EventStatusChanged), "termination failures are not monitor errors")
			assert.Equal(t, float64(1), testutil.ToFloat64(collector.TerminateErrors.WithLabelValues(tt.category)))
		})
	}
}

func TestMonitorSurvivesEnumerationFailures(t *testing.T) {
	processes := fake.NewProcesses("b.exe")
	processes.Respawn = true
	processes.FailList(errors.New("snapshot failed"))
	events := &eventLog{}
	monitor := New(Config{BlockList: []string{"b.exe"}, PollInterval: 5 * time.Millisecond},
		activeState(), processes, events, nil)

	runMonitor(t, monitor)

	require.Eventually(t, func() bool { return processes.ListCalls() >= 2 }, time.Second, time.Millisecond)
	status := events.ofType(notify.EventStatusChanged)
	require.NotEmpty(t, status)
	assert.True(t, strings.HasPrefix(status[0].Message, "Monitoring error:"))
	assert.Contains(t, status[0].Message, "snapshot failed")

	processes.FailList(nil)
	require.Eventually(t, func() bool { return len(processes.Terminated()) > 0 }, time.Second, time.Millisecond)
}

func TestMonitorRecoversFromPanickingPass(t *testing.T) {
	processes := fake.NewProcesses("b.exe")
	processes.PanicOnList(true)
	events := &eventLog{}
	monitor := New(Config{BlockList: []string{"b.exe"}, PollInterval: 5 * time.Millisecond},
		activeState(), processes, events, nil)

	runMonitor(t, monitor)

	require.Eventually(t, func() bool { return processes.ListCalls() >= 2 }, time.Second, time.Millisecond)
	status := events.ofType(notify.EventStatusChanged)
	require.NotEmpty(t, status)
	assert.Contains(t, status[0].Message, "process table corrupted")
}

func TestMonitorExitsOnCancel(t *testing.T) {
	monitor := New(Config{BlockList: []string{"b.exe"}, PollInterval: time.Hour},
		activeState(), fake.NewProcesses(), &eventLog{}, nil)

	cancel, done := runMonitor(t, monitor)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not exit on cancel")
	}
}

func TestPassStopsOnCancelledContext(t *testing.T) {
	processes := fake.NewProcesses("b.exe")
	monitor := New(Config{BlockList: []string{"b.exe"}}, activeState(), processes, &eventLog{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	monitor.pass(ctx)

	assert.Zero(t, processes.ListCalls())
	assert.Empty(t, processes.Terminated())
}

func TestFailureCategory(t *testing.T) {
	assert.Equal(t, CategoryNotFound, FailureCategory(fmt.Errorf("x: %w", ErrProcessNotFound)))
	assert.Equal(t, CategoryAccessDenied, FailureCategory(ErrAccessDenied))
	assert.Equal(t, CategoryAlreadyExited, FailureCategory(ErrAlreadyExited))
	assert.Equal(t, CategoryOther, FailureCategory(errors.New("boom")))
	assert.True(t, IsExpected(ErrAccessDenied))
	assert.False(t, IsExpected(errors.New("boom")))
}
