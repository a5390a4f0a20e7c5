package session

import (
	"context"
	"sync"
	"time"

	"focusguard/internal/core/cycle"
	"focusguard/internal/core/model"
	"focusguard/internal/core/monitor"
	"focusguard/internal/core/notify"
)

// run is everything created for one session and discarded at stop.
// It is also the workers' publisher: once closed, late events are dropped,
// so nothing from this session follows its SessionStopped event.
type run struct {
	id        string
	config    model.SessionConfig
	lists     model.DerivedLists
	cancel    context.CancelFunc
	sink      notify.Publisher
	startedAt time.Time

	timer       *cycle.Timer
	monitor     *monitor.Monitor
	timerDone   chan struct{}
	monitorDone chan struct{}

	mu     sync.RWMutex
	closed bool
}

func (current *run) Publish(event notify.Event) {
	current.mu.RLock()
	defer current.mu.RUnlock()
	if current.closed {
		return
	}
	current.sink.Publish(event)
}

func (current *run) close() {
	current.mu.Lock()
	defer current.mu.Unlock()
	current.closed = true
}
