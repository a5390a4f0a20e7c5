package model

import "sync"

// SessionSnapshot is a consistent copy of SessionState.
type SessionSnapshot struct {
	Active     bool
	Focus      bool
	Monitoring bool
}

// SessionState is shared between the controller and the session workers.
//
// The controller writes Active; the cycle timer writes Focus and Monitoring.
// Monitoring is only ever true while Active and Focus are both true.
type SessionState struct {
	mu         sync.RWMutex
	active     bool
	focus      bool
	monitoring bool
}

// Active reports whether a session is running.
func (state *SessionState) Active() bool {
	state.mu.RLock()
	defer state.mu.RUnlock()
	return state.active
}

// MonitoringEnabled reports whether the process monitor should block.
func (state *SessionState) MonitoringEnabled() bool {
	state.mu.RLock()
	defer state.mu.RUnlock()
	return state.monitoring
}

// Snapshot returns all flags read under one lock.
func (state *SessionState) Snapshot() SessionSnapshot {
	state.mu.RLock()
	defer state.mu.RUnlock()
	return SessionSnapshot{
		Active:     state.active,
		Focus:      state.focus,
		Monitoring: state.monitoring,
	}
}

// Begin marks a fresh session as active and in focus. Controller only.
func (state *SessionState) Begin() {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.active = true
	state.focus = true
	state.monitoring = true
}

// Deactivate clears Active and Monitoring, returning false if the session
// was already inactive. Controller only.
func (state *SessionState) Deactivate() bool {
	state.mu.Lock()
	defer state.mu.Unlock()
	if !state.active {
		return false
	}
	state.active = false
	state.monitoring = false
	return true
}

// Reset returns every flag to its idle value once the workers have exited.
func (state *SessionState) Reset() {
	state.mu.Lock()
	defer state.mu.Unlock()
	state.active = false
	state.focus = false
	state.monitoring = false
}

// EnterFocus switches to focus and enables monitoring. Cycle timer only.
func (state *SessionState) EnterFocus() bool {
	state.mu.Lock()
	defer state.mu.Unlock()
	if !state.active {
		return false
	}
	state.focus = true
	state.monitoring = true
	return true
}

// EnterBreak switches to break and disables monitoring. Cycle timer only.
func (state *SessionState) EnterBreak() bool {
	state.mu.Lock()
	defer state.mu.Unlock()
	if !state.active {
		return false
	}
	state.focus = false
	state.monitoring = false
	return true
}
