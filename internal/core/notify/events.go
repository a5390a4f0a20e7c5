package notify

import "time"

// EventType defines the type of session event.
type EventType string

const (
	EventSessionStarted EventType = "session_started"
	EventSessionStopped EventType = "session_stopped"
	EventAppBlocked     EventType = "app_blocked"
	EventStatusChanged  EventType = "status_changed"
	EventTimerTick      EventType = "timer_tick"
	EventPhaseChanged   EventType = "phase_changed"
)

// Phase names carried by EventPhaseChanged.
const (
	PhaseFocus   = "focus"
	PhaseBreak   = "break"
	PhaseStopped = "stopped"
)

// Event is a single update for the presentation layer.
type Event struct {
	Type      EventType
	SessionID string
	Message   string
	Process   string
	Phase     string
	Minutes   int
	Seconds   int
	At        time.Time
}

// Publisher accepts events. Implementations must not block the caller.
type Publisher interface {
	Publish(event Event)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(Event)

// Publish calls fn(event).
func (fn PublisherFunc) Publish(event Event) {
	fn(event)
}

// SessionStarted builds an EventSessionStarted.
func SessionStarted(sessionID, message string) Event {
	return Event{Type: EventSessionStarted, SessionID: sessionID, Message: message, At: time.Now()}
}

// SessionStopped builds an EventSessionStopped.
func SessionStopped(sessionID, message string) Event {
	return Event{Type: EventSessionStopped, SessionID: sessionID, Message: message, At: time.Now()}
}

// AppBlocked builds an EventAppBlocked.
func AppBlocked(sessionID, processName string) Event {
	return Event{Type: EventAppBlocked, SessionID: sessionID, Process: processName, At: time.Now()}
}

// StatusChanged builds an EventStatusChanged.
func StatusChanged(sessionID, text string) Event {
	return Event{Type: EventStatusChanged, SessionID: sessionID, Message: text, At: time.Now()}
}

// TimerTick builds an EventTimerTick.
func TimerTick(sessionID, phase string, minutes, seconds int) Event {
	return Event{
		Type:      EventTimerTick,
		SessionID: sessionID,
		Phase:     phase,
		Minutes:   minutes,
		Seconds:   seconds,
		At:        time.Now(),
	}
}

// PhaseChanged builds an EventPhaseChanged.
func PhaseChanged(sessionID, phase, message string) Event {
	return Event{Type: EventPhaseChanged, SessionID: sessionID, Phase: phase, Message: message, At: time.Now()}
}
