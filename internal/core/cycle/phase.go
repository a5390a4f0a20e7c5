package cycle

import "focusguard/internal/core/notify"

// Phase represents the current CycleTimer mode.
type Phase string

const (
	PhaseFocus   Phase = notify.PhaseFocus
	PhaseBreak   Phase = notify.PhaseBreak
	PhaseStopped Phase = notify.PhaseStopped
)

// Next returns the phase that follows a completed countdown.
func (phase Phase) Next() Phase {
	switch phase {
	case PhaseFocus:
		return PhaseBreak
	case PhaseBreak:
		return PhaseFocus
	default:
		return PhaseStopped
	}
}

func (phase Phase) String() string {
	return string(phase)
}
