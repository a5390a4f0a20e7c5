package monitor

import (
	"context"
	"errors"
)

// Expected termination failures. Providers wrap these so callers can use errors.Is.
var (
	ErrProcessNotFound = errors.New("process not found")
	ErrAccessDenied    = errors.New("access denied")
	ErrAlreadyExited   = errors.New("process already exited")
)

// Failure categories reported in logs and metrics.
const (
	CategoryNotFound      = "not_found"
	CategoryAccessDenied  = "access_denied"
	CategoryAlreadyExited = "already_exited"
	CategoryOther         = "other"
)

// ProcessProvider is the OS capability the monitor depends on.
type ProcessProvider interface {
	// ListProcessNames returns the names of running processes as reported by the OS.
	ListProcessNames(ctx context.Context) ([]string, error)
	// TerminateByName requests termination of one running process whose name
	// matches case-insensitively. It returns false when no candidate was found.
	TerminateByName(ctx context.Context, name string) (bool, error)
}

// FailureCategory classifies a termination error.
func FailureCategory(err error) string {
	switch {
	case errors.Is(err, ErrProcessNotFound):
		return CategoryNotFound
	case errors.Is(err, ErrAccessDenied):
		return CategoryAccessDenied
	case errors.Is(err, ErrAlreadyExited):
		return CategoryAlreadyExited
	default:
		return CategoryOther
	}
}

// IsExpected reports whether err is a non-fatal lookup failure.
func IsExpected(err error) bool {
	return FailureCategory(err) != CategoryOther
}
