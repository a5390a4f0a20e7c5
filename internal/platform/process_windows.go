//go:build windows

package platform

import (
	"context"
	"errors"

	"focusguard/internal/core/monitor"

	"github.com/shirou/gopsutil/v4/process"
	"golang.org/x/sys/windows"
)

func terminate(ctx context.Context, proc *process.Process) error {
	return proc.TerminateWithContext(ctx)
}

func classifyOS(err error) error {
	switch {
	case errors.Is(err, windows.ERROR_INVALID_PARAMETER):
		return monitor.ErrProcessNotFound
	case errors.Is(err, windows.ERROR_ACCESS_DENIED):
		return monitor.ErrAccessDenied
	default:
		return nil
	}
}
