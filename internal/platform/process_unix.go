//go:build unix

package platform

import (
	"context"
	"errors"

	"focusguard/internal/core/monitor"

	"github.com/shirou/gopsutil/v4/process"
	"golang.org/x/sys/unix"
)

func terminate(_ context.Context, proc *process.Process) error {
	return unix.Kill(int(proc.Pid), unix.SIGTERM)
}

func classifyOS(err error) error {
	switch {
	case errors.Is(err, unix.ESRCH):
		return monitor.ErrProcessNotFound
	case errors.Is(err, unix.EPERM), errors.Is(err, unix.EACCES):
		return monitor.ErrAccessDenied
	default:
		return nil
	}
}
