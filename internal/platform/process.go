package platform

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"focusguard/internal/core/model"
	"focusguard/internal/core/monitor"

	"github.com/shirou/gopsutil/v4/process"
)

// DefaultResignalAfter is how long a signalled PID is skipped by TerminateByName.
const DefaultResignalAfter = 10 * time.Second

var _ monitor.ProcessProvider = (*ProcessTable)(nil)

// ProcessTable implements monitor.ProcessProvider on top of gopsutil.
type ProcessTable struct {
	mu            sync.Mutex
	signaled      map[int32]time.Time
	resignalAfter time.Duration
}

// NewProcessTable returns the provider for the current OS.
func NewProcessTable() *ProcessTable {
	return &ProcessTable{
		signaled:      make(map[int32]time.Time),
		resignalAfter: DefaultResignalAfter,
	}
}

// ListProcessNames returns the name of every process that could be inspected.
func (table *ProcessTable) ListProcessNames(ctx context.Context) ([]string, error) {
	processes, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("enumerate processes: %w", err)
	}

	names := make([]string, 0, len(processes))
	for _, proc := range processes {
		name, err := proc.NameWithContext(ctx)
		if err != nil || name == "" {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

// TerminateByName signals the first matching process not signalled within
// the resignal window.
func (table *ProcessTable) TerminateByName(ctx context.Context, name string) (bool, error) {
	processes, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return false, fmt.Errorf("enumerate processes: %w", err)
	}

	table.mu.Lock()
	defer table.mu.Unlock()
	now := time.Now()
	table.pruneLocked(now)

	target := model.NormalizeProcessName(name)
	for _, proc := range processes {
		if _, recent := table.signaled[proc.Pid]; recent {
			continue
		}
		procName, err := proc.NameWithContext(ctx)
		if err != nil || model.NormalizeProcessName(procName) != target {
			continue
		}
		if isZombie(ctx, proc) {
			return false, fmt.Errorf("pid %d: %w", proc.Pid, monitor.ErrAlreadyExited)
		}
		if err := terminate(ctx, proc); err != nil {
			return false, classify(proc.Pid, err)
		}
		table.signaled[proc.Pid] = now
		return true, nil
	}
	return false, nil
}

func (table *ProcessTable) pruneLocked(now time.Time) {
	for pid, signaledAt := range table.signaled {
		if now.Sub(signaledAt) >= table.resignalAfter {
			delete(table.signaled, pid)
		}
	}
}

func isZombie(ctx context.Context, proc *process.Process) bool {
	statuses, err := proc.StatusWithContext(ctx)
	if err != nil {
		return false
	}
	for _, status := range statuses {
		if status == process.Zombie {
			return true
		}
	}
	return false
}

func classify(pid int32, err error) error {
	if errors.Is(err, process.ErrorProcessNotRunning) {
		return fmt.Errorf("pid %d: %w", pid, monitor.ErrProcessNotFound)
	}
	if sentinel := classifyOS(err); sentinel != nil {
		return fmt.Errorf("pid %d: %w: %v", pid, sentinel, err)
	}
	return fmt.Errorf("terminate pid %d: %w", pid, err)
}
