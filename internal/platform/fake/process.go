// Package fake provides an in-memory process table for tests.
package fake

import (
	"context"
	"strings"
	"sync"
)

// Processes is a scripted ProcessProvider.
//
// When Respawn is true, terminated processes stay in the table, which models
// a user relaunching a blocked app between polls.
type Processes struct {
	mu           sync.Mutex
	names        []string
	Respawn      bool
	listErr      error
	terminateErr map[string]error
	panicOnList  bool
	hang         <-chan struct{}
	terminated   []string
	listCalls    int
}

// NewProcesses creates a table with the given running names.
func NewProcesses(names ...string) *Processes {
	return &Processes{
		names:        append([]string(nil), names...),
		terminateErr: make(map[string]error),
	}
}

// SetRunning replaces the process table.
func (p *Processes) SetRunning(names ...string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.names = append([]string(nil), names...)
}

// HangList makes ListProcessNames block, ignoring ctx, until release is closed.
func (p *Processes) HangList(release <-chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hang = release
}

// FailList makes ListProcessNames return err (nil clears it).
func (p *Processes) FailList(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listErr = err
}

// PanicOnList makes the next ListProcessNames calls panic.
func (p *Processes) PanicOnList(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.panicOnList = enabled
}

// FailTerminate makes TerminateByName(name) return err.
func (p *Processes) FailTerminate(name string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.terminateErr[strings.ToLower(name)] = err
}

// Terminated returns every successful termination in call order.
func (p *Processes) Terminated() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.terminated...)
}

// ListCalls returns how many enumerations have happened.
func (p *Processes) ListCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.listCalls
}

func (p *Processes) ListProcessNames(ctx context.Context) ([]string, error) {
	p.mu.Lock()
	p.listCalls++
	hang := p.hang
	p.mu.Unlock()
	if hang != nil {
		<-hang
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.panicOnList {
		panic("process table corrupted")
	}
	if p.listErr != nil {
		return nil, p.listErr
	}
	return append([]string(nil), p.names...), nil
}

func (p *Processes) TerminateByName(ctx context.Context, name string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.terminateErr[strings.ToLower(name)]; err != nil {
		return false, err
	}
	for i, running := range p.names {
		if !strings.EqualFold(running, name) {
			continue
		}
		if !p.Respawn {
			p.names = append(p.names[:i], p.names[i+1:]...)
		}
		p.terminated = append(p.terminated, name)
		return true, nil
	}
	return false, nil
}
