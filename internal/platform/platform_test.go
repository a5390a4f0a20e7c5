package platform

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"focusguard/internal/core/monitor"

	"github.com/shirou/gopsutil/v4/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSingleInstanceGuard(t *testing.T) {
	name := "FocusGuardTest-" + t.Name()
	guard, err := AcquireSingleInstance(name)
	require.NoError(t, err)
	defer func() {
		_ = guard.Release()
	}()

	_, err = AcquireSingleInstance(name)
	require.ErrorIs(t, err, ErrAlreadyRunning)

	require.NoError(t, guard.Release())
	again, err := AcquireSingleInstance(name)
	require.NoError(t, err)
	assert.Equal(t, guard.Address(), again.Address())
	require.NoError(t, again.Release())
}

func TestNilGuardIsSafe(t *testing.T) {
	var guard *InstanceGuard
	assert.NoError(t, guard.Release())
	assert.Empty(t, guard.Address())
}

func TestActivateReachesRunningInstance(t *testing.T) {
	name := "FocusGuardTest-" + t.Name()
	guard, err := AcquireSingleInstance(name)
	require.NoError(t, err)

	activated := make(chan struct{}, 1)
	served := make(chan struct{})
	go func() {
		defer close(served)
		guard.Serve(func() { activated <- struct{}{} })
	}()

	require.NoError(t, Activate(name, time.Second))
	select {
	case <-activated:
	case <-time.After(time.Second):
		t.Fatal("running instance was not activated")
	}

	require.NoError(t, guard.Release())
	select {
	case <-served:
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after Release")
	}
}

func TestActivateWithoutRunningInstance(t *testing.T) {
	name := "FocusGuardTest-" + t.Name()
	guard, err := AcquireSingleInstance(name)
	require.NoError(t, err)
	require.NoError(t, guard.Release())

	require.Error(t, Activate(name, 200*time.Millisecond))
}

func TestServeIgnoresUnknownRequests(t *testing.T) {
	name := "FocusGuardTest-" + t.Name()
	guard, err := AcquireSingleInstance(name)
	require.NoError(t, err)
	defer func() {
		_ = guard.Release()
	}()

	calls := make(chan struct{}, 1)
	go guard.Serve(func() { calls <- struct{}{} })

	conn, err := net.Dial("tcp", guard.Address())
	require.NoError(t, err)
	_, err = conn.Write([]byte("shutdown\n"))
	require.NoError(t, err)
	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 8)
	n, _ := conn.Read(buf)
	assert.Zero(t, n)
	_ = conn.Close()

	select {
	case <-calls:
		t.Fatal("unknown request must not activate")
	default:
	}
}

func TestInstancePortRange(t *testing.T) {
	for _, name := range []string{"", "FocusGuard", "OtherApp", "a much longer application name"} {
		port := instancePort(name)
		assert.GreaterOrEqual(t, port, 20000)
		assert.LessOrEqual(t, port, 39999)
	}
	assert.Equal(t, instancePort("FocusGuard"), instancePort("FocusGuard"))
}

func TestConfigDirUsesXDG(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG_CONFIG_HOME only applies on linux")
	}
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	configDir, err := ConfigDir("FocusGuard")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "FocusGuard"), configDir)
}

func TestListProcessNamesSeesRunningProcesses(t *testing.T) {
	names, err := NewProcessTable().ListProcessNames(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, names)
}

func TestTerminateByNameWithoutMatch(t *testing.T) {
	ok, err := NewProcessTable().TerminateByName(context.Background(), "focusguard-no-such-process.exe")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClassify(t *testing.T) {
	err := classify(42, process.ErrorProcessNotRunning)
	assert.True(t, errors.Is(err, monitor.ErrProcessNotFound))
	assert.Contains(t, err.Error(), "pid 42")

	err = classify(42, errors.New("weird"))
	assert.Equal(t, monitor.CategoryOther, monitor.FailureCategory(err))
}

func TestPruneForgetsOldSignals(t *testing.T) {
	table := NewProcessTable()
	now := time.Now()
	table.signaled[1] = now.Add(-time.Minute)
	table.signaled[2] = now

	table.pruneLocked(now)

	assert.NotContains(t, table.signaled, int32(1))
	assert.Contains(t, table.signaled, int32(2))
}
