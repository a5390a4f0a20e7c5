package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"focusguard/internal/config"
	"focusguard/internal/core/model"
	"focusguard/internal/core/notify"
	"focusguard/internal/core/session"
	"focusguard/internal/storage"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func isSubcommand(parent *cobra.Command, name string) bool {
	for _, child := range parent.Commands() {
		if child.Name() == name {
			return true
		}
	}
	return false
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func useTempMapping(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "apps.yaml")
	t.Setenv("FOCUSGUARD_MAPPING_PATH", path)
	t.Setenv("FOCUSGUARD_LOG_LEVEL", "error")
	return path
}

func TestCommandTree(t *testing.T) {
	assert.True(t, isSubcommand(rootCmd, "tray"))
	assert.True(t, isSubcommand(rootCmd, "run"))
	assert.True(t, isSubcommand(rootCmd, "apps"))
	assert.True(t, isSubcommand(appsCmd, "list"))
	assert.True(t, isSubcommand(appsCmd, "add"))
}

func TestRunCmd_Flags(t *testing.T) {
	flags := runCmd.Flags()
	for _, name := range []string{"allow", "focus", "break"} {
		assert.NotNil(t, flags.Lookup(name), "run missing flag: --%s", name)
	}

	allow := flags.Lookup("allow")
	require.NotNil(t, allow)
	req, ok := allow.Annotations[cobra.BashCompOneRequiredFlag]
	assert.True(t, ok && len(req) > 0, "--allow should be marked as required")
	assert.Equal(t, "a", allow.Shorthand)

	assert.Equal(t, "25", flags.Lookup("focus").DefValue)
	assert.Equal(t, "5", flags.Lookup("break").DefValue)
}

func TestAppsAddThenList(t *testing.T) {
	path := useTempMapping(t)

	out, err := execute(t, "apps", "add", "Terminal", "wezterm")
	require.NoError(t, err)
	assert.Contains(t, out, "Added Terminal -> wezterm")

	_, err = execute(t, "apps", "add", "Browser", "firefox")
	require.NoError(t, err)

	out, err = execute(t, "apps", "list")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"NAME", "PROCESS"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"Terminal", "wezterm"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"Browser", "firefox"}, strings.Fields(lines[2]))

	mapping, err := storage.NewAppMapStore(path).Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"Terminal", "Browser"}, mapping.DisplayNames())
}

func TestAppsListEmpty(t *testing.T) {
	useTempMapping(t)
	out, err := execute(t, "apps", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No apps mapped")
}

func TestAppsListTreatsUnreadableMappingAsEmpty(t *testing.T) {
	path := useTempMapping(t)
	require.NoError(t, os.WriteFile(path, []byte("- not\n- a mapping\n"), 0o644))

	out, err := execute(t, "apps", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No apps mapped")
}

func TestAppsAddRejectsBlankNames(t *testing.T) {
	useTempMapping(t)
	_, err := execute(t, "apps", "add", " ", "wezterm")
	require.Error(t, err)
}

func TestAppsAddRequiresTwoArgs(t *testing.T) {
	useTempMapping(t)
	_, err := execute(t, "apps", "add", "Terminal")
	require.Error(t, err)
}

func TestAppsRequiresSubcommand(t *testing.T) {
	useTempMapping(t)
	_, err := execute(t, "apps")
	require.Error(t, err)
}

func newTestServices(t *testing.T, entries map[string]string, order ...string) *services {
	t.Helper()
	cfg := config.Default()
	cfg.MappingPath = filepath.Join(t.TempDir(), "apps.yaml")
	cfg.LogLevel = "error"
	cfg.TickInterval = time.Millisecond
	cfg.PollInterval = 5 * time.Millisecond
	cfg.JoinTimeout = time.Second

	mapping := model.NewAppMapping()
	for _, name := range order {
		mapping.Set(name, entries[name])
	}
	require.NoError(t, storage.NewAppMapStore(cfg.MappingPath).Save(mapping))

	svc, err := newServicesWithConfig(cfg)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	return svc
}

func TestRunSessionStopsOnCancel(t *testing.T) {
	svc := newTestServices(t, map[string]string{
		"Editor":  "focusguard-test-editor",
		"Browser": "focusguard-test-browser",
	}, "Editor", "Browser")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	out := &syncBuffer{}
	result := make(chan error, 1)
	go func() {
		result <- runSession(ctx, svc, out, []string{"Editor"}, 1, 1)
	}()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), session.MessageStarted)
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"focusguard-test-browser"}, svc.controller.Lists().BlockList)

	cancel()
	select {
	case err := <-result:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("runSession did not return after cancel")
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Contains(t, lines[len(lines)-2], session.MessageStopped)
	assert.Contains(t, lines[len(lines)-1], "app(s) blocked")
	assert.False(t, svc.controller.Active())
}

func TestRunSessionRejectsEmptySelection(t *testing.T) {
	svc := newTestServices(t, map[string]string{"Editor": "focusguard-test-editor"}, "Editor")
	err := runSession(context.Background(), svc, &syncBuffer{}, nil, 25, 5)
	require.ErrorIs(t, err, session.ErrEmptySelection)
	assert.False(t, svc.controller.Active())
}

func TestFormatEvent(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	stamped := func(event notify.Event) notify.Event {
		event.At = at
		return event
	}

	line, ok := formatEvent(stamped(notify.TimerTick("s1", notify.PhaseFocus, 24, 30)))
	assert.False(t, ok)
	assert.Empty(t, line)

	line, ok = formatEvent(stamped(notify.TimerTick("s1", notify.PhaseFocus, 24, 0)))
	assert.True(t, ok)
	assert.Equal(t, "[10:00:00] focus 24:00 remaining", line)

	line, _ = formatEvent(stamped(notify.AppBlocked("s1", "chat.exe")))
	assert.Equal(t, "[10:00:00] blocked chat.exe", line)

	line, _ = formatEvent(stamped(notify.SessionStarted("s1", "Session started successfully")))
	assert.Equal(t, "[10:00:00] Session started successfully (session s1)", line)

	line, _ = formatEvent(stamped(notify.PhaseChanged("s1", notify.PhaseBreak, "Break started, monitoring paused")))
	assert.Equal(t, "[10:00:00] Break started, monitoring paused", line)
}

func TestFormatSummary(t *testing.T) {
	started := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	status := session.Status{
		SessionID: "s1",
		Phase:     "break",
		Blocked:   3,
		StartedAt: started,
	}
	assert.Equal(t, "Session s1 ended in break after 31m20s, 3 app(s) blocked",
		formatSummary(status, started.Add(31*time.Minute+20*time.Second+400*time.Millisecond)))
	assert.Equal(t, "Session s1 ended in break after 0s, 3 app(s) blocked",
		formatSummary(status, started.Add(-time.Second)))
}

func TestServeMetricsDisabledByDefault(t *testing.T) {
	svc := newTestServices(t, map[string]string{"Editor": "focusguard-test-editor"}, "Editor")
	svc.serveMetrics()
	assert.Nil(t, svc.server)
}
