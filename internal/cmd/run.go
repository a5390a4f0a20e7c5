package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"focusguard/internal/core/notify"
	"focusguard/internal/core/session"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	runAllow []string
	runFocus int
	runBreak int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a focus session in the terminal",
	Long: `Run a focus session without the window. Session events are printed
as they happen and Ctrl-C stops the session.

Examples:
  focusguard run --allow Editor,Terminal
  focusguard run --allow Editor --focus 50 --break 10`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringSliceVarP(&runAllow, "allow", "a", nil, "Display names allowed during the session (required)")
	runCmd.Flags().IntVar(&runFocus, "focus", 25, "Focus phase length in minutes")
	runCmd.Flags().IntVar(&runBreak, "break", 5, "Break phase length in minutes")

	_ = runCmd.MarkFlagRequired("allow")

	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	svc, err := newServices()
	if err != nil {
		return err
	}
	defer svc.Close()
	svc.serveMetrics()

	focus := svc.config.FocusMinutes
	if cmd.Flags().Changed("focus") {
		focus = runFocus
	}
	breakMinutes := svc.config.BreakMinutes
	if cmd.Flags().Changed("break") {
		breakMinutes = runBreak
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runSession(ctx, svc, cmd.OutOrStdout(), runAllow, focus, breakMinutes)
}

// runSession starts a session and prints its events until it stops. Cancelling
// ctx stops the session.
func runSession(ctx context.Context, svc *services, out io.Writer, allowed []string, focus, breakMinutes int) error {
	sub := svc.hub.Subscribe(64)
	defer sub.Close()

	if _, err := svc.controller.Start(allowed, focus, breakMinutes); err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	var final *session.Status
	done := ctx.Done()
	for {
		select {
		case <-done:
			done = nil
			status := svc.controller.Status()
			final = &status
			if _, err := svc.controller.Stop(); err != nil {
				svc.logger.Debug("stop on interrupt", zap.Error(err))
				return nil
			}
		case event, ok := <-sub.C:
			if !ok {
				return nil
			}
			if line, show := formatEvent(event); show {
				fmt.Fprintln(out, line)
			}
			if event.Type == notify.EventSessionStopped {
				if final != nil && final.SessionID == event.SessionID {
					fmt.Fprintln(out, formatSummary(*final, event.At))
				}
				return nil
			}
		}
	}
}

// formatSummary describes a session from its last snapshot.
func formatSummary(status session.Status, stoppedAt time.Time) string {
	elapsed := stoppedAt.Sub(status.StartedAt).Round(time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	return fmt.Sprintf("Session %s ended in %s after %s, %d app(s) blocked",
		status.SessionID, status.Phase, elapsed, status.Blocked)
}

// formatEvent renders an event as one terminal line. Ticks are only shown on
// whole minutes.
func formatEvent(event notify.Event) (string, bool) {
	stamp := event.At.Format("15:04:05")
	switch event.Type {
	case notify.EventTimerTick:
		if event.Seconds != 0 {
			return "", false
		}
		return fmt.Sprintf("[%s] %s %02d:%02d remaining", stamp, event.Phase, event.Minutes, event.Seconds), true
	case notify.EventAppBlocked:
		return fmt.Sprintf("[%s] blocked %s", stamp, event.Process), true
	case notify.EventSessionStarted:
		return fmt.Sprintf("[%s] %s (session %s)", stamp, event.Message, event.SessionID), true
	default:
		return fmt.Sprintf("[%s] %s", stamp, event.Message), true
	}
}
