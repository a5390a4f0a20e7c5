package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "focusguard",
	Short: "Block distracting apps during focus sessions",
	Long: `FocusGuard runs timed focus sessions. While a focus phase is running,
every app in the mapping that you did not allow is terminated.

Without a subcommand it opens the window and the tray icon.

Commands:
  focusguard tray                  Open the window (default)
  focusguard run --allow Editor    Run a session in the terminal
  focusguard apps list             Show the app mapping
  focusguard apps add NAME PROC    Add or replace a mapping entry

Configuration is read from FOCUSGUARD_* environment variables.`,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runTray,
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func requireSubcommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return errors.New("requires a subcommand")
	}
	return fmt.Errorf("unknown command %q for %q", args[0], cmd.CommandPath())
}
