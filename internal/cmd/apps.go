package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "Manage the app mapping",
	Long: `Manage the mapping from display names to process names.

Commands:
  focusguard apps list             Show every entry in order
  focusguard apps add NAME PROC    Add or replace an entry`,
	RunE: requireSubcommand,
}

var appsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the app mapping",
	Args:  cobra.NoArgs,
	RunE:  runAppsList,
}

var appsAddCmd = &cobra.Command{
	Use:   "add NAME PROCESS",
	Short: "Add or replace an app mapping entry",
	Long: `Add an app to the mapping, or replace the process name of an existing
entry. The whole mapping is written back to disk.

Examples:
  focusguard apps add "Visual Studio Code" code
  focusguard apps add Chrome chrome.exe`,
	Args: cobra.ExactArgs(2),
	RunE: runAppsAdd,
}

func init() {
	appsCmd.AddCommand(appsListCmd)
	appsCmd.AddCommand(appsAddCmd)
	rootCmd.AddCommand(appsCmd)
}

func runAppsList(cmd *cobra.Command, args []string) error {
	svc, err := newServices()
	if err != nil {
		return err
	}
	defer svc.Close()

	out := cmd.OutOrStdout()
	mapping := svc.controller.Mapping()
	if mapping.Len() == 0 {
		fmt.Fprintf(out, "No apps mapped in %s\n", svc.store.Path())
		return nil
	}

	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "NAME\tPROCESS")
	mapping.Each(func(displayName, processName string) {
		fmt.Fprintf(writer, "%s\t%s\n", displayName, processName)
	})
	return writer.Flush()
}

func runAppsAdd(cmd *cobra.Command, args []string) error {
	svc, err := newServices()
	if err != nil {
		return err
	}
	defer svc.Close()

	if !svc.controller.AddCustomApp(args[0], args[1]) {
		return fmt.Errorf("could not add %q to %s", args[0], svc.store.Path())
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s -> %s\n", args[0], args[1])
	return nil
}
