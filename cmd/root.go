// Package cmd implements the pulse command line.
package cmd

import (
	"io"

	"github.com/grovetools/pulse/cli"
	"github.com/grovetools/pulse/tui"
	"github.com/grovetools/pulse/version"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the pulse command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := cli.NewStandardCommand(
		"pulse",
		"Report editing activity from Neovim to a remote collector",
	)
	rootCmd.Long = `pulse attaches to a running Neovim instance, watches which file is being
edited and where the cursor is, and reports changes to a collector over HTTP
or WebSocket. Files ignored by git or matched by the exclude list are never
reported.`
	cli.SetVersionTemplate(rootCmd, version.GetInfo())

	rootCmd.AddCommand(NewRunCmd())
	rootCmd.AddCommand(NewStartCmd())
	rootCmd.AddCommand(NewStopCmd())
	rootCmd.AddCommand(NewStatusCmd())
	rootCmd.AddCommand(NewSnapshotCmd())
	rootCmd.AddCommand(NewCheckIgnoreCmd())
	rootCmd.AddCommand(NewResolveCmd())
	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewLogsCmd())
	rootCmd.AddCommand(NewPathsCmd())
	rootCmd.AddCommand(cli.NewVersionCommand("pulse"))

	return rootCmd
}

// Run executes the command line in args and returns the process exit code.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	tui.InitializeTUI()

	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args[1:])
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.Execute(); err != nil {
		verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
		h := cli.NewErrorHandler(verbose)
		h.Out = stderr
		h.Handle(err)
		return 1
	}
	return 0
}
