package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grovetools/pulse/errors"
	"github.com/grovetools/pulse/logging"
	"github.com/spf13/cobra"
)

// NewLogsCmd creates the `logs` command.
func NewLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Display the reporter's log",
		Long: `Prints today's pulse log file. With --follow, keeps printing lines as
the running reporter writes them.

Examples:
  # Last 50 lines
  pulse logs -n 50

  # Follow the log
  pulse logs -f`,
		Args: cobra.NoArgs,
		RunE: runLogsE,
	}

	cmd.Flags().BoolP("follow", "f", false, "Follow log output")
	cmd.Flags().IntP("tail", "n", 100, "Number of lines to show from the end of the log (-1 for all)")
	cmd.Flags().String("component", "pulse", "Log component to read")

	return cmd
}

func runLogsE(cmd *cobra.Command, args []string) error {
	follow, _ := cmd.Flags().GetBool("follow")
	n, _ := cmd.Flags().GetInt("tail")
	component, _ := cmd.Flags().GetString("component")

	path := logging.LogFilePath(component, time.Now())
	out := cmd.OutOrStdout()

	if _, err := os.Stat(path); err != nil {
		if !follow {
			return errors.New(errors.ErrCodeInvalidInput, "no log file for today").
				WithDetail("path", path)
		}
	} else if err := logging.PrintTail(path, n, out); err != nil {
		return err
	}

	if !follow {
		return nil
	}

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return logging.Follow(ctx, path, out)
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
