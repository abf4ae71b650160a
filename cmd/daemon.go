package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/grovetools/pulse/cli"
	"github.com/grovetools/pulse/errors"
	"github.com/grovetools/pulse/internal/daemon/pidfile"
	"github.com/grovetools/pulse/logging"
	"github.com/grovetools/pulse/pkg/client"
	"github.com/grovetools/pulse/pkg/paths"
	"github.com/grovetools/pulse/pkg/process"
	"github.com/spf13/cobra"
)

const (
	startTimeout = 5 * time.Second
	stopTimeout  = 5 * time.Second
)

// NewStartCmd creates the `start` command.
func NewStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the reporter in the background",
		Long:  "Starts 'pulse run' as a detached process and waits for its status socket.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pretty := logging.NewPrettyLogger().WithWriter(cmd.OutOrStdout())

			running, pid, err := pidfile.IsRunning(paths.PidFilePath())
			if err != nil {
				return err
			}
			if running {
				return errors.DaemonRunning(pid)
			}

			// Credentials are checked here so the failure is visible to the user
			// rather than only in the log.
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.CheckCredentials(); err != nil {
				return err
			}

			self, err := os.Executable()
			if err != nil {
				return errors.Wrap(err, errors.ErrCodeInternal, "failed to locate pulse executable")
			}
			runArgs := []string{"run"}
			if file := cli.GetOptions(cmd).ConfigFile; file != "" {
				runArgs = append(runArgs, "--config", file)
			}

			child := exec.Command(self, runArgs...)
			child.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
			if err := child.Start(); err != nil {
				return errors.Wrap(err, errors.ErrCodeInternal, "failed to start reporter")
			}
			childPID := child.Process.Pid
			_ = child.Process.Release()

			c := client.New(paths.SocketPath())
			defer c.Close()

			ctx, cancel := context.WithTimeout(cmdContext(cmd), startTimeout)
			defer cancel()
			for !c.IsRunning(ctx) {
				if !process.IsProcessAlive(childPID) {
					return errors.New(errors.ErrCodeInternal, "reporter exited during startup; see 'pulse logs'")
				}
				select {
				case <-ctx.Done():
					return errors.New(errors.ErrCodeInternal, "reporter did not become ready in time; see 'pulse logs'")
				case <-time.After(100 * time.Millisecond):
				}
			}

			pretty.Success(fmt.Sprintf("Reporter started (PID %d)", childPID))
			pretty.Path("Socket", paths.SocketPath())
			return nil
		},
	}
}

// NewStopCmd creates the `stop` command.
func NewStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the background reporter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pretty := logging.NewPrettyLogger().WithWriter(cmd.OutOrStdout())

			running, pid, err := pidfile.IsRunning(paths.PidFilePath())
			if err != nil {
				return fmt.Errorf("error checking status: %w", err)
			}
			if !running {
				pretty.InfoPretty("Reporter is not running")
				return nil
			}

			stopped, err := process.Terminate(pid, stopTimeout)
			if err != nil {
				return fmt.Errorf("failed to send stop signal: %w", err)
			}
			if !stopped {
				pretty.WarnPretty(fmt.Sprintf("Sent SIGTERM to process %d but it is still running", pid))
				return nil
			}
			pretty.Success(fmt.Sprintf("Stopped reporter (PID %d)", pid))
			return nil
		},
	}
}

// NewStatusCmd creates the `status` command.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the reporter's status",
		Long: `Shows whether the reporter is running, what it last reported and how many
ticks ended in each outcome. With --follow, streams activity as it happens.`,
		Args: cobra.NoArgs,
		RunE: runStatusE,
	}
	cmd.Flags().BoolP("follow", "f", false, "Stream activity events")
	return cmd
}

func runStatusE(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	opts := cli.GetOptions(cmd)
	follow, _ := cmd.Flags().GetBool("follow")

	running, pid, err := pidfile.IsRunning(paths.PidFilePath())
	if err != nil {
		return fmt.Errorf("error: %w", err)
	}
	if !running {
		if opts.JSONOutput {
			fmt.Fprintln(out, `{"running": false}`)
		} else {
			fmt.Fprintln(out, "Stopped")
		}
		return nil
	}

	c := client.New(paths.SocketPath())
	defer c.Close()

	ctx, stop := signal.NotifyContext(cmdContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	status, err := c.Status(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "reporter is running but its status socket did not answer").
			WithDetail("pid", pid)
	}

	if opts.JSONOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(struct {
			Running bool `json:"running"`
			PID     int  `json:"pid"`
			*client.Status
		}{true, pid, status}); err != nil {
			return err
		}
	} else {
		printStatus(cmd, pid, status)
	}

	if !follow {
		return nil
	}

	events, err := c.Stream(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	for ev := range events {
		if opts.JSONOutput {
			if err := enc.Encode(ev); err != nil {
				return err
			}
			continue
		}
		fmt.Fprintln(out, formatStreamEvent(ev))
	}
	return nil
}

func printStatus(cmd *cobra.Command, pid int, st *client.Status) {
	pretty := logging.NewPrettyLogger().WithWriter(cmd.OutOrStdout())
	pretty.Success(fmt.Sprintf("Running (PID %d)", pid))
	pretty.Field("Since", st.StartedAt.Format(time.RFC3339))
	pretty.Path("Socket", paths.SocketPath())

	last := st.LastReported
	if last.FileName != "" {
		pretty.Field("Workspace", last.Workspace)
		pretty.Path("File", last.FileName)
		pretty.Field("Language", last.Language)
		pretty.Field("Cursor", fmt.Sprintf("%d:%d", last.Row+1, last.Col+1))
	}
	if st.Repository != "" {
		pretty.Field("Repository", st.Repository)
	}
	if !st.LastSentAt.IsZero() {
		pretty.Field("Last sent", st.LastSentAt.Format(time.RFC3339))
	}
	for _, outcome := range []string{"sent", "failed", "ignored", "skipped"} {
		if n := st.Counts[outcome]; n > 0 {
			pretty.Field(outcome, n)
		}
	}
	if st.LastError != "" {
		pretty.WarnPretty(fmt.Sprintf("Last error: %s", st.LastError))
	}
}

func formatStreamEvent(ev client.Event) string {
	ts := ev.Time.Format(time.TimeOnly)
	if ev.UpdateType == "config_reload" {
		return fmt.Sprintf("%s config reloaded %s", ts, ev.ConfigFile)
	}
	line := fmt.Sprintf("%s %-9s %s", ts, ev.Outcome, ev.FileName)
	if ev.Repository != "" {
		line += " " + ev.Repository
	}
	if ev.Error != "" {
		line += " error=" + ev.Error
	}
	return line
}
