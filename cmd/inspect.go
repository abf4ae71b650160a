package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/grovetools/pulse/activity"
	"github.com/grovetools/pulse/cli"
	"github.com/grovetools/pulse/editor/nvim"
	"github.com/grovetools/pulse/git"
	"github.com/grovetools/pulse/ignore"
	"github.com/grovetools/pulse/report"
	"github.com/grovetools/pulse/repository"
	"github.com/spf13/cobra"
)

// NewSnapshotCmd creates the `snapshot` command.
func NewSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Print the current editing state",
		Long: `Captures the editing state from Neovim once and prints the payload that
would be reported for it, including the resolved repository.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			addr, _ := cmd.Flags().GetString("address")
			if addr == "" {
				addr = cfg.Editor.Address
			}

			session := nvim.New(addr)
			defer session.Close()

			ctx := cmdContext(cmd)
			state, err := activity.Capture(ctx, session)
			if err != nil {
				return err
			}

			resolver := repository.New(git.NewCLIRepository(), cli.GetLogger(cmd, "pulse"))
			repo, _ := resolver.Resolve(ctx, state.Workspace, state.FileName)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report.NewPayload(state, repo))
		},
	}
	cmd.Flags().String("address", "", "Neovim RPC address (defaults to editor.address or $NVIM)")
	return cmd
}

// NewCheckIgnoreCmd creates the `check-ignore` command.
func NewCheckIgnoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check-ignore <path>",
		Short: "Show whether a file would be reported",
		Long: `Prints "ignored" when the file is excluded by git or by the configured
exclude patterns, and "reported" otherwise. Files whose status cannot be
determined are treated as ignored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cli.LoadConfig(cmd)
			if err != nil {
				return err
			}
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			cache, err := ignore.New(git.NewCLIRepository(), cfg.Exclude, ignore.WithLogger(cli.GetLogger(cmd, "pulse")))
			if err != nil {
				return err
			}
			ignored := cache.IsIgnored(cmdContext(cmd), path)

			out := cmd.OutOrStdout()
			if cli.GetOptions(cmd).JSONOutput {
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"path":    path,
					"ignored": ignored,
				})
			}
			verdict := "reported"
			if ignored {
				verdict = "ignored"
			}
			fmt.Fprintf(out, "%s\t%s\n", verdict, path)
			return nil
		},
	}
}

// NewResolveCmd creates the `resolve` command.
func NewResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <path>",
		Short: "Print the GitHub repository a file belongs to",
		Long: `Scans the git remotes of the file's repository in order and prints the
first GitHub SSH remote as an https URL. Nothing is printed when no remote
matches.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			resolver := repository.New(git.NewCLIRepository(), cli.GetLogger(cmd, "pulse"))
			url, found := resolver.Resolve(cmdContext(cmd), filepath.Dir(path), path)

			out := cmd.OutOrStdout()
			if cli.GetOptions(cmd).JSONOutput {
				var repo *string
				if found {
					repo = &url
				}
				return json.NewEncoder(out).Encode(map[string]interface{}{
					"path":       path,
					"repository": repo,
				})
			}
			if found {
				fmt.Fprintln(out, url)
			}
			return nil
		},
	}
}
