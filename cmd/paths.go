package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/grovetools/pulse/pkg/paths"
	"github.com/spf13/cobra"
)

// PathsOutput lists the locations pulse reads from and writes to.
type PathsOutput struct {
	ConfigDir    string `json:"config_dir"`
	GlobalConfig string `json:"global_config"`
	StateDir     string `json:"state_dir"`
	LogDir       string `json:"log_dir"`
	Socket       string `json:"socket"`
	PidFile      string `json:"pid_file"`
}

// NewPathsCmd creates the `paths` command.
func NewPathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print the XDG-compliant paths used by pulse",
		Long: `Print the XDG-compliant paths used by pulse as JSON.

- config_dir: global configuration (pulse.yml)
- state_dir: logs, pid file and status socket
- socket: the status API served by 'pulse run'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := PathsOutput{
				ConfigDir:    paths.ConfigDir(),
				GlobalConfig: paths.GlobalConfigFile(),
				StateDir:     paths.StateDir(),
				LogDir:       paths.LogDir(),
				Socket:       paths.SocketPath(),
				PidFile:      paths.PidFilePath(),
			}

			jsonData, err := json.MarshalIndent(output, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal paths to JSON: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(jsonData))
			return nil
		},
	}
}
