package cmd

import (
	"fmt"

	"github.com/grovetools/casemgmt/pkg/paths"
	"github.com/grovetools/casemgmt/tui/components/table"
	"github.com/spf13/cobra"
)

// PathsOutput lists the files and directories casemgmt uses.
type PathsOutput struct {
	ConfigDir  string `json:"config_dir"`
	StateDir   string `json:"state_dir"`
	RuntimeDir string `json:"runtime_dir"`
	Socket     string `json:"socket"`
	PidFile    string `json:"pid_file"`
}

func NewPathsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Print the paths used by casemgmt",
		Long: `Print the XDG-compliant paths used by casemgmt.

- config_dir: global casemgmt.yml
- state_dir: daemon pid file and logs
- runtime_dir: daemon socket
Setting CASEMGMT_HOME moves all of them under one directory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := PathsOutput{
				ConfigDir:  paths.ConfigDir(),
				StateDir:   paths.StateDir(),
				RuntimeDir: paths.RuntimeDir(),
				Socket:     paths.SocketPath(),
				PidFile:    paths.PidFilePath(),
			}
			if jsonOutput(cmd) {
				return printJSON(cmd.OutOrStdout(), output)
			}
			fmt.Fprintln(cmd.OutOrStdout(), table.StatusTable([][2]string{
				{"config_dir", output.ConfigDir},
				{"state_dir", output.StateDir},
				{"runtime_dir", output.RuntimeDir},
				{"socket", output.Socket},
				{"pid_file", output.PidFile},
			}))
			return nil
		},
	}

	return cmd
}
