package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/grovetools/casemgmt/cli"
	"github.com/grovetools/casemgmt/internal/daemon/pidfile"
	"github.com/grovetools/casemgmt/pkg/daemon"
	"github.com/grovetools/casemgmt/pkg/paths"
	"github.com/grovetools/casemgmt/tui/components/table"
	"github.com/grovetools/casemgmt/tui/theme"
	"github.com/spf13/cobra"
)

// StatusOutput is the JSON form of the status command.
type StatusOutput struct {
	Running     bool                  `json:"running"`
	PID         int                   `json:"pid,omitempty"`
	Socket      string                `json:"socket"`
	Environment string                `json:"environment,omitempty"`
	Config      *daemon.RunningConfig `json:"config,omitempty"`
}

// NewStatusCmd returns the daemon status command. It exits 1 when the
// daemon is stopped.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check daemon status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := cli.LoadConfig(cli.GetOptions(cmd))
			if err != nil {
				return err
			}
			out := StatusOutput{Socket: daemon.SocketPathFor(cfg)}

			running, pid, err := pidfile.IsRunning(paths.PidFilePath())
			if err != nil {
				return fmt.Errorf("error: %w", err)
			}
			out.Running, out.PID = running, pid

			if running {
				if client, err := daemon.Connect(out.Socket); err == nil {
					ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
					out.Config, _ = client.GetRunningConfig(ctx)
					if env, err := client.GetEnvironment(ctx); err == nil {
						out.Environment = env.Environment.String()
					}
					cancel()
					client.Close()
				}
			}

			if jsonOutput(cmd) {
				if err := printJSON(cmd.OutOrStdout(), out); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), renderStatus(out))
			}
			if !out.Running {
				os.Exit(1)
			}
			return nil
		},
	}
}

func renderStatus(s StatusOutput) string {
	t := theme.DefaultTheme
	if !s.Running {
		return t.Warning.Render("Stopped")
	}
	items := [][2]string{
		{"Status", t.Success.Render("Running")},
		{"PID", strconv.Itoa(s.PID)},
		{"Socket", s.Socket},
	}
	if s.Environment != "" {
		items = append(items, [2]string{"Environment", s.Environment})
	}
	if c := s.Config; c != nil {
		items = append(items,
			[2]string{"Live URL", c.API.LiveURL},
			[2]string{"Stage URL", c.API.StageURL},
			[2]string{"Started", c.StartedAt.Format(time.RFC3339)},
		)
		if c.ConfigFile != "" {
			items = append(items, [2]string{"Config", c.ConfigFile})
		}
	}
	return table.StatusTable(items)
}
