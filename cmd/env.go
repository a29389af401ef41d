package cmd

import (
	"fmt"

	"github.com/grovetools/casemgmt/errors"
	"github.com/grovetools/casemgmt/pkg/daemon"
	"github.com/grovetools/casemgmt/pkg/models"
	"github.com/grovetools/casemgmt/tui/theme"
	"github.com/spf13/cobra"
)

// NewEnvCmd shows or switches the backend environment.
func NewEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env [live|stage]",
		Short: "Show or switch the backend environment",
		Long: `Show the environment requests are sent to, or switch it.
Switching clears every list and selection, then re-fetches the reference
lists from the new environment.

Examples:
  casemgmt env
  casemgmt env live`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"live", "stage"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var target *models.Environment
			if len(args) == 1 {
				env, ok := models.ParseEnvironment(args[0])
				if !ok {
					return errors.InvalidInput(fmt.Sprintf("unknown environment %q (want live or stage)", args[0]))
				}
				target = &env
			}

			client, _, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			var resp *daemon.EnvironmentResponse
			if target == nil {
				resp, err = client.GetEnvironment(cmd.Context())
			} else {
				resp, err = client.SetEnvironment(cmd.Context(), *target)
			}
			if err != nil {
				return err
			}

			if jsonOutput(cmd) {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderEnvironment(resp, target != nil))
			return nil
		},
	}
}

func renderEnvironment(resp *daemon.EnvironmentResponse, switched bool) string {
	t := theme.DefaultTheme
	name := t.Info.Render(resp.Environment.String())
	if resp.IsLiveAPI {
		name = t.Warning.Render(resp.Environment.String())
	}
	switch {
	case !switched:
		return "Environment: " + name
	case resp.Changed:
		return t.Success.Render("Switched to ") + name
	default:
		return "Already on " + name
	}
}
