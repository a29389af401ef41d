package cmd

import (
	"fmt"

	"github.com/grovetools/casemgmt/tui/theme"
	"github.com/spf13/cobra"
)

// NewRefreshCmd re-issues the reference and command fetches.
func NewRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Re-fetch the reference lists",
		Long: `Re-fetch the five reference lists and, when a sheet type is selected,
its flow and data commands. With a running daemon the fetches complete in
the background; watch the stream to see them land.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.Refresh(cmd.Context()); err != nil {
				return err
			}
			if !jsonOutput(cmd) {
				msg := "Refreshed"
				if client.IsRunning() {
					msg = "Refresh requested"
				}
				fmt.Fprintln(cmd.OutOrStdout(), theme.DefaultTheme.Success.Render(msg))
			}
			return nil
		},
	}
}
