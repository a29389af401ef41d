package cmd

import (
	"fmt"

	"github.com/grovetools/casemgmt/pkg/daemon"
	"github.com/spf13/cobra"
)

// NewFlagsCmd shows or sets the two store flags.
func NewFlagsCmd() *cobra.Command {
	var newDataCommand, draggedPayload bool

	cmd := &cobra.Command{
		Use:   "flags",
		Short: "Show or set the store flags",
		Long: `Show or set hasNewDataCommand and hasDraggedPayload.
Flags that are not passed keep their value.

Examples:
  casemgmt flags
  casemgmt flags --dragged-payload=true`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req daemon.FlagsRequest
			if cmd.Flags().Changed("new-data-command") {
				req.HasNewDataCommand = &newDataCommand
			}
			if cmd.Flags().Changed("dragged-payload") {
				req.HasDraggedPayload = &draggedPayload
			}

			client, _, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			var flags *daemon.Flags
			if req.HasNewDataCommand == nil && req.HasDraggedPayload == nil {
				st, err := client.GetState(cmd.Context())
				if st == nil {
					return err
				}
				flags = &daemon.Flags{HasNewDataCommand: st.HasNewDataCommand, HasDraggedPayload: st.HasDraggedPayload}
			} else if flags, err = client.SetFlags(cmd.Context(), req); err != nil {
				return err
			}

			if jsonOutput(cmd) {
				return printJSON(cmd.OutOrStdout(), flags)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "hasNewDataCommand  %t\nhasDraggedPayload  %t\n", flags.HasNewDataCommand, flags.HasDraggedPayload)
			return nil
		},
	}

	cmd.Flags().BoolVar(&newDataCommand, "new-data-command", false, "Set hasNewDataCommand")
	cmd.Flags().BoolVar(&draggedPayload, "dragged-payload", false, "Set hasDraggedPayload")
	return cmd
}
