package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/grovetools/casemgmt/errors"
	"github.com/grovetools/casemgmt/internal/daemon/store"
	"github.com/grovetools/casemgmt/tui/theme"
	"github.com/grovetools/casemgmt/tui/watch"
	"github.com/spf13/cobra"
)

// NewSelectCmd sets or clears one selection.
func NewSelectCmd() *cobra.Command {
	names := make([]string, len(store.Fields))
	for i, f := range store.Fields {
		names[i] = string(f)
	}

	return &cobra.Command{
		Use:   "select <field> <id|none>",
		Short: "Set or clear a selection",
		Long: fmt.Sprintf(`Set the selected value of a list, or clear it with "none".
Selecting a sheet type re-fetches the flow and data commands for it.

Fields: %s

Examples:
  casemgmt select sheet_type 7
  casemgmt select flow_command none`, strings.Join(names, ", ")),
		Args:      cobra.ExactArgs(2),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			field, err := store.ParseField(args[0])
			if err != nil {
				return errors.InvalidInput(err.Error())
			}
			id, err := parseRef(args[1])
			if err != nil {
				return err
			}

			client, _, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			resp, err := client.SetSelection(cmd.Context(), field, id)
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return printJSON(cmd.OutOrStdout(), resp)
			}

			t := theme.DefaultTheme
			msg := fmt.Sprintf("%s = %s", resp.Field, watch.FormatRef(resp.ID))
			if !resp.Changed {
				msg += t.Muted.Render(" (unchanged)")
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.RenderStatus("success", msg))
			return nil
		},
	}
}

// parseRef reads an id argument. "none", "null" and "" clear the selection.
func parseRef(s string) (*int64, error) {
	switch strings.ToLower(s) {
	case "", "none", "null":
		return nil, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("invalid id %q", s))
	}
	return &id, nil
}
