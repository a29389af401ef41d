package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/grovetools/casemgmt/errors"
	"github.com/grovetools/casemgmt/internal/daemon/store"
	"github.com/grovetools/casemgmt/pkg/daemon"
	"github.com/grovetools/casemgmt/tui/components/table"
	"github.com/grovetools/casemgmt/tui/theme"
	"github.com/grovetools/casemgmt/tui/watch"
	"github.com/spf13/cobra"
)

// NewStateCmd prints the store, either whole or limited to the named lists.
func NewStateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state [field...]",
		Short: "Show the reference lists and selections",
		Long: `Show the reference lists, the command lists and the current selections.
The selected row of each list is highlighted.

Examples:
  # Everything
  casemgmt state

  # Only the sheet types and the flow commands
  casemgmt state sheet_type flow_command

  # Raw snapshot
  casemgmt state --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fields := make(map[store.Field]bool, len(args))
			for _, a := range args {
				f, err := store.ParseField(a)
				if err != nil {
					return errors.InvalidInput(err.Error())
				}
				fields[f] = true
			}

			client, _, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			st, err := client.GetState(cmd.Context())
			if st == nil {
				return err
			}

			if jsonOutput(cmd) {
				if perr := printJSON(cmd.OutOrStdout(), st); perr != nil {
					return perr
				}
				return err
			}
			renderState(cmd.OutOrStdout(), *st, fields)
			// A failed list is reported after the lists that did load.
			return err
		},
	}
}

func renderState(w io.Writer, st daemon.State, fields map[store.Field]bool) {
	t := theme.DefaultTheme

	env := t.Info.Render("stage")
	if st.IsLiveAPI {
		env = t.Warning.Render("live")
	}
	fmt.Fprintf(w, "%s %s\n", t.Bold.Render("Environment:"), env)

	var flags []string
	if st.HasNewDataCommand {
		flags = append(flags, "new data command")
	}
	if st.HasDraggedPayload {
		flags = append(flags, "dragged payload")
	}
	if st.ActionModal.Show && st.ActionModal.Action != nil {
		flags = append(flags, "modal "+st.ActionModal.Action.String())
	}
	if len(flags) > 0 {
		fmt.Fprintf(w, "%s %s\n", t.Bold.Render("Flags:"), strings.Join(flags, ", "))
	}

	for _, l := range watch.Lists(st) {
		if len(fields) > 0 && !fields[l.Field] {
			continue
		}
		title := fmt.Sprintf("%s (%d)", l.Title, len(l.Rows))
		if l.Selected >= 0 {
			title += t.Muted.Render(fmt.Sprintf("  selected %d", l.IDs[l.Selected]))
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, t.Header.Render(title))
		if len(l.Rows) == 0 {
			fmt.Fprintln(w, t.Muted.Render("  (empty)"))
			continue
		}
		fmt.Fprintln(w, table.SelectableTable(l.Headers, l.Rows, l.Selected))
	}
}
