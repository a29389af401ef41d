package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/grovetools/casemgmt/errors"
	"github.com/grovetools/casemgmt/pkg/daemon"
	"github.com/grovetools/casemgmt/pkg/models"
	"github.com/grovetools/casemgmt/tui/components/table"
	"github.com/grovetools/casemgmt/tui/watch"
	"github.com/spf13/cobra"
)

// NewModalCmd groups the action modal commands.
func NewModalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "modal",
		Short: "Inspect and drive the action modal",
	}
	cmd.AddCommand(newModalShowCmd(), newModalOpenCmd(), newModalCloseCmd(), newModalResetCmd(), newModalReloadCmd())
	return cmd
}

func newModalShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the action modal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withModal(cmd, func(c daemon.Client) (*models.ActionModal, error) {
				return c.GetActionModal(cmd.Context())
			})
		},
	}
}

func newModalOpenCmd() *cobra.Command {
	var (
		id, parent, commandType int64
		field, payload, order   string
	)

	names := make([]string, 0, 6)
	for a := models.AddDataCommand; a <= models.DeleteFlowCommand; a++ {
		names = append(names, a.String())
	}

	cmd := &cobra.Command{
		Use:   "open <action>",
		Short: "Show the modal for an action",
		Long: fmt.Sprintf(`Show the modal for an action, replacing its data. The command kind is
derived from the action.

Actions: %s

Examples:
  casemgmt modal open AddFlowCommand --parent 12
  casemgmt modal open 2 --id 40 --field amount`, strings.Join(names, ", ")),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, ok := models.ParseModalAction(args[0])
			if !ok {
				return errors.InvalidInput(fmt.Sprintf("unknown modal action %q", args[0]))
			}

			m := models.DefaultActionModal()
			m.Open(action)
			f := cmd.Flags()
			if f.Changed("id") {
				m.Data.ID = &id
			}
			if f.Changed("parent") {
				m.Data.ParentCommand = &parent
			}
			if f.Changed("command-type") {
				m.Data.CommandType = &commandType
			}
			if f.Changed("field") {
				m.Data.Field = &field
			}
			if f.Changed("payload") {
				m.Data.Payload = &payload
			}
			if f.Changed("order") {
				m.Data.Order = order
			}

			// The store keeps the reload counter across a new dialog.
			return withModal(cmd, func(c daemon.Client) (*models.ActionModal, error) {
				return c.SetActionModal(cmd.Context(), m)
			})
		},
	}

	cmd.Flags().Int64Var(&id, "id", 0, "Id of the command being edited")
	cmd.Flags().Int64Var(&parent, "parent", 0, "Parent command id")
	cmd.Flags().Int64Var(&commandType, "command-type", 0, "Command type id")
	cmd.Flags().StringVar(&field, "field", "", "Field being edited")
	cmd.Flags().StringVar(&payload, "payload", "", "Payload of the command")
	cmd.Flags().StringVar(&order, "order", models.DefaultOrder, "Order of the command")
	return cmd
}

func newModalCloseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "close",
		Short: "Hide the modal, keeping its data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withModal(cmd, func(c daemon.Client) (*models.ActionModal, error) {
				m, err := c.GetActionModal(cmd.Context())
				if err != nil {
					return nil, err
				}
				m.Show = false
				return c.SetActionModal(cmd.Context(), *m)
			})
		},
	}
}

func newModalResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the default modal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withModal(cmd, func(c daemon.Client) (*models.ActionModal, error) {
				return c.ResetActionModal(cmd.Context())
			})
		},
	}
}

func newModalReloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Bump the modal's reload counter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			n, err := client.BumpReload(cmd.Context())
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return printJSON(cmd.OutOrStdout(), daemon.ReloadResponse{Reload: n})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reload = %d\n", n)
			return nil
		},
	}
}

// withModal runs fn against a client and prints the modal it returns.
func withModal(cmd *cobra.Command, fn func(daemon.Client) (*models.ActionModal, error)) error {
	client, _, err := newClient(cmd)
	if err != nil {
		return err
	}
	defer client.Close()

	m, err := fn(client)
	if err != nil {
		return err
	}
	if jsonOutput(cmd) {
		return printJSON(cmd.OutOrStdout(), m)
	}
	renderModal(cmd.OutOrStdout(), *m)
	return nil
}

func renderModal(w io.Writer, m models.ActionModal) {
	kind, action := "-", "-"
	if m.Type != nil {
		kind = string(*m.Type)
	}
	if m.Action != nil {
		action = m.Action.String()
	}
	str := func(p *string) string {
		if p == nil {
			return "-"
		}
		return *p
	}
	fmt.Fprintln(w, table.StatusTable([][2]string{
		{"Show", fmt.Sprintf("%t", m.Show)},
		{"Type", kind},
		{"Action", action},
		{"Id", watch.FormatRef(m.Data.ID)},
		{"Parent", watch.FormatRef(m.Data.ParentCommand)},
		{"Command type", watch.FormatRef(m.Data.CommandType)},
		{"Field", str(m.Data.Field)},
		{"Payload", str(m.Data.Payload)},
		{"Order", m.Data.Order},
		{"Reload", fmt.Sprintf("%d", m.Data.Reload)},
	}))
}
