package cmd

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/grovetools/casemgmt/logging"
	"github.com/grovetools/casemgmt/pkg/daemon"
	"github.com/grovetools/casemgmt/tui/watch"
	"github.com/spf13/cobra"
)

// NewWatchCmd opens the live view of the store.
func NewWatchCmd() *cobra.Command {
	var useWebsocket bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Browse the store live",
		Long: `Open an interactive view of the store that follows every change.
Lists can be browsed with tab, selections set with enter and cleared with
x. Without a daemon the view drives an in-process store.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := newClient(cmd)
			if err != nil {
				return err
			}
			defer client.Close()

			// Log lines would draw over the alternate screen.
			defer logging.RedirectStderr(io.Discard)()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			updates, err := openStream(ctx, client, useWebsocket)
			if err != nil {
				return err
			}

			p := tea.NewProgram(watch.New(ctx, client, updates), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("error running TUI: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&useWebsocket, "ws", false, "Stream over the daemon's websocket instead of SSE")
	return cmd
}

func openStream(ctx context.Context, client daemon.Client, useWebsocket bool) (<-chan daemon.StateUpdate, error) {
	if remote, ok := client.(*daemon.RemoteClient); ok && useWebsocket {
		return remote.StreamStateWS(ctx)
	}
	return client.StreamState(ctx)
}
