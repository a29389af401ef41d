package cmd

import (
	"encoding/json"
	"io"

	"github.com/grovetools/casemgmt/cli"
	"github.com/grovetools/casemgmt/config"
	"github.com/grovetools/casemgmt/pkg/daemon"
	"github.com/spf13/cobra"
)

// newClient loads the configuration and returns the daemon client, or an
// in-process one when no daemon is listening.
func newClient(cmd *cobra.Command) (daemon.Client, *config.Config, error) {
	cfg, _, err := cli.LoadConfig(cli.GetOptions(cmd))
	if err != nil {
		return nil, nil, err
	}
	return daemon.New(cfg), cfg, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func jsonOutput(cmd *cobra.Command) bool {
	return cli.GetOptions(cmd).JSONOutput
}
