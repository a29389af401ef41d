package cmd

import (
	"fmt"

	"github.com/grovetools/casemgmt/cli"
	"github.com/grovetools/casemgmt/config"
	"github.com/grovetools/casemgmt/errors"
	"github.com/grovetools/casemgmt/tui/theme"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewConfigCmd groups the configuration commands.
func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}
	cmd.AddCommand(newConfigShowCmd(), newConfigSchemaCmd(), newConfigValidateCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the configuration after environment overrides and defaults are
applied. The API token is redacted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := cli.LoadConfig(cli.GetOptions(cmd))
			if err != nil {
				return err
			}
			shown := *cfg
			shown.API = cfg.API.Redacted()

			if jsonOutput(cmd) {
				return printJSON(cmd.OutOrStdout(), struct {
					Path   string        `json:"path,omitempty"`
					Config config.Config `json:"config"`
				}{path, shown})
			}

			out := cmd.OutOrStdout()
			if path != "" {
				fmt.Fprintf(out, "# Source: %s\n", path)
			} else {
				fmt.Fprintln(out, "# Source: environment")
			}
			data, err := yaml.Marshal(&shown)
			if err != nil {
				return err
			}
			fmt.Fprint(out, string(data))
			return nil
		},
	}
}

func newConfigSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.GenerateSchema()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a config file against the schema",
		Long: `Check a config file against the schema and the value rules. Without an
argument the file found from --config or the working directory is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else {
				found, err := cli.InitConfig(cli.GetOptions(cmd).ConfigFile)
				if err != nil {
					return err
				}
				path = found
			}
			if path == "" {
				return errors.ConfigNotFound(".")
			}

			validator, err := config.NewSchemaValidator()
			if err != nil {
				return err
			}
			if err := validator.ValidateFile(path); err != nil {
				return errors.ConfigInvalid(err.Error()).WithDetail("path", path)
			}
			if _, err := config.Load(path); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), theme.DefaultTheme.Success.Render("✓ "+path+" is valid"))
			return nil
		},
	}
}
