package cli

import (
	"os"

	"github.com/grovetools/casemgmt/config"
	"github.com/spf13/cobra"
)

// CommandOptions holds the standard flags shared by every command.
type CommandOptions struct {
	ConfigFile string
	Verbose    bool
	JSONOutput bool
}

// NewStandardCommand creates a root command with the standard flags and
// styled help.
func NewStandardCommand(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           use,
		Short:         short,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to casemgmt.yml or casemgmt.toml")

	SetStyledHelp(cmd)

	return cmd
}

// GetOptions extracts common options from a command
func GetOptions(cmd *cobra.Command) CommandOptions {
	configFile, _ := cmd.Flags().GetString("config")
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	return CommandOptions{
		ConfigFile: configFile,
		Verbose:    verbose,
		JSONOutput: jsonOutput,
	}
}

// InitConfig resolves the config file path: the --config flag, or the
// nearest casemgmt file above the working directory. It returns "" when
// there is none.
func InitConfig(configFile string) (string, error) {
	if configFile != "" {
		return configFile, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	found, err := config.FindConfigFile(cwd)
	if err != nil {
		// Environment variables alone are a valid configuration.
		return "", nil
	}
	return found, nil
}

// LoadConfig loads the configuration for opts. Without a config file the
// configuration comes from CASEMGMT_* variables and a .env file. It returns
// the path it loaded, if any.
func LoadConfig(opts CommandOptions) (*config.Config, string, error) {
	path, err := InitConfig(opts.ConfigFile)
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, "", err
		}
		cfg, err := config.LoadOrEnv(cwd)
		return cfg, "", err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}
