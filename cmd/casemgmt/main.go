package main

import (
	"context"
	"os"

	"github.com/grovetools/casemgmt/cli"
	"github.com/grovetools/casemgmt/cmd"
	"github.com/grovetools/casemgmt/pkg/profiling"
)

func main() {
	rootCmd := cli.NewStandardCommand(
		"casemgmt",
		"Reference-list store for the frozen-import case management screens",
	)

	profiling.NewCobraProfiler().Install(rootCmd)

	rootCmd.AddCommand(cmd.NewServeCmd())
	rootCmd.AddCommand(cmd.NewStopCmd())
	rootCmd.AddCommand(cmd.NewStatusCmd())
	rootCmd.AddCommand(cmd.NewStateCmd())
	rootCmd.AddCommand(cmd.NewSelectCmd())
	rootCmd.AddCommand(cmd.NewEnvCmd())
	rootCmd.AddCommand(cmd.NewModalCmd())
	rootCmd.AddCommand(cmd.NewFlagsCmd())
	rootCmd.AddCommand(cmd.NewRefreshCmd())
	rootCmd.AddCommand(cmd.NewWatchCmd())
	rootCmd.AddCommand(cmd.NewConfigCmd())
	rootCmd.AddCommand(cmd.NewPathsCmd())
	rootCmd.AddCommand(cli.NewVersionCommand("casemgmt"))

	cli.ApplyStyledHelpRecursive(rootCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		verbose, _ := rootCmd.PersistentFlags().GetBool("verbose")
		cli.NewErrorHandler(verbose).Handle(err)
		os.Exit(1)
	}
}
