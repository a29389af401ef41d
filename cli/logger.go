package cli

import (
	"github.com/grovetools/casemgmt/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// GetLogger returns the component logger, at debug level when --verbose is
// set and with JSON output when --json is set.
func GetLogger(cmd *cobra.Command, component string) *logrus.Entry {
	entry := logging.NewLogger(component)
	opts := GetOptions(cmd)

	if opts.Verbose {
		entry.Logger.SetLevel(logrus.DebugLevel)
	}
	if opts.JSONOutput {
		entry.Logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return entry
}
