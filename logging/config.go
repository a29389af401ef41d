package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/grovetools/casemgmt/pkg/paths"
	"github.com/grovetools/casemgmt/util/pathutil"
	"github.com/sirupsen/logrus"
)

// Config is the `logging` section of casemgmt.yml:
//
//	logging:
//	  level: debug
//	  format: json      # text (default), plain or json
//	  stderr: always    # auto (default), always or never
//	  file: auto        # a path, or auto for <state dir>/logs
type Config struct {
	Level        string `yaml:"level"`
	Format       string `yaml:"format"`
	Stderr       string `yaml:"stderr"`
	File         string `yaml:"file"`
	ReportCaller bool   `yaml:"report_caller"`
}

const (
	FormatText  = "text"
	FormatPlain = "plain"
	FormatJSON  = "json"

	StderrAuto   = "auto"
	StderrAlways = "always"
	StderrNever  = "never"
)

// resolve applies the CASEMGMT_LOG_* variables and fills in defaults.
func (c Config) resolve() Config {
	if v := os.Getenv("CASEMGMT_LOG_LEVEL"); v != "" {
		c.Level = v
	}
	if v := os.Getenv("CASEMGMT_LOG_FORMAT"); v != "" {
		c.Format = v
	}
	if os.Getenv("CASEMGMT_LOG_CALLER") == "true" {
		c.ReportCaller = true
	}
	c.Format = strings.ToLower(c.Format)
	if c.Format == "" {
		c.Format = FormatText
	}
	if c.Stderr == "" {
		c.Stderr = StderrAuto
	}
	return c
}

// level parses Level. Unknown or empty levels mean info.
func (c Config) level() logrus.Level {
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return logrus.InfoLevel
	}
	return level
}

// logsToStderr decides whether entries reach the terminal. In auto mode an
// interactive terminal only sees them at debug level.
func (c Config) logsToStderr(level logrus.Level, interactive bool) bool {
	switch c.Stderr {
	case StderrAlways:
		return true
	case StderrNever:
		return false
	}
	return os.Getenv("CASEMGMT_DEBUG") == "1" || level >= logrus.DebugLevel || !interactive
}

// filePath returns the log file for component, or "" without a file sink.
func (c Config) filePath(component string) (string, error) {
	switch c.File {
	case "":
		return "", nil
	case "auto":
		dir := paths.StateDir()
		if dir == "" {
			return "", fmt.Errorf("no state directory for the log file")
		}
		name := fmt.Sprintf("%s-%s.log", component, time.Now().Format("2006-01-02"))
		return filepath.Join(dir, "logs", name), nil
	}
	return pathutil.Expand(c.File)
}
