package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/grovetools/casemgmt/config"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex
)

// stderrSink is the terminal side of every logger. It can be pointed
// elsewhere while a full-screen view owns the terminal.
var stderrSink = &sink{w: os.Stderr}

type sink struct {
	mu sync.RWMutex
	w  io.Writer
}

func (s *sink) Write(p []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.w.Write(p)
}

// RedirectStderr sends the terminal output of every logger to w until the
// returned function is called.
func RedirectStderr(w io.Writer) (restore func()) {
	stderrSink.mu.Lock()
	prev := stderrSink.w
	stderrSink.w = w
	stderrSink.mu.Unlock()

	return func() {
		stderrSink.mu.Lock()
		stderrSink.w = prev
		stderrSink.mu.Unlock()
	}
}

// NewLogger creates and returns a pre-configured logger for a specific component.
// It uses a singleton pattern per component to avoid re-initializing.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	var logCfg Config
	if cfg, err := config.LoadDefault(); err == nil {
		if err := cfg.UnmarshalExtension("logging", &logCfg); err != nil {
			logrus.Warnf("Failed to parse 'logging' config: %v", err)
		}
	}

	entry := newLogger(component, logCfg)
	loggers[component] = entry
	return entry
}

func newLogger(component string, logCfg Config) *logrus.Entry {
	cfg := logCfg.resolve()
	logger := logrus.New()
	logger.SetLevel(cfg.level())
	logger.SetReportCaller(cfg.ReportCaller)

	interactive := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())

	switch cfg.Format {
	case FormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{})
	case FormatPlain:
		logger.SetFormatter(&TextFormatter{Options: FormatOptions{
			DisableTimestamp: true,
			DisableComponent: true,
		}})
	default:
		logger.SetFormatter(NewTextFormatter(FormatOptions{}, os.Stderr, interactive))
	}

	var writers []io.Writer

	path, err := cfg.filePath(component)
	if err != nil {
		logger.Warnf("No log file for %s: %v", component, err)
	}
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			logger.Warnf("Failed to create log directory %s: %v", filepath.Dir(path), err)
		} else if file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666); err == nil {
			writers = append(writers, file)
		} else {
			logger.Warnf("Failed to open log file %s: %v", path, err)
		}
	}

	if cfg.logsToStderr(logger.GetLevel(), interactive) {
		writers = append(writers, stderrSink)
	}

	switch len(writers) {
	case 0:
		logger.SetOutput(io.Discard)
	case 1:
		logger.SetOutput(writers[0])
	default:
		logger.SetOutput(io.MultiWriter(writers...))
	}

	return logger.WithField("component", component)
}
