package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/grovetools/casemgmt/cli"
	"github.com/grovetools/casemgmt/config"
	"github.com/grovetools/casemgmt/internal/daemon/collector"
	"github.com/grovetools/casemgmt/internal/daemon/engine"
	"github.com/grovetools/casemgmt/internal/daemon/pidfile"
	"github.com/grovetools/casemgmt/internal/daemon/server"
	"github.com/grovetools/casemgmt/internal/daemon/store"
	"github.com/grovetools/casemgmt/logging"
	"github.com/grovetools/casemgmt/pkg/api"
	"github.com/grovetools/casemgmt/pkg/daemon"
	"github.com/grovetools/casemgmt/pkg/paths"
	"github.com/grovetools/casemgmt/pkg/process"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewServeCmd returns the daemon command.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the store daemon in the foreground",
		Long: `Run the store daemon. It loads the reference lists, applies the
refresh rules and serves the store over a unix socket until interrupted.

The config file, when there is one, is watched: a changed api.use_live
switches the environment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := cli.GetLogger(cmd, "casemgmtd")
			cfg, cfgPath, err := cli.LoadConfig(cli.GetOptions(cmd))
			if err != nil {
				return err
			}

			pidPath := paths.PidFilePath()
			sockPath := daemon.SocketPathFor(cfg)

			if err := pidfile.Acquire(pidPath); err != nil {
				return fmt.Errorf("failed to start: %w", err)
			}
			defer func() {
				if err := pidfile.Release(pidPath); err != nil {
					logger.Errorf("Failed to release pidfile: %v", err)
				}
			}()

			st := store.New(cfg.API.Environment())
			getter := api.NewClient(cfg.API, st.Environment, api.WithLogger(logging.NewLogger("api")))
			eng := engine.New(st, getter, logger)
			for _, c := range collector.BaseCollectors(getter) {
				eng.Register(c)
			}

			srv := server.New(logger)
			srv.SetEngine(eng)
			srv.SetRunningConfig(&daemon.RunningConfig{
				API:        cfg.API.Redacted(),
				ConfigFile: cfgPath,
				Socket:     sockPath,
				PID:        os.Getpid(),
				StartedAt:  time.Now(),
			})

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if cfgPath != "" && !cfg.Watch.Disabled {
				watcher, err := daemon.NewConfigWatcher(cfgPath, cfg, cfg.Watch.DebounceMs,
					st.BroadcastConfigReload,
					func(prev, next *config.Config) { applyConfigChange(logger, st, prev, next) })
				if err != nil {
					logger.WithError(err).Warn("Config watching disabled")
				} else {
					go watcher.Start(ctx)
				}
			}

			engineDone := make(chan struct{})
			go func() {
				defer close(engineDone)
				eng.Start(ctx)
			}()

			serveErr := make(chan error, 1)
			go func() {
				logger.WithField("pid", os.Getpid()).Info("Starting daemon")
				serveErr <- srv.ListenAndServe(sockPath)
			}()

			select {
			case err := <-serveErr:
				cancel()
				<-engineDone
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("server error: %w", err)
				}
				return nil
			case <-ctx.Done():
				logger.Info("Received stop signal")
			}

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Errorf("Server shutdown error: %v", err)
			}
			<-engineDone
			_ = os.Remove(sockPath)
			return nil
		},
	}
}

// applyConfigChange applies what can change while the daemon runs.
// Connection settings need a restart.
func applyConfigChange(logger *logrus.Entry, st *store.Store, prev, next *config.Config) {
	if prev.API.UseLive != next.API.UseLive {
		st.SetLiveAPI(next.API.UseLive)
	}
	if prev.API.Token != next.API.Token || prev.API.LiveURL != next.API.LiveURL ||
		prev.API.StageURL != next.API.StageURL || prev.API.Timeout != next.API.Timeout {
		logger.Warn("API connection settings changed; restart the daemon to apply them")
	}
}

// NewStopCmd returns the command that stops the daemon.
func NewStopCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			running, pid, err := pidfile.IsRunning(paths.PidFilePath())
			if err != nil {
				return fmt.Errorf("error checking status: %w", err)
			}
			if !running {
				fmt.Fprintln(cmd.OutOrStdout(), "Daemon is not running")
				return nil
			}
			if err := process.Terminate(pid, timeout); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stopped daemon (PID %d)\n", pid)
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "How long to wait for the daemon to exit")
	return cmd
}
