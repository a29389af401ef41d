package daemon

import (
	"net"
	"os"
	"time"

	"github.com/grovetools/casemgmt/config"
	storeerrors "github.com/grovetools/casemgmt/errors"
	"github.com/grovetools/casemgmt/pkg/paths"
	"github.com/grovetools/casemgmt/util/pathutil"
)

// SocketPathFor returns the daemon socket configured in cfg, with ~ and
// environment variables expanded, or the default runtime socket.
func SocketPathFor(cfg *config.Config) string {
	if cfg != nil && cfg.Server.Socket != "" {
		if expanded, err := pathutil.Expand(cfg.Server.Socket); err == nil {
			return expanded
		}
		return cfg.Server.Socket
	}
	return paths.SocketPath()
}

// New returns a Client that will use the daemon if available,
// otherwise falls back to LocalClient.
//
// Callers don't need to know whether the daemon is running. The same API
// works in both modes.
func New(cfg *config.Config) Client {
	if client, err := Connect(SocketPathFor(cfg)); err == nil {
		return client
	}
	return NewLocalClient(cfg)
}

// Connect returns a RemoteClient for the daemon listening on socketPath, or a
// DaemonUnavailable error when nothing answers there.
func Connect(socketPath string) (*RemoteClient, error) {
	if _, err := os.Stat(socketPath); err != nil {
		return nil, storeerrors.DaemonUnavailable(socketPath, err)
	}
	conn, err := net.DialTimeout("unix", socketPath, 100*time.Millisecond)
	if err != nil {
		return nil, storeerrors.DaemonUnavailable(socketPath, err)
	}
	conn.Close()
	return NewRemoteClient(socketPath)
}
