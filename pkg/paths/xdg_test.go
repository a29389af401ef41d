package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPortableHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("CASEMGMT_HOME", home)

	assert.Equal(t, filepath.Join(home, "config"), ConfigDir())
	assert.Equal(t, filepath.Join(home, "state"), StateDir())
	assert.Equal(t, filepath.Join(home, "run", "casemgmtd.sock"), SocketPath())
	assert.Equal(t, filepath.Join(home, "state", "casemgmtd.pid"), PidFilePath())
}

func TestXDGDirs(t *testing.T) {
	cfg := t.TempDir()
	state := t.TempDir()
	t.Setenv("CASEMGMT_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", cfg)
	t.Setenv("XDG_STATE_HOME", state)
	t.Setenv("XDG_RUNTIME_DIR", "")

	assert.Equal(t, filepath.Join(cfg, "casemgmt"), ConfigDir())
	assert.Equal(t, filepath.Join(state, "casemgmt"), StateDir())
	assert.Equal(t, filepath.Join(state, "casemgmt", "casemgmtd.sock"), SocketPath())
}
