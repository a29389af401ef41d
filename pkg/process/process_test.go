package process

import (
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsProcessAlive(t *testing.T) {
	assert.True(t, IsProcessAlive(os.Getpid()))
	assert.False(t, IsProcessAlive(0))
	assert.False(t, IsProcessAlive(-1))
}

func TestTerminate(t *testing.T) {
	cmd := exec.Command("sleep", "30")
	require.NoError(t, cmd.Start())
	pid := cmd.Process.Pid

	// Reap the child so it does not linger as a zombie.
	go cmd.Wait()

	require.NoError(t, Terminate(pid, 5*time.Second))
	assert.False(t, IsProcessAlive(pid))
}

func TestTerminateMissingProcess(t *testing.T) {
	assert.NoError(t, Terminate(0, time.Second))
}
