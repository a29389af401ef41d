// Package process inspects and signals the casemgmt daemon process.
package process

import (
	"fmt"
	"os"
	"syscall"
	"time"
)

// IsProcessAlive checks if a process with the given PID is still running.
func IsProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}

	// FindProcess never fails on Unix.
	p, err := os.FindProcess(pid)
	if err != nil {
		return false
	}

	// Signal 0 probes for existence. EPERM still means the process exists.
	err = p.Signal(syscall.Signal(0))
	return err == nil || os.IsPermission(err)
}

// Terminate sends SIGTERM to pid and waits up to timeout for it to exit.
// It reports an error when the process is still alive afterwards.
func Terminate(pid int, timeout time.Duration) error {
	if !IsProcessAlive(pid) {
		return nil
	}
	p, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	if err := p.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to signal process %d: %w", pid, err)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if !IsProcessAlive(pid) {
			return nil
		}
		time.Sleep(50 * time.Millisecond)
	}
	return fmt.Errorf("process %d did not exit within %s", pid, timeout)
}
