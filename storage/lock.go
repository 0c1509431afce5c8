package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"
)

// InstanceLock prevents two processes from opening the same session
// database. The lock file holds the owning PID.
type InstanceLock struct {
	path string
}

// AcquireInstanceLock takes the single-instance lock in the data
// directory. Returns an error naming the running PID when another live
// instance holds it; stale locks from dead processes are reclaimed.
func AcquireInstanceLock(dataDir string) (*InstanceLock, error) {
	path := filepath.Join(dataDir, "datui.lock")

	if data, err := os.ReadFile(path); err == nil {
		var pid int
		if _, err := fmt.Sscanf(string(data), "%d", &pid); err == nil {
			if processAlive(pid) {
				return nil, fmt.Errorf("another instance is running (pid %d)", pid)
			}
		}
		// Stale or unreadable lock.
		_ = os.Remove(path)
	}

	if err := os.WriteFile(path, []byte(fmt.Sprintf("%d", os.Getpid())), 0600); err != nil {
		return nil, fmt.Errorf("failed to write lock file: %w", err)
	}

	return &InstanceLock{path: path}, nil
}

// Release removes the lock file. Safe to call when already released.
func (l *InstanceLock) Release() error {
	err := os.Remove(l.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// processAlive reports whether a PID maps to a running process. On Unix
// FindProcess always succeeds, so a zero signal probes liveness; on
// Windows FindProcess itself fails for dead PIDs.
func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
