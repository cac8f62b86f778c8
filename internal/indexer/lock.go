package indexer

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// lockPath is spec §4.11's fixed advisory lock location.
func lockPath(root string) string {
	return filepath.Join(root, ".roam", "index.lock")
}

// acquireLock implements the generic "lock file holds owning PID" idiom:
// if an existing lock names a PID that is no longer alive (probed via a
// zero-signal kill), the lock is reclaimed instead of blocking forever.
func acquireLock(root string) (release func(), err error) {
	path := lockPath(root)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("indexer: creating lock dir: %w", err)
	}

	for {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			fmt.Fprintf(f, "%d", os.Getpid())
			f.Close()
			return func() { os.Remove(path) }, nil
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("indexer: creating lock file: %w", err)
		}

		owner, readErr := readLockPID(path)
		if readErr == nil && pidAlive(owner) {
			return nil, fmt.Errorf("indexer: index already running (pid %d holds %s)", owner, path)
		}
		// Stale lock: owning process is gone. Reclaim it and retry.
		os.Remove(path)
	}
}

func readLockPID(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}

func pidAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	// Signal 0 performs no-op permission/existence checks without
	// actually signaling the process.
	return unix.Kill(pid, 0) == nil
}
