package indexer

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireLock_SecondCallerBlockedWhileHeld(t *testing.T) {
	dir := t.TempDir()

	release, err := acquireLock(dir)
	require.NoError(t, err)
	defer release()

	_, err = acquireLock(dir)
	assert.Error(t, err, "a second acquire must fail while the first holder is alive")
}

func TestAcquireLock_ReclaimsStaleLockFromDeadPID(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(dir+"/.roam", 0o755))
	// PID 1 is always running; pick a PID unlikely to be alive instead.
	require.NoError(t, os.WriteFile(lockPath(dir), []byte("999999"), 0o644))

	release, err := acquireLock(dir)
	require.NoError(t, err, "a lock naming a dead pid must be reclaimed, not block forever")
	release()
}

func TestAcquireLock_ReleaseRemovesFile(t *testing.T) {
	dir := t.TempDir()
	release, err := acquireLock(dir)
	require.NoError(t, err)

	release()
	_, statErr := os.Stat(lockPath(dir))
	assert.True(t, os.IsNotExist(statErr))
}
