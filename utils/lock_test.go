package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLockAcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.lock")
	lock := NewFileLock(path)

	require.NoError(t, lock.Acquire())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("%d\n", os.Getpid()), string(b))

	require.NoError(t, lock.Release())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Releasing an already released lock is not an error
	assert.NoError(t, lock.Release())
}

func TestFileLockHeldByLiveProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.lock")

	// Our own PID is definitely alive
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("%d\n", os.Getpid())), 0o644))

	err := NewFileLock(path).Acquire()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "held by running pid")
}

func TestFileLockReclaimsStaleLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.lock")

	// A PID from a long dead process
	require.NoError(t, os.WriteFile(path, []byte("999999999\n"), 0o644))

	lock := NewFileLock(path)
	require.NoError(t, lock.Acquire())
	require.NoError(t, lock.Release())
}

func TestFileLockReclaimsGarbageLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.lock")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid"), 0o644))

	lock := NewFileLock(path)
	require.NoError(t, lock.Acquire())
	require.NoError(t, lock.Release())
}

func TestWithFileLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.lock")

	ran := false
	err := WithFileLock(path, func() error {
		ran = true
		// Lock file exists while fn runs
		_, statErr := os.Stat(path)
		assert.NoError(t, statErr)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)

	// Released afterwards
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
