package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
)

// FileLock is a PID-file based mutual exclusion guard for batch jobs, so two
// maintenance runs cannot patch the same tables concurrently. The file holds
// the owner PID; a lock left behind by a dead process is reclaimed.
type FileLock struct {
	path string
}

// NewFileLock returns a lock handle for the given path. The lock is not held
// until Acquire succeeds.
func NewFileLock(path string) *FileLock {
	return &FileLock{path: path}
}

// Acquire takes the lock or returns an error naming the current holder.
func (l *FileLock) Acquire() error {
	if dir := filepath.Dir(l.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(l.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			_, werr := fmt.Fprintf(f, "%d\n", os.Getpid())
			cerr := f.Close()
			if werr != nil || cerr != nil {
				_ = os.Remove(l.path)
				if werr != nil {
					return werr
				}
				return cerr
			}
			return nil
		}
		if !os.IsExist(err) {
			return err
		}
		holder, rerr := l.holderPID()
		if rerr == nil && holder > 0 && processAlive(holder) {
			return fmt.Errorf("lock %s held by running pid %d", l.path, holder)
		}
		// Stale lock from a dead or unreadable owner; reclaim and retry once.
		if rmErr := os.Remove(l.path); rmErr != nil && !os.IsNotExist(rmErr) {
			return rmErr
		}
	}
	return fmt.Errorf("lock %s could not be acquired", l.path)
}

// Release drops the lock. Only the holder should call it.
func (l *FileLock) Release() error {
	err := os.Remove(l.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (l *FileLock) holderPID() (int, error) {
	b, err := os.ReadFile(l.path)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(b)))
}

// processAlive probes a PID with signal 0.
func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	if err == nil {
		return true
	}
	return err == syscall.EPERM
}

// WithFileLock runs fn while holding the lock at path.
func WithFileLock(path string, fn func() error) error {
	lock := NewFileLock(path)
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()
	return fn()
}
