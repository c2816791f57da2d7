// Package syncer runs the operator-configured sync command after summary
// refreshes, one run at a time.
package syncer

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"
)

var ErrSyncBusy = errors.New("sync already in progress")
var syncLock = make(chan struct{}, 1)

// Acquire takes the single sync slot, or fails with ErrSyncBusy once the
// timeout passes. The returned release must be called exactly once.
func Acquire(timeout time.Duration) (func(), error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case syncLock <- struct{}{}:
		return func() { <-syncLock }, nil
	case <-timer.C:
		return nil, ErrSyncBusy
	}
}

// Run executes command through the shell with the notes directory as its
// working directory and returns the combined output. An empty command is
// a no-op.
func Run(ctx context.Context, notesDir, command string) (string, error) {
	if strings.TrimSpace(command) == "" {
		return "", nil
	}
	release, err := Acquire(10 * time.Second)
	if err != nil {
		return "", err
	}
	defer release()

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", command)
	cmd.Dir = notesDir
	cmd.Env = os.Environ()
	output, err := cmd.CombinedOutput()
	return string(output), err
}
