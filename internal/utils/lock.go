package utils

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockTimeout    = 2 * time.Second
	lockRetryDelay = 50 * time.Millisecond
)

var ErrLocked = errors.New("could not acquire lock")

type UnlockFunc func()

// LockOutput acquires an advisory lock on the lock file belonging to the output file or directory name.
// The lock file is name + ".lock". Gives up with ErrLocked if another process holds the lock for longer
// than a short timeout. The returned function releases the lock and is safe to call on failure too.
func LockOutput(ctx context.Context, name string) (UnlockFunc, error) {
	lockName := name + ".lock"
	if err := os.MkdirAll(filepath.Dir(lockName), DefaultDirPermissions); err != nil {
		return func() {}, err
	}

	fl := flock.New(lockName)
	ctx, cancel := context.WithTimeout(ctx, lockTimeout)
	unlock := func() {
		cancel()
		_ = fl.Unlock()
	}
	locked, err := fl.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return unlock, fmt.Errorf("%w on %s", ErrLocked, lockName)
		}
		return unlock, err
	}
	if !locked {
		return unlock, fmt.Errorf("%w on %s", ErrLocked, lockName)
	}
	GetLogger(ctx, "lock").Debug("acquired lock", "file", lockName)
	return unlock, nil
}
