package lock

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gofrs/flock"
)

var (
	// ErrLockTimeout is returned when acquiring a lock times out.
	ErrLockTimeout = fmt.Errorf("timeout acquiring lock")
	// ErrFilenameRequired is returned when a filename is empty.
	ErrFilenameRequired = fmt.Errorf("filename is required")
	// ErrNilLock is returned when a nil lock handle is provided to ReleaseLock.
	ErrNilLock = fmt.Errorf("nil lock handle")
)

const (
	// shortPollInterval is the interval to sleep when polling for a lock.
	shortPollInterval = 10 * time.Millisecond
)

// LockManager takes advisory locks on the files themselves. The file is opened
// read-only, so no lock files are created and a missing file is an error.
type LockManager struct{}

// NewLockManager initializes and returns a new LockManager.
func NewLockManager() *LockManager {
	return &LockManager{}
}

// AcquireSharedLock waits up to timeout for a shared lock on filename.
// Shared locks coexist with each other and exclude writers holding an
// exclusive lock on the same file.
func (lm *LockManager) AcquireSharedLock(ctx context.Context, filename string, timeout time.Duration) (*FileLock, error) {
	if filename == "" {
		return nil, ErrFilenameRequired
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fileLock := flock.New(filename, flock.SetFlag(os.O_RDONLY))
	locked, err := fileLock.TryRLockContext(ctx, shortPollInterval)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrLockTimeout
		}
		return nil, fmt.Errorf("error acquiring shared lock for %s: %w", filename, err)
	}
	if !locked {
		return nil, ErrLockTimeout
	}

	return &FileLock{FilePath: filename, flock: fileLock}, nil
}

// ReleaseLock releases the given OS-level lock.
func (lm *LockManager) ReleaseLock(lock *FileLock) error {
	if lock == nil {
		return ErrNilLock
	}
	if lock.flock != nil {
		return lock.flock.Close()
	}
	return nil
}
