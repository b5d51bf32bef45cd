package lock

import (
	"context"
	"time"

	"github.com/gofrs/flock"
)

// FileLock represents a handle to an OS-level shared file lock.
type FileLock struct {
	FilePath string
	flock    *flock.Flock
}

// LockManagerInterface defines the methods a lock manager should implement.
// AcquireSharedLock obtains a shared OS-level lock and returns a handle
// which must be provided back to ReleaseLock.
type LockManagerInterface interface {
	AcquireSharedLock(ctx context.Context, filePath string, timeout time.Duration) (*FileLock, error)
	ReleaseLock(lock *FileLock) error
}
