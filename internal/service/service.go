package service

import (
	"context"
	stdErrors "errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"powersight-server/internal/decoding"
	"powersight-server/internal/errors"
	"powersight-server/internal/filesystem"
	"powersight-server/internal/lock"
	"powersight-server/internal/models"
)

const csvSuffix = ".csv"

// FileBrowserService defines the read-only file operations exposed over HTTP.
type FileBrowserService interface {
	ListCSVFiles(ctx context.Context, req models.ListFilesRequest) ([]string, error)
	ReadFileContent(ctx context.Context, req models.FileContentRequest) (*models.FileContent, error)
}

// Observer receives per-operation measurements. Implementations must be safe
// for concurrent use.
type Observer interface {
	RecordDecode(encoding string, bytes int)
	RecordListing(count int)
}

type nopObserver struct{}

func (nopObserver) RecordDecode(string, int) {}
func (nopObserver) RecordListing(int)        {}

// DefaultFileBrowserService implements the FileBrowserService interface.
type DefaultFileBrowserService struct {
	fsAdapter       filesystem.FileSystemAdapter
	lockManager     lock.LockManagerInterface
	decoders        decoding.Chain
	readLockTimeout time.Duration
	observer        Observer
}

// Option configures a DefaultFileBrowserService.
type Option func(*DefaultFileBrowserService)

// WithReadLocks takes a shared lock on each file before reading it, waiting at
// most timeout. A zero timeout leaves locking disabled.
func WithReadLocks(lm lock.LockManagerInterface, timeout time.Duration) Option {
	return func(s *DefaultFileBrowserService) {
		s.lockManager = lm
		s.readLockTimeout = timeout
	}
}

// WithObserver reports decode and listing measurements to o.
func WithObserver(o Observer) Option {
	return func(s *DefaultFileBrowserService) {
		s.observer = o
	}
}

// NewDefaultFileBrowserService creates a new DefaultFileBrowserService.
func NewDefaultFileBrowserService(fsAdapter filesystem.FileSystemAdapter, decoders decoding.Chain, opts ...Option) (*DefaultFileBrowserService, error) {
	if fsAdapter == nil {
		return nil, fmt.Errorf("filesystem adapter is required")
	}
	if len(decoders) == 0 {
		return nil, fmt.Errorf("at least one decoder is required")
	}

	s := &DefaultFileBrowserService{
		fsAdapter: fsAdapter,
		decoders:  decoders,
		observer:  nopObserver{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.readLockTimeout > 0 && s.lockManager == nil {
		return nil, fmt.Errorf("lock manager is required when read locks are enabled")
	}
	return s, nil
}

// ListCSVFiles implements the FileBrowserService interface.
// A path that does not exist yields an empty listing rather than an error.
func (s *DefaultFileBrowserService) ListCSVFiles(ctx context.Context, req models.ListFilesRequest) ([]string, error) {
	if _, err := s.fsAdapter.Stat(req.Path); err != nil && stdErrors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}

	names, err := s.fsAdapter.ListDirNames(req.Path)
	if err != nil {
		return nil, errors.NewReadDirError(err)
	}

	files := make([]string, 0, len(names))
	for _, name := range names {
		if strings.HasSuffix(name, csvSuffix) && !strings.HasPrefix(name, ".") {
			files = append(files, name)
		}
	}
	sort.Strings(files)

	s.observer.RecordListing(len(files))
	return files, nil
}

// ReadFileContent implements the FileBrowserService interface.
func (s *DefaultFileBrowserService) ReadFileContent(ctx context.Context, req models.FileContentRequest) (*models.FileContent, error) {
	fullPath := filepath.Join(req.Path, req.Filename)

	stats, err := s.fsAdapter.Stat(fullPath)
	if err != nil {
		if stdErrors.Is(err, fs.ErrNotExist) {
			return nil, errors.NewFileNotFoundError(err)
		}
		return nil, errors.NewReadFileError(err)
	}
	if !stats.IsRegular {
		return nil, errors.NewNotAFileError()
	}

	if s.readLockTimeout > 0 {
		fileLock, err := s.lockManager.AcquireSharedLock(ctx, fullPath, s.readLockTimeout)
		if err != nil {
			if stdErrors.Is(err, lock.ErrLockTimeout) {
				return nil, errors.NewLockTimeoutError(err)
			}
			return nil, errors.NewReadFileError(err)
		}
		defer s.lockManager.ReleaseLock(fileLock)
	}

	raw, err := s.fsAdapter.ReadFileBytes(fullPath)
	if err != nil {
		return nil, errors.NewReadFileError(err)
	}

	text, encoding, err := s.decoders.Decode(raw)
	s.observer.RecordDecode(encoding, len(raw))
	if err != nil {
		return nil, errors.NewDecodeError(err)
	}

	return &models.FileContent{
		Text:     string(s.fsAdapter.NormalizeNewlines([]byte(text))),
		Encoding: encoding,
		Size:     int64(len(raw)),
	}, nil
}
