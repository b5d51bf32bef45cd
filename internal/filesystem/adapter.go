package filesystem

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"
)

// FileStats holds basic statistics about a file.
type FileStats struct {
	Size      int64
	IsRegular bool
}

// NotExistError reports a path that cannot be resolved to an existing entry.
// It matches fs.ErrNotExist under errors.Is.
type NotExistError struct {
	Path string
	Err  error
}

func (e *NotExistError) Error() string {
	return fmt.Sprintf("path not found: %v", e.Err)
}

func (e *NotExistError) Unwrap() error { return e.Err }

func (e *NotExistError) Is(target error) bool { return target == fs.ErrNotExist }

// isNotExist also covers a path that runs through a regular file (ENOTDIR)
// and a path the OS rejects outright, such as one containing a NUL byte (EINVAL).
func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist) ||
		errors.Is(err, syscall.ENOTDIR) ||
		errors.Is(err, syscall.EINVAL)
}

// FileSystemAdapter defines an interface for interacting with the file system.
// Returned errors wrap the OS error, so errors.Is(err, fs.ErrNotExist) works.
type FileSystemAdapter interface {
	Stat(path string) (*FileStats, error)
	ReadFileBytes(filePath string) ([]byte, error)
	ListDirNames(path string) ([]string, error) // Immediate entries, unsorted
	NormalizeNewlines(content []byte) []byte    // Converts \r\n and \r to \n
}

// DefaultFileSystemAdapter is the standard implementation of FileSystemAdapter using the os package.
type DefaultFileSystemAdapter struct{}

// NewDefaultFileSystemAdapter creates a new DefaultFileSystemAdapter.
func NewDefaultFileSystemAdapter() *DefaultFileSystemAdapter {
	return &DefaultFileSystemAdapter{}
}

// Ensure DefaultFileSystemAdapter implements FileSystemAdapter
var _ FileSystemAdapter = (*DefaultFileSystemAdapter)(nil)

// Stat follows symbolic links, like os.Stat. Any path that does not name an
// existing entry yields a *NotExistError.
func (a *DefaultFileSystemAdapter) Stat(path string) (*FileStats, error) {
	info, err := os.Stat(path)
	if err != nil {
		if isNotExist(err) {
			return nil, &NotExistError{Path: path, Err: err}
		}
		if os.IsPermission(err) {
			return nil, fmt.Errorf("permission denied: %w", err)
		}
		return nil, fmt.Errorf("failed to stat: %w", err)
	}

	return &FileStats{
		Size:      info.Size(),
		IsRegular: info.Mode().IsRegular(),
	}, nil
}

// ReadFileBytes reads the entire file into a byte slice.
func (a *DefaultFileSystemAdapter) ReadFileBytes(filePath string) ([]byte, error) {
	return os.ReadFile(filePath)
}

// ListDirNames lists the names of the entries in a directory, excluding "." and "..".
// It does not stat the entries, so a dangling symlink is still listed.
func (a *DefaultFileSystemAdapter) ListDirNames(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	names, err := f.Readdirnames(-1)
	if err != nil {
		return nil, err
	}
	return names, nil
}

// NormalizeNewlines converts all newline variations (\r\n and \r) to a single \n.
func (a *DefaultFileSystemAdapter) NormalizeNewlines(content []byte) []byte {
	if len(content) == 0 { // Handles nil or empty slice
		return []byte{} // Return non-nil empty slice
	}
	// Replace \r\n with \n
	normalized := bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
	// Replace \r with \n (for Mac OS Classic style newlines)
	normalized = bytes.ReplaceAll(normalized, []byte("\r"), []byte("\n"))
	return normalized
}
