package errors

import (
	stdErrors "errors"
	"fmt"
	"io/fs"
	"net/http"
	"testing"
)

func TestMapErrorToHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing param", NewMissingParamError("path"), http.StatusUnprocessableEntity},
		{"not found", NewFileNotFoundError(fs.ErrNotExist), http.StatusNotFound},
		{"not a file", NewNotAFileError(), http.StatusBadRequest},
		{"decode", NewDecodeError(fmt.Errorf("bad bytes")), http.StatusInternalServerError},
		{"read", NewReadFileError(fs.ErrPermission), http.StatusInternalServerError},
		{"read dir", NewReadDirError(fs.ErrPermission), http.StatusInternalServerError},
		{"lock", NewLockTimeoutError(nil), http.StatusConflict},
		{"wrapped", fmt.Errorf("outer: %w", NewNotAFileError()), http.StatusBadRequest},
		{"plain error", stdErrors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MapErrorToHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapErrorToHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestError_MessageIncludesCause(t *testing.T) {
	err := NewReadDirError(fs.ErrPermission)
	if err.Error() != "cannot read directory: permission denied" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if !stdErrors.Is(err, fs.ErrPermission) {
		t.Error("expected error to unwrap to fs.ErrPermission")
	}
	if CodeOf(err) != CodeFileSystemError {
		t.Errorf("expected CodeFileSystemError, got %s", CodeOf(err))
	}
}
