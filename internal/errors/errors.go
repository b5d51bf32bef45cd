package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

// Code classifies a failure so the transport can pick a status code.
type Code int

const (
	// CodeInternalError is used for anything that does not fit a narrower code.
	CodeInternalError Code = iota
	// CodeInvalidParams means a required request parameter was missing or malformed.
	CodeInvalidParams
	// CodeNotFound means the requested path does not exist.
	CodeNotFound
	// CodeInvalidTarget means the path exists but is the wrong kind of object.
	CodeInvalidTarget
	// CodeDecodeFailure means no configured text encoding could decode the content.
	CodeDecodeFailure
	// CodeFileSystemError covers permission problems and other OS failures.
	CodeFileSystemError
	// CodeLockTimeout means a shared read lock could not be taken in time.
	CodeLockTimeout
)

func (c Code) String() string {
	switch c {
	case CodeInvalidParams:
		return "invalid_params"
	case CodeNotFound:
		return "not_found"
	case CodeInvalidTarget:
		return "invalid_target"
	case CodeDecodeFailure:
		return "decode_failure"
	case CodeFileSystemError:
		return "file_system_error"
	case CodeLockTimeout:
		return "lock_timeout"
	default:
		return "internal_error"
	}
}

// Error is the error type returned by the service layer.
// Message is safe to show to callers; Err is the underlying cause, if any.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error.
func NewError(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Err: cause}
}

// NewMissingParamError reports a required query parameter that was not supplied.
func NewMissingParamError(name string) *Error {
	return NewError(CodeInvalidParams, fmt.Sprintf("missing required query parameter: %s", name), nil)
}

// NewFileNotFoundError reports a path that does not exist. HTTP status: 404.
func NewFileNotFoundError(cause error) *Error {
	return NewError(CodeNotFound, "file not found", cause)
}

// NewNotAFileError reports a path that exists but is not a regular file. HTTP status: 400.
func NewNotAFileError() *Error {
	return NewError(CodeInvalidTarget, "target is not a file", nil)
}

// NewDecodeError reports content that no configured encoding accepted. HTTP status: 500.
func NewDecodeError(cause error) *Error {
	return NewError(CodeDecodeFailure, fmt.Sprintf("unrecognized file encoding: %v", cause), cause)
}

// NewReadFileError reports a failure reading a file. HTTP status: 500.
func NewReadFileError(cause error) *Error {
	return NewError(CodeFileSystemError, fmt.Sprintf("failed to read file: %v", cause), cause)
}

// NewReadDirError reports a failure reading a directory. HTTP status: 500.
func NewReadDirError(cause error) *Error {
	return NewError(CodeFileSystemError, fmt.Sprintf("cannot read directory: %v", cause), cause)
}

// NewLockTimeoutError reports that a shared read lock was not acquired. HTTP status: 409.
func NewLockTimeoutError(cause error) *Error {
	return NewError(CodeLockTimeout, "file is locked by another process, try again later", cause)
}

// NewInternalError creates an Error for unexpected server errors.
func NewInternalError(cause error) *Error {
	return NewError(CodeInternalError, fmt.Sprintf("internal error: %v", cause), cause)
}

// CodeOf extracts the Code from err, defaulting to CodeInternalError.
func CodeOf(err error) Code {
	var e *Error
	if stdErrors.As(err, &e) {
		return e.Code
	}
	return CodeInternalError
}

// MapErrorToHTTPStatus maps an error to an HTTP status code.
func MapErrorToHTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeInvalidParams:
		return http.StatusUnprocessableEntity
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidTarget:
		return http.StatusBadRequest
	case CodeLockTimeout:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
