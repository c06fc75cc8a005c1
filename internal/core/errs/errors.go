package errs

import (
	"errors"
	"time"
)

// Error kinds
var (
	// Construction errors

	ErrInvalidConfiguration = errors.New("invalid configuration")

	// Lookup errors

	ErrIndexOutOfRange = errors.New("index out of range")

	// Logic errors

	ErrProgrammer = errors.New("programmer error")

	// Resource errors

	ErrResourceExhausted = errors.New("resource exhausted")
)

// ErrorCode represents a numeric error code for efficient error handling
type ErrorCode int

const (
	ErrorCodeSuccess ErrorCode = 0

	ErrorCodeInvalidConfiguration ErrorCode = 1001
	ErrorCodeIndexOutOfRange      ErrorCode = 2001
	ErrorCodeProgrammer           ErrorCode = 3001
	ErrorCodeResourceExhausted    ErrorCode = 4001

	ErrorCodeUnknownError ErrorCode = 9999
)

// Error carries an error kind together with a message and optional context.
type Error struct {
	Code      ErrorCode
	Message   string
	Cause     error
	Context   map[string]any
	Timestamp int64
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an error of the given kind. The kind sentinel becomes the cause,
// so errors.Is(err, kind) holds.
func New(kind error, message string) *Error {
	return &Error{
		Code:      GetErrorCode(kind),
		Message:   message,
		Cause:     kind,
		Context:   make(map[string]any),
		Timestamp: time.Now().Unix(),
	}
}

// WithContext adds context to the error
func (e *Error) WithContext(key string, value any) *Error {
	e.Context[key] = value
	return e
}

var errorCodeMap = map[error]ErrorCode{
	ErrInvalidConfiguration: ErrorCodeInvalidConfiguration,
	ErrIndexOutOfRange:      ErrorCodeIndexOutOfRange,
	ErrProgrammer:           ErrorCodeProgrammer,
	ErrResourceExhausted:    ErrorCodeResourceExhausted,
}

// GetErrorCode returns the error code for a given error
func GetErrorCode(err error) ErrorCode {
	if err == nil {
		return ErrorCodeSuccess
	}
	if code, exists := errorCodeMap[err]; exists {
		return code
	}

	var kindErr *Error
	if errors.As(err, &kindErr) {
		return kindErr.Code
	}

	for kind, code := range errorCodeMap {
		if errors.Is(err, kind) {
			return code
		}
	}

	return ErrorCodeUnknownError
}

// Wrap wraps err with a message, keeping its kind.
func Wrap(err error, message string) *Error {
	return &Error{
		Code:      GetErrorCode(err),
		Message:   message,
		Cause:     err,
		Context:   make(map[string]any),
		Timestamp: time.Now().Unix(),
	}
}
