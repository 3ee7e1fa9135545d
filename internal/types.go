// internal/types.go - Common types for internal packages
package internal

import (
	"errors"
)

// Sentinel errors for registry facts. Coded errors below match them via errors.Is.
var (
	ErrDuplicateLayer = errors.New("duplicate layer")
	ErrLayerNotFound  = errors.New("layer not found")
)

// Error represents application-specific errors
type Error struct {
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is/As
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is the sentinel associated with this error's code
func (e *Error) Is(target error) bool {
	switch e.Code {
	case ErrorCodeDuplicateLayer:
		return target == ErrDuplicateLayer
	case ErrorCodeLayerNotFound:
		return target == ErrLayerNotFound
	}
	return false
}

// NewError creates a new application error
func NewError(code, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none
func CodeOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// ErrorCode constants for common error types
const (
	ErrorCodeSingularTransform   = "SINGULAR_TRANSFORM"
	ErrorCodeDuplicateLayer      = "DUPLICATE_LAYER"
	ErrorCodeLayerNotFound       = "LAYER_NOT_FOUND"
	ErrorCodeUnsupportedGeometry = "UNSUPPORTED_GEOMETRY"
	ErrorCodeGeometryTooDeep     = "GEOMETRY_TOO_DEEP"
	ErrorCodeProcessing          = "PROCESSING_ERROR"
	ErrorCodeValidation          = "VALIDATION_ERROR"
	ErrorCodeConfig              = "CONFIG_ERROR"
	ErrorCodeFileSystem          = "FILESYSTEM_ERROR"
	ErrorCodeUnsupportedFormat   = "UNSUPPORTED_FORMAT"
)
