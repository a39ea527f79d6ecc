// Package errors carries the coded errors of the backtest stack.
//
// Codes are grouped in ranges (see error_code.go). Callers branch on the range rather
// than on a single code: a configuration error rejects a run before its first bar, a
// data error rejects the bar series, and an insufficient data error is an indicator
// warm-up that never leaves the indicator cache.
//
//	if errors.IsRunSetupError(err) {
//		// record it on this run and keep going
//	}
package errors

import (
	"errors"
	"fmt"
)

// Error is an error with a code, a message and an optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates an Error without a cause.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message, Cause: nil}
}

// Newf creates an Error without a cause from a format string.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap creates an Error around cause.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Wrapf creates an Error around cause from a format string.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return Wrap(code, fmt.Sprintf(format, args...), cause)
}

// Error renders "[code] message" followed by the cause, if any.
func (e *Error) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("[%d] %s", e.Code, e.Message)
	}

	return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// As is errors.As, re-exported so callers importing this package need no alias.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode returns the code of the first coded error in err's chain, so the outermost
// wrap wins. Insufficient data errors report ErrCodeInsufficientData and anything else
// ErrCodeUnknown.
func GetCode(err error) ErrorCode {
	var coded *Error
	if errors.As(err, &coded) {
		return coded.Code
	}

	if IsInsufficientDataError(err) {
		return ErrCodeInsufficientData
	}

	return ErrCodeUnknown
}

// HasCode reports whether GetCode(err) is code.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// IsConfigurationError reports whether err carries a configuration error code.
func IsConfigurationError(err error) bool {
	return GetCode(err).IsConfiguration()
}

// IsRunSetupError reports whether err rejects a single run before it starts. Runs
// sharing a process with it are unaffected.
func IsRunSetupError(err error) bool {
	return GetCode(err).IsRunSetup()
}

// IsDataError reports whether err carries a data error code.
func IsDataError(err error) bool {
	return GetCode(err).IsData()
}

// InsufficientDataError is returned by an indicator that has seen fewer bars than it
// needs. The indicator cache turns it into an unavailable value.
type InsufficientDataError struct {
	Required int
	Actual   int
	Symbol   string
	Message  string
}

// NewInsufficientDataErrorf creates an InsufficientDataError from a format string.
func NewInsufficientDataErrorf(required, actual int, symbol, format string, args ...any) *InsufficientDataError {
	return &InsufficientDataError{
		Required: required,
		Actual:   actual,
		Symbol:   symbol,
		Message:  fmt.Sprintf(format, args...),
	}
}

func (e *InsufficientDataError) Error() string {
	return e.Message
}

// IsInsufficientDataError reports whether err's chain holds an InsufficientDataError.
func IsInsufficientDataError(err error) bool {
	var insufficient *InsufficientDataError

	return errors.As(err, &insufficient)
}
