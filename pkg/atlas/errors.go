package atlas

import "fmt"

// Error is the domain validation error shared by the atlas-commons packages.
// It covers malformed layer metadata, mismatched dataset properties and
// comparisons that could not be carried out at all.
type Error struct {
	Msg   string
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Msg + ": " + e.Cause.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Errorf builds a domain error from a format string.
func Errorf(format string, args ...any) *Error {
	return &Error{Msg: fmt.Sprintf(format, args...)}
}

// WrapErr builds a domain error that records cause as its origin.
func WrapErr(cause error, format string, args ...any) *Error {
	return &Error{Msg: fmt.Sprintf(format, args...), Cause: cause}
}
