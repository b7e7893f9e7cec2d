package solver

import (
	"errors"
	"fmt"
)

// tooBusyError signals admission queue timeout or overflow (HTTP 429).
type tooBusyError struct{ backend string }

func (e tooBusyError) Error() string { return "too busy: " + e.backend }

// ErrTooBusy constructs a tooBusyError.
func ErrTooBusy(backend string) error { return tooBusyError{backend: backend} }

// IsTooBusy reports whether err indicates backpressure.
func IsTooBusy(err error) bool {
	var e tooBusyError
	return errors.As(err, &e)
}

// unknownBackendError is returned when a solve names an unregistered backend.
type unknownBackendError struct{ name string }

func (e unknownBackendError) Error() string { return "unknown backend: " + e.name }

// ErrUnknownBackend constructs an unknownBackendError.
func ErrUnknownBackend(name string) error { return unknownBackendError{name: name} }

// IsUnknownBackend reports whether err names an unregistered backend.
func IsUnknownBackend(err error) bool {
	var e unknownBackendError
	return errors.As(err, &e)
}

// invalidOptionsError rejects a SolveOptions combination before any work starts.
type invalidOptionsError struct{ msg string }

func (e invalidOptionsError) Error() string { return "invalid options: " + e.msg }

// ErrInvalidOptions constructs an invalidOptionsError.
func ErrInvalidOptions(msg string) error { return invalidOptionsError{msg: msg} }

// IsInvalidOptions reports whether err rejects the solve options.
func IsInvalidOptions(err error) bool {
	var e invalidOptionsError
	return errors.As(err, &e)
}

// backendError wraps a failure raised inside an engine call. It never reaches
// Solve callers; the driver turns it into an Unknown solution.
type backendError struct {
	backend string
	err     error
}

func (e backendError) Error() string { return fmt.Sprintf("backend %s: %v", e.backend, e.err) }

func (e backendError) Unwrap() error { return e.err }

// IsBackendError reports whether err originated inside an engine call.
func IsBackendError(err error) bool {
	var e backendError
	return errors.As(err, &e)
}

// errNativeUnsupported is returned by sessions without native optimization.
var errNativeUnsupported = errors.New("native optimization not supported")
