// Package fault defines the error kinds shared by the puck-vision packages.
//
// Call sites wrap one of the sentinel errors with context using
// github.com/pkg/errors, and callers classify failures with errors.Is:
//
//	if errors.Is(err, fault.ErrInvalidArgument) {
//	    // reject the request, state is unchanged
//	}
package fault

import (
	"github.com/pkg/errors"
)

var (
	// ErrInvalidArgument reports a request value outside its accepted domain,
	// such as an unknown color preset id or an out-of-range threshold.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrIO reports a failure to read or write persistent storage.
	ErrIO = errors.New("i/o error")

	// ErrInvariantViolation reports a programming defect detected at run time,
	// such as combining planes of different dimensions.
	ErrInvariantViolation = errors.New("invariant violation")
)

// InvalidArgument returns an ErrInvalidArgument carrying a formatted message.
func InvalidArgument(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidArgument, format, args...)
}

// IO wraps err as an ErrIO. The underlying error text is kept in the message.
func IO(err error, format string, args ...interface{}) error {
	return errors.Wrapf(ErrIO, format+": %v", append(args, err)...)
}

// Invariant returns an ErrInvariantViolation carrying a formatted message.
func Invariant(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvariantViolation, format, args...)
}

// Is reports whether err matches target. It forwards to errors.Is so that
// callers only need to import this package.
func Is(err, target error) bool {
	return errors.Is(err, target)
}
