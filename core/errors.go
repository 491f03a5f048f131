package core

import (
	"github.com/cockroachdb/errors"

	"github.com/devblok/rendersys/registry"
)

// Error taxonomy. Test with errors.Is.
var (
	// ErrInitialization means the driver connection could not be created.
	ErrInitialization = errors.New("driver connection could not be created")

	// ErrNoSuitableDevice means no physical device meets the requirements.
	ErrNoSuitableDevice = errors.New("no suitable physical device")

	// ErrDeviceCreation means the driver rejected the logical device setup.
	ErrDeviceCreation = errors.New("logical device creation failed")

	// ErrPrecondition means a call was made before something it depends on exists.
	ErrPrecondition = errors.New("precondition not met")

	// ErrUnsupported means the backend does not implement a resource kind or operation.
	ErrUnsupported = errors.New("not supported by backend")

	// ErrUseAfterRelease means a handle was used after it was released.
	ErrUseAfterRelease = registry.ErrUseAfterRelease

	// ErrInvalidState means a call was made in a state that does not allow it.
	ErrInvalidState = errors.New("invalid render system state")
)

// Outcome classifies the result of a render system call.
type Outcome int

// Outcomes
const (
	OutcomeSucceeded Outcome = iota
	OutcomeFailed
	OutcomeUnsupported
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSucceeded:
		return "succeeded"
	case OutcomeUnsupported:
		return "unsupported"
	}
	return "failed"
}

// OutcomeOf tells success, failure and unsupported operations apart.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeSucceeded
	case errors.Is(err, ErrUnsupported):
		return OutcomeUnsupported
	}
	return OutcomeFailed
}

// IsFatal reports whether err leaves the render system unusable.
func IsFatal(err error) bool {
	return errors.Is(err, ErrInitialization) ||
		errors.Is(err, ErrNoSuitableDevice) ||
		errors.Is(err, ErrDeviceCreation)
}

// IsUnsupported reports whether err only says the backend lacks a feature.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupported)
}

// UnsupportedError returns an error tagged ErrUnsupported for what.
// Backends use it for operations they do not implement.
func UnsupportedError(what string) error {
	return errors.Mark(errors.Newf("%s is not available", what), ErrUnsupported)
}

func preconditionError(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrPrecondition)
}
