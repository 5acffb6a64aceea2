package gesture

import (
	"errors"
	"fmt"
)

var (
	// ErrInputRead is reported when the sampler fails to read the line.
	ErrInputRead = errors.New("input read failed")

	// ErrHandler is reported when a registered handler fails or panics.
	ErrHandler = errors.New("gesture handler failed")

	// ErrSinkDelivery is reported when the default sink cannot deliver.
	ErrSinkDelivery = errors.New("gesture delivery failed")

	ErrAlreadyStarted  = errors.New("engine already started")
	ErrInvalidDuration = errors.New("duration must be positive")
	ErrNilSampler      = errors.New("sampler cannot be nil")
)

// Error carries the failing button and gesture along with the cause.
// It matches both its Kind and its Err with errors.Is.
type Error struct {
	Kind    error
	Type    Type
	Source  string
	Err     error
	hasType bool
}

func (e *Error) Error() string {
	if e.hasType {
		return fmt.Sprintf("%s: %s %s: %v", e.Kind, e.Source, e.Type, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Source, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func newError(kind error, source string, err error) *Error {
	return &Error{Kind: kind, Source: source, Err: err}
}

func newGestureError(kind error, t Type, source string, err error) *Error {
	return &Error{Kind: kind, Type: t, Source: source, Err: err, hasType: true}
}
