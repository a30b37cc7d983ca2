package domain

import (
	"errors"
	"fmt"
)

// ErrInvariant marks every fatal (programmer-error) condition.
var ErrInvariant = errors.New("cells invariant violated")

// Fatal conditions. They are always wrapped in an *InvariantError.
var (
	ErrAlreadyAlive    = errors.New("organism already alive")
	ErrApoptotic       = errors.New("organism went through apoptosis")
	ErrNotAlive        = errors.New("api calls are only allowed on a living organism")
	ErrReadOnly        = errors.New("config is read-only")
	ErrMissingConfig   = errors.New("missing required config")
	ErrInvalidConfig   = errors.New("invalid config")
	ErrInvalidState    = errors.New("invalid initial state")
	ErrInhibited       = errors.New("inhibitor activated")
	ErrProbeFailed     = errors.New("probe failed")
	ErrInhibitorFailed = errors.New("inhibitor failed")
	ErrUnknownSlot     = errors.New("unknown endo slot")
	ErrAlreadyAbsorbed = errors.New("organism already absorbed by a host")
	ErrNotObservable   = errors.New("attribute is not observable")
	ErrNotExposed      = errors.New("attribute not exposed on this transport")
)

// InvariantError is a fatal failure. Kind is one of the sentinel errors
// above; Cause, when set, is the underlying failure (a probe error, a
// validation error, a recovered panic).
type InvariantError struct {
	Kind      error
	Attribute string
	Cause     error
}

func (e *InvariantError) Error() string {
	msg := "[cells] " + e.Kind.Error()
	if e.Attribute != "" {
		msg += fmt.Sprintf(" (%s)", e.Attribute)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap exposes ErrInvariant, the specific kind and the cause.
func (e *InvariantError) Unwrap() []error {
	errs := []error{ErrInvariant, e.Kind}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// Invariant builds an InvariantError.
func Invariant(kind error, attribute string, cause error) *InvariantError {
	return &InvariantError{Kind: kind, Attribute: attribute, Cause: cause}
}

// IsFatal reports whether err belongs to the fatal tier.
func IsFatal(err error) bool {
	return errors.Is(err, ErrInvariant)
}
