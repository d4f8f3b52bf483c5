package capability

import (
	"errors"
	"fmt"
)

// Sentinel errors for the capability error taxonomy. Typed errors below
// implement Is so callers can match with errors.Is and still read details
// with errors.As.
var (
	// ErrUnconfigured is returned when no provider is bound for the
	// capability kind a call was dispatched to.
	ErrUnconfigured = errors.New("capability not configured")

	// ErrNotFound is returned when an entity is absent and the contract does
	// not normalize absence into a boolean or empty result.
	ErrNotFound = errors.New("not found")

	// ErrTimeout is returned when a provider-declared timeout elapsed.
	ErrTimeout = errors.New("timeout elapsed")

	// ErrMalformed is returned for structurally invalid caller input.
	ErrMalformed = errors.New("malformed input")
)

// UnconfiguredError reports a call on a capability kind with no bound
// provider. The message deliberately mirrors what the guest sees, so
// unconfigured capabilities and backend faults stay indistinguishable beyond
// message text across the sandbox boundary.
type UnconfiguredError struct {
	Interface string
	Method    string
}

func (e *UnconfiguredError) Error() string {
	return fmt.Sprintf("cannot handle `%s`: %s is not configured", e.Method, e.Interface)
}

// Is allows errors.Is(err, ErrUnconfigured).
func (e *UnconfiguredError) Is(target error) bool {
	return target == ErrUnconfigured
}

// NotFoundError reports an absent container, object, or key on an operation
// that fails on absence.
type NotFoundError struct {
	Kind string // "container", "object", "key"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Name)
}

// Is allows errors.Is(err, ErrNotFound).
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// TimeoutError reports a provider-local timeout.
type TimeoutError struct {
	Op      string
	Elapsed string
}

func (e *TimeoutError) Error() string {
	if e.Elapsed == "" {
		return fmt.Sprintf("%s: timeout elapsed", e.Op)
	}
	return fmt.Sprintf("%s: timeout elapsed after %s", e.Op, e.Elapsed)
}

// Is allows errors.Is(err, ErrTimeout).
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// opError wraps a backend fault with call-specific context. The cause chain
// stays reachable through errors.Unwrap.
func opError(op, msg string, err error) error {
	return fmt.Errorf("%s: %s: %w", op, msg, err)
}
