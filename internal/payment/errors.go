package payment

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState is returned when an action is not allowed in the current state.
	ErrInvalidState = errors.New("action not allowed in current payment state")
	// ErrSuperseded is returned by Submit when the flow was closed or reopened
	// while the registration was in flight.
	ErrSuperseded = errors.New("payment flow was closed or reopened")
)

// ValidationError is returned when a reference number is rejected before any network call.
type ValidationError struct {
	Reference string
	Message   string
	Cause     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid reference %q: %s", e.Reference, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// GatewayError wraps a failed call to the payment endpoint.
type GatewayError struct {
	Op    string
	Cause error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment %s failed: %v", e.Op, e.Cause)
}

func (e *GatewayError) Unwrap() error {
	return e.Cause
}
