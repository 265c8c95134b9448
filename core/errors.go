package core

import (
	"errors"
	"fmt"
)

// ConfigurationError reports an invalid intent→type mapping. It is fatal only
// to the registration call that produced it.
type ConfigurationError struct {
	Intent string
	Type   HandlerType
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid mapping %q -> %q: %s", e.Intent, e.Type, e.Reason)
}

// HandlerConstructionError reports that a handler failed to initialize after
// all construction attempts.
type HandlerConstructionError struct {
	Type     HandlerType
	Attempts int
	Err      error
}

func (e *HandlerConstructionError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("construct handler %s (after %d attempts): %v", e.Type, e.Attempts, e.Err)
	}
	return fmt.Sprintf("construct handler %s: %v", e.Type, e.Err)
}

func (e *HandlerConstructionError) Unwrap() error { return e.Err }

// UnknownHandlerType describes a type that no table knows. It is only ever
// logged: the factory substitutes the fallback type instead of failing.
type UnknownHandlerType struct {
	Type     HandlerType
	Fallback HandlerType
}

func (e *UnknownHandlerType) Error() string {
	return fmt.Sprintf("unknown handler type %q, using %q", e.Type, e.Fallback)
}

// DomainProcessingError is a handler's own business-logic failure, e.g. an
// upstream service being unavailable. UserMessage, when set, replaces the
// router's generic apology.
type DomainProcessingError struct {
	Handler     HandlerType
	Message     string
	UserMessage string
	Err         error
}

// NewDomainError builds a DomainProcessingError wrapping err.
func NewDomainError(handler HandlerType, msg string, err error) *DomainProcessingError {
	return &DomainProcessingError{Handler: handler, Message: msg, Err: err}
}

func (e *DomainProcessingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Handler, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Handler, e.Message)
}

func (e *DomainProcessingError) Unwrap() error { return e.Err }

// UnexpectedError wraps an uncategorized failure, including recovered panics.
type UnexpectedError struct {
	Err   error
	Panic any
}

func (e *UnexpectedError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("unexpected panic: %v", e.Panic)
	}
	return fmt.Sprintf("unexpected error: %v", e.Err)
}

func (e *UnexpectedError) Unwrap() error { return e.Err }

// ErrBudgetExhausted is returned by CallBudget.Spend once the limit is reached.
var ErrBudgetExhausted = errors.New("call budget exhausted")

// IsDomainError reports whether err is (or wraps) a DomainProcessingError.
func IsDomainError(err error) bool {
	var de *DomainProcessingError
	return errors.As(err, &de)
}
