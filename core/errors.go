package core

import (
	"errors"
	"fmt"
	"strings"
)

// ErrScopeClosed is returned when resolving from a closed scope or provider.
var ErrScopeClosed = errors.New("core: scope closed")

// InvalidTypeRelationshipError reports a capability/implementation pair that
// cannot be registered.
type InvalidTypeRelationshipError struct {
	Capability     string
	Implementation string
	Reason         string
}

func (e *InvalidTypeRelationshipError) Error() string {
	return fmt.Sprintf("invalid registration %s -> %s: %s", e.Capability, e.Implementation, e.Reason)
}

// LoggerRequiredButMissingError reports UseLogger enabled without a logger.
type LoggerRequiredButMissingError struct {
	Owner string
}

func (e *LoggerRequiredButMissingError) Error() string {
	return fmt.Sprintf("%s: logger required but missing; set UseLogger to false if no logging is wanted", e.Owner)
}

// ServiceNotRegisteredError represents a missing registration.
type ServiceNotRegisteredError struct {
	Type string
}

func (e *ServiceNotRegisteredError) Error() string {
	return fmt.Sprintf("no service registered for type: %s", e.Type)
}

// CircularDependencyError represents a resolution cycle.
type CircularDependencyError struct {
	Chain []string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency detected: %s", strings.Join(e.Chain, " -> "))
}

// InitializationError represents a factory failure.
type InitializationError struct {
	Type string
	Err  error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("initialization failed for type %s: %v", e.Type, e.Err)
}

func (e *InitializationError) Unwrap() error {
	return e.Err
}

// TypeMismatchError represents a resolved value of an unexpected type.
type TypeMismatchError struct {
	Expected string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: expected %s, got %s", e.Expected, e.Got)
}
