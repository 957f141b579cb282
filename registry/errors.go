package registry

import (
	"errors"
	"fmt"
)

// ErrNotInitialized is returned when the active global configuration is
// requested before the guard has been advanced.
var ErrNotInitialized = errors.New("registry: global configuration not initialized")

// DuplicateConfigurationError reports a second registration for a (type, name) pair.
type DuplicateConfigurationError struct {
	Type string
	Name string
}

func (e *DuplicateConfigurationError) Error() string {
	return fmt.Sprintf("configuration %s already registered for type %s", e.Name, e.Type)
}

// ConfigurationNotFoundError reports a lookup for a (type, name) pair with no slot.
type ConfigurationNotFoundError struct {
	Type string
	Name string
}

func (e *ConfigurationNotFoundError) Error() string {
	return fmt.Sprintf("no configuration %s registered for type %s", e.Name, e.Type)
}

// InvalidConfigurationError wraps a builder or validation failure.
type InvalidConfigurationError struct {
	Type string
	Name string
	Err  error
}

func (e *InvalidConfigurationError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("invalid configuration for type %s: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("invalid configuration %s for type %s: %v", e.Name, e.Type, e.Err)
}

func (e *InvalidConfigurationError) Unwrap() error {
	return e.Err
}

// AlreadyInitializedError reports a second global configuration setup.
type AlreadyInitializedError struct {
	Active string
}

func (e *AlreadyInitializedError) Error() string {
	return fmt.Sprintf("global configuration already initialized as %s", e.Active)
}

// UnsafeInitializationOrderError reports a global configuration slot that was
// registered without going through the guard.
type UnsafeInitializationOrderError struct {
	Type string
	Name string
}

func (e *UnsafeInitializationOrderError) Error() string {
	return fmt.Sprintf("global configuration %s of type %s was registered outside the guarded setup", e.Name, e.Type)
}
