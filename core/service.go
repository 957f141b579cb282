package core

import (
	"io"
	"log/slog"
	"reflect"
)

// Service is the base capability every registered service satisfies.
type Service interface {
	ServiceName() string
}

// ServiceContainer is the capability of keyed service containers.
type ServiceContainer interface {
	ContainerName() string
	Count() int
	Close() error
}

var (
	serviceMarker   = reflect.TypeFor[Service]()
	containerMarker = reflect.TypeFor[ServiceContainer]()
)

// Lifetime controls how long a resolved instance is shared.
type Lifetime int

const (
	// Transient builds a new instance on every resolution.
	Transient Lifetime = iota
	// Scoped shares one instance per Scope.
	Scoped
	// Singleton shares one instance per Provider.
	Singleton
)

func (l Lifetime) String() string {
	switch l {
	case Transient:
		return "transient"
	case Scoped:
		return "scoped"
	case Singleton:
		return "singleton"
	default:
		return "unknown"
	}
}

// CheckLogger fails when logging is enabled for owner but no logger was supplied.
func CheckLogger(logger *slog.Logger, enabled bool, owner string) error {
	if enabled && logger == nil {
		return &LoggerRequiredButMissingError{Owner: owner}
	}
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
