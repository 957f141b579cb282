package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/skekre98/servicekit/options"
	"github.com/skekre98/servicekit/registry"
)

// Base is embedded by services to get a name, the effective UseLogger flag
// and a logger that is only consulted when logging is on.
//
// The flag comes from the active global configuration and is overridden by
// options.ServiceOptions registered under the service name.
type Base struct {
	name      string
	useLogger bool
	logger    *slog.Logger
	global    options.Global
}

// NewBase resolves the configuration for the service called name.
func NewBase(reg *registry.Registry, name string, logger *slog.Logger) (Base, error) {
	if err := reg.Guard().EnsureInitialized(); err != nil {
		return Base{}, fmt.Errorf("ensure global configuration: %w", err)
	}
	global, err := reg.Guard().Global()
	if err != nil {
		return Base{}, fmt.Errorf("resolve global configuration: %w", err)
	}

	b := Base{name: name, useLogger: global.LoggerEnabled(), logger: logger, global: global}

	cfg, err := registry.Resolve[options.ServiceOptions](reg.Store(), name)
	var nf *registry.ConfigurationNotFoundError
	switch {
	case err == nil:
		b.useLogger = cfg.UseLogger
	case !errors.As(err, &nf):
		return Base{}, err
	}

	if err := CheckLogger(logger, b.useLogger, name); err != nil {
		return Base{}, err
	}
	return b, nil
}

// NewBaseFor is NewBase named after the implementation type T, matching the
// slot WithOptions registers into.
func NewBaseFor[T any](reg *registry.Registry, logger *slog.Logger) (Base, error) {
	return NewBase(reg, registry.TypeName(reflect.TypeFor[T]()), logger)
}

func (b Base) ServiceName() string { return b.name }

func (b Base) UseLogger() bool { return b.useLogger }

// Global returns the global configuration the service was built with.
func (b Base) Global() options.Global { return b.global }

// Log emits a record when logging is enabled for the service.
func (b Base) Log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if !b.useLogger || b.logger == nil {
		return
	}
	b.logger.Log(ctx, level, msg, append([]any{"service", b.name}, args...)...)
}
