// Package options defines the capability interfaces that configuration values
// implement and the option types shipped with servicekit.
//
// Custom option types opt into a role by embedding one of the concrete types:
//
//	type AppGlobals struct {
//	    options.GlobalOptions `config:",squash"`
//	    Region string `config:"region" validate:"required"`
//	}
package options

import "github.com/skekre98/servicekit/logging"

// Options is the base capability for every configuration value. OptionName
// returns the name the value wants to be registered under, or "" to let the
// registry pick one.
type Options interface {
	OptionName() string
}

// LoggerToggle is implemented by options that carry a UseLogger flag.
type LoggerToggle interface {
	LoggerEnabled() bool
}

// Global marks the process-wide configuration. It can only be satisfied by
// embedding GlobalOptions.
type Global interface {
	Options
	LoggerToggle
	isGlobal()
}

// Defaulter is implemented by option types that need non-zero defaults before
// a builder runs.
type Defaulter interface {
	SetDefaults()
}

// GlobalOptions is the default global configuration.
type GlobalOptions struct {
	Name      string `config:"name"`
	UseLogger bool   `config:"useLogger"`
}

func (o GlobalOptions) OptionName() string  { return o.Name }
func (o GlobalOptions) LoggerEnabled() bool { return o.UseLogger }
func (GlobalOptions) isGlobal()             {}

// ServiceOptions configures a single service registered through core.
type ServiceOptions struct {
	Name      string `config:"name"`
	UseLogger bool   `config:"useLogger"`
}

func (o ServiceOptions) OptionName() string  { return o.Name }
func (o ServiceOptions) LoggerEnabled() bool { return o.UseLogger }

// ContainerOptions configures a keyed service container.
type ContainerOptions struct {
	Name      string         `config:"name"`
	UseLogger bool           `config:"useLogger"`
	Logging   logging.Policy `config:"logging"`
}

func (o ContainerOptions) OptionName() string  { return o.Name }
func (o ContainerOptions) LoggerEnabled() bool { return o.UseLogger }

// SetDefaults installs the default logging policy.
func (o *ContainerOptions) SetDefaults() {
	o.Logging = logging.DefaultPolicy()
}
