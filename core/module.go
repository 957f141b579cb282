package core

import "context"

// Module is a unit of capability that participates in the app lifecycle.
type Module interface {
	Name() string
	// DependsOn declares hard dependencies by module name.
	DependsOn() []string
	// Configure registers configuration and services.
	Configure(c *Collection) error
	// Start begins any long-running work against the built provider.
	Start(ctx context.Context, r Resolver) error
	// Stop gracefully stops the module.
	Stop(ctx context.Context, r Resolver) error
}
