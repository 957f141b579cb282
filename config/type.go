package config

import "context"

// ConfigSource is one layer of configuration data.
//
// Load returns a string-keyed map that may nest further maps. The returned
// map belongs to the caller. Implementations should honor ctx cancellation
// when loading is slow.
type ConfigSource interface {
	Load(ctx context.Context) (map[string]any, error)
	// Name identifies the source in errors and logs, e.g. "file" or "env".
	Name() string
}
