// Package source holds the built-in configuration sources: YAML files,
// environment variables (optionally seeded from dotenv files) and
// command-line flags.
package source

import "github.com/skekre98/servicekit/config"

var (
	_ config.ConfigSource = (*FileSource)(nil)
	_ config.ConfigSource = (*EnvSource)(nil)
	_ config.ConfigSource = (*CLISource)(nil)
)
