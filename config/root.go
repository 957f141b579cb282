package config

import (
	"context"

	"github.com/skekre98/servicekit/logging"
)

type AppInfo struct {
	Name    string `config:"name" validate:"required"`
	Version string `config:"version"`
	Profile string `config:"profile"`
}

// Root is the process-level configuration read before anything is registered.
// Global, service and container options live in their own sections ("global",
// "services.<name>", "containers.<name>") and are bound through Bind.
type Root struct {
	App AppInfo        `config:"app"`
	Log logging.Config `config:"log"`
}

// LoadRoot decodes the whole tree into a Root with app name and text logging
// at info as defaults.
func LoadRoot(ctx context.Context, l *Loader) (Root, error) {
	root := Root{App: AppInfo{Name: "servicekit"}, Log: logging.Config{Format: "text"}}
	if err := l.Decode(ctx, "", &root); err != nil {
		return Root{}, err
	}
	return root, nil
}
