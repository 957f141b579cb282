package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/skekre98/servicekit/config"
	"github.com/skekre98/servicekit/config/source"
	"github.com/skekre98/servicekit/core"
	"github.com/skekre98/servicekit/logging"
	"github.com/skekre98/servicekit/metrics"
	"github.com/skekre98/servicekit/options"
	"github.com/skekre98/servicekit/registry"
)

func main() {
	ctx := context.Background()

	// 1) config: file < env (.env first) < flags
	env := &source.EnvSource{}
	if _, err := os.Stat(".env"); err == nil {
		env.Files = []string{".env"}
	}
	loader := config.NewLoader(
		&source.FileSource{BasePath: "configs", Profile: os.Getenv(source.DefaultEnvPrefix + "APP_PROFILE")},
		env,
		&source.CLISource{},
	)
	root, err := config.LoadRoot(ctx, loader)
	if err != nil {
		panic(err)
	}

	// 2) logging
	logger := logging.New(root.Log).With(
		slog.String("app", root.App.Name),
		slog.String("version", root.App.Version),
	)

	// 3) global configuration goes first, before any registration
	reg := registry.New()
	global, err := config.Bind[options.GlobalOptions](ctx, loader, "global")
	if err != nil {
		panic(err)
	}
	if err := registry.Initialize(reg.Guard(), "", global); err != nil {
		panic(err)
	}

	// 4) metrics
	promReg := prometheus.NewRegistry()
	recorder, err := metrics.NewRecorder(promReg)
	if err != nil {
		panic(err)
	}

	// 5) compose and run
	app := core.NewApp(reg, logger, &directoryModule{
		loader:   loader,
		logger:   logger,
		recorder: recorder,
		gatherer: promReg,
	})
	if err := app.Run(ctx); err != nil {
		logger.Error("app error", "error", err)
		os.Exit(1)
	}
}
