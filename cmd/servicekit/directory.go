package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/skekre98/servicekit/config"
	"github.com/skekre98/servicekit/container"
	"github.com/skekre98/servicekit/core"
	"github.com/skekre98/servicekit/metrics"
	"github.com/skekre98/servicekit/options"
	"github.com/skekre98/servicekit/registry"
)

// Notifier delivers a message to one recipient.
type Notifier interface {
	core.Service
	Notify(ctx context.Context, msg string) error
}

type emailNotifier struct {
	core.Base
	addr string
}

func (n *emailNotifier) Notify(ctx context.Context, msg string) error {
	n.Log(ctx, slog.LevelInfo, "notification sent", "to", n.addr, "msg", msg)
	return nil
}

type notifierDirectory = container.Container[string, Notifier]

const directoryName = "notifiers"

// directoryModule wires a keyed notifier container and exercises it on start.
type directoryModule struct {
	loader   *config.Loader
	logger   *slog.Logger
	recorder *metrics.Recorder
	gatherer prometheus.Gatherer
}

func (m *directoryModule) Name() string        { return "directory" }
func (m *directoryModule) DependsOn() []string { return nil }

func (m *directoryModule) Configure(c *core.Collection) error {
	ctx := context.Background()
	reg := c.Registry()

	svcOpts, err := config.Bind[options.ServiceOptions](ctx, m.loader, "services.emailNotifier")
	if err != nil {
		return err
	}
	err = core.AddTransient[Notifier](c, func(core.Resolver) (*emailNotifier, error) {
		base, err := core.NewBaseFor[emailNotifier](reg, m.logger)
		if err != nil {
			return nil, err
		}
		return &emailNotifier{Base: base}, nil
	}, core.WithOptions(svcOpts))
	if err != nil {
		return err
	}

	// containers look their options up under their own name
	dirOpts, err := config.Bind[options.ContainerOptions](ctx, m.loader, "containers."+directoryName)
	if err != nil {
		return err
	}
	if _, err := registry.Register(reg.Store(), directoryName, dirOpts); err != nil {
		return err
	}
	return core.AddContainer[*notifierDirectory](c, func(core.Resolver) (*notifierDirectory, error) {
		return container.New[string, Notifier](reg, m.logger,
			container.WithName(directoryName),
			container.WithRecorder(m.recorder),
		)
	})
}

func (m *directoryModule) Start(ctx context.Context, r core.Resolver) error {
	dir, err := core.Resolve[*notifierDirectory](r)
	if err != nil {
		return err
	}

	for _, addr := range []string{"ops@example.com", "dev@example.com"} {
		n, err := core.Resolve[Notifier](r)
		if err != nil {
			return err
		}
		n.(*emailNotifier).addr = addr
		dir.Add(addr, n)
	}
	dir.Add("ops@example.com", nil)

	if n, ok := dir.Get("ops@example.com"); ok {
		if err := n.Notify(ctx, "directory ready"); err != nil {
			return err
		}
	}
	dir.AnyByKey("nobody@example.com")
	dir.Remove("dev@example.com")

	m.logger.Info("directory started", "entries", dir.Count(), "keys", dir.Keys())
	return nil
}

func (m *directoryModule) Stop(ctx context.Context, r core.Resolver) error {
	families, err := m.gatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		m.logger.Info("metric", "name", mf.GetName(), "series", len(mf.GetMetric()))
	}
	return nil
}
