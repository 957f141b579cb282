package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/skekre98/servicekit/registry"
)

// ShutdownTimeout bounds the Stop phase of Run.
var ShutdownTimeout = 15 * time.Second

type App struct {
	Modules  []Module
	Services *Collection
	Logger   *slog.Logger
}

func NewApp(reg *registry.Registry, logger *slog.Logger, mods ...Module) *App {
	if logger == nil {
		logger = discardLogger()
	}
	return &App{
		Modules:  mods,
		Services: NewCollection(reg, logger),
		Logger:   logger,
	}
}

// Run configures, starts and, after ctx is done or a signal arrives, stops the
// modules. The provider is closed last.
func (a *App) Run(ctx context.Context) error {
	// 1) Order modules by dependencies
	order, err := topoSort(a.Modules)
	if err != nil {
		return err
	}

	// 2) Configure, then freeze the registrations
	for _, m := range order {
		if err := m.Configure(a.Services); err != nil {
			return fmt.Errorf("configure module %s: %w", m.Name(), err)
		}
	}
	provider := a.Services.Build()

	// 3) Start in order; on failure unwind what already started
	started := 0
	for _, m := range order {
		a.Logger.Info("starting module", "module", m.Name())
		if err := m.Start(ctx, provider); err != nil {
			stopErr := a.stop(order[:started], provider)
			return errors.Join(fmt.Errorf("start module %s: %w", m.Name(), err), stopErr, provider.Close())
		}
		started++
	}

	// 4) Wait for signal, then stop in reverse order
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)
	select {
	case <-ctx.Done():
	case <-stop:
	}

	return errors.Join(a.stop(order, provider), provider.Close())
}

func (a *App) stop(order []Module, r Resolver) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	var firstErr error
	for i := len(order) - 1; i >= 0; i-- {
		m := order[i]
		a.Logger.Info("stopping module", "module", m.Name())
		if err := m.Stop(shutdownCtx, r); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("stop module %s: %w", m.Name(), err)
		}
	}
	return firstErr
}

func topoSort(mods []Module) ([]Module, error) {
	nameToMod := map[string]Module{}
	for _, m := range mods {
		if _, dup := nameToMod[m.Name()]; dup {
			return nil, fmt.Errorf("duplicate module name: %s", m.Name())
		}
		nameToMod[m.Name()] = m
	}
	visited := map[string]bool{}
	temp := map[string]bool{}
	var out []Module
	var visit func(string) error

	visit = func(n string) error {
		if temp[n] {
			return fmt.Errorf("cycle detected at module %s", n)
		}
		if visited[n] {
			return nil
		}
		temp[n] = true
		for _, d := range nameToMod[n].DependsOn() {
			if _, ok := nameToMod[d]; !ok {
				return fmt.Errorf("missing dependency: %s depends on %s", n, d)
			}
			if err := visit(d); err != nil {
				return err
			}
		}
		visited[n] = true
		temp[n] = false
		out = append(out, nameToMod[n])
		return nil
	}

	// Make iteration order stable.
	names := make([]string, 0, len(mods))
	for _, m := range mods {
		names = append(names, m.Name())
	}
	sort.Strings(names)

	for _, n := range names {
		if err := visit(n); err != nil {
			return nil, err
		}
	}
	return out, nil
}
