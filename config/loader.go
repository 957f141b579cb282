package config

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/skekre98/servicekit/registry"
)

// Loader merges its sources into one tree. Sources are applied in order, so
// with [file, env, cli] a flag overrides an environment variable, which
// overrides the file. Nested maps merge key by key; any other value replaces
// what was there. Keys match case-insensitively, so GLOBAL_USELOGGER from the
// environment lands on useLogger from a file.
type Loader struct {
	sources []ConfigSource
	binder  *Binder

	mu     sync.RWMutex
	merged map[string]any
	loaded bool
}

func NewLoader(sources ...ConfigSource) *Loader {
	return &Loader{
		sources: sources,
		binder:  NewBinder(),
	}
}

// Load reads every source and replaces the merged tree. On error the previous
// tree is kept.
func (l *Loader) Load(ctx context.Context) error {
	merged := map[string]any{}
	for _, src := range l.sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		vals, err := src.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load config from %s: %w", src.Name(), err)
		}
		mergeMaps(merged, vals)
	}

	l.mu.Lock()
	l.merged = merged
	l.loaded = true
	l.mu.Unlock()
	return nil
}

// Section returns a copy of the subtree at a dotted path such as
// "containers.users". The empty path is the whole tree. A missing path yields
// an empty map; a path that runs into a scalar is an error.
func (l *Loader) Section(ctx context.Context, path string) (map[string]any, error) {
	if err := l.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	cur := l.merged
	if path != "" {
		for _, seg := range strings.Split(path, ".") {
			next, ok := cur[matchKey(cur, seg)]
			if !ok {
				return map[string]any{}, nil
			}
			m, ok := next.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("config section %q: %s is %T, not a map", path, seg, next)
			}
			cur = m
		}
	}
	return deepCopy(cur), nil
}

// Decode binds the section at path into target and validates it.
func (l *Loader) Decode(ctx context.Context, path string, target any) error {
	section, err := l.Section(ctx, path)
	if err != nil {
		return err
	}
	if err := l.binder.Bind(section, target); err != nil {
		return fmt.Errorf("config section %q: %w", path, err)
	}
	return nil
}

func (l *Loader) ensureLoaded(ctx context.Context) error {
	l.mu.RLock()
	loaded := l.loaded
	l.mu.RUnlock()
	if loaded {
		return nil
	}
	return l.Load(ctx)
}

// Bind returns a registry builder that decodes the section at path over the
// value the registry hands it. Defaults applied before the builder runs are
// kept for keys the section does not set; validation is left to the registry.
func Bind[T any](ctx context.Context, l *Loader, path string) (registry.Builder[T], error) {
	section, err := l.Section(ctx, path)
	if err != nil {
		return nil, err
	}
	return func(v *T) error {
		if err := l.binder.Decode(section, v); err != nil {
			return fmt.Errorf("config section %q: %w", path, err)
		}
		return nil
	}, nil
}

func mergeMaps(dst, src map[string]any) {
	for k, v := range src {
		k = matchKey(dst, k)
		if mv, ok := v.(map[string]any); ok {
			if existing, ok := dst[k].(map[string]any); ok {
				mergeMaps(existing, mv)
				continue
			}
			dst[k] = deepCopy(mv)
			continue
		}
		dst[k] = v
	}
}

func deepCopy(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			out[k] = deepCopy(nested)
			continue
		}
		out[k] = v
	}
	return out
}

// matchKey returns the key of m equal to k under case folding, or k itself.
func matchKey(m map[string]any, k string) string {
	if _, ok := m[k]; ok {
		return k
	}
	for existing := range m {
		if strings.EqualFold(existing, k) {
			return existing
		}
	}
	return k
}
