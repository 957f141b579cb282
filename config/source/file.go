package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileSource loads application.yaml (or .yml) from BasePath and, when Profile
// is set, overlays application.<Profile>.yaml on top of it. The overlay merges
// nested maps key by key. A missing profile file is skipped; a malformed one
// is an error.
//
//	configs/
//	  application.yaml
//	  application.prod.yaml
type FileSource struct {
	BasePath string
	Profile  string
}

func (f *FileSource) Name() string { return "file" }

// Load returns an error wrapping os.ErrNotExist when the base file is missing.
func (f *FileSource) Load(ctx context.Context) (map[string]any, error) {
	baseFile := findYAMLFile(f.BasePath, "application")
	if baseFile == "" {
		return nil, fmt.Errorf("application.yaml in %q: %w", f.BasePath, os.ErrNotExist)
	}

	data, err := readYAML(baseFile)
	if err != nil {
		return nil, err
	}

	if f.Profile != "" {
		if profileFile := findYAMLFile(f.BasePath, "application."+f.Profile); profileFile != "" {
			overlay, err := readYAML(profileFile)
			if err != nil {
				return nil, err
			}
			overlayMaps(data, overlay)
		}
	}
	return data, nil
}

func findYAMLFile(dir, basename string) string {
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(dir, basename+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

func readYAML(path string) (map[string]any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := yaml.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return out, nil
}

func overlayMaps(dst, src map[string]any) {
	for k, v := range src {
		if sv, ok := v.(map[string]any); ok {
			if dv, ok := dst[k].(map[string]any); ok {
				overlayMaps(dv, sv)
				continue
			}
		}
		dst[k] = v
	}
}
