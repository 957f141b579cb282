package source

import (
	"context"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultEnvPrefix is used when EnvSource.Prefix is empty.
const DefaultEnvPrefix = "SERVICEKIT_"

// EnvSource loads prefixed environment variables, nesting on underscores:
//
//	SERVICEKIT_GLOBAL_USELOGGER=false       -> {global: {uselogger: "false"}}
//	SERVICEKIT_CONTAINERS_USERS_NAME=users  -> {containers: {users: {name: "users"}}}
//
// Keys are lowercased; the binder matches them to `config` tags regardless of
// case. Values stay strings until binding.
//
// Files lists dotenv files read before the process environment. A variable set
// in the environment wins over the same variable in a file. A missing file is
// an error.
//
// When a leaf is already set at a path, deeper variables under it are
// skipped: with SERVICEKIT_DB=x, SERVICEKIT_DB_HOST is ignored.
type EnvSource struct {
	Prefix string
	Files  []string
}

func (e *EnvSource) Name() string { return "env" }

func (e *EnvSource) Load(ctx context.Context) (map[string]any, error) {
	vars := map[string]string{}
	if len(e.Files) > 0 {
		fromFiles, err := godotenv.Read(e.Files...)
		if err != nil {
			return nil, err
		}
		vars = fromFiles
	}
	for _, line := range os.Environ() {
		if key, value, ok := parseEnvLine(line); ok {
			vars[key] = value
		}
	}
	return nestEnv(vars, e.prefix()), nil
}

func (e *EnvSource) prefix() string {
	if e.Prefix == "" {
		return DefaultEnvPrefix
	}
	return e.Prefix
}

func nestEnv(vars map[string]string, prefix string) map[string]any {
	result := make(map[string]any)
	for key, value := range vars {
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		key = strings.ToLower(strings.TrimPrefix(key, prefix))
		setNestedValue(result, strings.Split(key, "_"), value)
	}
	return result
}

func parseEnvLine(env string) (string, string, bool) {
	key, value, found := strings.Cut(env, "=")
	if !found || key == "" {
		return "", "", false
	}
	return key, value, true
}

func setNestedValue(m map[string]any, segments []string, value string) {
	current := m

	for i, segment := range segments {
		if segment == "" {
			continue
		}

		if i == len(segments)-1 {
			current[segment] = value
			return
		}

		existing, exists := current[segment]
		if !exists {
			nested := make(map[string]any)
			current[segment] = nested
			current = nested
			continue
		}
		nested, ok := existing.(map[string]any)
		if !ok {
			// a leaf already owns this path
			return
		}
		current = nested
	}
}
