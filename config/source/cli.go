package source

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"
)

// CLISource loads dotted command-line flags:
//
//	--global.useLogger=false --containers.users.name users
//	  -> {global: {useLogger: "false"}, containers: {users: {name: "users"}}}
//
// Both --flag=value and --flag value work, single-dash long flags are
// accepted, and empty values and positional arguments are ignored. Args
// defaults to os.Args[1:].
type CLISource struct {
	Args []string
}

func (c *CLISource) Name() string { return "cli" }

func (c *CLISource) Load(ctx context.Context) (map[string]any, error) {
	args := c.Args
	if args == nil {
		args = os.Args[1:]
	}
	return parseCliFlags(args), nil
}

func parseCliFlags(raw []string) map[string]any {
	result := make(map[string]any)
	fs := pflag.NewFlagSet("config", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)

	args := normalizeArgs(raw)
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}
		name := extractFlagName(arg)
		if name == "" {
			continue
		}
		if fs.Lookup(name) == nil {
			fs.String(name, "", fmt.Sprintf("config value for %s", name))
		}
		if !strings.Contains(arg, "=") && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			i++
		}
	}

	_ = fs.Parse(args)

	fs.Visit(func(flag *pflag.Flag) {
		value := flag.Value.String()
		if value == "" {
			return
		}
		setNestedValue(result, strings.Split(flag.Name, "."), value)
	})
	return result
}

// normalizeArgs turns single-dash long flags into double-dash ones for pflag.
func normalizeArgs(args []string) []string {
	normalized := make([]string, len(args))
	for i, arg := range args {
		normalized[i] = arg
		if strings.HasPrefix(arg, "-") && !strings.HasPrefix(arg, "--") {
			rest := strings.TrimPrefix(arg, "-")
			if len(rest) > 1 && rest[0] != '=' {
				normalized[i] = "-" + arg
			}
		}
	}
	return normalized
}

func extractFlagName(arg string) string {
	arg = strings.TrimLeft(arg, "-")
	name, _, _ := strings.Cut(arg, "=")
	return name
}
