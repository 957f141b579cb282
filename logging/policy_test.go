package logging_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skekre98/servicekit/logging"
)

func TestDefaultPolicy_EveryPairDefined(t *testing.T) {
	t.Parallel()

	p := logging.DefaultPolicy()
	for _, a := range []logging.Action{logging.ActionAdd, logging.ActionRemove, logging.ActionGet, logging.ActionAny} {
		for _, o := range []logging.Outcome{logging.Success, logging.Failure} {
			msg, ok := p.Resolve(a, o)
			require.Truef(t, ok, "%s/%s not defined", a, o)
			assert.NotEmptyf(t, msg.Template, "%s/%s has empty template", a, o)
			assert.Containsf(t, msg.Template, logging.DefaultPlaceholder, "%s/%s", a, o)
		}
	}
}

func TestPolicy_ResolveLevels(t *testing.T) {
	t.Parallel()

	p := logging.DefaultPolicy()
	tests := []struct {
		action  logging.Action
		outcome logging.Outcome
		want    slog.Level
	}{
		{logging.ActionAdd, logging.Success, slog.LevelInfo},
		{logging.ActionAdd, logging.Failure, slog.LevelError},
		{logging.ActionRemove, logging.Success, slog.LevelWarn},
		{logging.ActionRemove, logging.Failure, slog.LevelError},
		{logging.ActionGet, logging.Success, slog.LevelInfo},
		{logging.ActionAny, logging.Failure, slog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.action.String()+"_"+tt.outcome.String(), func(t *testing.T) {
			msg, ok := p.Resolve(tt.action, tt.outcome)
			require.True(t, ok)
			assert.Equal(t, tt.want, msg.Level)
		})
	}
}

func TestPolicy_ResolveCountHasNoMessage(t *testing.T) {
	t.Parallel()

	_, ok := logging.DefaultPolicy().Resolve(logging.ActionCount, logging.Success)
	assert.False(t, ok)
	_, ok = logging.DefaultPolicy().Resolve(logging.Action(42), logging.Failure)
	assert.False(t, ok)
}

func TestPolicy_Format(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		includeName bool
		placeholder string
		template    string
		want        string
	}{
		{"substitutes name", true, "{ServiceName}", "{ServiceName} was create", "Users was create"},
		{"substitutes every occurrence", true, "{ServiceName}", "{ServiceName}/{ServiceName}", "Users/Users"},
		{"disabled leaves template", false, "{ServiceName}", "{ServiceName} was create", "{ServiceName} was create"},
		{"custom token", true, "%svc%", "%svc% gone", "Users gone"},
		{"empty token is a no-op", true, "", "abc", "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := logging.Policy{IncludeName: tt.includeName, Placeholder: tt.placeholder}
			assert.Equal(t, tt.want, p.Format(tt.template, "Users"))
		})
	}
}

func TestOutcomeOf(t *testing.T) {
	assert.Equal(t, logging.Success, logging.OutcomeOf(true))
	assert.Equal(t, logging.Failure, logging.OutcomeOf(false))
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New(logging.Config{Level: slog.LevelDebug, Format: "json", Output: &buf})
	l.Debug("hello", "k", "v")

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "{"), "expected json output, got %q", out)
	assert.Contains(t, out, `"k":"v"`)
}

func TestNew_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New(logging.Config{Level: slog.LevelWarn, Output: &buf})
	l.Info("dropped")
	l.Warn("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")
}
