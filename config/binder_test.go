package config_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skekre98/servicekit/config"
	"github.com/skekre98/servicekit/logging"
	"github.com/skekre98/servicekit/options"
)

func TestBinder_Bind(t *testing.T) {
	type Pool struct {
		Size    int           `config:"size" validate:"min=1"`
		Timeout time.Duration `config:"timeout"`
	}
	type Settings struct {
		Name  string     `config:"name" validate:"required"`
		Tags  []string   `config:"tags"`
		Level slog.Level `config:"level"`
		Pool  Pool       `config:"pool"`
	}

	tests := []struct {
		name    string
		source  map[string]any
		want    Settings
		wantErr string
	}{
		{
			name: "typed values",
			source: map[string]any{
				"name": "billing",
				"tags": []string{"a", "b"},
				"pool": map[string]any{"size": 4, "timeout": time.Second},
			},
			want: Settings{Name: "billing", Tags: []string{"a", "b"}, Pool: Pool{Size: 4, Timeout: time.Second}},
		},
		{
			name: "string values are converted",
			source: map[string]any{
				"name":  "billing",
				"tags":  "a,b",
				"level": "debug",
				"pool":  map[string]any{"size": "4", "timeout": "30s"},
			},
			want: Settings{
				Name:  "billing",
				Tags:  []string{"a", "b"},
				Level: slog.LevelDebug,
				Pool:  Pool{Size: 4, Timeout: 30 * time.Second},
			},
		},
		{
			name:    "missing required field",
			source:  map[string]any{"pool": map[string]any{"size": 1}},
			wantErr: "validate",
		},
		{
			name:    "nested rule violated",
			source:  map[string]any{"name": "billing", "pool": map[string]any{"size": 0}},
			wantErr: "validate",
		},
		{
			name:    "undecodable value",
			source:  map[string]any{"name": "billing", "pool": map[string]any{"size": "many"}},
			wantErr: "decode",
		},
		{
			name:    "bad level",
			source:  map[string]any{"name": "billing", "level": "loud", "pool": map[string]any{"size": 1}},
			wantErr: "decode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Settings
			err := config.NewBinder().Bind(tt.source, &got)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}
			var be *config.BindError
			require.ErrorAs(t, err, &be)
			assert.Equal(t, tt.wantErr, be.Stage)
		})
	}
}

func TestBinder_KeepsDefaults(t *testing.T) {
	var opts options.ContainerOptions
	opts.SetDefaults()

	err := config.NewBinder().Bind(map[string]any{
		"useLogger": "true",
		"logging": map[string]any{
			"add": map[string]any{
				"success": map[string]any{"template": "{ServiceName} stored", "level": "warn"},
			},
		},
	}, &opts)
	require.NoError(t, err)

	def := logging.DefaultPolicy()
	assert.True(t, opts.UseLogger)
	assert.Equal(t, logging.Message{Template: "{ServiceName} stored", Level: slog.LevelWarn}, opts.Logging.Add.Success)
	assert.Equal(t, def.Add.Failure, opts.Logging.Add.Failure)
	assert.Equal(t, def.Remove, opts.Logging.Remove)
	assert.Equal(t, logging.DefaultPlaceholder, opts.Logging.Placeholder)
}

func TestBinder_RequiredIf(t *testing.T) {
	var opts options.ContainerOptions
	opts.SetDefaults()

	err := config.NewBinder().Bind(map[string]any{
		"logging": map[string]any{"placeholder": ""},
	}, &opts)

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "Placeholder", verrs[0].Field())
}

func TestBindError(t *testing.T) {
	inner := errors.New("inner")
	err := &config.BindError{Stage: "decode", Err: inner}

	assert.Equal(t, "config decode error: inner", err.Error())
	assert.ErrorIs(t, err, inner)
}
