package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// Binder decodes map[string]any data into structs and validates the result.
//
// Fields are mapped with `config` tags and checked with `validate` tags.
// Decoding is weakly typed: "8080" binds to an int, "5s" to a
// time.Duration, "a,b" to a []string, and "debug" to any type implementing
// encoding.TextUnmarshaler (slog.Level among them).
//
//	type ServerConfig struct {
//	    Port    int           `config:"port" validate:"required,min=1,max=65535"`
//	    Timeout time.Duration `config:"timeout"`
//	}
type Binder struct {
	validator *validator.Validate
}

// BindError reports which stage of Bind failed: "decode" or "validate".
type BindError struct {
	Stage string
	Err   error
}

func (e *BindError) Error() string {
	return fmt.Sprintf("config %s error: %v", e.Stage, e.Err)
}

func (e *BindError) Unwrap() error {
	return e.Err
}

func NewBinder() *Binder {
	return &Binder{
		validator: validator.New(),
	}
}

// Bind decodes source into target, a pointer to a struct, and validates it.
// Fields absent from source keep their current values, so defaults set on
// target before the call survive. target may be partially populated when
// validation fails.
func (b *Binder) Bind(source map[string]any, target any) error {
	if err := b.Decode(source, target); err != nil {
		return err
	}
	if err := b.validator.Struct(target); err != nil {
		return &BindError{Stage: "validate", Err: err}
	}
	return nil
}

// Decode is Bind without validation.
func (b *Binder) Decode(source map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.TextUnmarshallerHookFunc(),
		),
		TagName: "config",
	})
	if err != nil {
		return &BindError{Stage: "decode", Err: err}
	}
	if err := decoder.Decode(source); err != nil {
		return &BindError{Stage: "decode", Err: err}
	}
	return nil
}
