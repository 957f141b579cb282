package registry_test

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/skekre98/servicekit/logging"
	"github.com/skekre98/servicekit/options"
	"github.com/skekre98/servicekit/registry"
)

type serverOptions struct {
	Name string
	Host string
	Port int `validate:"min=1,max=65535"`
}

func (o serverOptions) OptionName() string { return o.Name }

type cacheOptions struct {
	Size int
}

func TestRegister_ResolveReturnsRegisteredValue(t *testing.T) {
	t.Parallel()

	s := registry.NewStore()
	name, err := registry.Register(s, "primary", registry.Configure(func(o *serverOptions) {
		o.Host = "localhost"
		o.Port = 8080
	}))
	require.NoError(t, err)
	assert.Equal(t, "primary", name)

	got, err := registry.Resolve[serverOptions](s, "primary")
	require.NoError(t, err)
	assert.Equal(t, serverOptions{Host: "localhost", Port: 8080}, got)
}

func TestRegister_NameResolution(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		supplied string
		own      string
		want     string
	}{
		{name: "own name wins", supplied: "supplied", own: "own", want: "own"},
		{name: "supplied name", supplied: "supplied", want: "supplied"},
		{name: "type name fallback", want: "serverOptions"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := registry.NewStore()
			got, err := registry.Register(s, tt.supplied, registry.Configure(func(o *serverOptions) {
				o.Name = tt.own
				o.Port = 1
			}))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, s.Has(reflect.TypeFor[serverOptions](), tt.want))
		})
	}
}

func TestRegister_Duplicate(t *testing.T) {
	t.Parallel()

	s := registry.NewStore()
	_, err := registry.Register(s, "db", registry.Configure(func(o *serverOptions) { o.Port = 5432 }))
	require.NoError(t, err)

	_, err = registry.Register(s, "db", registry.Configure(func(o *serverOptions) { o.Port = 6543 }))
	var dup *registry.DuplicateConfigurationError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "db", dup.Name)
	assert.Equal(t, "serverOptions", dup.Type)

	got, err := registry.Resolve[serverOptions](s, "db")
	require.NoError(t, err)
	assert.Equal(t, 5432, got.Port, "first registration must be kept")
	assert.Equal(t, 1, s.Len())
}

func TestRegister_SameNameDifferentTypes(t *testing.T) {
	t.Parallel()

	s := registry.NewStore()
	_, err := registry.Register(s, "shared", registry.Configure(func(o *serverOptions) { o.Port = 1 }))
	require.NoError(t, err)
	_, err = registry.Register(s, "shared", registry.Configure(func(o *cacheOptions) { o.Size = 10 }))
	require.NoError(t, err)
	assert.Equal(t, 2, s.Len())
}

func TestResolve_NotFound(t *testing.T) {
	t.Parallel()

	s := registry.NewStore()
	_, err := registry.Resolve[serverOptions](s, "missing")

	var nf *registry.ConfigurationNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "missing", nf.Name)
}

func TestResolveDefault(t *testing.T) {
	t.Parallel()

	s := registry.NewStore()
	_, err := registry.Register(s, "", registry.Configure(func(o *cacheOptions) { o.Size = 3 }))
	require.NoError(t, err)

	got, err := registry.ResolveDefault[cacheOptions](s)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Size)
}

func TestRegister_BuilderErrorLeavesStoreUnchanged(t *testing.T) {
	t.Parallel()

	s := registry.NewStore()
	boom := errors.New("boom")
	_, err := registry.Register(s, "x", func(o *serverOptions) error { return boom })

	var invalid *registry.InvalidConfigurationError
	require.ErrorAs(t, err, &invalid)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, s.Len())
}

func TestRegister_ValidationFailure(t *testing.T) {
	t.Parallel()

	s := registry.NewStore()
	_, err := registry.Register(s, "x", registry.Configure(func(o *serverOptions) { o.Port = 70000 }))

	var invalid *registry.InvalidConfigurationError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "x", invalid.Name)
	assert.Equal(t, 0, s.Len())
}

func TestRegister_DefaultsAppliedBeforeBuilder(t *testing.T) {
	t.Parallel()

	s := registry.NewStore()
	_, err := registry.Register(s, "Users", registry.Configure(func(o *options.ContainerOptions) {
		o.UseLogger = true
		o.Logging.Add.Success.Template = "added to {ServiceName}"
	}))
	require.NoError(t, err)

	got, err := registry.Resolve[options.ContainerOptions](s, "Users")
	require.NoError(t, err)
	assert.True(t, got.UseLogger)
	assert.Equal(t, "added to {ServiceName}", got.Logging.Add.Success.Template)
	assert.Equal(t, logging.DefaultPolicy().Remove, got.Logging.Remove)
}

func TestRegister_ContainerPolicyValidation(t *testing.T) {
	t.Parallel()

	s := registry.NewStore()
	_, err := registry.Register(s, "Users", registry.Configure(func(o *options.ContainerOptions) {
		o.Logging.Placeholder = ""
	}))
	var invalid *registry.InvalidConfigurationError
	require.ErrorAs(t, err, &invalid)
}

func TestResolve_ReturnsCopy(t *testing.T) {
	t.Parallel()

	s := registry.NewStore()
	registry.MustRegister(s, "a", registry.Configure(func(o *serverOptions) { o.Port = 1 }))

	got, err := registry.Resolve[serverOptions](s, "a")
	require.NoError(t, err)
	got.Port = 99

	again, err := registry.Resolve[serverOptions](s, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Port)
}

func TestMustRegister_PanicsOnDuplicate(t *testing.T) {
	s := registry.NewStore()
	registry.MustRegister(s, "a", registry.Configure(func(o *cacheOptions) {}))
	assert.Panics(t, func() {
		registry.MustRegister(s, "a", registry.Configure(func(o *cacheOptions) {}))
	})
}

func TestSlots_Sorted(t *testing.T) {
	t.Parallel()

	s := registry.NewStore()
	registry.MustRegister(s, "b", registry.Configure(func(o *serverOptions) { o.Port = 1 }))
	registry.MustRegister(s, "a", registry.Configure(func(o *serverOptions) { o.Port = 1 }))
	registry.MustRegister(s, "z", registry.Configure(func(o *cacheOptions) {}))

	var got []string
	for _, slot := range s.Slots() {
		got = append(got, registry.TypeName(slot.Type)+"/"+slot.Name)
	}
	assert.Equal(t, []string{"cacheOptions/z", "serverOptions/a", "serverOptions/b"}, got)
}

func TestResolve_ConcurrentReaders(t *testing.T) {
	t.Parallel()

	s := registry.NewStore()
	for i := 0; i < 10; i++ {
		registry.MustRegister(s, fmt.Sprintf("s%d", i), registry.Configure(func(o *serverOptions) { o.Port = i + 1 }))
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				v, err := registry.Resolve[serverOptions](s, fmt.Sprintf("s%d", i%10))
				if err != nil || v.Port != i%10+1 {
					t.Errorf("Resolve(s%d) = %v, %v", i%10, v, err)
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestTypeName(t *testing.T) {
	assert.Equal(t, "serverOptions", registry.TypeName(reflect.TypeFor[*serverOptions]()))
	assert.Equal(t, "<nil>", registry.TypeName(nil))
	assert.Equal(t, "[]int", registry.TypeName(reflect.TypeFor[[]int]()))
}

// TestStore_RegisterResolveProperty checks that every registered value comes
// back unchanged and that duplicates never overwrite.
func TestStore_RegisterResolveProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := registry.NewStore()
		names := rapid.SliceOfDistinct(rapid.StringMatching(`[a-z]{1,8}`), rapid.ID[string]).Draw(rt, "names")

		want := make(map[string]int, len(names))
		for _, n := range names {
			port := rapid.IntRange(1, 65535).Draw(rt, "port")
			got, err := registry.Register(s, n, registry.Configure(func(o *serverOptions) { o.Port = port }))
			require.NoError(rt, err)
			require.Equal(rt, n, got)
			want[n] = port
		}

		for _, n := range names {
			_, err := registry.Register(s, n, registry.Configure(func(o *serverOptions) { o.Port = 1 }))
			var dup *registry.DuplicateConfigurationError
			require.ErrorAs(rt, err, &dup)
		}

		require.Equal(rt, len(names), s.Len())
		for n, port := range want {
			v, err := registry.Resolve[serverOptions](s, n)
			require.NoError(rt, err)
			require.Equal(rt, port, v.Port)
		}
	})
}
