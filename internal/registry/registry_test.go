package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lumagrid/lumagrid/internal/module"
	"github.com/lumagrid/lumagrid/internal/surface"
)

func nopFactory(*surface.Surface) (module.Instance, error) { return nil, nil }

func registration(typeName string) *Registration {
	return &Registration{
		Manifest: &module.Manifest{Type: typeName, Methods: []module.MethodSpec{{Name: "noop"}}},
		Load: func(context.Context) (module.Factory, error) {
			return nopFactory, nil
		},
	}
}

func TestRegister_DuplicateTypePanics(t *testing.T) {
	r := New()
	r.Register(registration("solid"))

	require.PanicsWithValue(t, "registry: module type 'solid' already registered", func() {
		r.Register(registration("solid"))
	})
}

func TestRegister_InvalidManifestPanics(t *testing.T) {
	r := New()
	bad := registration("solid")
	bad.Manifest.Methods = append(bad.Manifest.Methods, module.MethodSpec{Name: "noop"})

	require.Panics(t, func() { r.Register(bad) })
}

func TestRegister_MissingLoadHookPanics(t *testing.T) {
	r := New()
	reg := registration("solid")
	reg.Load = nil

	require.Panics(t, func() { r.Register(reg) })
}

func TestResolve_UnknownType(t *testing.T) {
	r := New()

	_, err := r.Resolve(context.Background(), "ghost")
	require.ErrorContains(t, err, "unknown module type 'ghost'")
}

func TestResolve_LoadsOnceAndCaches(t *testing.T) {
	r := New()
	loads := 0
	r.Register(&Registration{
		Manifest: &module.Manifest{Type: "solid"},
		Load: func(context.Context) (module.Factory, error) {
			loads++
			return nopFactory, nil
		},
	})

	_, err := r.Resolve(context.Background(), "solid")
	require.NoError(t, err)
	_, err = r.Resolve(context.Background(), "solid")
	require.NoError(t, err)
	require.Equal(t, 1, loads)
}

func TestResolve_FailedLoadIsRetried(t *testing.T) {
	r := New()
	fail := true
	loads := 0
	r.Register(&Registration{
		Manifest: &module.Manifest{Type: "flaky"},
		Load: func(context.Context) (module.Factory, error) {
			loads++
			if fail {
				return nil, errors.New("font fetch timed out")
			}
			return nopFactory, nil
		},
	})

	_, err := r.Resolve(context.Background(), "flaky")
	require.ErrorContains(t, err, "failed to load module 'flaky'")

	fail = false
	_, err = r.Resolve(context.Background(), "flaky")
	require.NoError(t, err)
	require.Equal(t, 2, loads, "a failure is never cached")
}

func TestManifest_Lookup(t *testing.T) {
	r := New()
	r.Register(registration("solid"))

	m, ok := r.Manifest("solid")
	require.True(t, ok)
	require.Equal(t, "solid", m.Type)

	_, ok = r.Manifest("ghost")
	require.False(t, ok)
}

func TestTypes_Sorted(t *testing.T) {
	r := New()
	r.Register(registration("strobe"))
	r.Register(registration("marquee"))
	r.Register(registration("solid"))

	require.Equal(t, []string{"marquee", "solid", "strobe"}, r.Types())
}
