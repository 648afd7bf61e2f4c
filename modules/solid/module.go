// Package solid is the simplest built-in renderer: a flat color fill. Its
// drawing side lives in the host renderer; the instance here owns the
// declared state the methods mutate.
package solid

import (
	"context"
	"sync"

	"github.com/lumagrid/lumagrid/internal/module"
	"github.com/lumagrid/lumagrid/internal/registry"
	"github.com/lumagrid/lumagrid/internal/surface"
)

// Module implements registry.Module for this package.
type Module struct{}

// Register registers the solid module type.
func (Module) Register(r *registry.Registry) {
	r.Register(&registry.Registration{
		Manifest: manifest,
		Load: func(ctx context.Context) (module.Factory, error) {
			return newInstance, nil
		},
	})
}

var manifest = &module.Manifest{
	Type:        "solid",
	Description: "Flat color fill.",
	Methods: []module.MethodSpec{
		{
			Name:          "setColor",
			ExecuteOnLoad: true,
			Options: []module.OptionSpec{
				{Name: "color", Default: "#ffffff", Type: "color"},
			},
		},
		{
			Name: "flash",
			Options: []module.OptionSpec{
				{Name: "intensity", Default: 1.0, Type: "number", Min: f(0), Max: f(10), AllowRandomization: true},
			},
		},
	},
}

func f(v float64) *float64 { return &v }

type instance struct {
	mu        sync.Mutex
	surf      *surface.Surface
	color     string
	intensity float64
}

func newInstance(s *surface.Surface) (module.Instance, error) {
	return &instance{surf: s, color: "#ffffff"}, nil
}

// Invoke implements module.Instance.
func (i *instance) Invoke(_ context.Context, method string, opts module.Options) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	switch method {
	case "setColor":
		if c, ok := opts["color"].(string); ok {
			i.color = c
		}
	case "flash":
		i.intensity = numberOpt(opts, "intensity", i.intensity)
	default:
		return module.ErrUnknownMethod
	}
	return nil
}

// Destroy implements module.Instance. The solid fill allocates nothing
// beyond its surface, which the core releases.
func (i *instance) Destroy(context.Context) error {
	return nil
}

// numberOpt reads a numeric option, tolerating int-resolved randomization.
func numberOpt(opts module.Options, name string, fallback float64) float64 {
	switch v := opts[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return fallback
	}
}
