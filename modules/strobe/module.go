// Package strobe is the built-in full-surface strobe renderer.
package strobe

import (
	"context"
	"sync"

	"github.com/lumagrid/lumagrid/internal/module"
	"github.com/lumagrid/lumagrid/internal/registry"
	"github.com/lumagrid/lumagrid/internal/surface"
)

// Module implements registry.Module for this package.
type Module struct{}

// Register registers the strobe module type.
func (Module) Register(r *registry.Registry) {
	r.Register(&registry.Registration{
		Manifest: manifest,
		Load: func(ctx context.Context) (module.Factory, error) {
			return newInstance, nil
		},
	})
}

var manifest = &module.Manifest{
	Type:        "strobe",
	Description: "Full-surface strobe.",
	Methods: []module.MethodSpec{
		{
			Name:          "setRate",
			ExecuteOnLoad: true,
			Options: []module.OptionSpec{
				{Name: "hz", Default: 4.0, Type: "number", Min: f(0.5), Max: f(30), AllowRandomization: true},
			},
		},
		{
			Name: "burst",
			Options: []module.OptionSpec{
				{Name: "count", Default: 3, Type: "number", Min: f(1), Max: f(16), AllowRandomization: true},
			},
		},
	},
}

func f(v float64) *float64 { return &v }

type instance struct {
	mu     sync.Mutex
	surf   *surface.Surface
	hz     float64
	bursts int
}

func newInstance(s *surface.Surface) (module.Instance, error) {
	return &instance{surf: s, hz: 4}, nil
}

// Invoke implements module.Instance.
func (i *instance) Invoke(_ context.Context, method string, opts module.Options) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	switch method {
	case "setRate":
		switch v := opts["hz"].(type) {
		case float64:
			i.hz = v
		case int:
			i.hz = float64(v)
		}
	case "burst":
		switch v := opts["count"].(type) {
		case int:
			i.bursts += v
		case float64:
			i.bursts += int(v)
		}
	default:
		return module.ErrUnknownMethod
	}
	return nil
}

// Destroy implements module.Instance.
func (i *instance) Destroy(context.Context) error {
	return nil
}
