// Package marquee is the built-in scrolling text renderer.
package marquee

import (
	"context"
	"sync"

	"github.com/lumagrid/lumagrid/internal/module"
	"github.com/lumagrid/lumagrid/internal/registry"
	"github.com/lumagrid/lumagrid/internal/surface"
)

// Module implements registry.Module for this package.
type Module struct{}

// Register registers the marquee module type.
func (Module) Register(r *registry.Registry) {
	r.Register(&registry.Registration{
		Manifest: manifest,
		Load: func(ctx context.Context) (module.Factory, error) {
			return newInstance, nil
		},
	})
}

var manifest = &module.Manifest{
	Type:        "marquee",
	Description: "Scrolling text line.",
	Methods: []module.MethodSpec{
		{
			Name:          "setText",
			ExecuteOnLoad: true,
			Options: []module.OptionSpec{
				{Name: "text", Default: "", Type: "string"},
			},
		},
		{
			Name: "setSpeed",
			Options: []module.OptionSpec{
				{Name: "speed", Default: 1.0, Type: "number", Min: f(0.1), Max: f(20), AllowRandomization: true},
			},
		},
		{
			Name: "setDirection",
			Options: []module.OptionSpec{
				{Name: "direction", Default: "left", Type: "select", Values: []string{"left", "right"}},
			},
		},
	},
}

func f(v float64) *float64 { return &v }

type instance struct {
	mu        sync.Mutex
	surf      *surface.Surface
	text      string
	speed     float64
	direction string
}

func newInstance(s *surface.Surface) (module.Instance, error) {
	return &instance{surf: s, speed: 1, direction: "left"}, nil
}

// Invoke implements module.Instance.
func (i *instance) Invoke(_ context.Context, method string, opts module.Options) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	switch method {
	case "setText":
		if t, ok := opts["text"].(string); ok {
			i.text = t
		}
	case "setSpeed":
		switch v := opts["speed"].(type) {
		case float64:
			i.speed = v
		case int:
			i.speed = float64(v)
		}
	case "setDirection":
		if d, ok := opts["direction"].(string); ok {
			i.direction = d
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
