// Package module defines the contract between the orchestration core and
// the pluggable renderer modules. The core never reaches into a module's
// drawing logic; it constructs instances from pooled surfaces, dispatches
// declared methods against them, and destroys them.
package module

import (
	"context"
	"errors"

	"github.com/lumagrid/lumagrid/internal/surface"
)

// ErrUnknownMethod is returned by Invoke for a method the instance does not
// implement. The pipeline treats it as a per-instance skip, not a failure.
var ErrUnknownMethod = errors.New("module: unknown method")

// ErrDestroyed is returned by Invoke after Destroy has run. In-flight
// batches from a deactivated track hit this instead of mutating dead state.
var ErrDestroyed = errors.New("module: instance destroyed")

// Options is the resolved option bag passed to a method invocation.
type Options map[string]any

// Instance is one live module bound to one surface.
type Instance interface {
	// Invoke dispatches a declared method by name. Implementations return
	// ErrUnknownMethod for names outside their method table and
	// ErrDestroyed once destroyed.
	Invoke(ctx context.Context, method string, opts Options) error

	// Destroy releases every resource the instance privately allocated. The
	// core releases the surface it handed in; the instance must not.
	Destroy(ctx context.Context) error
}

// Factory constructs an instance bound to the given surface.
type Factory func(s *surface.Surface) (Instance, error)
