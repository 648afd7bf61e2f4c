package engine

import (
	"context"
	"sync/atomic"

	"github.com/lumagrid/lumagrid/internal/module"
	"github.com/lumagrid/lumagrid/internal/surface"
)

// liveInstance is one constructed module bound to one pooled surface,
// tagged with its owning placement. It is exclusively owned by the instance
// manager; method dispatch only ever sees it transiently.
type liveInstance struct {
	placementID string
	moduleType  string
	inst        module.Instance
	surf        *surface.Surface
	destroyed   atomic.Bool
}

// invoke dispatches one method, refusing once destroyed. Deactivation does
// not cancel in-flight batches, so this check is what keeps a
// destroy-after-invoke race from mutating dead render state.
func (li *liveInstance) invoke(ctx context.Context, method string, opts module.Options) error {
	if li.destroyed.Load() {
		return module.ErrDestroyed
	}
	return li.inst.Invoke(ctx, method, opts)
}

// destroy tears the instance down exactly once. The surface is recycled by
// the caller after destroy has fully detached the instance.
func (li *liveInstance) destroy(ctx context.Context) error {
	if !li.destroyed.CompareAndSwap(false, true) {
		return nil
	}
	return li.inst.Destroy(ctx)
}
