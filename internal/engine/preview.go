package engine

import (
	"context"
	"fmt"

	"github.com/lumagrid/lumagrid/internal/config"
	"github.com/lumagrid/lumagrid/internal/ctxlog"
	"github.com/lumagrid/lumagrid/internal/surface"
)

// previewOwner tags surfaces held by the preview lane; it can never collide
// with a placement id from config.
const previewOwner = "__preview__"

// previewZIndex stacks the preview above any track placement.
const previewZIndex = 1000

// previewSlot is the single detached instance the editor previews.
type previewSlot struct {
	moduleType string
	li         *liveInstance
}

// PreviewModule constructs a single full-stage instance of a module type,
// detached from any track, and runs its constructor methods. A previous
// preview is cleared first. Track activation and deactivation leave the
// preview untouched.
func (e *Engine) PreviewModule(ctx context.Context, moduleType string, data *config.PlacementData) error {
	logger := ctxlog.FromContext(ctx)

	e.ClearPreview(ctx)

	factory, err := e.reg.Resolve(ctx, moduleType)
	if err != nil {
		logger.Error("Preview module failed to load.", "module", moduleType, "error", err)
		return err
	}

	surf := e.pool.Acquire(moduleType, previewOwner)
	surf.ApplyGeometry(surface.Geometry{WidthPct: 100, HeightPct: 100, ZIndex: previewZIndex})

	var li *liveInstance
	var buildErr error
	ferr := e.frames.Do(ctx, func() {
		inst, err := factory(surf)
		if err != nil {
			buildErr = err
			return
		}
		li = &liveInstance{placementID: previewOwner, moduleType: moduleType, inst: inst, surf: surf}
	})
	if ferr != nil {
		buildErr = ferr
	}
	if buildErr != nil {
		e.pool.Release(surf)
		logger.Error("Preview instance construction failed.", "module", moduleType, "error", buildErr)
		return fmt.Errorf("failed to construct preview of '%s': %w", moduleType, buildErr)
	}

	e.mu.Lock()
	e.preview = &previewSlot{moduleType: moduleType, li: li}
	e.mu.Unlock()

	var calls []*config.MethodCall
	if data != nil {
		calls = data.Constructors
	}
	calls = e.withLoadDefaults(moduleType, calls)
	manifest, _ := e.reg.Manifest(moduleType)
	for _, call := range calls {
		if call.Name == MatrixMethod {
			// The preview lane is always a single instance.
			continue
		}
		e.runCall(ctx, manifest, &config.Placement{ID: previewOwner, ModuleType: moduleType}, []*liveInstance{li}, call)
	}

	e.debugf(ctx, "previewing module %s", moduleType)
	return nil
}

// TriggerPreviewMethod invokes one method on the current preview instance
// with full option resolution. A missing or mismatched preview degrades to
// a logged no-op.
func (e *Engine) TriggerPreviewMethod(ctx context.Context, moduleType, method string, opts []*config.OptionValue) error {
	logger := ctxlog.FromContext(ctx)

	e.mu.Lock()
	pv := e.preview
	e.mu.Unlock()

	if pv == nil || pv.moduleType != moduleType {
		logger.Warn("No matching preview instance for method trigger.", "module", moduleType, "method", method)
		return nil
	}

	manifest, _ := e.reg.Manifest(moduleType)
	e.runCall(ctx, manifest, &config.Placement{ID: previewOwner, ModuleType: moduleType}, []*liveInstance{pv.li}, &config.MethodCall{Name: method, Options: opts})
	return nil
}

// ClearPreview destroys the preview instance and recycles its surface.
func (e *Engine) ClearPreview(ctx context.Context) {
	e.mu.Lock()
	pv := e.preview
	e.preview = nil
	e.mu.Unlock()

	if pv == nil {
		return
	}
	pv.li.surf.Hide()
	e.teardown(ctx, []*liveInstance{pv.li})
	e.debugf(ctx, "preview cleared")
}
