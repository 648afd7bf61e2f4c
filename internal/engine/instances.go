package engine

import (
	"context"

	"github.com/lumagrid/lumagrid/internal/config"
	"github.com/lumagrid/lumagrid/internal/ctxlog"
	"github.com/lumagrid/lumagrid/internal/matrix"
	"github.com/lumagrid/lumagrid/internal/module"
)

// materialize expands a placement into the live instances of the given
// matrix spec. Any existing instances are torn down first, so the call is
// idempotent with respect to prior materializations. All cells of one
// placement are constructed within a single frame-gate batch.
func (e *Engine) materialize(ctx context.Context, track *config.Track, p *config.Placement, spec matrix.Spec, factory module.Factory) []*liveInstance {
	logger := ctxlog.FromContext(ctx)

	e.dematerialize(ctx, p.ID)

	zIndex := placementZIndex(track, p.ID)
	cells := matrix.Layout(spec, zIndex)

	var made []*liveInstance
	err := e.frames.Do(ctx, func() {
		for _, cell := range cells {
			surf := e.pool.Acquire(p.ModuleType, p.ID)
			surf.ApplyGeometry(cell.Geometry)
			inst, err := factory(surf)
			if err != nil {
				logger.Error("Failed to construct module instance, cell skipped.",
					"placement", p.ID, "module", p.ModuleType, "row", cell.Row, "col", cell.Col, "error", err)
				e.pool.Release(surf)
				continue
			}
			made = append(made, &liveInstance{
				placementID: p.ID,
				moduleType:  p.ModuleType,
				inst:        inst,
				surf:        surf,
			})
		}
	})
	if err != nil {
		logger.Warn("Frame gate interrupted during materialization.", "placement", p.ID, "error", err)
	}

	e.mu.Lock()
	if e.track != track {
		// The track changed while this batch was in flight. Registering the
		// instances would leak them past deactivation, so tear down instead.
		e.mu.Unlock()
		logger.Debug("Track changed mid-materialization, discarding instances.", "placement", p.ID)
		e.teardown(ctx, made)
		return nil
	}
	e.active[p.ID] = made
	e.mu.Unlock()

	e.debugf(ctx, "materialized placement %s: %d instance(s) (%dx%d)", p.ID, len(made), spec.Rows, spec.Cols)
	return made
}

// dematerialize destroys every live instance of a placement and recycles
// its surfaces, removing the registry entry.
func (e *Engine) dematerialize(ctx context.Context, placementID string) {
	e.mu.Lock()
	instances := e.active[placementID]
	delete(e.active, placementID)
	e.mu.Unlock()

	e.teardown(ctx, instances)
}

// teardown destroys instances with per-instance error isolation, then
// recycles their surfaces. Surfaces go back to the pool only after destroy
// has fully detached the instance.
func (e *Engine) teardown(ctx context.Context, instances []*liveInstance) {
	logger := ctxlog.FromContext(ctx)
	for _, li := range instances {
		if err := li.destroy(ctx); err != nil {
			logger.Error("Instance destroy failed, continuing teardown.",
				"placement", li.placementID, "module", li.moduleType, "error", err)
		}
		e.pool.Release(li.surf)
	}
}

// instances returns a frozen snapshot of a placement's live instances.
func (e *Engine) instances(placementID string) []*liveInstance {
	e.mu.Lock()
	defer e.mu.Unlock()
	snapshot := make([]*liveInstance, len(e.active[placementID]))
	copy(snapshot, e.active[placementID])
	return snapshot
}

// InstanceCount reports the number of live instances for a placement.
func (e *Engine) InstanceCount(placementID string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.active[placementID])
}

// placementZIndex is the placement's 1-based position in its track, shared
// by every cell of the placement.
func placementZIndex(track *config.Track, placementID string) int {
	for i, p := range track.Placements {
		if p.ID == placementID {
			return i + 1
		}
	}
	return 1
}
