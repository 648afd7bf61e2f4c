package engine

import (
	"context"
	"errors"
	"sync"

	"github.com/lumagrid/lumagrid/internal/config"
	"github.com/lumagrid/lumagrid/internal/ctxlog"
	"github.com/lumagrid/lumagrid/internal/matrix"
	"github.com/lumagrid/lumagrid/internal/module"
)

// MatrixMethod is the reserved call name the pipeline extracts for grid
// rematerialization; it never reaches module instances.
const MatrixMethod = "matrix"

// runBatch executes one ordered batch of method calls for a placement. The
// matrix step, when present, is awaited before anything else because the
// remaining calls assume a stable instance count; the rest then fan out
// concurrently over one frozen instance snapshot. construct marks the
// constructor batch, which materializes a default 1x1 grid when no matrix
// call ever ran for the placement.
func (e *Engine) runBatch(ctx context.Context, track *config.Track, p *config.Placement, factory module.Factory, calls []*config.MethodCall, construct bool) {
	if e.policy == PolicySerialize {
		l := e.placementLock(p.ID)
		l.Lock()
		defer l.Unlock()
	}

	matrixCall, rest := splitMatrixCall(ctx, calls)

	if matrixCall != nil {
		opts := e.resolver.Resolve(ctx, matrixCall.Options)
		spec := matrix.FromOptions(ctx, opts)
		e.materialize(ctx, track, p, spec, factory)
	} else if construct && e.InstanceCount(p.ID) == 0 {
		e.materialize(ctx, track, p, matrix.Default(), factory)
	}

	if len(rest) == 0 {
		return
	}
	snapshot := e.instances(p.ID)
	if len(snapshot) == 0 {
		e.debugf(ctx, "placement %s has no live instances, skipping %d call(s)", p.ID, len(rest))
		return
	}

	manifest, _ := e.reg.Manifest(p.ModuleType)

	var wg sync.WaitGroup
	for _, call := range rest {
		call := call
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.runCall(ctx, manifest, p, snapshot, call)
		}()
	}
	wg.Wait()
}

// runCall resolves one call's options fresh and invokes the method on every
// instance of the snapshot concurrently, isolating failures per instance.
func (e *Engine) runCall(ctx context.Context, manifest *module.Manifest, p *config.Placement, snapshot []*liveInstance, call *config.MethodCall) {
	logger := ctxlog.FromContext(ctx)

	// Schema check against the declared method table, never a probe of the
	// instance. An undeclared method skips the whole call with a warning.
	if manifest != nil {
		if _, ok := manifest.Method(call.Name); !ok {
			logger.Warn("Method not declared by module, skipping call.",
				"placement", p.ID, "module", p.ModuleType, "method", call.Name)
			return
		}
	}

	opts := e.resolver.Resolve(ctx, call.Options)

	var wg sync.WaitGroup
	for _, li := range snapshot {
		li := li
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := li.invoke(ctx, call.Name, opts)
			switch {
			case err == nil:
			case errors.Is(err, module.ErrDestroyed):
				logger.Debug("Instance destroyed before invoke, skipped.",
					"placement", p.ID, "method", call.Name)
			case errors.Is(err, module.ErrUnknownMethod):
				logger.Warn("Instance lacks declared method, skipped.",
					"placement", p.ID, "method", call.Name)
			default:
				logger.Error("Method invocation failed on instance.",
					"placement", p.ID, "method", call.Name, "error", err)
			}
		}()
	}
	wg.Wait()

	e.debugf(ctx, "ran %s on %d instance(s) of %s", call.Name, len(snapshot), p.ID)
}

// splitMatrixCall extracts the at-most-one meaningful matrix call from a
// batch, preserving the order of everything else. Extra matrix calls are
// dropped with a warning.
func splitMatrixCall(ctx context.Context, calls []*config.MethodCall) (*config.MethodCall, []*config.MethodCall) {
	var matrixCall *config.MethodCall
	rest := make([]*config.MethodCall, 0, len(calls))
	for _, call := range calls {
		if call.Name == MatrixMethod {
			if matrixCall == nil {
				matrixCall = call
			} else {
				ctxlog.FromContext(ctx).Warn("Multiple matrix calls in one batch, extras ignored.")
			}
			continue
		}
		rest = append(rest, call)
	}
	return matrixCall, rest
}
