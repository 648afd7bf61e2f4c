package engine

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/lumagrid/lumagrid/internal/config"
	"github.com/lumagrid/lumagrid/internal/ctxlog"
)

// ActivateTrack schedules activation of the named track within the active
// set. Unknown names degrade to a logged no-op; activating the already
// active track is a no-op; activating while another track is active runs
// its full deactivation first. Activations run in submission order on the
// ops worker, so rapid track-select events settle on exactly the last one.
func (e *Engine) ActivateTrack(ctx context.Context, name string) *Batch {
	return e.enqueue(ctx, func(ctx context.Context) error {
		return e.activate(ctx, name)
	})
}

// Refresh tears the active track down and activates it again, picking up
// whatever the configuration collaborator changed.
func (e *Engine) Refresh(ctx context.Context) *Batch {
	return e.enqueue(ctx, func(ctx context.Context) error {
		name := e.ActiveTrack()
		if name == "" {
			return nil
		}
		e.deactivate(ctx)
		return e.activate(ctx, name)
	})
}

// activate runs the activation sequence on the ops worker.
func (e *Engine) activate(ctx context.Context, name string) error {
	logger := ctxlog.FromContext(ctx)

	e.mu.Lock()
	set := e.set
	current := e.track
	e.mu.Unlock()

	if set == nil {
		logger.Warn("No active set, ignoring track activation.", "track", name)
		return nil
	}
	track := set.Track(name)
	if track == nil {
		logger.Warn("Unknown track, staying idle.", "track", name, "set", set.ID)
		return nil
	}
	if current == track {
		logger.Debug("Track already active, nothing to do.", "track", name)
		return nil
	}
	if current != nil {
		e.deactivate(ctx)
	}

	// The track goes active eagerly so matrix materialization running in
	// the constructor batches can read it; the channel map is derived from
	// the same snapshot.
	e.mu.Lock()
	e.state = stateActivating
	e.track = track
	e.channels = buildChannelMap(track)
	e.mu.Unlock()

	logger.Info("Activating track.", "track", name, "placements", len(track.Placements))

	// Placement initializations are concurrent and individually isolated:
	// a failed placement logs and leaves its slots empty, never blocking
	// its siblings. The group is only a join point.
	var g errgroup.Group
	for _, p := range track.Placements {
		p := p
		g.Go(func() error {
			e.initPlacement(ctx, track, p)
			return nil
		})
	}
	_ = g.Wait()

	e.mu.Lock()
	e.state = stateActive
	e.mu.Unlock()

	e.sink.Ready(track.Name)
	e.debugf(ctx, "track %s active", track.Name)
	return nil
}

// initPlacement resolves the placement's module and runs its constructor
// batch. Load failures leave the placement unmaterialized.
func (e *Engine) initPlacement(ctx context.Context, track *config.Track, p *config.Placement) {
	logger := ctxlog.FromContext(ctx)

	factory, err := e.reg.Resolve(ctx, p.ModuleType)
	if err != nil {
		logger.Error("Module failed to load, placement left unmaterialized.",
			"placement", p.ID, "module", p.ModuleType, "error", err)
		return
	}

	var calls []*config.MethodCall
	if data := track.Data[p.ID]; data != nil {
		calls = data.Constructors
	}
	calls = e.withLoadDefaults(p.ModuleType, calls)

	e.runBatch(ctx, track, p, factory, calls, true)
}

// withLoadDefaults appends calls for manifest methods marked ExecuteOnLoad
// that the configured constructor batch omits, using their declared
// defaults. Hand-written show files stay minimal this way.
func (e *Engine) withLoadDefaults(moduleType string, calls []*config.MethodCall) []*config.MethodCall {
	manifest, ok := e.reg.Manifest(moduleType)
	if !ok {
		return calls
	}
	configured := make(map[string]struct{}, len(calls))
	for _, call := range calls {
		configured[call.Name] = struct{}{}
	}
	out := calls
	for _, method := range manifest.Methods {
		if !method.ExecuteOnLoad {
			continue
		}
		if _, done := configured[method.Name]; done {
			continue
		}
		call := &config.MethodCall{Name: method.Name}
		for _, opt := range method.Options {
			call.Options = append(call.Options, &config.OptionValue{Name: opt.Name, Value: opt.Default})
		}
		out = append(out, call)
	}
	return out
}

// Deactivate schedules teardown of the active track. A deactivation already
// in flight makes this a no-op, per the reentrancy guard.
func (e *Engine) Deactivate(ctx context.Context) *Batch {
	if e.deactivating.Load() {
		return completedBatch(nil)
	}
	return e.enqueue(ctx, func(ctx context.Context) error {
		e.deactivate(ctx)
		return nil
	})
}

// deactivate runs the teardown sequence: hide every surface first so the
// synchronous destroy work never flashes, destroy with per-instance error
// isolation, recycle all surfaces, clear the registries. Runs on the ops
// worker.
func (e *Engine) deactivate(ctx context.Context) {
	if !e.deactivating.CompareAndSwap(false, true) {
		return
	}
	defer e.deactivating.Store(false)

	logger := ctxlog.FromContext(ctx)

	e.mu.Lock()
	track := e.track
	if track == nil {
		e.mu.Unlock()
		return
	}
	e.state = stateDeactivating
	var instances []*liveInstance
	for _, list := range e.active {
		instances = append(instances, list...)
	}
	e.active = make(map[string][]*liveInstance)
	e.channels = nil
	e.track = nil
	e.mu.Unlock()

	for _, li := range instances {
		li.surf.Hide()
	}
	e.teardown(ctx, instances)

	e.mu.Lock()
	e.state = stateIdle
	e.mu.Unlock()

	logger.Info("Track deactivated.", "track", track.Name, "instances", len(instances))
	e.debugf(ctx, "track %s deactivated", track.Name)
}
