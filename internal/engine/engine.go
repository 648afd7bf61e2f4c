package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/lumagrid/lumagrid/internal/config"
	"github.com/lumagrid/lumagrid/internal/ctxlog"
	"github.com/lumagrid/lumagrid/internal/frame"
	"github.com/lumagrid/lumagrid/internal/options"
	"github.com/lumagrid/lumagrid/internal/registry"
	"github.com/lumagrid/lumagrid/internal/rng"
	"github.com/lumagrid/lumagrid/internal/status"
	"github.com/lumagrid/lumagrid/internal/surface"
)

// TriggerPolicy decides how overlapping method batches on one placement
// interact.
type TriggerPolicy int

const (
	// PolicyLastWins lets overlapping batches race; the last write to
	// shared module state wins. A newer trigger never waits behind a stale
	// one, which is what a live performance wants.
	PolicyLastWins TriggerPolicy = iota
	// PolicySerialize takes a per-placement lock around each batch.
	PolicySerialize
)

// trackState is the activation state machine's current position.
type trackState int32

const (
	stateIdle trackState = iota
	stateActivating
	stateActive
	stateDeactivating
)

// Config carries the engine's injected collaborators. Zero-value fields
// get safe defaults: immediate frame gate, discarding sink, time-seeded
// randomness.
type Config struct {
	Model    *config.Model
	Registry *registry.Registry
	Pool     *surface.Pool
	Frames   frame.Sync
	Random   rng.Source
	Sink     status.Sink
	// Debug, when set, receives one line per pipeline event for the UI
	// debug overlay. Independent of slog output.
	Debug  *status.Batcher
	Policy TriggerPolicy
}

// Engine is the orchestration service object.
type Engine struct {
	reg      *registry.Registry
	pool     *surface.Pool
	frames   frame.Sync
	resolver *options.Resolver
	sink     status.Sink
	debug    *status.Batcher
	policy   TriggerPolicy

	mu       sync.Mutex
	model    *config.Model
	set      *config.Set
	state    trackState
	track    *config.Track
	active   map[string][]*liveInstance
	channels map[string][]target
	locks    map[string]*sync.Mutex
	preview  *previewSlot

	deactivating atomic.Bool

	// ops serializes lifecycle operations (activate, deactivate, set
	// switch, refresh) on one worker, preserving submission order.
	ops      chan opRequest
	stop     chan struct{}
	stopMu   sync.Mutex
	stopped  bool
	stopOnce sync.Once
}

// New creates an engine. The model's first set starts active.
func New(cfg Config) (*Engine, error) {
	if cfg.Model == nil {
		return nil, fmt.Errorf("engine: config model is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("engine: module registry is required")
	}
	if cfg.Pool == nil {
		cfg.Pool = surface.NewPool()
	}
	if cfg.Frames == nil {
		cfg.Frames = frame.Immediate{}
	}
	if cfg.Random == nil {
		cfg.Random = rng.Default()
	}
	if cfg.Sink == nil {
		cfg.Sink = status.Nop{}
	}

	e := &Engine{
		reg:      cfg.Registry,
		pool:     cfg.Pool,
		frames:   cfg.Frames,
		resolver: options.NewResolver(cfg.Random),
		sink:     cfg.Sink,
		debug:    cfg.Debug,
		policy:   cfg.Policy,
		model:    cfg.Model,
		active:   make(map[string][]*liveInstance),
		locks:    make(map[string]*sync.Mutex),
		ops:      make(chan opRequest, 64),
		stop:     make(chan struct{}),
	}
	if len(cfg.Model.Sets) > 0 {
		e.set = cfg.Model.Sets[0]
	}
	go e.opsLoop()
	return e, nil
}

// ActivateSet switches the track namespace, deactivating any active track
// first. Unknown set ids degrade to a logged no-op.
func (e *Engine) ActivateSet(ctx context.Context, id string) *Batch {
	return e.enqueue(ctx, func(ctx context.Context) error {
		logger := ctxlog.FromContext(ctx)
		e.mu.Lock()
		set := e.model.Set(id)
		current := e.set
		e.mu.Unlock()
		if set == nil {
			logger.Warn("Unknown set, ignoring set activation.", "set", id)
			return nil
		}
		if set == current {
			return nil
		}

		e.deactivate(ctx)
		e.mu.Lock()
		e.set = set
		e.mu.Unlock()
		logger.Info("Set activated.", "set", id)
		return nil
	})
}

// ActiveTrack reports the name of the active track, or "".
func (e *Engine) ActiveTrack() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.track == nil {
		return ""
	}
	return e.track.Name
}

// SetDebugOverlay gates the coalesced debug feed to the UI.
func (e *Engine) SetDebugOverlay(open bool) {
	if e.debug != nil {
		e.debug.SetOverlayVisible(open)
	}
}

// Shutdown deactivates the current track, clears the preview lane, and
// stops the ops worker. Later lifecycle calls run inline.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.ClearPreview(ctx)
	err := e.Deactivate(ctx).Wait(ctx)
	e.stopOnce.Do(func() {
		e.stopMu.Lock()
		e.stopped = true
		e.stopMu.Unlock()
		close(e.stop)
	})
	return err
}

// debugf records one debug line for the overlay feed and the structured log.
func (e *Engine) debugf(ctx context.Context, format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	ctxlog.FromContext(ctx).Debug(line)
	if e.debug != nil {
		e.debug.Log(line)
	}
}

// placementLock returns the serialize-policy mutex for one placement.
func (e *Engine) placementLock(placementID string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[placementID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[placementID] = l
	}
	return l
}
