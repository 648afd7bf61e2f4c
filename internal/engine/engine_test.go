package engine

import (
	"context"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lumagrid/lumagrid/internal/config"
	"github.com/lumagrid/lumagrid/internal/ctxlog"
	"github.com/lumagrid/lumagrid/internal/module"
	"github.com/lumagrid/lumagrid/internal/registry"
	"github.com/lumagrid/lumagrid/internal/rng"
	"github.com/lumagrid/lumagrid/internal/surface"
)

// fakeSink records status messages for assertions.
type fakeSink struct {
	mu      sync.Mutex
	ready   []string
	batches [][]string
}

func (s *fakeSink) Ready(track string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = append(s.ready, track)
}

func (s *fakeSink) Debug(lines []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches = append(s.batches, lines)
}

func (s *fakeSink) readySignals() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ready...)
}

// recorder tracks every instance one fake module type ever constructs.
type recorder struct {
	mu         sync.Mutex
	instances  []*fakeInstance
	loadErr    error
	destroyErr error
	// delay slows down named methods so tests can force batch overlap.
	delay map[string]time.Duration
	// inFlight / maxInFlight observe invocation concurrency.
	inFlight    int
	maxInFlight int
}

type fakeCall struct {
	method string
	opts   module.Options
}

type fakeInstance struct {
	rec  *recorder
	surf *surface.Surface

	mu        sync.Mutex
	calls     []fakeCall
	destroyed bool
	failWith  map[string]error
}

func (f *fakeInstance) Invoke(_ context.Context, method string, opts module.Options) error {
	f.rec.mu.Lock()
	f.rec.inFlight++
	if f.rec.inFlight > f.rec.maxInFlight {
		f.rec.maxInFlight = f.rec.inFlight
	}
	delay := f.rec.delay[method]
	f.rec.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}

	defer func() {
		f.rec.mu.Lock()
		f.rec.inFlight--
		f.rec.mu.Unlock()
	}()

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.destroyed {
		return module.ErrDestroyed
	}
	if err, ok := f.failWith[method]; ok {
		return err
	}
	f.calls = append(f.calls, fakeCall{method: method, opts: opts})
	return nil
}

func (f *fakeInstance) Destroy(context.Context) error {
	f.mu.Lock()
	f.destroyed = true
	f.mu.Unlock()
	f.rec.mu.Lock()
	defer f.rec.mu.Unlock()
	return f.rec.destroyErr
}

func (f *fakeInstance) received(method string) []fakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []fakeCall
	for _, c := range f.calls {
		if c.method == method {
			out = append(out, c)
		}
	}
	return out
}

func (r *recorder) live() []*fakeInstance {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*fakeInstance
	for _, f := range r.instances {
		f.mu.Lock()
		if !f.destroyed {
			out = append(out, f)
		}
		f.mu.Unlock()
	}
	return out
}

func (r *recorder) all() []*fakeInstance {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*fakeInstance(nil), r.instances...)
}

// registerFake wires a recording module type into a registry.
func registerFake(reg *registry.Registry, rec *recorder, typeName string, methods ...module.MethodSpec) {
	reg.Register(&registry.Registration{
		Manifest: &module.Manifest{Type: typeName, Methods: methods},
		Load: func(ctx context.Context) (module.Factory, error) {
			rec.mu.Lock()
			err := rec.loadErr
			rec.mu.Unlock()
			if err != nil {
				return nil, err
			}
			return func(s *surface.Surface) (module.Instance, error) {
				f := &fakeInstance{rec: rec, surf: s}
				rec.mu.Lock()
				rec.instances = append(rec.instances, f)
				rec.mu.Unlock()
				return f, nil
			}, nil
		},
	})
}

func method(name string, opts ...module.OptionSpec) module.MethodSpec {
	return module.MethodSpec{Name: name, Options: opts}
}

func call(name string, opts ...*config.OptionValue) *config.MethodCall {
	return &config.MethodCall{Name: name, Options: opts}
}

func opt(name string, value any) *config.OptionValue {
	return &config.OptionValue{Name: name, Value: value}
}

func matrixCall(rows, cols int, excluded ...string) *config.MethodCall {
	var ex []any
	for _, e := range excluded {
		ex = append(ex, e)
	}
	return call(MatrixMethod,
		opt("rows", float64(rows)),
		opt("cols", float64(cols)),
		opt("excluded", ex),
	)
}

func singleSetModel(tracks ...*config.Track) *config.Model {
	return &config.Model{Sets: []*config.Set{{ID: "main", Tracks: tracks}}}
}

// testContext carries a quiet logger so test output stays readable.
func testContext(t *testing.T) context.Context {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(testWriter{t}, &slog.HandlerOptions{Level: slog.LevelWarn}))
	return ctxlog.WithLogger(context.Background(), logger)
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

// newTestEngine builds an engine over the given model with deterministic
// randomness and an immediate frame gate.
func newTestEngine(t *testing.T, model *config.Model, reg *registry.Registry, pool *surface.Pool, policy TriggerPolicy) (*Engine, *fakeSink) {
	t.Helper()
	sink := &fakeSink{}
	e, err := New(Config{
		Model:    model,
		Registry: reg,
		Pool:     pool,
		Random:   rng.New(1),
		Sink:     sink,
		Policy:   policy,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = e.Shutdown(testContext(t))
	})
	return e, sink
}
