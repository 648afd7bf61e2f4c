package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/lumagrid/lumagrid/internal/config"
	"github.com/lumagrid/lumagrid/internal/ctxlog"
	"github.com/lumagrid/lumagrid/internal/engine"
	"github.com/lumagrid/lumagrid/internal/frame"
	"github.com/lumagrid/lumagrid/internal/registry"
	"github.com/lumagrid/lumagrid/internal/rng"
	"github.com/lumagrid/lumagrid/internal/status"
	"github.com/lumagrid/lumagrid/internal/surface"
	"github.com/lumagrid/lumagrid/internal/wshub"
)

// Config holds everything an App instance needs to run.
type Config struct {
	ShowPath     string
	InitialTrack string
	LogLevel     string
	LogFormat    string
	StatusAddr   string
	MIDIPort     string
	Policy       string
	Seed         int64
	FPS          int
}

// App encapsulates the application's dependencies, configuration, and
// lifecycle. Every instance carries its own logger, registry, and engine,
// so independent instances can coexist.
type App struct {
	outW    io.Writer
	cfg     *Config
	logger  *slog.Logger
	reg     *registry.Registry
	model   *config.Model
	engine  *engine.Engine
	hub     *wshub.Hub
	batcher *status.Batcher
	frames  *frame.Ticker
}

// New constructs a fully wired App. When no modules are passed the built-in
// core set is registered.
func New(outW io.Writer, cfg *Config, loader config.Loader, modules ...registry.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := loader.Load(ctx, cfg.ShowPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load show configuration: %w", err)
	}
	logger.Debug("Show configuration loaded into unified model.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All renderer modules registered.", "count", len(modules), "types", reg.Types())

	var sink status.Sink = status.Nop{}
	var hub *wshub.Hub
	if cfg.StatusAddr != "" {
		hub = wshub.New(logger)
		sink = hub
	}
	batcher := status.NewBatcher(sink, 0)

	policy, err := parsePolicy(cfg.Policy)
	if err != nil {
		return nil, err
	}

	fps := cfg.FPS
	if fps <= 0 {
		fps = 60
	}
	frames := frame.NewTicker(time.Second / time.Duration(fps))

	var source rng.Source
	if cfg.Seed != 0 {
		source = rng.New(cfg.Seed)
	}

	eng, err := engine.New(engine.Config{
		Model:    model,
		Registry: reg,
		Pool:     surface.NewPool(),
		Frames:   frames,
		Random:   source,
		Sink:     sink,
		Debug:    batcher,
		Policy:   policy,
	})
	if err != nil {
		frames.Close()
		return nil, err
	}

	return &App{
		outW:    outW,
		cfg:     cfg,
		logger:  logger,
		reg:     reg,
		model:   model,
		engine:  eng,
		hub:     hub,
		batcher: batcher,
		frames:  frames,
	}, nil
}

// parsePolicy maps the CLI policy name onto the engine's trigger policy.
func parsePolicy(name string) (engine.TriggerPolicy, error) {
	switch name {
	case "", "last-wins":
		return engine.PolicyLastWins, nil
	case "serialize":
		return engine.PolicySerialize, nil
	default:
		return 0, fmt.Errorf("unknown trigger policy %q (want last-wins or serialize)", name)
	}
}

// Engine returns the application's engine. This is primarily for testing.
func (a *App) Engine() *engine.Engine {
	return a.engine
}

// Registry returns the application's module registry. Primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.reg
}
