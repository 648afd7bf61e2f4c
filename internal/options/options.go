// Package options resolves declared option values into the bag a method
// invocation receives, sampling randomized ranges fresh on every dispatch.
package options

import (
	"context"
	"math"

	"github.com/lumagrid/lumagrid/internal/config"
	"github.com/lumagrid/lumagrid/internal/ctxlog"
	"github.com/lumagrid/lumagrid/internal/module"
	"github.com/lumagrid/lumagrid/internal/rng"
)

// Resolver resolves option values against an injected random source.
type Resolver struct {
	src rng.Source
}

// NewResolver creates a resolver backed by the given source.
func NewResolver(src rng.Source) *Resolver {
	return &Resolver{src: src}
}

// Resolve builds the option bag for one dispatch. Resolution is never
// memoized: two dispatches of the same declared range may differ.
func (r *Resolver) Resolve(ctx context.Context, opts []*config.OptionValue) module.Options {
	bag := make(module.Options, len(opts))
	for _, opt := range opts {
		bag[opt.Name] = r.resolveOne(ctx, opt)
	}
	return bag
}

// resolveOne applies the randomization rules of one option:
//   - no range: the static value verbatim
//   - non-numeric bound: logged, static value fallback
//   - inverted bounds: swapped with a warning
//   - two integer bounds: uniform integer inclusive of both bounds
//   - otherwise: uniform float in [min, max)
func (r *Resolver) resolveOne(ctx context.Context, opt *config.OptionValue) any {
	if opt.Random == nil {
		return opt.Value
	}
	logger := ctxlog.FromContext(ctx)

	min, okMin := toFloat(opt.Random.Min)
	max, okMax := toFloat(opt.Random.Max)
	if !okMin || !okMax {
		logger.Warn("Random range bound is not numeric, falling back to static value.",
			"option", opt.Name, "min", opt.Random.Min, "max", opt.Random.Max)
		return opt.Value
	}

	if min > max {
		logger.Warn("Random range is inverted, swapping bounds.", "option", opt.Name, "min", min, "max", max)
		min, max = max, min
	}

	if isWhole(min) && isWhole(max) {
		lo, hi := int(min), int(max)
		return lo + r.src.IntN(hi-lo+1)
	}
	return min + r.src.Float64()*(max-min)
}

func isWhole(v float64) bool {
	return v == math.Trunc(v)
}

// toFloat widens any numeric scalar to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	default:
		return 0, false
	}
}
