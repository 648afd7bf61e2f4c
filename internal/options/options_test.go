package options

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lumagrid/lumagrid/internal/config"
	"github.com/lumagrid/lumagrid/internal/rng"
)

func randomOpt(name string, value any, min, max any) *config.OptionValue {
	return &config.OptionValue{Name: name, Value: value, Random: &config.RandomRange{Min: min, Max: max}}
}

func TestResolve_StaticValuesPassThrough(t *testing.T) {
	r := NewResolver(rng.New(1))

	bag := r.Resolve(context.Background(), []*config.OptionValue{
		{Name: "color", Value: "#ff0000"},
		{Name: "count", Value: 4.0},
		{Name: "on", Value: true},
	})

	require.Equal(t, "#ff0000", bag["color"])
	require.Equal(t, 4.0, bag["count"])
	require.Equal(t, true, bag["on"])
}

func TestResolve_IntegerBoundsAreInclusive(t *testing.T) {
	r := NewResolver(rng.New(7))
	opt := randomOpt("level", 0, 1.0, 3.0)

	seen := map[int]int{}
	for i := 0; i < 500; i++ {
		v := r.Resolve(context.Background(), []*config.OptionValue{opt})["level"]
		n, ok := v.(int)
		require.True(t, ok, "integer bounds must sample integers, got %T", v)
		require.GreaterOrEqual(t, n, 1)
		require.LessOrEqual(t, n, 3)
		seen[n]++
	}
	require.Contains(t, seen, 1, "lower bound must be reachable")
	require.Contains(t, seen, 3, "upper bound must be reachable")
}

func TestResolve_FloatRangeHalfOpen(t *testing.T) {
	r := NewResolver(rng.New(7))
	opt := randomOpt("rate", 0.0, 0.5, 2.5)

	for i := 0; i < 500; i++ {
		v := r.Resolve(context.Background(), []*config.OptionValue{opt})["rate"]
		f, ok := v.(float64)
		require.True(t, ok)
		require.GreaterOrEqual(t, f, 0.5)
		require.Less(t, f, 2.5)
	}
}

func TestResolve_InvertedBoundsSwap(t *testing.T) {
	r := NewResolver(rng.New(7))
	opt := randomOpt("level", 0, 9.0, 2.0)

	for i := 0; i < 200; i++ {
		v := r.Resolve(context.Background(), []*config.OptionValue{opt})["level"]
		n := v.(int)
		require.GreaterOrEqual(t, n, 2)
		require.LessOrEqual(t, n, 9)
	}
}

func TestResolve_NonNumericBoundFallsBackToStatic(t *testing.T) {
	r := NewResolver(rng.New(1))
	opt := randomOpt("speed", 1.5, "slow", 4.0)

	v := r.Resolve(context.Background(), []*config.OptionValue{opt})["speed"]
	require.Equal(t, 1.5, v)
}

func TestResolve_SamplesFreshEveryDispatch(t *testing.T) {
	r := NewResolver(rng.New(42))
	opt := randomOpt("jitter", 0.0, 0.0, 1000.5)

	first := r.Resolve(context.Background(), []*config.OptionValue{opt})["jitter"]
	distinct := false
	for i := 0; i < 50; i++ {
		if r.Resolve(context.Background(), []*config.OptionValue{opt})["jitter"] != first {
			distinct = true
			break
		}
	}
	require.True(t, distinct, "resolution must never memoize a sampled value")
}

func TestResolve_MixedNumericBoundTypes(t *testing.T) {
	r := NewResolver(rng.New(3))
	opt := randomOpt("count", 0, 2, int64(6))

	v := r.Resolve(context.Background(), []*config.OptionValue{opt})["count"]
	n := v.(int)
	require.GreaterOrEqual(t, n, 2)
	require.LessOrEqual(t, n, 6)
}
