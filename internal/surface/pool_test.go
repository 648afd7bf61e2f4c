package surface

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPool_AcquireConstructsPerType(t *testing.T) {
	p := NewPool()

	a := p.Acquire("solid", "p1")
	b := p.Acquire("solid", "p2")
	c := p.Acquire("marquee", "p3")

	require.Equal(t, 2, p.Created("solid"))
	require.Equal(t, 1, p.Created("marquee"))
	require.NotEqual(t, a.ID(), b.ID())
	require.Equal(t, "solid", a.ModuleType())
	require.Equal(t, "p1", a.Owner())
	require.Equal(t, "marquee", c.ModuleType())
}

func TestPool_ReleaseThenAcquireReuses(t *testing.T) {
	p := NewPool()

	s := p.Acquire("solid", "p1")
	s.ApplyGeometry(Geometry{WidthPct: 50, HeightPct: 50, ZIndex: 2})
	s.Hide()
	p.Release(s)

	require.Equal(t, 1, p.IdleCount("solid"))

	got := p.Acquire("solid", "p2")
	require.Equal(t, s.ID(), got.ID(), "idle surface is reused, not rebuilt")
	require.Equal(t, 1, p.Created("solid"))
	require.Equal(t, "p2", got.Owner())
	require.False(t, got.Hidden(), "recycled surface comes back clean")
	require.Equal(t, Geometry{}, got.Geometry())
}

func TestPool_ReuseIsLIFO(t *testing.T) {
	p := NewPool()

	first := p.Acquire("solid", "a")
	second := p.Acquire("solid", "b")
	p.Release(first)
	p.Release(second)

	require.Equal(t, second.ID(), p.Acquire("solid", "c").ID())
	require.Equal(t, first.ID(), p.Acquire("solid", "d").ID())
}

func TestPool_DoubleReleaseIsNoOp(t *testing.T) {
	p := NewPool()

	s := p.Acquire("solid", "p1")
	p.Release(s)
	p.Release(s)

	require.Equal(t, 1, p.IdleCount("solid"), "a handle never appears in the bucket twice")
}

func TestPool_ReleaseNilIsNoOp(t *testing.T) {
	p := NewPool()
	p.Release(nil)
	require.Equal(t, 0, p.IdleCount("solid"))
}

func TestPool_BucketsNeverCrossTypes(t *testing.T) {
	p := NewPool()

	s := p.Acquire("solid", "p1")
	p.Release(s)

	got := p.Acquire("marquee", "p2")
	require.NotEqual(t, s.ID(), got.ID())
	require.Equal(t, 1, p.IdleCount("solid"))
}
