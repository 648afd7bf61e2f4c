// Package surface provides the renderable container handle and the
// recycling pool that avoids host-level node construction churn.
package surface

import "sync"

// Geometry positions one surface within the stage, in percent units.
type Geometry struct {
	WidthPct  float64
	HeightPct float64
	TopPct    float64
	LeftPct   float64
	ZIndex    int
	Border    bool
}

// Surface is one renderable container handle. It is either idle inside the
// pool or exclusively owned by one live instance, never both.
type Surface struct {
	moduleType string
	id         uint64

	mu     sync.Mutex
	owner  string
	hidden bool
	geom   Geometry
	pooled bool
}

// ModuleType reports the module type this surface was built for. Surfaces
// are only ever recycled within their own type bucket.
func (s *Surface) ModuleType() string { return s.moduleType }

// ID reports the surface's stable identity, assigned at construction.
func (s *Surface) ID() uint64 { return s.id }

// Owner reports the placement id currently holding the surface, or "" when
// the surface is idle in the pool.
func (s *Surface) Owner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner
}

// Hide makes the surface a visual no-op without detaching it. Used before
// teardown so synchronous destroy work never produces a visible flash.
func (s *Surface) Hide() {
	s.mu.Lock()
	s.hidden = true
	s.mu.Unlock()
}

// Show reverses Hide.
func (s *Surface) Show() {
	s.mu.Lock()
	s.hidden = false
	s.mu.Unlock()
}

// Hidden reports whether the surface is currently hidden.
func (s *Surface) Hidden() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hidden
}

// ApplyGeometry positions the surface within the stage.
func (s *Surface) ApplyGeometry(g Geometry) {
	s.mu.Lock()
	s.geom = g
	s.mu.Unlock()
}

// Geometry returns the last applied geometry.
func (s *Surface) Geometry() Geometry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.geom
}

// reset clears per-owner state before the surface re-enters the pool.
func (s *Surface) reset() {
	s.mu.Lock()
	s.owner = ""
	s.hidden = false
	s.geom = Geometry{}
	s.mu.Unlock()
}
