package surface

import "sync"

// Pool recycles surfaces keyed by module type. Acquire pops an idle surface
// for the requested type or constructs a fresh one; Release returns a
// surface to its type bucket after its instance has been destroyed.
//
// The pool is the only globally shared mutable resource in the core, so the
// move between "pooled" and "owned" happens entirely under one lock.
type Pool struct {
	mu      sync.Mutex
	idle    map[string][]*Surface
	created map[string]int
	nextID  uint64
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	return &Pool{
		idle:    make(map[string][]*Surface),
		created: make(map[string]int),
	}
}

// Acquire hands out a surface for the given module type, owned by the given
// placement. An idle surface is reused when available (LIFO, so recently
// warm handles come back first); otherwise a fresh one is constructed.
func (p *Pool) Acquire(moduleType, owner string) *Surface {
	p.mu.Lock()
	defer p.mu.Unlock()

	var s *Surface
	if bucket := p.idle[moduleType]; len(bucket) > 0 {
		s = bucket[len(bucket)-1]
		p.idle[moduleType] = bucket[:len(bucket)-1]
	} else {
		p.nextID++
		s = &Surface{moduleType: moduleType, id: p.nextID}
		p.created[moduleType]++
	}
	s.pooled = false
	s.mu.Lock()
	s.owner = owner
	s.mu.Unlock()
	return s
}

// Release detaches a surface from its instance and returns it to the idle
// bucket for its type. Releasing an already idle surface is a no-op, so a
// destroy-after-deactivate race can never double-pool a handle.
func (p *Pool) Release(s *Surface) {
	if s == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if s.pooled {
		return
	}
	s.pooled = true
	s.reset()
	p.idle[s.moduleType] = append(p.idle[s.moduleType], s)
}

// IdleCount reports the number of idle surfaces for one module type.
func (p *Pool) IdleCount(moduleType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.idle[moduleType])
}

// Created reports how many surfaces have ever been constructed fresh for
// one module type.
func (p *Pool) Created(moduleType string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.created[moduleType]
}
