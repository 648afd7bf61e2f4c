// Package rng provides the injectable random source used by option
// randomization. Seeding it makes every sampled value reproducible, which
// the statistical tests rely on.
package rng

import (
	"math/rand"
	"sync"
	"time"
)

// Source yields the two primitives option resolution needs.
type Source interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64
	// IntN returns a uniform integer in [0, n).
	IntN(n int) int
}

// locked wraps math/rand behind a mutex; option batches sample concurrently.
type locked struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *locked) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *locked) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

// New returns a seeded source.
func New(seed int64) Source {
	return &locked{r: rand.New(rand.NewSource(seed))}
}

// Default returns a time-seeded source.
func Default() Source {
	return New(time.Now().UnixNano())
}
