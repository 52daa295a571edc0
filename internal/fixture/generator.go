// Package fixture builds the canned and randomised demo data that stands in
// for hotel searches and lead enrichment. Nothing here performs I/O.
package fixture

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Generator is a seedable, goroutine-safe source for randomised fixtures.
// Two generators with the same seed produce the same sequence.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewGenerator seeds from the clock when seed is 0.
func NewGenerator(seed uint64) *Generator {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// between returns an int in [lo, hi].
func (g *Generator) between(lo, hi int) int {
	return lo + g.rng.IntN(hi-lo+1)
}

func (g *Generator) pick(options []string) string {
	return options[g.rng.IntN(len(options))]
}
