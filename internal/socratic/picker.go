package socratic

import (
	"math/rand/v2"
	"sync"
)

// Picker chooses which of n templates to use for a strategy.
type Picker interface {
	Pick(s Strategy, n int) int
}

// RoundRobin cycles through templates in order, independently per strategy.
// The zero value is ready to use.
type RoundRobin struct {
	mu   sync.Mutex
	next map[Strategy]int
}

func (r *RoundRobin) Pick(s Strategy, n int) int {
	if n <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.next == nil {
		r.next = make(map[Strategy]int)
	}
	i := r.next[s] % n
	r.next[s] = i + 1
	return i
}

// Seeded picks uniformly at random from a reproducible source.
type Seeded struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewSeeded returns a Seeded picker. Equal seeds yield equal sequences.
func NewSeeded(seed uint64) *Seeded {
	return &Seeded{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (p *Seeded) Pick(_ Strategy, n int) int {
	if n <= 0 {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.IntN(n)
}

// First always picks the first template.
type First struct{}

func (First) Pick(Strategy, int) int { return 0 }
