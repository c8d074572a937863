package engine

import "math/rand"

// RNG is the only source of nondeterminism in a run. It is injected so a run
// can be replayed exactly from a seed.
type RNG interface {
	// Intn returns a uniform integer in [0, n). Panics if n <= 0.
	Intn(n int) int
}

type seededRNG struct {
	r *rand.Rand
}

// NewSeededRNG returns an RNG backed by math/rand with an explicit seed.
func NewSeededRNG(seed int64) RNG {
	return &seededRNG{r: rand.New(rand.NewSource(seed))}
}

func (s *seededRNG) Intn(n int) int {
	return s.r.Intn(n)
}
