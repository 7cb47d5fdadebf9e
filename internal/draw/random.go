package draw

import (
	"math/rand/v2"
	"sync"
)

// Random is the uniform source used for sampling. IntN returns a value in [0, n).
type Random interface {
	IntN(n int) int
}

type globalRandom struct{}

func (globalRandom) IntN(n int) int { return rand.IntN(n) }

// DefaultRandom is the process-wide generator. It is safe for concurrent use.
var DefaultRandom Random = globalRandom{}

// LockedRandom serializes access to a seeded generator so it can be shared by
// several sessions.
type LockedRandom struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSeeded returns a reproducible generator for the given seed.
func NewSeeded(seed uint64) *LockedRandom {
	return &LockedRandom{r: rand.New(rand.NewPCG(seed, seed))}
}

func (l *LockedRandom) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

// sample picks count distinct elements uniformly at random. It runs a partial
// Fisher-Yates shuffle over a copy, so candidates keep their order. Requires
// 0 <= count <= len(candidates).
func sample[T any](candidates []T, count int, random Random) []T {
	pool := make([]T, len(candidates))
	copy(pool, candidates)
	for i := 0; i < count; i++ {
		j := i + random.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:count]
}
