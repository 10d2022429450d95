package wheel

import (
	"math/rand/v2"
	"sync"
)

// Rand 平局裁决与圈数抖动使用的随机源，*rand.Rand 直接满足
type Rand interface {
	IntN(n int) int
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRand seed 为 0 时使用随机种子
func NewRand(seed uint64) Rand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &lockedRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}
