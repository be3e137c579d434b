// Package random supplies the integer source animations draw positions and
// directions from.
package random

import (
	"math/rand"
	"sync"
	"time"
)

// Source returns a pseudo-random integer in [0, n).
type Source interface {
	Intn(n int) int
}

// New returns a seeded source. A zero seed is replaced by the current time.
func New(seed int64) Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &locked{r: rand.New(rand.NewSource(seed))}
}

type locked struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *locked) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

// Fixed replays Values in order, reduced modulo n, wrapping at the end.
type Fixed struct {
	Values []int

	mu  sync.Mutex
	pos int
}

func (f *Fixed) Intn(n int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Values) == 0 {
		return 0
	}
	v := f.Values[f.pos%len(f.Values)]
	f.pos++
	v %= n
	if v < 0 {
		v += n
	}
	return v
}
