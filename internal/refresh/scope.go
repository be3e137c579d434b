package refresh

import (
	"sync"

	"github.com/coreman2200/funtimes-cube4/internal/voxel"
)

// Scope watches latched frames and counts, per voxel, how often it was lit.
// It is the cube as an eye would integrate it.
type Scope struct {
	wiring Wiring

	mu      sync.Mutex
	lit     [Layers][voxel.Columns]int
	frames  [Layers]int
	invalid int
}

func NewScope(w Wiring) *Scope { return &Scope{wiring: w} }

// Observe records one frame.
func (s *Scope) Observe(f Frame) {
	layer, ok := s.wiring.Decode(f.LayerSelect)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !ok {
		s.invalid++
		return
	}
	s.frames[layer]++
	for c := 0; c < 8; c++ {
		if f.ColumnsLow&(1<<c) != 0 {
			s.lit[layer][c]++
		}
		if f.ColumnsHigh&(1<<c) != 0 {
			s.lit[layer][c+8]++
		}
	}
}

// Latched adapts a three register chain's outputs, ordered from the data
// input, to Observe. Use it as a shiftreg.Chain OnLatch hook.
func (s *Scope) Latched(out []byte) {
	if len(out) != 3 {
		return
	}
	s.Observe(Frame{LayerSelect: out[2], ColumnsHigh: out[1], ColumnsLow: out[0]})
}

// Levels returns the perceived brightness per voxel scaled to 0..16: the
// fraction of the layer's frames in which the voxel was lit.
func (s *Scope) Levels() [Layers][voxel.Columns]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out [Layers][voxel.Columns]int
	for l := range s.lit {
		if s.frames[l] == 0 {
			continue
		}
		for c := range s.lit[l] {
			out[l][c] = s.lit[l][c] * SubSteps / s.frames[l]
		}
	}
	return out
}

// Invalid counts frames whose layer select byte matched no single layer.
// Blank frames are counted here.
func (s *Scope) Invalid() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invalid
}

func (s *Scope) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lit = [Layers][voxel.Columns]int{}
	s.frames = [Layers]int{}
	s.invalid = 0
}
