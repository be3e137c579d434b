// Package refresh multiplexes the voxel grid onto the shift register chain.
//
// Each tick advances a (layer, sub-step) cursor and emits one frame: the
// active-low layer select byte and the two column bytes for that layer. A
// voxel with brightness v is lit on the sub-steps s where v > s, so over the
// 16 sub-steps of its layer it is lit exactly v times.
package refresh

import (
	"fmt"

	"github.com/coreman2200/funtimes-cube4/internal/shiftreg"
	"github.com/coreman2200/funtimes-cube4/internal/voxel"
)

const (
	Layers   = voxel.Layers
	SubSteps = 16
	// Cycle is the number of ticks to show every layer once at full depth.
	Cycle = Layers * SubSteps
)

// Cursor is the engine's position in the refresh cycle.
type Cursor struct {
	Layer   int
	SubStep int
}

// Next advances the sub-step, moving to the next layer when it wraps.
func (c Cursor) Next() Cursor {
	c.SubStep++
	if c.SubStep == SubSteps {
		c.SubStep = 0
		c.Layer++
	}
	if c.Layer == Layers {
		c.Layer = 0
	}
	return c
}

// Index returns the cursor's position in [0, Cycle).
func (c Cursor) Index() int { return c.Layer*SubSteps + c.SubStep }

func (c Cursor) String() string { return fmt.Sprintf("L%d/S%02d", c.Layer, c.SubStep) }

// Frame is the three bytes shifted out per tick.
type Frame struct {
	LayerSelect byte
	ColumnsHigh byte // columns 8-15, bit c-8
	ColumnsLow  byte // columns 0-7, bit c
}

// Emit writes the frame in chain order and latches it. The layer byte goes
// first because its register sits at the far end of the chain.
func (f Frame) Emit(l shiftreg.Link) {
	l.TransmitByte(f.LayerSelect)
	l.TransmitByte(f.ColumnsHigh)
	l.TransmitByte(f.ColumnsLow)
	l.Commit()
}

func (f Frame) String() string {
	return fmt.Sprintf("%02X %02X %02X", f.LayerSelect, f.ColumnsHigh, f.ColumnsLow)
}

// Reader is the grid as seen by the engine.
type Reader interface {
	Get(layer, column int) uint8
}

// Lit reports whether a voxel of brightness v is on during sub-step s.
func Lit(v uint8, s int) bool { return int(v) > s }

// Step is the pure transition: advance the cursor and compute its frame.
func Step(c Cursor, g Reader, w Wiring) (Cursor, Frame) {
	c = c.Next()
	return c, Compose(c, g, w)
}

// Compose computes the frame for cursor c without advancing it.
func Compose(c Cursor, g Reader, w Wiring) Frame {
	f := Frame{LayerSelect: w.Select(c.Layer)}
	for col := 0; col < 8; col++ {
		if Lit(g.Get(c.Layer, col), c.SubStep) {
			f.ColumnsLow |= 1 << col
		}
	}
	for col := 8; col < 16; col++ {
		if Lit(g.Get(c.Layer, col), c.SubStep) {
			f.ColumnsHigh |= 1 << (col - 8)
		}
	}
	return f
}

// Blank is the frame with every layer switched off and no column driven.
func Blank() Frame { return Frame{LayerSelect: 0xFF} }
