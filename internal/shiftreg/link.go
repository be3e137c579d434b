// Package shiftreg drives a cascade of serial-in/parallel-out shift registers
// (74HC595 style) from three control lines: DATA, CLOCK and LATCH.
//
// A frame is written as one TransmitByte per register, most significant bit
// first, followed by a single Commit. The first byte transmitted ends up in
// the register furthest from the data input.
package shiftreg

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"

	"github.com/coreman2200/funtimes-cube4/internal/clock"
)

// Registers is the depth of the cube's chain: one layer register and two
// column registers.
const Registers = 3

// Link is the serial side of the chain.
type Link interface {
	// TransmitByte clocks b into the chain, MSB first.
	TransmitByte(b byte)
	// Commit pulses the latch so the parallel outputs present the last
	// shifted bits.
	Commit()
}

var ErrNilPin = errors.New("shiftreg: nil pin")

// BitBang drives the chain by toggling three GPIO outputs.
//
// Pin writes on real hardware do not fail in practice; if one does, the error
// is kept and every later call is a no-op until Reset.
type BitBang struct {
	data, clock, latch gpio.PinOut
	settle             time.Duration
	err                error
}

// NewBitBang returns a link on the given pins and drives CLOCK and LATCH low.
// settle, when non-zero, is spun after every clock and latch edge.
func NewBitBang(data, clk, latch gpio.PinOut, settle time.Duration) (*BitBang, error) {
	if data == nil || clk == nil || latch == nil {
		return nil, ErrNilPin
	}
	b := &BitBang{data: data, clock: clk, latch: latch, settle: settle}
	for _, p := range []gpio.PinOut{data, clk, latch} {
		if err := p.Out(gpio.Low); err != nil {
			return nil, fmt.Errorf("shiftreg: init %s: %w", p, err)
		}
	}
	return b, nil
}

func (b *BitBang) TransmitByte(v byte) {
	for mask := byte(0x80); mask != 0 && b.err == nil; mask >>= 1 {
		b.out(b.data, gpio.Level(v&mask != 0))
		b.pulse(b.clock)
	}
}

func (b *BitBang) Commit() { b.pulse(b.latch) }

// Err returns the first pin error seen since construction or Reset.
func (b *BitBang) Err() error { return b.err }

// Reset clears a recorded pin error.
func (b *BitBang) Reset() { b.err = nil }

func (b *BitBang) String() string {
	return fmt.Sprintf("bitbang{data=%s clock=%s latch=%s}", b.data, b.clock, b.latch)
}

func (b *BitBang) pulse(p gpio.PinOut) {
	b.out(p, gpio.High)
	clock.Spin(b.settle)
	b.out(p, gpio.Low)
	clock.Spin(b.settle)
}

func (b *BitBang) out(p gpio.PinOut, l gpio.Level) {
	if b.err != nil {
		return
	}
	if err := p.Out(l); err != nil {
		b.err = fmt.Errorf("shiftreg: %s: %w", p, err)
	}
}

var _ Link = &BitBang{}
