package shiftreg

import (
	"errors"
	"fmt"
	"sync"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/pin"
)

const maxRegisters = 8

// Chain simulates a cascade of 74HC595 registers. Its three virtual pins
// can be handed to NewBitBang like real GPIOs: a rising CLOCK edge shifts
// DATA in, a rising LATCH edge copies the shift stage to the outputs.
type Chain struct {
	mu      sync.Mutex
	n       int
	mask    uint64
	shift   uint64
	latched uint64
	levels  [3]gpio.Level
	latches int
	onLatch func(out []byte)

	pins [3]*chainPin
}

const (
	dataLine = iota
	clockLine
	latchLine
)

// NewChain returns a chain of the given number of 8 bit registers.
func NewChain(registers int) *Chain {
	if registers <= 0 || registers > maxRegisters {
		panic(fmt.Sprintf("shiftreg: chain of %d registers", registers))
	}
	c := &Chain{n: registers}
	if registers == maxRegisters {
		c.mask = ^uint64(0)
	} else {
		c.mask = 1<<(8*uint(registers)) - 1
	}
	for i, name := range []string{"DATA", "CLOCK", "LATCH"} {
		c.pins[i] = &chainPin{chain: c, line: i, name: "SIM_" + name}
	}
	return c
}

// Pins returns the chain's DATA, CLOCK and LATCH inputs.
func (c *Chain) Pins() (data, clk, latch gpio.PinOut) {
	return c.pins[dataLine], c.pins[clockLine], c.pins[latchLine]
}

// OnLatch registers fn to run after every latch with the new outputs. The
// slice is only valid during the call.
func (c *Chain) OnLatch(fn func(out []byte)) {
	c.mu.Lock()
	c.onLatch = fn
	c.mu.Unlock()
}

// Outputs returns the latched parallel outputs. Index 0 is the register
// wired to the data input, so it holds the last byte transmitted.
func (c *Chain) Outputs() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bytes(c.latched)
}

// Shifted returns the shift stage, ordered like Outputs.
func (c *Chain) Shifted() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bytes(c.shift)
}

// Latches returns how many latch pulses were seen.
func (c *Chain) Latches() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.latches
}

func (c *Chain) String() string { return fmt.Sprintf("74HC595x%d", c.n) }

func (c *Chain) bytes(v uint64) []byte {
	out := make([]byte, c.n)
	for i := range out {
		out[i] = byte(v >> (8 * uint(i)))
	}
	return out
}

func (c *Chain) drive(line int, l gpio.Level) {
	c.mu.Lock()
	rising := bool(l && !c.levels[line])
	c.levels[line] = l
	var fn func([]byte)
	var out [maxRegisters]byte
	switch {
	case rising && line == clockLine:
		c.shift = (c.shift << 1) & c.mask
		if c.levels[dataLine] {
			c.shift |= 1
		}
	case rising && line == latchLine:
		c.latched = c.shift
		c.latches++
		if fn = c.onLatch; fn != nil {
			for i := 0; i < c.n; i++ {
				out[i] = byte(c.latched >> (8 * uint(i)))
			}
		}
	}
	c.mu.Unlock()
	if fn != nil {
		fn(out[:c.n])
	}
}

// chainPin is one of the chain's control inputs seen as a GPIO output.
type chainPin struct {
	chain *Chain
	line  int
	name  string
}

func (p *chainPin) String() string   { return p.chain.String() + "." + p.name }
func (p *chainPin) Name() string     { return p.name }
func (p *chainPin) Number() int      { return p.line }
func (p *chainPin) Function() string { return string(p.Func()) }
func (p *chainPin) Halt() error      { return nil }

func (p *chainPin) Func() pin.Func {
	p.chain.mu.Lock()
	defer p.chain.mu.Unlock()
	if p.chain.levels[p.line] {
		return gpio.OUT_HIGH
	}
	return gpio.OUT_LOW
}

func (p *chainPin) Out(l gpio.Level) error {
	p.chain.drive(p.line, l)
	return nil
}

func (p *chainPin) PWM(duty gpio.Duty, f physic.Frequency) error {
	return errors.New("shiftreg: simulated pin has no PWM")
}

var _ gpio.PinOut = &chainPin{}
