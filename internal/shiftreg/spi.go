package shiftreg

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/spi"

	"github.com/coreman2200/funtimes-cube4/internal/clock"
)

// SPI drives the chain with a hardware SPI port (MOSI to DATA, SCLK to CLOCK)
// and a GPIO for LATCH. Bytes are buffered until Commit and sent in a single
// transaction, so the port must be in mode 0 with 8 bit words, MSB first.
type SPI struct {
	conn   spi.Conn
	latch  gpio.PinOut
	settle time.Duration

	buf [Registers]byte
	n   int
	err error
}

func NewSPI(conn spi.Conn, latch gpio.PinOut, settle time.Duration) (*SPI, error) {
	if conn == nil || latch == nil {
		return nil, ErrNilPin
	}
	if err := latch.Out(gpio.Low); err != nil {
		return nil, fmt.Errorf("shiftreg: init %s: %w", latch, err)
	}
	return &SPI{conn: conn, latch: latch, settle: settle}, nil
}

// TransmitByte queues b. Past the chain depth the oldest queued byte is
// dropped, which is what the registers would do with the extra bits.
func (s *SPI) TransmitByte(b byte) {
	if s.n == len(s.buf) {
		copy(s.buf[:], s.buf[1:])
		s.n--
	}
	s.buf[s.n] = b
	s.n++
}

// Commit flushes queued bytes and pulses LATCH. With nothing queued it only
// re-latches what the registers already hold.
func (s *SPI) Commit() {
	if s.err != nil {
		s.n = 0
		return
	}
	if s.n > 0 {
		if err := s.conn.Tx(s.buf[:s.n], nil); err != nil {
			s.err = fmt.Errorf("shiftreg: spi tx: %w", err)
		}
		s.n = 0
	}
	if s.err == nil {
		if err := s.latch.Out(gpio.High); err != nil {
			s.err = fmt.Errorf("shiftreg: %s: %w", s.latch, err)
			return
		}
		clock.Spin(s.settle)
		if err := s.latch.Out(gpio.Low); err != nil {
			s.err = fmt.Errorf("shiftreg: %s: %w", s.latch, err)
			return
		}
		clock.Spin(s.settle)
	}
}

func (s *SPI) Err() error { return s.err }

func (s *SPI) Reset() { s.err = nil }

func (s *SPI) String() string {
	return fmt.Sprintf("spi{%s latch=%s}", s.conn, s.latch)
}

var _ Link = &SPI{}
