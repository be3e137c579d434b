// Package panel reads the cube's two push buttons: one toggles power, the
// other cycles through the show modes.
package panel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/gpio"

	"github.com/coreman2200/funtimes-cube4/internal/clock"
)

const (
	// DefaultModes is the number of selectable shows on the stock firmware.
	DefaultModes = 3

	DefaultDebounce = 100 * time.Millisecond
	DefaultPoll     = 10 * time.Millisecond
)

// State is what the buttons select.
type State struct {
	On   bool
	Mode int
}

// Panel polls two active-low buttons wired to ground with pull-ups.
type Panel struct {
	// Modes is how many shows the mode button cycles through.
	Modes    int
	Debounce time.Duration
	Poll     time.Duration
	Delay    clock.Delay

	power, mode gpio.PinIn
	state       State
	held        [2]bool
}

// New configures both pins as pulled-up inputs. The cube starts on, in mode 0.
func New(power, mode gpio.PinIn) (*Panel, error) {
	if power == nil || mode == nil {
		return nil, errors.New("panel: nil button pin")
	}
	for _, p := range []gpio.PinIn{power, mode} {
		if err := p.In(gpio.PullUp, gpio.NoEdge); err != nil {
			return nil, fmt.Errorf("panel: %s: %w", p, err)
		}
	}
	return &Panel{
		Modes:    DefaultModes,
		Debounce: DefaultDebounce,
		Poll:     DefaultPoll,
		power:    power,
		mode:     mode,
		state:    State{On: true},
	}, nil
}

func (p *Panel) State() State { return p.state }

// Check samples both buttons once. A press counts on the transition to
// pressed; it flips the state and then waits out the debounce time.
func (p *Panel) Check(ctx context.Context) (State, bool, error) {
	changed := false
	if p.pressed(0, p.power) {
		p.state.On = !p.state.On
		changed = true
		log.Info().Bool("on", p.state.On).Msg("panel: power")
	}
	if p.pressed(1, p.mode) {
		n := p.Modes
		if n <= 0 {
			n = 1
		}
		p.state.Mode = (p.state.Mode + 1) % n
		changed = true
		log.Info().Int("mode", p.state.Mode).Msg("panel: mode")
	}
	if changed {
		if err := p.Delay.For(ctx, p.Debounce); err != nil {
			return p.state, changed, err
		}
	}
	return p.state, changed, nil
}

// Run polls until ctx is done, calling onChange after every state change.
func (p *Panel) Run(ctx context.Context, onChange func(State)) error {
	for {
		s, changed, err := p.Check(ctx)
		if err != nil {
			return err
		}
		if changed && onChange != nil {
			onChange(s)
		}
		if err := p.Delay.For(ctx, p.Poll); err != nil {
			return err
		}
	}
}

func (p *Panel) pressed(i int, pin gpio.PinIn) bool {
	down := pin.Read() == gpio.Low
	edge := down && !p.held[i]
	p.held[i] = down
	return edge
}
