// Package sequence plays show programs: ordered lists of effects run one
// after another on the cube.
package sequence

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-cube4/internal/animation"
)

var (
	ErrEmpty   = errors.New("sequence: program has no clips")
	ErrRunning = errors.New("sequence: player already running")
)

// Player runs one Program at a time.
type Player struct {
	reg   *animation.Registry
	hooks Hooks

	mu    sync.Mutex
	state PlayerState
	prog  Program
	idx   int
}

func NewPlayer(reg *animation.Registry, h Hooks) *Player {
	return &Player{reg: reg, hooks: h, state: Idle}
}

// Load replaces the current program. Every clip must name a registered
// effect.
func (p *Player) Load(prog Program) error {
	if len(prog.Clips) == 0 {
		return ErrEmpty
	}
	for i, c := range prog.Clips {
		if _, ok := p.reg.Get(c.Effect); !ok {
			return fmt.Errorf("sequence: clip %d (%s): unknown effect %q", i, c.Name, c.Effect)
		}
		if c.Count < 0 || c.Repeats < 0 || c.DelayMS < 0 {
			return fmt.Errorf("sequence: clip %d (%s): negative parameter", i, c.Name)
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == Running {
		return ErrRunning
	}
	p.prog = prog
	p.idx = 0
	return nil
}

func (p *Player) State() PlayerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Clip returns the index of the current or last played clip.
func (p *Player) Clip() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.idx
}

// Run plays the loaded program on c. It returns nil when a non-looping
// program ends and ctx.Err() when cancelled.
func (p *Player) Run(ctx context.Context, c *animation.Canvas) error {
	p.mu.Lock()
	if p.state == Running {
		p.mu.Unlock()
		return ErrRunning
	}
	if len(p.prog.Clips) == 0 {
		p.mu.Unlock()
		return ErrEmpty
	}
	p.state = Running
	prog := p.prog
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.state = Idle
		p.mu.Unlock()
	}()

	for {
		for i, clip := range prog.Clips {
			p.mu.Lock()
			p.idx = i
			p.mu.Unlock()

			if p.hooks.OnClip != nil {
				p.hooks.OnClip(i, clip)
			}
			eff, _ := p.reg.Get(clip.Effect)
			log.Debug().Int("clip", i).Str("name", clip.Name).Str("effect", clip.Effect).Msg("clip start")

			if err := eff.Run(ctx, c, clip.Params()); err != nil {
				return err
			}
		}
		if !prog.Loop {
			if p.hooks.OnDone != nil {
				p.hooks.OnDone()
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
	}
}

// Params converts the clip's settings for its effect.
func (c Clip) Params() animation.Params {
	return animation.Params{
		Count:   c.Count,
		Repeats: c.Repeats,
		Delay:   time.Duration(c.DelayMS) * time.Millisecond,
	}
}
