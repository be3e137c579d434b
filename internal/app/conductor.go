package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/coreman2200/funtimes-cube4/internal/panel"
)

// Run drives the cube until ctx is done or the link fails. The refresh
// engine, the show, the buttons and the preview each get a goroutine; the
// show follows the panel state, starting in mode 0 with the cube on.
func (c *Core) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	changes := make(chan panel.State)

	g.Go(func() error {
		return c.Engine.Run(ctx, c.Tick)
	})
	g.Go(func() error {
		c.conduct(ctx, changes)
		return nil
	})
	if c.Panel != nil {
		g.Go(func() error {
			return quiet(c.Panel.Run(ctx, func(s panel.State) {
				select {
				case changes <- s:
				case <-ctx.Done():
				}
			}))
		})
	}
	if c.Preview != nil {
		g.Go(func() error {
			return quiet(c.Preview.Run(ctx))
		})
	}
	return quiet(g.Wait())
}

// conduct owns the show goroutine. Each state change stops the current
// show; power off leaves the grid dark, power on plays the selected mode.
func (c *Core) conduct(ctx context.Context, changes <-chan panel.State) {
	var (
		stop func()
		done chan struct{}
	)
	halt := func() {
		if stop != nil {
			stop()
			<-done
			stop = nil
		}
	}
	play := func(s panel.State) {
		halt()
		if !s.On {
			c.Grid.Fill(0)
			log.Info().Msg("cube off")
			return
		}
		prog := c.Modes[s.Mode%len(c.Modes)]
		if err := c.Player.Load(prog); err != nil {
			log.Error().Err(err).Int("mode", s.Mode).Msg("load show")
			return
		}
		var sctx context.Context
		sctx, stop = context.WithCancel(ctx)
		done = make(chan struct{})
		log.Info().Int("mode", s.Mode).Int("clips", len(prog.Clips)).Msg("show start")
		go func(done chan struct{}) {
			defer close(done)
			if err := c.Player.Run(sctx, c.Canvas); quiet(err) != nil {
				log.Error().Err(err).Msg("show stopped")
			}
		}(done)
	}

	play(panel.State{On: true})
	for {
		select {
		case <-ctx.Done():
			halt()
			return
		case s := <-changes:
			play(s)
		}
	}
}

func quiet(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
