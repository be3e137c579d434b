package app

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/display"

	"github.com/coreman2200/funtimes-cube4/internal/animation"
	"github.com/coreman2200/funtimes-cube4/internal/clock"
	"github.com/coreman2200/funtimes-cube4/internal/panel"
	"github.com/coreman2200/funtimes-cube4/internal/preview"
	"github.com/coreman2200/funtimes-cube4/internal/random"
	"github.com/coreman2200/funtimes-cube4/internal/refresh"
	"github.com/coreman2200/funtimes-cube4/internal/sequence"
	"github.com/coreman2200/funtimes-cube4/internal/shiftreg"
	"github.com/coreman2200/funtimes-cube4/internal/voxel"
)

// Core is one cube: its grid, the refresh engine scanning it and the show
// player drawing into it.
type Core struct {
	Grid    *voxel.Grid
	Engine  *refresh.Engine
	Reg     *animation.Registry
	Player  *sequence.Player
	Canvas  *animation.Canvas
	Panel   *panel.Panel     // nil without buttons
	Preview *preview.Preview // nil without a preview drawer
	Modes   []sequence.Program
	Tick    time.Duration
}

type HWConfig struct {
	Link       shiftreg.Link
	Wiring     refresh.Wiring
	Tick       time.Duration
	Realtime   bool
	StatsEvery time.Duration

	Panel      *panel.Panel
	Drawer     display.Drawer
	PreviewFPS int

	// Delay and Rand default to wall time and a seeded source.
	Delay clock.Delay
	Rand  random.Source
	Seed  int64

	// Modes default to DefaultModes.
	Modes []sequence.Program
}

// DefaultModes are the shows behind the mode button: the firmware loop,
// the snake, and a steady self-test.
func DefaultModes() []sequence.Program {
	return []sequence.Program{
		sequence.Default(),
		{Version: "show.v1", Loop: true, Clips: []sequence.Clip{
			{Name: "snake", Effect: "snake"},
		}},
		{Version: "show.v1", Loop: true, Clips: []sequence.Clip{
			{Name: "test", Effect: "selftest"},
			{Name: "layers", Effect: "layers"},
			{Name: "glow", Effect: "full", DelayMS: 2000},
		}},
	}
}

func InitCore(hw HWConfig) (*Core, error) {
	if hw.Link == nil {
		return nil, errors.New("app: no link")
	}
	if hw.Tick <= 0 {
		return nil, refresh.ErrPeriod
	}
	modes := hw.Modes
	if len(modes) == 0 {
		modes = DefaultModes()
	}
	rnd := hw.Rand
	if rnd == nil {
		rnd = random.New(hw.Seed)
	}

	grid := voxel.New()
	eng := refresh.New(grid, hw.Link, hw.Wiring)
	eng.Realtime = hw.Realtime
	eng.StatsEvery = hw.StatsEvery

	reg := animation.Builtin()
	player := sequence.NewPlayer(reg, sequence.Hooks{})
	// Reject bad programs before anything starts.
	for i, m := range modes {
		if err := player.Load(m); err != nil {
			return nil, fmt.Errorf("app: mode %d: %w", i, err)
		}
	}

	c := &Core{
		Grid:   grid,
		Engine: eng,
		Reg:    reg,
		Player: player,
		Canvas: &animation.Canvas{Grid: grid, Delay: hw.Delay, Rand: rnd},
		Panel:  hw.Panel,
		Modes:  modes,
		Tick:   hw.Tick,
	}
	if c.Panel != nil {
		c.Panel.Modes = len(modes)
	}
	if hw.Drawer != nil {
		c.Preview = preview.New(grid, hw.Drawer)
		if hw.PreviewFPS > 0 {
			c.Preview.FPS = hw.PreviewFPS
		}
	}
	return c, nil
}
