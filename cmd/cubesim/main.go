// Command cubesim runs shows against a simulated register chain and prints
// what the cube would show: latched frames in hex and, after every effect
// delay, the brightness an eye would integrate next to the grid contents.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/coreman2200/funtimes-cube4/internal/animation"
	"github.com/coreman2200/funtimes-cube4/internal/clock"
	"github.com/coreman2200/funtimes-cube4/internal/random"
	"github.com/coreman2200/funtimes-cube4/internal/refresh"
	"github.com/coreman2200/funtimes-cube4/internal/sequence"
	"github.com/coreman2200/funtimes-cube4/internal/shiftreg"
	"github.com/coreman2200/funtimes-cube4/internal/voxel"
)

func main() {
	var (
		programPath = flag.String("program", "", "path to a show program (YAML); overrides -effect")
		effect      = flag.String("effect", "smooth", "effect to run")
		count       = flag.Int("count", 0, "effect count, 0 for its default")
		repeats     = flag.Int("repeats", 0, "effect repeats, 0 for its default")
		seed        = flag.Int64("seed", 1, "random seed")
		wiringName  = flag.String("wiring", "rev-a", "layer select wiring: rev-a | rev-b")
		cycles      = flag.Int("cycles", 1, "full refresh cycles simulated per effect delay")
		steps       = flag.Int("steps", 8, "effect delays to simulate")
		frames      = flag.Bool("frames", false, "print every latched frame")
	)
	flag.Parse()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	w, err := refresh.ParseWiring(*wiringName)
	if err != nil {
		log.Fatal().Err(err).Msg("wiring")
	}

	prog := sequence.Program{Clips: []sequence.Clip{{
		Name: *effect, Effect: *effect, Count: *count, Repeats: *repeats,
	}}}
	if *programPath != "" {
		if prog, err = loadProgram(*programPath); err != nil {
			log.Fatal().Err(err).Str("path", *programPath).Msg("program")
		}
	}
	if prog.Seed != 0 && !isSet("seed") {
		*seed = prog.Seed
	}

	sim := newSim(w, os.Stdout, *frames)
	player := sequence.NewPlayer(animation.Builtin(), sequence.Hooks{
		OnClip: func(i int, c sequence.Clip) { fmt.Fprintf(os.Stdout, "== clip %d %s (%s)\n", i, c.Name, c.Effect) },
	})
	if err := player.Load(prog); err != nil {
		log.Fatal().Err(err).Msg("load")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	n := 0
	fake := &clock.Fake{OnSleep: func(d time.Duration) {
		n++
		sim.run(*cycles, d)
		if n >= *steps {
			cancel()
		}
	}}
	canvas := &animation.Canvas{Grid: sim.grid, Delay: clock.Delay{Sleeper: fake}, Rand: random.New(*seed)}

	err = player.Run(ctx, canvas)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("run")
	}
	fmt.Fprintf(os.Stdout, "simulated %s of effect time, %d latches, %d mismatches\n",
		fake.Elapsed(), sim.chain.Latches(), sim.mismatches)
}

func loadProgram(path string) (sequence.Program, error) {
	var p sequence.Program
	b, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	err = yaml.Unmarshal(b, &p)
	return p, err
}

func isSet(name string) bool {
	set := false
	flag.Visit(func(f *flag.Flag) { set = set || f.Name == name })
	return set
}

type sim struct {
	grid   *voxel.Grid
	chain  *shiftreg.Chain
	engine *refresh.Engine
	scope  *refresh.Scope
	out    io.Writer

	mismatches int
}

func newSim(w refresh.Wiring, out io.Writer, frames bool) *sim {
	s := &sim{
		grid:  voxel.New(),
		chain: shiftreg.NewChain(shiftreg.Registers),
		scope: refresh.NewScope(w),
		out:   out,
	}
	s.chain.OnLatch(func(o []byte) {
		s.scope.Latched(o)
		if frames {
			fmt.Fprintf(out, "  latch %02X %02X %02X\n", o[2], o[1], o[0])
		}
	})
	data, clk, latch := s.chain.Pins()
	link, err := shiftreg.NewBitBang(data, clk, latch, 0)
	if err != nil {
		log.Fatal().Err(err).Msg("link")
	}
	s.engine = refresh.New(s.grid, link, w)
	return s
}

// run ticks the engine through whole refresh cycles and prints the grid
// beside what the scope saw.
func (s *sim) run(cycles int, d time.Duration) {
	if cycles < 1 {
		cycles = 1
	}
	s.scope.Reset()
	for i := 0; i < cycles*refresh.Cycle; i++ {
		s.engine.Tick()
	}
	want := s.grid.Snapshot()
	seen := s.scope.Levels()
	fmt.Fprintf(s.out, "-- after %s delay\n", d)
	for l := voxel.Layers - 1; l >= 0; l-- {
		fmt.Fprintf(s.out, "L%d grid ", l)
		for c := 0; c < voxel.Columns; c++ {
			fmt.Fprintf(s.out, "%x", min(int(want[l][c]), 15))
		}
		fmt.Fprint(s.out, "  seen ")
		for c := 0; c < voxel.Columns; c++ {
			fmt.Fprintf(s.out, "%x", min(seen[l][c], 15))
			if seen[l][c] != int(want[l][c]) {
				s.mismatches++
			}
		}
		fmt.Fprintln(s.out)
	}
}
