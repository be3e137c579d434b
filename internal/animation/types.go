// Package animation holds the pattern generators. They only write the voxel
// grid and wait; the refresh engine takes care of showing the result.
package animation

import (
	"context"
	"sort"
	"time"

	"github.com/coreman2200/funtimes-cube4/internal/clock"
	"github.com/coreman2200/funtimes-cube4/internal/random"
	"github.com/coreman2200/funtimes-cube4/internal/voxel"
)

// Canvas is what an effect draws with.
type Canvas struct {
	Grid  *voxel.Grid
	Delay clock.Delay
	Rand  random.Source
}

func (c *Canvas) wait(ctx context.Context, d time.Duration) error {
	return c.Delay.For(ctx, d)
}

// Params tune a single run of an effect. Zero fields take the effect's
// defaults.
type Params struct {
	Count   int
	Repeats int
	Delay   time.Duration
}

func (p Params) or(def Params) Params {
	if p.Count == 0 {
		p.Count = def.Count
	}
	if p.Repeats == 0 {
		p.Repeats = def.Repeats
	}
	if p.Delay == 0 {
		p.Delay = def.Delay
	}
	return p
}

// Effect is a named pattern generator. Run blocks until the pattern is done
// or ctx is cancelled.
type Effect interface {
	Name() string
	Defaults() Params
	Run(ctx context.Context, c *Canvas, p Params) error
}

type effect struct {
	name     string
	defaults Params
	run      func(ctx context.Context, c *Canvas, p Params) error
}

func (e *effect) Name() string     { return e.name }
func (e *effect) Defaults() Params { return e.defaults }
func (e *effect) Run(ctx context.Context, c *Canvas, p Params) error {
	return e.run(ctx, c, p.or(e.defaults))
}

// Registry looks effects up by name.
type Registry struct{ m map[string]Effect }

func NewRegistry() *Registry { return &Registry{m: map[string]Effect{}} }

// Builtin returns a registry with every effect in this package.
func Builtin() *Registry {
	r := NewRegistry()
	for _, e := range []Effect{
		SelfTest, FullBright, LittleBright, SmoothDimming,
		Raindrops, Snake, Random, Layers,
	} {
		r.Register(e)
	}
	return r
}

func (r *Registry) Register(e Effect) {
	if e == nil {
		return
	}
	r.m[e.Name()] = e
}

func (r *Registry) Get(name string) (Effect, bool) { e, ok := r.m[name]; return e, ok }

// List returns effect names in sorted order.
func (r *Registry) List() []string {
	out := make([]string, 0, len(r.m))
	for k := range r.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
