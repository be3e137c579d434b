package refresh

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/coreman2200/funtimes-cube4/internal/rt"
	"github.com/coreman2200/funtimes-cube4/internal/shiftreg"
)

var (
	ErrRunning = errors.New("refresh: engine already running")
	ErrPeriod  = errors.New("refresh: period must be positive")
)

// Engine owns the refresh cursor and drives the link once per tick.
//
// Tick must only ever be called from one goroutine at a time; Run enforces
// this for the timer-driven case. The grid is read without locks.
type Engine struct {
	// Realtime asks Run to lock memory and raise the refresh thread's
	// priority. Failure is logged and ignored.
	Realtime bool
	// StatsEvery is how often Run logs tick statistics. Zero disables it.
	StatsEvery time.Duration

	grid   Reader
	link   shiftreg.Link
	wiring Wiring
	cursor Cursor

	running  atomic.Bool
	ticks    atomic.Uint64
	overruns atomic.Uint64
	maxTick  atomic.Int64
}

// Stats are cumulative counters since the engine was created.
type Stats struct {
	Ticks    uint64
	Overruns uint64
	MaxTick  time.Duration
}

func New(g Reader, l shiftreg.Link, w Wiring) *Engine {
	return &Engine{grid: g, link: l, wiring: w}
}

// Tick advances the cursor and emits its frame.
func (e *Engine) Tick() Frame {
	var f Frame
	e.cursor, f = Step(e.cursor, e.grid, e.wiring)
	f.Emit(e.link)
	e.ticks.Add(1)
	return f
}

// Cursor returns the current position. Only the goroutine calling Tick may
// use it.
func (e *Engine) Cursor() Cursor { return e.cursor }

func (e *Engine) Wiring() Wiring { return e.wiring }

// Blank switches every layer off.
func (e *Engine) Blank() { Blank().Emit(e.link) }

func (e *Engine) Stats() Stats {
	return Stats{
		Ticks:    e.ticks.Load(),
		Overruns: e.overruns.Load(),
		MaxTick:  time.Duration(e.maxTick.Load()),
	}
}

// Run ticks every period until ctx is done, then blanks the cube. It returns
// nil on cancellation and an error if the link reports a fault.
func (e *Engine) Run(ctx context.Context, period time.Duration) error {
	if period <= 0 {
		return ErrPeriod
	}
	if !e.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer e.running.Store(false)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	if e.Realtime {
		if err := rt.Elevate(); err != nil {
			log.Warn().Err(err).Msg("refresh: running without realtime priority")
		}
	}

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	log.Info().
		Dur("period", period).
		Str("wiring", e.wiring.String()).
		Float64("cube_hz", CubeRate(period)).
		Msg("refresh started")

	lastReport := time.Now()
	var lastTicks, lastOverruns uint64
	for {
		select {
		case <-ctx.Done():
			e.Blank()
			log.Info().Uint64("ticks", e.ticks.Load()).Msg("refresh stopped")
			return linkErr(e.link)

		case <-ticker.C:
			start := time.Now()
			e.Tick()
			e.record(time.Since(start), period)
			if err := linkErr(e.link); err != nil {
				return err
			}

			if e.StatsEvery > 0 && start.Sub(lastReport) >= e.StatsEvery {
				s := e.Stats()
				ev := log.Debug()
				if s.Overruns > lastOverruns {
					ev = log.Warn()
				}
				ev.Uint64("ticks", s.Ticks-lastTicks).
					Uint64("overruns", s.Overruns-lastOverruns).
					Dur("max_tick", s.MaxTick).
					Msg("refresh stats")
				lastReport, lastTicks, lastOverruns = start, s.Ticks, s.Overruns
			}
		}
	}
}

func (e *Engine) record(took, period time.Duration) {
	if took >= period {
		e.overruns.Add(1)
	}
	for {
		cur := e.maxTick.Load()
		if int64(took) <= cur || e.maxTick.CompareAndSwap(cur, int64(took)) {
			return
		}
	}
}

// CubeRate is the full-cube refresh rate in Hz for a tick period.
func CubeRate(period time.Duration) float64 {
	if period <= 0 {
		return 0
	}
	return float64(time.Second) / float64(period*Cycle)
}

type faulter interface{ Err() error }

func linkErr(l shiftreg.Link) error {
	if f, ok := l.(faulter); ok {
		if err := f.Err(); err != nil {
			return fmt.Errorf("refresh: %w", err)
		}
	}
	return nil
}
