package animation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-cube4/internal/clock"
	"github.com/coreman2200/funtimes-cube4/internal/random"
	"github.com/coreman2200/funtimes-cube4/internal/voxel"
)

type frames [][voxel.Layers][voxel.Columns]uint8

// canvas returns a canvas whose delays snapshot the grid instead of waiting.
func canvas(values ...int) (*Canvas, *clock.Fake, *frames) {
	g := voxel.New()
	shots := &frames{}
	f := &clock.Fake{OnSleep: func(time.Duration) { *shots = append(*shots, g.Snapshot()) }}
	return &Canvas{Grid: g, Delay: clock.Delay{Sleeper: f}, Rand: &random.Fixed{Values: values}}, f, shots
}

func lit(s [voxel.Layers][voxel.Columns]uint8) map[[2]int]uint8 {
	out := map[[2]int]uint8{}
	for l := range s {
		for c, v := range s[l] {
			if v != 0 {
				out[[2]int{l, c}] = v
			}
		}
	}
	return out
}

func assertDark(t *testing.T, g *voxel.Grid) {
	t.Helper()
	assert.Empty(t, lit(g.Snapshot()))
}

func TestSmoothDimmingRamp(t *testing.T) {
	c, _, shots := canvas()
	require.NoError(t, SmoothDimming.Run(context.Background(), c, Params{Count: 1, Delay: time.Millisecond}))

	var levels []uint8
	for _, s := range *shots {
		levels = append(levels, s[3][15])
		assert.Equal(t, s[0][0], s[3][15], "whole cube filled evenly")
	}
	assert.Equal(t, []uint8{0, 1, 2, 3, 4, 3, 2, 1, 0}, levels)
	assertDark(t, c.Grid)
}

func TestSmoothDimmingDefaults(t *testing.T) {
	c, f, _ := canvas()
	require.NoError(t, SmoothDimming.Run(context.Background(), c, Params{}))
	assert.Equal(t, 5*9, f.Calls())
	assert.Equal(t, 5*9*20*time.Millisecond, f.Elapsed())
}

func TestRaindropFallsDownOneColumn(t *testing.T) {
	c, _, shots := canvas(5)
	require.NoError(t, Raindrops.Run(context.Background(), c, Params{Count: 1, Delay: time.Millisecond}))

	require.Len(t, *shots, voxel.Layers)
	want := []map[[2]int]uint8{
		{{3, 5}: 15},
		{{2, 5}: 5},
		{{1, 5}: 2},
		{{0, 5}: 1},
	}
	for i, s := range *shots {
		assert.Equal(t, want[i], lit(s), "step %d", i)
	}
	assertDark(t, c.Grid)
}

func TestSnakeStepReflects(t *testing.T) {
	tests := []struct {
		from voxel.Point
		dir  int
		want voxel.Point
	}{
		{voxel.Point{X: 2, Y: 2, Z: 2}, 0, voxel.Point{X: 1, Y: 2, Z: 2}},
		{voxel.Point{X: 2, Y: 2, Z: 2}, 1, voxel.Point{X: 3, Y: 2, Z: 2}},
		{voxel.Point{X: 2, Y: 2, Z: 2}, 2, voxel.Point{X: 2, Y: 3, Z: 2}},
		{voxel.Point{X: 2, Y: 2, Z: 2}, 3, voxel.Point{X: 2, Y: 1, Z: 2}},
		{voxel.Point{X: 2, Y: 2, Z: 2}, 4, voxel.Point{X: 2, Y: 2, Z: 1}},
		{voxel.Point{X: 2, Y: 2, Z: 2}, 5, voxel.Point{X: 2, Y: 2, Z: 3}},
		{voxel.Point{X: 0}, 0, voxel.Point{X: 1}},
		{voxel.Point{X: 3}, 1, voxel.Point{X: 2}},
		{voxel.Point{Y: 3}, 2, voxel.Point{Y: 2}},
		{voxel.Point{Y: 0}, 3, voxel.Point{Y: 1}},
		{voxel.Point{Z: 0}, 4, voxel.Point{Z: 1}},
		{voxel.Point{Z: 3}, 5, voxel.Point{Z: 2}},
	}
	for _, tt := range tests {
		got := SnakeStep(tt.from, tt.dir)
		assert.Equal(t, tt.want, got, "%v dir %d", tt.from, tt.dir)
		assert.True(t, got.Valid())
	}
}

func TestSnakeWalk(t *testing.T) {
	// start at voxel 0, then directions +x, -x, +x
	c, _, shots := canvas(0, 1)
	require.NoError(t, Snake.Run(context.Background(), c, Params{Count: 3, Delay: time.Millisecond}))

	want := []voxel.Point{{X: 1}, {X: 0}, {X: 1}}
	require.Len(t, *shots, len(want))
	for i, s := range *shots {
		l, col := want[i].Cell()
		assert.Equal(t, map[[2]int]uint8{{l, col}: voxel.MaxBrightness}, lit(s), "step %d", i)
	}
	assertDark(t, c.Grid)
}

func TestRandomScatterAndClear(t *testing.T) {
	c, _, shots := canvas(0, 21, 63)
	require.NoError(t, Random.Run(context.Background(), c, Params{Repeats: 2, Count: 3, Delay: time.Millisecond}))

	require.Len(t, *shots, 6)
	assert.Len(t, lit((*shots)[0]), 1)
	assert.Len(t, lit((*shots)[2]), 3)
	assert.Len(t, lit((*shots)[3]), 1, "cleared between repeats")
	assertDark(t, c.Grid)
}

func TestLayersFillBottomUp(t *testing.T) {
	c, f, shots := canvas()
	require.NoError(t, Layers.Run(context.Background(), c, Params{Delay: time.Millisecond}))
	assert.Equal(t, 6, f.Calls())
	for i := 1; i <= voxel.Layers; i++ {
		assert.Len(t, lit((*shots)[i]), i*voxel.Columns)
	}
	assertDark(t, c.Grid)
}

func TestSelfTestSequence(t *testing.T) {
	c, f, shots := canvas()
	require.NoError(t, SelfTest.Run(context.Background(), c, Params{Delay: time.Millisecond}))
	assert.Equal(t, 64+64+8+4, f.Calls())
	assert.Equal(t, 128*time.Millisecond+80*time.Millisecond+4*time.Second, f.Elapsed())

	first := lit((*shots)[0])
	assert.Equal(t, map[[2]int]uint8{{0, 0}: voxel.MaxBrightness}, first)
	assert.Len(t, lit((*shots)[64]), 63, "one voxel off at a time")
	assertDark(t, c.Grid)
}

func TestStaticFills(t *testing.T) {
	c, f, _ := canvas()
	require.NoError(t, FullBright.Run(context.Background(), c, Params{}))
	assert.Equal(t, uint8(15), c.Grid.Get(2, 2))
	assert.Equal(t, time.Second, f.Elapsed(), "holds for the default delay")
	require.NoError(t, LittleBright.Run(context.Background(), c, Params{}))
	assert.Equal(t, uint8(1), c.Grid.Get(2, 2))
}

func TestEffectsStopOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, name := range Builtin().List() {
		e, _ := Builtin().Get(name)
		c, _, _ := canvas(1, 2, 3)
		err := e.Run(ctx, c, Params{Delay: time.Millisecond})
		assert.ErrorIs(t, err, context.Canceled, name)
	}
}

func TestRegistry(t *testing.T) {
	r := Builtin()
	assert.Equal(t, []string{"dim", "full", "layers", "raindrops", "random", "selftest", "smooth", "snake"}, r.List())
	_, ok := r.Get("ocean")
	assert.False(t, ok)
	r.Register(nil)
	assert.Len(t, r.List(), 8)
}
