package refresh

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-cube4/internal/shiftreg"
	"github.com/coreman2200/funtimes-cube4/internal/voxel"
)

// fakeLink captures the transmitted bytes per commit.
type fakeLink struct {
	pending []byte
	frames  [][]byte
	err     error
}

func (l *fakeLink) TransmitByte(b byte) { l.pending = append(l.pending, b) }
func (l *fakeLink) Commit() {
	l.frames = append(l.frames, l.pending)
	l.pending = nil
}
func (l *fakeLink) Err() error { return l.err }

func TestTickEmitsProtocolOrder(t *testing.T) {
	g := voxel.New()
	g.Set(0, 3, 16)  // low byte
	g.Set(0, 12, 16) // high byte
	link := &fakeLink{}
	e := New(g, link, RevA)

	f := e.Tick()
	assert.Equal(t, Cursor{Layer: 0, SubStep: 1}, e.Cursor())
	require.Len(t, link.frames, 1)
	assert.Equal(t, []byte{0xFD, 1 << 4, 1 << 3}, link.frames[0],
		"layer select, then columns 8-15, then columns 0-7")
	assert.Equal(t, Frame{LayerSelect: 0xFD, ColumnsHigh: 1 << 4, ColumnsLow: 1 << 3}, f)
	assert.Equal(t, uint64(1), e.Stats().Ticks)
}

func TestEngineThroughChainMatchesGrid(t *testing.T) {
	g := voxel.New()
	for l := 0; l < voxel.Layers; l++ {
		for c := 0; c < voxel.Columns; c++ {
			g.Set(l, c, (l*voxel.Columns+c)%17)
		}
	}

	chain := shiftreg.NewChain(shiftreg.Registers)
	d, clk, latch := chain.Pins()
	link, err := shiftreg.NewBitBang(d, clk, latch, 0)
	require.NoError(t, err)
	scope := NewScope(RevB)
	chain.OnLatch(scope.Latched)

	e := New(g, link, RevB)
	for i := 0; i < 2*Cycle; i++ {
		e.Tick()
	}

	levels := scope.Levels()
	snap := g.Snapshot()
	for l := 0; l < voxel.Layers; l++ {
		for c := 0; c < voxel.Columns; c++ {
			assert.Equal(t, int(snap[l][c]), levels[l][c], "layer %d column %d", l, c)
		}
	}
	assert.Zero(t, scope.Invalid())
	assert.Equal(t, 2*Cycle, chain.Latches())

	e.Blank()
	assert.Equal(t, []byte{0, 0, 0xFF}, chain.Outputs())
	assert.Equal(t, 1, scope.Invalid())
}

func TestRunTicksAndStopsBlank(t *testing.T) {
	g := voxel.New()
	g.Fill(16)
	link := &fakeLink{}
	e := New(g, link, RevA)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	require.NoError(t, e.Run(ctx, time.Millisecond))

	require.NotEmpty(t, link.frames)
	assert.Equal(t, []byte{0xFF, 0, 0}, link.frames[len(link.frames)-1], "blanked on exit")
	assert.Equal(t, uint64(len(link.frames)-1), e.Stats().Ticks)
}

func TestRunRejectsBadPeriodAndSecondOwner(t *testing.T) {
	e := New(voxel.New(), &fakeLink{}, RevA)
	assert.ErrorIs(t, e.Run(context.Background(), 0), ErrPeriod)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx, time.Millisecond) }()
	require.Eventually(t, func() bool { return e.Stats().Ticks > 0 }, time.Second, time.Millisecond)

	assert.ErrorIs(t, e.Run(ctx, time.Millisecond), ErrRunning)
	cancel()
	assert.NoError(t, <-done)
}

func TestRunStopsOnLinkFault(t *testing.T) {
	boom := errors.New("pin fault")
	link := &fakeLink{err: boom}
	e := New(voxel.New(), link, RevA)
	err := e.Run(context.Background(), time.Millisecond)
	assert.ErrorIs(t, err, boom)
}

func TestRecordTracksOverrunsAndMax(t *testing.T) {
	e := New(voxel.New(), &fakeLink{}, RevA)
	e.record(50*time.Microsecond, 100*time.Microsecond)
	e.record(150*time.Microsecond, 100*time.Microsecond)
	e.record(70*time.Microsecond, 100*time.Microsecond)
	s := e.Stats()
	assert.Equal(t, uint64(1), s.Overruns)
	assert.Equal(t, 150*time.Microsecond, s.MaxTick)
}

func TestCubeRate(t *testing.T) {
	assert.InDelta(t, 104.17, CubeRate(150*time.Microsecond), 0.01)
	assert.Zero(t, CubeRate(0))
}
