package refresh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-cube4/internal/voxel"
)

func TestLitPredicate(t *testing.T) {
	for v := 0; v <= voxel.MaxBrightness; v++ {
		for s := 0; s < SubSteps; s++ {
			assert.Equal(t, v > s, Lit(uint8(v), s), "v=%d s=%d", v, s)
		}
	}
	for s := 0; s < SubSteps; s++ {
		assert.False(t, Lit(0, s))
		assert.True(t, Lit(16, s))
	}
}

func TestCursorCycleVisitsEveryPairOnce(t *testing.T) {
	c := Cursor{}
	seen := map[Cursor]bool{}
	prev := c
	for i := 0; i < Cycle; i++ {
		c = c.Next()
		require.False(t, seen[c], "cursor %v visited twice", c)
		seen[c] = true
		// row-major: layer outer, sub-step inner
		assert.Equal(t, (prev.Index()+1)%Cycle, c.Index())
		prev = c
	}
	assert.Len(t, seen, Cycle)
	assert.Equal(t, Cursor{}, c, "cycle length is exactly 64")
}

func TestCursorIsFunctionOfCount(t *testing.T) {
	c := Cursor{}
	for n := 1; n <= 3*Cycle+5; n++ {
		c = c.Next()
		assert.Equal(t, n%Cycle, c.Index())
	}
}

func TestLayerSelectRevA(t *testing.T) {
	want := []byte{0xFD, 0xFB, 0xF7, 0xEF}
	for l, b := range want {
		assert.Equal(t, b, RevA.Select(l), "layer %d", l)
		assert.Equal(t, byte(0xFF&^(0b10<<l)), RevA.Select(l))
	}
}

func TestLayerSelectRevB(t *testing.T) {
	want := []byte{0xEF, 0xDF, 0xBF, 0x7F}
	for l, b := range want {
		assert.Equal(t, b, RevB.Select(l), "layer %d", l)
	}
}

func TestWiringDecode(t *testing.T) {
	for _, w := range []Wiring{RevA, RevB} {
		for l := 0; l < Layers; l++ {
			got, ok := w.Decode(w.Select(l))
			require.True(t, ok)
			assert.Equal(t, l, got)
		}
		_, ok := w.Decode(0xFF)
		assert.False(t, ok, "blank selects nothing")
	}
}

func TestParseWiring(t *testing.T) {
	w, err := ParseWiring("")
	require.NoError(t, err)
	assert.Equal(t, RevA, w)
	w, err = ParseWiring("REV-B")
	require.NoError(t, err)
	assert.Equal(t, RevB, w)
	assert.Equal(t, "rev-b", w.String())
	_, err = ParseWiring("rev-c")
	assert.Error(t, err)
}

func TestSingleFullVoxelOnlyOnItsLayer(t *testing.T) {
	g := voxel.New()
	g.Set(2, 5, 16)

	c := Cursor{}
	for i := 0; i < Cycle; i++ {
		var f Frame
		c, f = Step(c, g, RevA)
		assert.Equal(t, RevA.Select(c.Layer), f.LayerSelect)
		assert.Zero(t, f.ColumnsHigh, "cursor %v", c)
		if c.Layer == 2 {
			assert.Equal(t, byte(1<<5), f.ColumnsLow, "cursor %v", c)
		} else {
			assert.Zero(t, f.ColumnsLow, "cursor %v", c)
		}
	}
}

func TestComposeSplitsColumns(t *testing.T) {
	g := voxel.New()
	g.Set(0, 0, 1)
	g.Set(0, 7, 16)
	g.Set(0, 8, 3)
	g.Set(0, 15, 16)

	f := Compose(Cursor{Layer: 0, SubStep: 0}, g, RevA)
	assert.Equal(t, Frame{LayerSelect: 0xFD, ColumnsLow: 0x81, ColumnsHigh: 0x81}, f)

	f = Compose(Cursor{Layer: 0, SubStep: 2}, g, RevA)
	assert.Equal(t, Frame{LayerSelect: 0xFD, ColumnsLow: 0x80, ColumnsHigh: 0x81}, f)

	f = Compose(Cursor{Layer: 0, SubStep: 3}, g, RevA)
	assert.Equal(t, Frame{LayerSelect: 0xFD, ColumnsLow: 0x80, ColumnsHigh: 0x80}, f)
}

func TestBlankFrame(t *testing.T) {
	assert.Equal(t, "FF 00 00", Blank().String())
}
