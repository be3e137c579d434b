package animation

import (
	"context"
	"time"

	"github.com/coreman2200/funtimes-cube4/internal/voxel"
)

// SelfTest walks every voxel on and off, then every layer, then blinks the
// whole cube. Delay is the per-voxel step.
var SelfTest Effect = &effect{
	name:     "selftest",
	defaults: Params{Delay: 200 * time.Millisecond},
	run: func(ctx context.Context, c *Canvas, p Params) error {
		g := c.Grid
		g.Fill(0)
		for l := 0; l < voxel.Layers; l++ {
			for col := 0; col < voxel.Columns; col++ {
				g.On(l, col)
				if err := c.wait(ctx, p.Delay); err != nil {
					return err
				}
				g.Off(l, col)
			}
		}

		g.Fill(15)
		for l := 0; l < voxel.Layers; l++ {
			for col := 0; col < voxel.Columns; col++ {
				g.Off(l, col)
				if err := c.wait(ctx, p.Delay); err != nil {
					return err
				}
				g.On(l, col)
			}
		}

		g.Fill(0)
		for _, b := range []int{voxel.MaxBrightness, 0} {
			for l := 0; l < voxel.Layers; l++ {
				g.FillLayer(l, b)
				if err := c.wait(ctx, 10*p.Delay); err != nil {
					return err
				}
			}
		}

		for _, b := range []int{15, 0, 15, 0} {
			g.Fill(b)
			if err := c.wait(ctx, time.Second); err != nil {
				return err
			}
		}
		return nil
	},
}

// FullBright fills the cube at level 15 and holds for Delay.
var FullBright Effect = &effect{
	name:     "full",
	defaults: Params{Delay: time.Second},
	run: func(ctx context.Context, c *Canvas, p Params) error {
		c.Grid.Fill(15)
		return c.wait(ctx, p.Delay)
	},
}

// LittleBright fills the cube at level 1 and holds for Delay.
var LittleBright Effect = &effect{
	name:     "dim",
	defaults: Params{Delay: time.Second},
	run: func(ctx context.Context, c *Canvas, p Params) error {
		c.Grid.Fill(1)
		return c.wait(ctx, p.Delay)
	},
}

// SmoothDimming ramps the whole cube 0..3 up then 4..0 down, Count times,
// and leaves it dark.
var SmoothDimming Effect = &effect{
	name:     "smooth",
	defaults: Params{Count: 5, Delay: 20 * time.Millisecond},
	run: func(ctx context.Context, c *Canvas, p Params) error {
		for n := 0; n < p.Count; n++ {
			for b := 0; b < 4; b++ {
				c.Grid.Fill(b)
				if err := c.wait(ctx, p.Delay); err != nil {
					return err
				}
			}
			for b := 4; b >= 0; b-- {
				c.Grid.Fill(b)
				if err := c.wait(ctx, p.Delay); err != nil {
					return err
				}
			}
		}
		c.Grid.Fill(0)
		return nil
	},
}

// dropLevels is the raindrop brightness per layer, dimmest at the bottom.
var dropLevels = [voxel.Layers]int{1, 2, 5, 15}

// Raindrops lets a drop fall down a random column, Count times.
var Raindrops Effect = &effect{
	name:     "raindrops",
	defaults: Params{Count: 20, Delay: 50 * time.Millisecond},
	run: func(ctx context.Context, c *Canvas, p Params) error {
		for n := 0; n < p.Count; n++ {
			col := c.Rand.Intn(voxel.Columns)
			for l := voxel.Layers - 1; l >= 0; l-- {
				c.Grid.Set(l, col, dropLevels[l])
				err := c.wait(ctx, p.Delay)
				c.Grid.Set(l, col, 0)
				if err != nil {
					return err
				}
			}
		}
		return nil
	},
}

// Snake walks one lit voxel randomly through the cube for Count steps. At a
// face it bounces back one voxel instead of wrapping.
var Snake Effect = &effect{
	name:     "snake",
	defaults: Params{Count: 200, Delay: 80 * time.Millisecond},
	run: func(ctx context.Context, c *Canvas, p Params) error {
		pt := voxel.PointAt(c.Rand.Intn(voxel.Cells))
		for n := 0; n < p.Count; n++ {
			pt = SnakeStep(pt, c.Rand.Intn(6))
			c.Grid.SetPoint(pt, voxel.MaxBrightness)
			err := c.wait(ctx, p.Delay)
			c.Grid.SetPoint(pt, 0)
			if err != nil {
				return err
			}
		}
		return nil
	},
}

// SnakeStep moves pt one voxel in direction dir: 0 -x, 1 +x, 2 +y, 3 -y,
// 4 -z, 5 +z. Leaving the cube reflects: -1 becomes 1 and 4 becomes 2.
func SnakeStep(pt voxel.Point, dir int) voxel.Point {
	switch dir {
	case 0:
		pt.X = bounce(pt.X - 1)
	case 1:
		pt.X = bounce(pt.X + 1)
	case 2:
		pt.Y = bounce(pt.Y + 1)
	case 3:
		pt.Y = bounce(pt.Y - 1)
	case 4:
		pt.Z = bounce(pt.Z - 1)
	case 5:
		pt.Z = bounce(pt.Z + 1)
	}
	return pt
}

func bounce(v int) int {
	switch {
	case v < 0:
		return 1
	case v >= voxel.Side:
		return voxel.Side - 2
	}
	return v
}

// Random lights Count random voxels one by one, then clears the cube; Repeats
// times.
var Random Effect = &effect{
	name:     "random",
	defaults: Params{Repeats: 10, Count: 8, Delay: 50 * time.Millisecond},
	run: func(ctx context.Context, c *Canvas, p Params) error {
		c.Grid.Fill(0)
		for r := 0; r < p.Repeats; r++ {
			for n := 0; n < p.Count; n++ {
				c.Grid.SetPoint(voxel.PointAt(c.Rand.Intn(voxel.Cells)), voxel.MaxBrightness)
				if err := c.wait(ctx, p.Delay); err != nil {
					return err
				}
			}
			c.Grid.Fill(0)
		}
		return nil
	},
}

// Layers fills the cube from the bottom layer up, then clears it.
var Layers Effect = &effect{
	name:     "layers",
	defaults: Params{Delay: 500 * time.Millisecond},
	run: func(ctx context.Context, c *Canvas, p Params) error {
		c.Grid.Fill(0)
		if err := c.wait(ctx, p.Delay); err != nil {
			return err
		}
		for l := 0; l < voxel.Layers; l++ {
			c.Grid.FillLayer(l, 15)
			if err := c.wait(ctx, p.Delay); err != nil {
				return err
			}
		}
		c.Grid.Fill(0)
		return c.wait(ctx, p.Delay)
	},
}
