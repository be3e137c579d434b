// Package preview mirrors the voxel grid onto a periph display.Drawer: an
// ANSI console strip when running without hardware, or a 64 pixel WS2812
// strip next to the cube.
package preview

import (
	"context"
	"image"
	"image/color"
	"time"

	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/display"

	"github.com/coreman2200/funtimes-cube4/internal/voxel"
)

const DefaultFPS = 30

// Source is the grid being mirrored.
type Source interface {
	Snapshot() [voxel.Layers][voxel.Columns]uint8
}

// Preview periodically draws Source on a Drawer.
type Preview struct {
	FPS int

	src    Source
	drawer display.Drawer
	img    *image.Gray
}

func New(src Source, d display.Drawer) *Preview {
	return &Preview{
		FPS:    DefaultFPS,
		src:    src,
		drawer: d,
		img:    image.NewGray(image.Rect(0, 0, voxel.Cells, 1)),
	}
}

// Frame renders a snapshot as a 64x1 gray strip: pixel layer*16+column,
// brightness scaled from 0..16 to 0..255.
func Frame(s [voxel.Layers][voxel.Columns]uint8, dst *image.Gray) {
	for l := range s {
		for c, v := range s[l] {
			dst.SetGray(l*voxel.Columns+c, 0, color.Gray{Y: Level(v)})
		}
	}
}

// Level maps a voxel brightness to an 8 bit gray level.
func Level(v uint8) uint8 {
	if v >= voxel.MaxBrightness {
		return 0xFF
	}
	return uint8(int(v) * 0xFF / voxel.MaxBrightness)
}

// Draw renders and draws one frame.
func (p *Preview) Draw() error {
	Frame(p.src.Snapshot(), p.img)
	return p.drawer.Draw(p.drawer.Bounds(), p.img, image.Point{})
}

// Run draws at FPS until ctx is done, then halts the drawer. Draw errors are
// logged and skipped.
func (p *Preview) Run(ctx context.Context) error {
	fps := p.FPS
	if fps <= 0 {
		fps = DefaultFPS
	}
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	failing := false
	for {
		select {
		case <-ctx.Done():
			return p.drawer.Halt()
		case <-ticker.C:
			if err := p.Draw(); err != nil {
				if !failing {
					log.Warn().Err(err).Str("drawer", p.drawer.String()).Msg("preview draw failed")
				}
				failing = true
				continue
			}
			failing = false
		}
	}
}
