package preview

import (
	"fmt"

	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/extra/devices/screen"

	"github.com/coreman2200/funtimes-cube4/internal/voxel"
)

// Console returns a drawer printing the strip as ANSI colored blocks.
func Console() display.Drawer {
	return screen.New(voxel.Cells)
}

// Strip returns a WS2812 drawer of 64 pixels on an SPI port.
func Strip(p spi.Port, freq physic.Frequency) (display.Drawer, error) {
	if freq == 0 {
		freq = 2500 * physic.KiloHertz
	}
	d, err := nrzled.NewSPI(p, &nrzled.Opts{
		NumPixels: voxel.Cells,
		Channels:  3,
		Freq:      freq,
	})
	if err != nil {
		return nil, fmt.Errorf("preview: nrzled: %w", err)
	}
	return d, nil
}
