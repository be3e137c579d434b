package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreman2200/funtimes-cube4/internal/refresh"
	"github.com/coreman2200/funtimes-cube4/internal/sequence"
)

func TestDefaultsValid(t *testing.T) {
	c := Defaults()
	require.NoError(t, c.Validate())
	assert.Equal(t, 150*time.Microsecond, c.Tick)
	assert.Equal(t, refresh.RevA, c.WiringValue())
	assert.Equal(t, "sim", c.Driver)
	assert.Equal(t, Pins{Data: "GPIO17", Clock: "GPIO27", Latch: "GPIO22"}, c.Pins)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
driver: gpio
wiring: rev-b
tick: 200us
pins:
  data: GPIO5
  clock: GPIO6
  latch: GPIO13
buttons:
  power: GPIO23
  mode: GPIO24
modes:
  - loop: true
    clips:
      - effect: snake
        count: 50
        delay_ms: 40
`), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, "gpio", c.Driver)
	assert.Equal(t, refresh.RevB, c.WiringValue())
	assert.Equal(t, 200*time.Microsecond, c.Tick)
	assert.Equal(t, "GPIO13", c.Pins.Latch)
	assert.Equal(t, 100*time.Millisecond, c.Buttons.Debounce, "untouched keys keep defaults")
	require.Len(t, c.Modes, 1)
	assert.Equal(t, sequence.Clip{Effect: "snake", Count: 50, DelayMS: 40}, c.Modes[0].Clips[0])
}

func TestSaveLoadKeepsModes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cube.yaml")
	c := Defaults()
	c.Modes = []sequence.Program{sequence.Default()}
	require.NoError(t, Save(path, c))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(*Config){
		"driver":  func(c *Config) { c.Driver = "pwm" },
		"wiring":  func(c *Config) { c.Wiring = "rev-c" },
		"tick":    func(c *Config) { c.Tick = 0 },
		"settle":  func(c *Config) { c.Settle = -time.Microsecond },
		"preview": func(c *Config) { c.Preview.Driver = "hdmi" },
		"buttons": func(c *Config) { c.Buttons.Power = "GPIO23" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := Defaults()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
