package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/funtimes-cube4/internal/refresh"
	"github.com/coreman2200/funtimes-cube4/internal/sequence"
)

type Pins struct {
	Data  string `yaml:"data"`  // e.g. GPIO17
	Clock string `yaml:"clock"` // e.g. GPIO27
	Latch string `yaml:"latch"` // e.g. GPIO22
}

type SPI struct {
	Dev     string `yaml:"dev"`      // e.g. /dev/spidev0.0, "" for the first bus
	SpeedHz int    `yaml:"speed_hz"` // e.g. 8000000
}

type Buttons struct {
	Power    string        `yaml:"power"` // "" disables the panel
	Mode     string        `yaml:"mode"`
	Debounce time.Duration `yaml:"debounce"`
	Poll     time.Duration `yaml:"poll"`
}

type Preview struct {
	Driver  string `yaml:"driver"` // "console" | "nrzled" | "off"
	FPS     int    `yaml:"fps"`
	SPIDev  string `yaml:"spi_dev"`
	SpeedHz int    `yaml:"speed_hz"`
}

type Config struct {
	Driver string        `yaml:"driver"` // "gpio" | "spi" | "sim"
	Wiring string        `yaml:"wiring"` // "rev-a" | "rev-b"
	Tick   time.Duration `yaml:"tick"`
	Settle time.Duration `yaml:"settle"`

	Pins    Pins    `yaml:"pins"`
	SPI     SPI     `yaml:"spi,omitempty"`
	Buttons Buttons `yaml:"buttons"`
	Preview Preview `yaml:"preview"`

	Seed       int64         `yaml:"seed"`
	LogLevel   string        `yaml:"log_level"`
	StatsEvery time.Duration `yaml:"stats_every"`
	Realtime   bool          `yaml:"realtime"`

	// Modes are the shows selected by the mode button, in order.
	Modes []sequence.Program `yaml:"modes,omitempty"`
}

const (
	DefaultTick    = 150 * time.Microsecond
	DefaultSpeedHz = 8_000_000
)

// Defaults runs the simulated chain; the pin names are the stock board's
// wiring on a Raspberry Pi header for when driver is switched to gpio.
func Defaults() *Config {
	return &Config{
		Driver: "sim",
		Wiring: refresh.RevA.String(),
		Tick:   DefaultTick,
		Pins:   Pins{Data: "GPIO17", Clock: "GPIO27", Latch: "GPIO22"},
		SPI:    SPI{SpeedHz: DefaultSpeedHz},
		Buttons: Buttons{
			Debounce: 100 * time.Millisecond,
			Poll:     10 * time.Millisecond,
		},
		Preview:    Preview{Driver: "off", FPS: 30},
		LogLevel:   "info",
		StatsEvery: 10 * time.Second,
	}
}

// Load reads path over Defaults, so a partial file only overrides what it
// names.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Defaults()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate checks the settings main cannot fall back from.
func (c *Config) Validate() error {
	switch c.Driver {
	case "gpio", "spi", "sim":
	default:
		return fmt.Errorf("config: unknown driver %q", c.Driver)
	}
	if _, err := refresh.ParseWiring(c.Wiring); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Tick <= 0 {
		return fmt.Errorf("config: tick must be positive, got %s", c.Tick)
	}
	if c.Settle < 0 {
		return fmt.Errorf("config: settle must not be negative, got %s", c.Settle)
	}
	switch c.Preview.Driver {
	case "", "off", "console", "nrzled":
	default:
		return fmt.Errorf("config: unknown preview driver %q", c.Preview.Driver)
	}
	if (c.Buttons.Power == "") != (c.Buttons.Mode == "") {
		return fmt.Errorf("config: buttons need both power and mode pins")
	}
	return nil
}

// WiringValue returns the parsed wiring. Call Validate first.
func (c *Config) WiringValue() refresh.Wiring {
	w, _ := refresh.ParseWiring(c.Wiring)
	return w
}
