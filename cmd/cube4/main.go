package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/coreman2200/funtimes-cube4/internal/app"
	"github.com/coreman2200/funtimes-cube4/internal/config"
	"github.com/coreman2200/funtimes-cube4/internal/diagnostics"
	"github.com/coreman2200/funtimes-cube4/internal/panel"
	"github.com/coreman2200/funtimes-cube4/internal/preview"
	"github.com/coreman2200/funtimes-cube4/internal/refresh"
	"github.com/coreman2200/funtimes-cube4/internal/shiftreg"
)

func main() {
	// ---- Flags (explicitly set flags override config.yaml) ----
	var (
		configPath = flag.String("config", "config.yaml", "path to config.yaml")
		driver     = flag.String("driver", "sim", "link driver: gpio | spi | sim")
		wiring     = flag.String("wiring", "rev-a", "layer select wiring: rev-a | rev-b")
		tick       = flag.Duration("tick", config.DefaultTick, "refresh tick period")
		prev       = flag.String("preview", "off", "preview: console | nrzled | off")
		seed       = flag.Int64("seed", 0, "random seed, 0 for time based")
		realtime   = flag.Bool("realtime", false, "lock memory and raise the refresh thread priority")
		level      = flag.String("log-level", "info", "log level")
		simOnly    = flag.Bool("sim-only", false, "force simulation (no hardware output)")
	)
	flag.Parse()

	// ---- Logging ----
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	// ---- Load config.yaml (optional) ----
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Warn().Err(err).Str("path", *configPath).Msg("config load failed; proceeding with flags")
		cfg = config.Defaults()
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "driver":
			cfg.Driver = *driver
		case "wiring":
			cfg.Wiring = *wiring
		case "tick":
			cfg.Tick = *tick
		case "preview":
			cfg.Preview.Driver = *prev
		case "seed":
			cfg.Seed = *seed
		case "realtime":
			cfg.Realtime = *realtime
		case "log-level":
			cfg.LogLevel = *level
		}
	})
	if *simOnly {
		cfg.Driver = "sim"
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	} else {
		log.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level; using info")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	if _, err := host.Init(); err != nil {
		log.Warn().Err(err).Msg("periph host init failed; only sim is available")
		cfg.Driver = "sim"
	}

	// ---- Link ----
	var ports []io.Closer
	link, scope, port, err := openLink(cfg)
	if err != nil {
		log.Warn().Err(err).Str("driver", cfg.Driver).Msg("link init failed; falling back to SIM")
		cfg.Driver = "sim"
		link, scope, port, _ = openLink(cfg)
	}
	ports = append(ports, port)

	hw := app.HWConfig{
		Link:       link,
		Wiring:     cfg.WiringValue(),
		Tick:       cfg.Tick,
		Realtime:   cfg.Realtime,
		StatsEvery: cfg.StatsEvery,
		PreviewFPS: cfg.Preview.FPS,
		Seed:       cfg.Seed,
		Modes:      cfg.Modes,
	}
	if cfg.Buttons.Power != "" {
		p, err := openPanel(cfg.Buttons)
		if err != nil {
			log.Warn().Err(err).Msg("buttons unavailable; staying in mode 0")
		} else {
			hw.Panel = p
		}
	}
	if d, port, err := openPreview(cfg.Preview); err != nil {
		log.Warn().Err(err).Str("preview", cfg.Preview.Driver).Msg("preview unavailable")
	} else {
		hw.Drawer = d
		ports = append(ports, port)
	}

	core, err := app.InitCore(hw)
	if err != nil {
		log.Fatal().Err(err).Msg("init")
	}
	report(diagnostics.Check(cfg.Tick, refresh.Stats{}))

	// ---- Run until SIGINT/SIGTERM ----
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	log.Info().
		Str("driver", cfg.Driver).
		Str("link", fmt.Sprint(link)).
		Str("wiring", hw.Wiring.String()).
		Dur("tick", cfg.Tick).
		Msg("cube starting")

	runErr := core.Run(ctx)
	report(diagnostics.Check(cfg.Tick, core.Engine.Stats()))
	if scope != nil {
		log.Info().Int("invalid_frames", scope.Invalid()).Msg("sim scope")
	}
	closePorts(ports)
	if runErr != nil {
		log.Error().Err(runErr).Msg("cube stopped")
		stop()
		os.Exit(1)
	}
	log.Info().Msg("shut down")
}

// openLink builds the serial link for cfg.Driver. The sim driver also
// returns a scope watching the simulated register outputs; the spi driver
// returns the port to close at shutdown.
func openLink(cfg *config.Config) (shiftreg.Link, *refresh.Scope, io.Closer, error) {
	switch cfg.Driver {
	case "gpio":
		data, clk, latch, err := outPins(cfg.Pins.Data, cfg.Pins.Clock, cfg.Pins.Latch)
		if err != nil {
			return nil, nil, nil, err
		}
		l, err := shiftreg.NewBitBang(data, clk, latch, cfg.Settle)
		if err != nil {
			return nil, nil, nil, err
		}
		return l, nil, nil, nil

	case "spi":
		port, err := spireg.Open(cfg.SPI.Dev)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("spi %q: %w", cfg.SPI.Dev, err)
		}
		l, err := spiLink(port, cfg)
		if err != nil {
			port.Close()
			return nil, nil, nil, err
		}
		return l, nil, port, nil

	default:
		chain := shiftreg.NewChain(shiftreg.Registers)
		scope := refresh.NewScope(cfg.WiringValue())
		chain.OnLatch(scope.Latched)
		data, clk, latch := chain.Pins()
		l, err := shiftreg.NewBitBang(data, clk, latch, 0)
		if err != nil {
			return nil, nil, nil, err
		}
		return l, scope, nil, nil
	}
}

func spiLink(port spi.Port, cfg *config.Config) (*shiftreg.SPI, error) {
	speed := physic.Frequency(cfg.SPI.SpeedHz) * physic.Hertz
	if speed == 0 {
		speed = config.DefaultSpeedHz * physic.Hertz
	}
	conn, err := port.Connect(speed, spi.Mode0, 8)
	if err != nil {
		return nil, fmt.Errorf("spi %s: %w", port, err)
	}
	_, _, latch, err := outPins("", "", cfg.Pins.Latch)
	if err != nil {
		return nil, err
	}
	l, err := shiftreg.NewSPI(conn, latch, cfg.Settle)
	if err != nil {
		return nil, fmt.Errorf("spi latch %q: %w", cfg.Pins.Latch, err)
	}
	return l, nil
}

func outPins(names ...string) (data, clk, latch gpio.PinOut, err error) {
	pins := make([]gpio.PinOut, len(names))
	for i, n := range names {
		if n == "" {
			continue
		}
		p := gpioreg.ByName(n)
		if p == nil {
			return nil, nil, nil, fmt.Errorf("no gpio pin %q", n)
		}
		pins[i] = p
	}
	return pins[0], pins[1], pins[2], nil
}

func openPanel(b config.Buttons) (*panel.Panel, error) {
	power, mode := gpioreg.ByName(b.Power), gpioreg.ByName(b.Mode)
	if power == nil || mode == nil {
		return nil, fmt.Errorf("no gpio pin %q or %q", b.Power, b.Mode)
	}
	p, err := panel.New(power, mode)
	if err != nil {
		return nil, err
	}
	if b.Debounce > 0 {
		p.Debounce = b.Debounce
	}
	if b.Poll > 0 {
		p.Poll = b.Poll
	}
	return p, nil
}

// openPreview returns the drawer for p.Driver and, for nrzled, the SPI port
// behind it.
func openPreview(p config.Preview) (display.Drawer, io.Closer, error) {
	switch p.Driver {
	case "console":
		return preview.Console(), nil, nil
	case "nrzled":
		port, err := spireg.Open(p.SPIDev)
		if err != nil {
			return nil, nil, err
		}
		d, err := preview.Strip(port, physic.Frequency(p.SpeedHz)*physic.Hertz)
		if err != nil {
			port.Close()
			return nil, nil, err
		}
		return d, port, nil
	case "", "off":
		return nil, nil, nil
	}
	return nil, nil, errors.New("unknown preview driver")
}

func closePorts(ports []io.Closer) {
	for _, p := range ports {
		if p == nil {
			continue
		}
		if err := p.Close(); err != nil {
			log.Warn().Err(err).Str("port", fmt.Sprint(p)).Msg("close")
		}
	}
}

func report(ds []diagnostics.Diagnostic) {
	for _, d := range ds {
		ev := log.Info()
		switch d.Severity {
		case diagnostics.Warn:
			ev = log.Warn()
		case diagnostics.Err:
			ev = log.Error()
		}
		ev.Str("code", d.Code).Fields(d.Evidence).Strs("fixes", d.SuggestedFixes).Msg(d.Summary)
	}
}
