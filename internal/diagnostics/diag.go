// Package diagnostics turns refresh timing into human readable findings.
package diagnostics

import (
	"time"

	"periph.io/x/conn/v3/physic"

	"github.com/coreman2200/funtimes-cube4/internal/refresh"
)

type Severity string

const (
	Info Severity = "info"
	Warn Severity = "warning"
	Err  Severity = "error"
)

type Diagnostic struct {
	Severity       Severity       `json:"severity"`
	Code           string         `json:"code"`
	Summary        string         `json:"summary"`
	Detail         string         `json:"detail,omitempty"`
	LikelyCauses   []string       `json:"likely_causes,omitempty"`
	SuggestedFixes []string       `json:"suggested_fixes,omitempty"`
	Evidence       map[string]any `json:"evidence,omitempty"`
}

// FlickerFusion is the lowest full-cube rate that reads as steady light.
const FlickerFusion = 100 * physic.Hertz

// CubeRate is the full-cube refresh frequency for a tick period.
func CubeRate(tick time.Duration) physic.Frequency {
	if tick <= 0 {
		return 0
	}
	return physic.PeriodToFrequency(tick * refresh.Cycle)
}

// Check reviews the configured tick and the engine's counters.
func Check(tick time.Duration, s refresh.Stats) []Diagnostic {
	var out []Diagnostic
	rate := CubeRate(tick)
	ev := map[string]any{"tick": tick.String(), "cube_rate": rate.String()}

	switch {
	case tick <= 0:
		out = append(out, Diagnostic{
			Severity: Err, Code: "REFRESH.TICK", Summary: "Tick period is not positive",
			Evidence: ev,
		})
		return out
	case rate < FlickerFusion:
		out = append(out, Diagnostic{
			Severity:       Warn,
			Code:           "REFRESH.FLICKER",
			Summary:        "Full-cube refresh below flicker fusion",
			Detail:         "64 ticks per frame at this period give " + rate.String(),
			SuggestedFixes: []string{"lower tick to 150us or less"},
			Evidence:       ev,
		})
	default:
		out = append(out, Diagnostic{Severity: Info, Code: "REFRESH.RATE", Summary: "Refresh rate ok", Evidence: ev})
	}

	if s.Overruns > 0 {
		out = append(out, Diagnostic{
			Severity:     Warn,
			Code:         "REFRESH.OVERRUN",
			Summary:      "Tick body exceeded the tick period",
			LikelyCauses: []string{"slow GPIO backend", "settle delay too long", "CPU contention"},
			SuggestedFixes: []string{
				"use the spi driver",
				"enable realtime",
				"raise tick",
			},
			Evidence: map[string]any{
				"ticks": s.Ticks, "overruns": s.Overruns, "max_tick": s.MaxTick.String(),
			},
		})
	} else if s.Ticks > 0 && s.MaxTick > tick/2 {
		out = append(out, Diagnostic{
			Severity: Info,
			Code:     "REFRESH.HEADROOM",
			Summary:  "Tick body uses more than half the period",
			Evidence: map[string]any{"max_tick": s.MaxTick.String()},
		})
	}
	return out
}
