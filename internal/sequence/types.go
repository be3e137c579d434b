package sequence

// Clip is one step of a show: an effect and how to run it.
type Clip struct {
	Name    string `yaml:"name,omitempty" json:"name,omitempty"`
	Effect  string `yaml:"effect" json:"effect"`
	Count   int    `yaml:"count,omitempty" json:"count,omitempty"`
	Repeats int    `yaml:"repeats,omitempty" json:"repeats,omitempty"`
	DelayMS int    `yaml:"delay_ms,omitempty" json:"delayMs,omitempty"`
}

// Program is an ordered list of clips.
type Program struct {
	Version string `yaml:"version,omitempty" json:"version,omitempty"` // e.g. "show.v1"
	Loop    bool   `yaml:"loop,omitempty" json:"loop,omitempty"`
	Seed    int64  `yaml:"seed,omitempty" json:"seed,omitempty"`
	Clips   []Clip `yaml:"clips" json:"clips"`
}

// PlayerState enumerates player states.
type PlayerState string

const (
	Idle    PlayerState = "idle"
	Running PlayerState = "running"
)

// Hooks are optional callbacks fired by the player.
type Hooks struct {
	// OnClip runs before clip i starts.
	OnClip func(i int, c Clip)
	// OnDone runs when a non-looping program finishes.
	OnDone func()
}

// Default is the firmware's main loop: a dimming ramp, random scatter and
// raindrops, forever.
func Default() Program {
	return Program{
		Version: "show.v1",
		Loop:    true,
		Clips: []Clip{
			{Name: "breathe", Effect: "smooth", Count: 5, DelayMS: 20},
			{Name: "scatter", Effect: "random", Repeats: 10, Count: 8, DelayMS: 50},
			{Name: "rain", Effect: "raindrops", Count: 20, DelayMS: 50},
		},
	}
}
