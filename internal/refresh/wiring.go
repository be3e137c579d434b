package refresh

import (
	"fmt"
	"strings"
)

// Wiring says which bit of the layer register switches each layer's
// P-channel transistor. The layer lines are active low: the selected
// layer's bit is cleared and every other bit is set.
//
// Two board revisions exist. RevA, the shipped firmware, clears bit
// layer+1 (mask 0b10 << layer). RevB clears bit layer+4 (mask 0b10000 << layer).
type Wiring uint8

const (
	RevA Wiring = 0b10
	RevB Wiring = 0b1_0000
)

// Select returns the layer select byte for layer.
func (w Wiring) Select(layer int) byte {
	return 0xFF &^ (byte(w) << layer)
}

// Decode maps a layer select byte back to its layer. ok is false for a byte
// that selects no layer or more than one.
func (w Wiring) Decode(sel byte) (layer int, ok bool) {
	layer = -1
	for l := 0; l < Layers; l++ {
		if sel == w.Select(l) {
			if layer != -1 {
				return -1, false
			}
			layer = l
		}
	}
	return layer, layer != -1
}

func (w Wiring) String() string {
	switch w {
	case RevA:
		return "rev-a"
	case RevB:
		return "rev-b"
	}
	return fmt.Sprintf("wiring(%#02x)", uint8(w))
}

// ParseWiring accepts "rev-a" or "rev-b", case-insensitive. An empty name
// means RevA.
func ParseWiring(name string) (Wiring, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "rev-a", "a":
		return RevA, nil
	case "rev-b", "b":
		return RevB, nil
	}
	return 0, fmt.Errorf("refresh: unknown wiring %q", name)
}
