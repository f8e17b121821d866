// Package params holds the tunable thresholds of the mask pipeline.
//
// Each color preset owns a full threshold Bundle. The active bundle is
// published as an immutable, versioned Snapshot: a processing pass loads one
// snapshot and uses it throughout, while preset selection and calibration
// updates build a new snapshot and swap it in atomically. A pass therefore sees
// either the old or the new bundle in full, never a mix.
package params

import (
	"strings"

	"github.com/ironsheep/puck-vision/internal/fault"
)

// Preset identifies one of the supported puck colors.
//
// The set is closed. Values outside it are rejected by ParsePreset and by
// Store.Select with fault.ErrInvalidArgument.
type Preset int

const (
	Red Preset = iota
	Green
	Blue
	Yellow
)

// Presets lists every valid preset in id order.
var Presets = []Preset{Red, Green, Blue, Yellow}

// ParsePreset converts a wire color id (0=RED, 1=GREEN, 2=BLUE, 3=YELLOW) to a
// Preset.
func ParsePreset(id int) (Preset, error) {
	p := Preset(id)
	if !p.Valid() {
		return 0, fault.InvalidArgument("unknown color id %d", id)
	}
	return p, nil
}

// PresetByName resolves a case-insensitive preset name such as "green".
func PresetByName(name string) (Preset, error) {
	for _, p := range Presets {
		if strings.EqualFold(p.String(), strings.TrimSpace(name)) {
			return p, nil
		}
	}
	return 0, fault.InvalidArgument("unknown color %q", name)
}

// Valid reports whether p is one of the defined presets.
func (p Preset) Valid() bool {
	switch p {
	case Red, Green, Blue, Yellow:
		return true
	default:
		return false
	}
}

func (p Preset) String() string {
	switch p {
	case Red:
		return "RED"
	case Green:
		return "GREEN"
	case Blue:
		return "BLUE"
	case Yellow:
		return "YELLOW"
	default:
		return "INVALID"
	}
}

// MarshalText encodes the preset by name.
func (p Preset) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fault.InvalidArgument("unknown color id %d", int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText decodes a preset name.
func (p *Preset) UnmarshalText(text []byte) error {
	v, err := PresetByName(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
