package params

import (
	"go.uber.org/multierr"

	"github.com/ironsheep/puck-vision/internal/fault"
)

const (
	// MaxLevel bounds the threshold and hue fields.
	MaxLevel = 255
	// MaxRadius bounds the morphology radii.
	MaxRadius = 20
)

// Bundle is the full set of tunables consumed by one pass of the mask
// pipeline.
type Bundle struct {
	// ValueThreshold is the minimum HSV value for the brightness mask.
	ValueThreshold int `json:"value_threshold"`
	// ErosionRadius erodes the brightness mask (square element).
	ErosionRadius int `json:"erosion_radius"`

	// SaturationThreshold is the minimum HSV saturation for the saturation mask.
	SaturationThreshold int `json:"saturation_threshold"`
	// CloseRadius1 closes the saturation mask (cross element).
	CloseRadius1 int `json:"close_radius_1"`
	// OpenRadius1 opens the saturation mask after closing (cross element).
	OpenRadius1 int `json:"open_radius_1"`

	// HueStart is the first hue (0-255 scale) of the circular band.
	HueStart int `json:"hue_start"`
	// HueWidth is the band width; the band wraps past 255 back to 0.
	HueWidth int `json:"hue_width"`

	// OpenRadius2 opens the combined mask (square element).
	OpenRadius2 int `json:"open_radius_2"`
	// CloseRadius2 closes the combined mask after opening (square element).
	CloseRadius2 int `json:"close_radius_2"`
}

// Validate checks every field range and reports all violations at once.
func (b Bundle) Validate() error {
	var err error
	level := func(name string, v int) {
		if v < 0 || v > MaxLevel {
			err = multierr.Append(err, fault.InvalidArgument("%s=%d outside [0,%d]", name, v, MaxLevel))
		}
	}
	radius := func(name string, v int) {
		if v < 0 || v > MaxRadius {
			err = multierr.Append(err, fault.InvalidArgument("%s=%d outside [0,%d]", name, v, MaxRadius))
		}
	}

	level("value_threshold", b.ValueThreshold)
	radius("erosion_radius", b.ErosionRadius)
	level("saturation_threshold", b.SaturationThreshold)
	radius("close_radius_1", b.CloseRadius1)
	radius("open_radius_1", b.OpenRadius1)
	level("hue_start", b.HueStart)
	level("hue_width", b.HueWidth)
	radius("open_radius_2", b.OpenRadius2)
	radius("close_radius_2", b.CloseRadius2)
	return err
}

// baseBundle carries the thresholds and radii shared by every preset.
var baseBundle = Bundle{
	ValueThreshold:      50,
	ErosionRadius:       1,
	SaturationThreshold: 60,
	CloseRadius1:        4,
	OpenRadius1:         4,
	HueWidth:            32,
	OpenRadius2:         8,
	CloseRadius2:        4,
}

// presetHueStart places each preset's band so that it is centered on the
// preset's hue (red 0, yellow 43, green 85, blue 170 on the 0-255 scale).
var presetHueStart = map[Preset]int{
	Red:    239,
	Green:  69,
	Blue:   154,
	Yellow: 27,
}

// DefaultBundle returns the built-in bundle for a preset.
func DefaultBundle(p Preset) (Bundle, error) {
	start, ok := presetHueStart[p]
	if !ok {
		return Bundle{}, fault.InvalidArgument("unknown color id %d", int(p))
	}
	b := baseBundle
	b.HueStart = start
	return b, nil
}

// Patch is a partial bundle. Nil fields leave the corresponding bundle field
// untouched. It is the shape of calibration input from the server and from the
// calibration file.
type Patch struct {
	ValueThreshold      *int `json:"value_threshold,omitempty"`
	ErosionRadius       *int `json:"erosion_radius,omitempty"`
	SaturationThreshold *int `json:"saturation_threshold,omitempty"`
	CloseRadius1        *int `json:"close_radius_1,omitempty"`
	OpenRadius1         *int `json:"open_radius_1,omitempty"`
	HueStart            *int `json:"hue_start,omitempty"`
	HueWidth            *int `json:"hue_width,omitempty"`
	OpenRadius2         *int `json:"open_radius_2,omitempty"`
	CloseRadius2        *int `json:"close_radius_2,omitempty"`
}

// Empty reports whether the patch sets no field.
func (p Patch) Empty() bool {
	return p == Patch{}
}

// Apply returns b with the patch's non-nil fields written over it.
func (p Patch) Apply(b Bundle) Bundle {
	set := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	set(&b.ValueThreshold, p.ValueThreshold)
	set(&b.ErosionRadius, p.ErosionRadius)
	set(&b.SaturationThreshold, p.SaturationThreshold)
	set(&b.CloseRadius1, p.CloseRadius1)
	set(&b.OpenRadius1, p.OpenRadius1)
	set(&b.HueStart, p.HueStart)
	set(&b.HueWidth, p.HueWidth)
	set(&b.OpenRadius2, p.OpenRadius2)
	set(&b.CloseRadius2, p.CloseRadius2)
	return b
}
