package imaging

import (
	"fmt"
	"math"

	"github.com/anthonynsimon/bild/parallel"
	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/ironsheep/puck-vision/internal/fault"
)

// ColorPlanes holds the single-channel planes the segmentation stage reads
// from one frame.
//
// All three planes use the full 8-bit range:
//   - Hue: hue angle rescaled so that 360 degrees = 255 (0 = red, ~85 = green,
//     ~170 = blue). Taken from the HLS representation.
//   - Saturation: HSV saturation, 0 = gray, 255 = fully saturated.
//   - Value: HSV value, the largest of R, G and B.
type ColorPlanes struct {
	Hue        *Plane
	Saturation *Plane
	Value      *Plane
}

// SplitColor converts a frame into its hue, saturation and value planes.
//
// Conversions use go-colorful: Hsv() for saturation and value, Hsl() for hue.
// Achromatic pixels (R = G = B) get hue 0. Rows are split across goroutines.
func SplitColor(f *Frame) *ColorPlanes {
	planes := &ColorPlanes{
		Hue:        NewPlane(f.Width, f.Height),
		Saturation: NewPlane(f.Width, f.Height),
		Value:      NewPlane(f.Width, f.Height),
	}

	parallel.Line(f.Height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < f.Width; x++ {
				h, s, v := pixelHSV(f.At(x, y))
				i := y*f.Width + x
				planes.Hue.Pix[i] = h
				planes.Saturation.Pix[i] = s
				planes.Value.Pix[i] = v
			}
		}
	})
	return planes
}

// pixelHSV returns the 8-bit hue, saturation and value of one RGB pixel.
func pixelHSV(r, g, b uint8) (hue, sat, val uint8) {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	_, s, v := c.Hsv()
	h, _, _ := c.Hsl()
	return hueToByte(h), unitToByte(s), unitToByte(v)
}

// hueToByte maps a hue angle in [0, 360) onto [0, 255].
func hueToByte(h float64) uint8 {
	return clampByte(math.Round(h * 255 / 360))
}

func unitToByte(u float64) uint8 {
	return clampByte(math.Round(u * 255))
}

func clampByte(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// HSVColor is a color in the 8-bit hue/saturation/value scale used by the
// segmentation planes (see ColorPlanes).
type HSVColor struct {
	H uint8 `json:"h"` // Hue: 0-255 (360 degrees = 255)
	S uint8 `json:"s"` // Saturation: 0-255
	V uint8 `json:"v"` // Value: 0-255
}

// ColorResult contains a pixel color in the representations needed to tune
// threshold bundles.
type ColorResult struct {
	Hex        string   `json:"hex"`         // Hex format "#RRGGBB"
	RGB        RGBColor `json:"rgb"`         // RGB components
	HSV        HSVColor `json:"hsv"`         // Plane values seen by the mask generator
	HueDegrees float64  `json:"hue_degrees"` // Unscaled hue angle, 0-360
}

// SampleColor reads the color at a pixel of a frame.
//
// Parameters:
//   - f: The frame to sample.
//   - x: X coordinate (0-based, 0 = leftmost pixel).
//   - y: Y coordinate (0-based, 0 = topmost pixel).
//
// Returns:
//   - *ColorResult: The color at (x, y) as hex, RGB and 8-bit HSV.
//   - error: fault.ErrInvalidArgument if coordinates are outside the frame.
//
// The HSV values are exactly the ones SplitColor writes for this pixel, which
// makes the result directly comparable to the hue_start, saturation_threshold
// and value_threshold parameters.
func SampleColor(f *Frame, x, y int) (*ColorResult, error) {
	if !f.InBounds(x, y) {
		return nil, fault.InvalidArgument("coordinates (%d,%d) outside frame bounds %dx%d", x, y, f.Width, f.Height)
	}

	r, g, b := f.At(x, y)
	h, s, v := pixelHSV(r, g, b)
	deg, _, _ := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}.Hsl()

	return &ColorResult{
		Hex:        fmt.Sprintf("#%02X%02X%02X", r, g, b),
		RGB:        RGBColor{R: r, G: g, B: b},
		HSV:        HSVColor{H: h, S: s, V: v},
		HueDegrees: deg,
	}, nil
}
