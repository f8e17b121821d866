// Package segmentation turns a frame into the binary foreground mask of the
// selected puck color.
//
// Three independent masks are derived from the frame's color planes:
//
//   - value: drops dark background and shadows;
//   - saturation: keeps colored surfaces whatever their hue;
//   - color: keeps a circular band of hues around the preset's color.
//
// Combine intersects them and cleans the result with an opening followed by a
// closing. Every function returns fresh planes and leaves its inputs alone.
package segmentation

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ironsheep/puck-vision/internal/fault"
	"github.com/ironsheep/puck-vision/internal/imaging"
	"github.com/ironsheep/puck-vision/internal/params"
)

// Masks are the three sub-masks of one frame plus the rotated hue plane the
// color mask was thresholded from.
type Masks struct {
	Value      *imaging.Plane
	Saturation *imaging.Plane
	Color      *imaging.Plane

	// RotatedHue is the hue plane shifted so that hue_start sits at zero.
	// Pixels inside the band read at most hue_width.
	RotatedHue *imaging.Plane
}

// ValueMask keeps pixels whose HSV value is at least b.ValueThreshold, then
// erodes with a square of radius b.ErosionRadius.
func ValueMask(planes *imaging.ColorPlanes, b params.Bundle) *imaging.Plane {
	m := planes.Value.ThresholdAtLeast(uint8(b.ValueThreshold))
	return imaging.Erode(m, imaging.Rect, b.ErosionRadius)
}

// SaturationMask keeps pixels whose HSV saturation is at least
// b.SaturationThreshold, closes with a cross of radius b.CloseRadius1 and
// then opens with a cross of radius b.OpenRadius1.
func SaturationMask(planes *imaging.ColorPlanes, b params.Bundle) *imaging.Plane {
	m := planes.Saturation.ThresholdAtLeast(uint8(b.SaturationThreshold))
	m = imaging.Close(m, imaging.Cross, b.CloseRadius1)
	return imaging.Open(m, imaging.Cross, b.OpenRadius1)
}

// RotateHue shifts the hue plane so that start maps to 0, using saturating
// 8-bit arithmetic:
//
//	below := hue - start          (0 when hue < start)
//	above := hue + (255 - start)  (255 when hue >= start)
//	rotated := below + (above unless it saturated)
//
// For hue >= start the result is hue-start; for hue < start it is
// hue+255-start, so a band that crosses the 255/0 seam stays contiguous.
func RotateHue(hue *imaging.Plane, start int) (*imaging.Plane, error) {
	s := uint8(start)
	below := hue.SubScalar(s)
	above := hue.AddScalar(255 - s)

	wrapped := above.Threshold(254)
	kept, err := above.And(wrapped.Invert())
	if err != nil {
		return nil, err
	}
	return below.Add(kept)
}

// ColorMask selects the circular hue band [start, start+width] (mod 255).
// Pixels inside the band read 255.
func ColorMask(hue *imaging.Plane, start, width int) (*imaging.Plane, error) {
	rotated, err := RotateHue(hue, start)
	if err != nil {
		return nil, err
	}
	return rotated.Threshold(uint8(width)).Invert(), nil
}

// Generate computes the three sub-masks of one frame concurrently and waits
// for all of them.
func Generate(ctx context.Context, planes *imaging.ColorPlanes, b params.Bundle) (*Masks, error) {
	if !planes.Value.SameSize(planes.Saturation) || !planes.Value.SameSize(planes.Hue) {
		return nil, fault.Invariant("color planes differ in size")
	}

	m := &Masks{}
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		m.Value = ValueMask(planes, b)
		return nil
	})
	g.Go(func() error {
		m.Saturation = SaturationMask(planes, b)
		return nil
	})
	g.Go(func() error {
		rotated, err := RotateHue(planes.Hue, b.HueStart)
		if err != nil {
			return err
		}
		m.RotatedHue = rotated
		m.Color = rotated.Threshold(uint8(b.HueWidth)).Invert()
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return m, nil
}

// Combine intersects the three sub-masks, opens the intersection with a
// square of radius b.OpenRadius2 and closes it with a square of radius
// b.CloseRadius2. Sub-masks of different sizes fail with
// fault.ErrInvariantViolation.
func Combine(m *Masks, b params.Bundle) (*imaging.Plane, error) {
	both, err := m.Value.And(m.Saturation)
	if err != nil {
		return nil, err
	}
	all, err := both.And(m.Color)
	if err != nil {
		return nil, err
	}
	all = imaging.Open(all, imaging.Rect, b.OpenRadius2)
	return imaging.Close(all, imaging.Rect, b.CloseRadius2), nil
}

// Segment runs the whole stage on a frame: color planes, sub-masks and the
// combined foreground mask.
func Segment(ctx context.Context, f *imaging.Frame, b params.Bundle) (*Masks, *imaging.Plane, error) {
	masks, err := Generate(ctx, imaging.SplitColor(f), b)
	if err != nil {
		return nil, nil, err
	}
	final, err := Combine(masks, b)
	if err != nil {
		return nil, nil, err
	}
	return masks, final, nil
}
