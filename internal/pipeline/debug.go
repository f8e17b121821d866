package pipeline

import (
	"context"
	"fmt"
	"image"

	"github.com/ironsheep/puck-vision/internal/fault"
	"github.com/ironsheep/puck-vision/internal/imaging"
)

// View names, in the order DebugViews returns them.
const (
	ViewFrame          = "frame"
	ViewValueMask      = "value_mask"
	ViewSaturationMask = "saturation_mask"
	ViewColorMask      = "color_mask"
	ViewRotatedHue     = "rotated_hue"
	ViewFinalMask      = "final_mask"
	ViewContours       = "contours"
)

// guideStep is the spacing of the distance guide lines in centimeters.
const guideStep = 10.0

// DebugViews returns the intermediate images of the latest pass as PNGs:
// the frame, the three sub-masks, the rotated hue plane, the final mask and
// the frame with contours, centroids and distance guides drawn on it.
//
// It fails with fault.ErrInvalidArgument unless calibration mode is on. When
// no pass has run yet, one is run first.
func (p *Pipeline) DebugViews(ctx context.Context, scale float64) ([]*imaging.EncodedImage, error) {
	if !p.Calibration() {
		return nil, fault.InvalidArgument("debug views require calibration mode")
	}

	r := p.LastResult()
	if r == nil {
		var err error
		if r, err = p.Process(ctx); err != nil {
			return nil, err
		}
	}

	views := []struct {
		name string
		img  image.Image
	}{
		{ViewFrame, r.Frame.Image()},
		{ViewValueMask, r.Masks.Value.Gray()},
		{ViewSaturationMask, r.Masks.Saturation.Gray()},
		{ViewColorMask, r.Masks.Color.Gray()},
		{ViewRotatedHue, r.Masks.RotatedHue.Gray()},
		{ViewFinalMask, r.Final.Gray()},
		{ViewContours, p.ContourOverlay(r)},
	}

	out := make([]*imaging.EncodedImage, 0, len(views))
	for _, v := range views {
		enc, err := imaging.EncodeImage(v.name, v.img, scale)
		if err != nil {
			return nil, err
		}
		out = append(out, enc)
	}
	return out, nil
}

// ContourOverlay draws the result's contours and object centroids on its
// frame, together with a guide line every 10 cm of floor distance and the
// zero-direction center line.
func (p *Pipeline) ContourOverlay(r *Result) image.Image {
	ov := p.overlay
	ov.Center = true
	ov.Polygons = nil
	ov.Markers = nil
	ov.Rows = nil

	for _, c := range r.Detection.Contours {
		poly := make([]image.Point, len(c.Points))
		for i, pt := range c.Points {
			poly[i] = image.Point{X: pt.X, Y: pt.Y}
		}
		ov.Polygons = append(ov.Polygons, poly)
	}

	for k, o := range r.Detection.Objects {
		label := fmt.Sprintf("%d", k)
		if k < len(r.Positions) {
			label = fmt.Sprintf("%d: %.0fcm %+.2f", k, r.Positions[k].Distance, r.Positions[k].Direction)
		}
		ov.Markers = append(ov.Markers, imaging.Marker{X: o.Centroid.X, Y: o.Centroid.Y, Label: label})
	}

	cam := p.estimator.Camera()
	for d := guideStep * float64(int(cam.NearDistance/guideStep)+1); d < cam.FarDistance; d += guideStep {
		if j, ok := p.estimator.Row(d); ok {
			ov.Rows = append(ov.Rows, imaging.RowLabel{Y: j, Label: fmt.Sprintf("%.0fcm", d)})
		}
	}

	return imaging.DrawOverlay(r.Frame.Image(), ov)
}
