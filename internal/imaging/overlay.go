package imaging

import (
	"image"
	"image/color"
	"strconv"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"
)

// Marker is a labelled point drawn on an overlay.
type Marker struct {
	X, Y  float64
	Label string
}

// RowLabel is a horizontal guide line across the whole image.
type RowLabel struct {
	Y     float64
	Label string
}

// Overlay describes what to draw on top of a frame.
type Overlay struct {
	// Polygons are closed outlines, such as traced contours.
	Polygons [][]image.Point
	// Markers are drawn as filled dots with their label beside them.
	Markers []Marker
	// Rows are dashed guide lines labelled at the left edge.
	Rows []RowLabel
	// Center draws a vertical dashed line through the image center.
	Center bool

	// Color is used for outlines and markers.
	Color color.RGBA
	// GuideColor is used for rows and the center line.
	GuideColor color.RGBA
}

// DefaultOverlayColor is the outline color when none is configured.
var DefaultOverlayColor = color.RGBA{R: 255, G: 0, B: 255, A: 255}

// DefaultGuideColor is the guide line color when none is configured.
var DefaultGuideColor = color.RGBA{R: 255, G: 255, B: 0, A: 160}

// DrawOverlay renders ov on a copy of base.
func DrawOverlay(base image.Image, ov Overlay) image.Image {
	dc := gg.NewContextForImage(base)
	w, h := float64(dc.Width()), float64(dc.Height())

	dc.SetColor(ov.GuideColor)
	dc.SetLineWidth(1)
	dc.SetDash(4, 3)
	for _, r := range ov.Rows {
		dc.DrawLine(0, r.Y, w, r.Y)
		dc.Stroke()
	}
	if ov.Center {
		dc.DrawLine(w/2, 0, w/2, h)
		dc.Stroke()
	}
	dc.SetDash()
	for _, r := range ov.Rows {
		if r.Label != "" {
			dc.DrawString(r.Label, 2, r.Y-2)
		}
	}

	dc.SetColor(ov.Color)
	for _, poly := range ov.Polygons {
		if len(poly) == 0 {
			continue
		}
		// Pixel centers sit at +0.5 in gg's coordinate space.
		dc.MoveTo(float64(poly[0].X)+0.5, float64(poly[0].Y)+0.5)
		for _, p := range poly[1:] {
			dc.LineTo(float64(p.X)+0.5, float64(p.Y)+0.5)
		}
		dc.ClosePath()
		dc.Stroke()
	}

	for _, m := range ov.Markers {
		dc.DrawCircle(m.X+0.5, m.Y+0.5, 3)
		dc.Fill()
		if m.Label != "" {
			dc.DrawString(m.Label, m.X+6, m.Y-4)
		}
	}
	return dc.Image()
}

// ParseHexColor parses a hex color string like "#FF0000" or "#FF000080".
func ParseHexColor(hex string) (color.RGBA, error) {
	if len(hex) == 0 {
		return color.RGBA{}, errors.New("empty color string")
	}
	if hex[0] == '#' {
		hex = hex[1:]
	}

	var r, g, b, a uint8 = 0, 0, 0, 255

	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, errors.Wrapf(err, "invalid hex color %q", hex)
		}
		r = uint8(val >> 16)
		g = uint8(val >> 8)
		b = uint8(val)
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, errors.Wrapf(err, "invalid hex color %q", hex)
		}
		r = uint8(val >> 24)
		g = uint8(val >> 16)
		b = uint8(val >> 8)
		a = uint8(val)
	default:
		return color.RGBA{}, errors.New("invalid hex color length")
	}

	return color.RGBA{R: r, G: g, B: b, A: a}, nil
}
