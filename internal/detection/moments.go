package detection

import (
	"math"

	"github.com/ironsheep/puck-vision/internal/imaging"
)

// minArea is the smallest enclosed area, in square pixels, for which a
// centroid is computed. Contours below it (single pixels, one-pixel-wide
// lines) have no defined centroid.
const minArea = 1e-9

// Moments are the spatial moments of a closed polygon up to first order.
type Moments struct {
	M00 float64 `json:"m00"` // Enclosed area
	M10 float64 `json:"m10"` // First moment about the y axis
	M01 float64 `json:"m01"` // First moment about the x axis
}

// PolygonMoments integrates the polygon through pts with Green's theorem.
// The result does not depend on the winding direction: a clockwise polygon
// has its signs flipped so that M00 is never negative.
func PolygonMoments(pts []Point) Moments {
	n := len(pts)
	if n < 3 {
		return Moments{}
	}

	var a00, a10, a01 float64
	prev := pts[n-1]
	for _, p := range pts {
		xp, yp := float64(prev.X), float64(prev.Y)
		x, y := float64(p.X), float64(p.Y)
		cross := xp*y - x*yp
		a00 += cross
		a10 += cross * (xp + x)
		a01 += cross * (yp + y)
		prev = p
	}

	m := Moments{M00: a00 / 2, M10: a10 / 6, M01: a01 / 6}
	if m.M00 < 0 {
		m = Moments{M00: -m.M00, M10: -m.M10, M01: -m.M01}
	}
	return m
}

// Centroid is a sub-pixel image position: X is the column, Y the row.
type Centroid struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Centroid returns (M10/M00, M01/M00). ok is false when the area is too
// small for the ratio to be defined.
func (m Moments) Centroid() (c Centroid, ok bool) {
	if math.Abs(m.M00) < minArea {
		return Centroid{}, false
	}
	return Centroid{X: m.M10 / m.M00, Y: m.M01 / m.M00}, true
}

// Object is one located foreground region.
type Object struct {
	// Contour is the index of the region's outer border.
	Contour int `json:"contour"`

	// Centroid is the area-weighted center of the outer border.
	Centroid Centroid `json:"centroid"`

	// Area is the area enclosed by the outer border in square pixels.
	Area float64 `json:"area"`
}

// Objects returns one Object per top-level outer contour with a non-zero
// area, in contour order. Holes and regions nested inside holes are skipped;
// so are degenerate contours whose centroid is undefined.
func Objects(contours []Contour) []Object {
	objects := make([]Object, 0)
	for i, c := range contours {
		if !c.TopLevel() {
			continue
		}
		m := PolygonMoments(c.Points)
		centroid, ok := m.Centroid()
		if !ok {
			continue
		}
		objects = append(objects, Object{Contour: i, Centroid: centroid, Area: m.M00})
	}
	return objects
}

// Detection is the outcome of contour extraction on one mask.
type Detection struct {
	Contours []Contour `json:"contours"`
	Objects  []Object  `json:"objects"`
}

// Centroids returns the object centroids in order.
func (d *Detection) Centroids() []Centroid {
	out := make([]Centroid, len(d.Objects))
	for i, o := range d.Objects {
		out[i] = o.Centroid
	}
	return out
}

// Detect traces the mask and locates its objects.
func Detect(mask *imaging.Plane) *Detection {
	contours := FindContours(mask)
	return &Detection{Contours: contours, Objects: Objects(contours)}
}
