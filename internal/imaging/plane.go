package imaging

import (
	"image"

	"github.com/ironsheep/puck-vision/internal/fault"
)

// Plane is a single-channel 8-bit buffer with the same layout as image.Gray
// (row-major, stride = Width).
//
// A mask is a Plane whose pixels are either 0 (background) or 255
// (foreground). Every operation below returns a new Plane; inputs are never
// modified.
type Plane struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewPlane allocates a zero-filled plane.
func NewPlane(width, height int) *Plane {
	return &Plane{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height),
	}
}

// At returns the value at (x, y).
// No bounds checking is performed; caller must ensure coordinates are valid.
func (p *Plane) At(x, y int) uint8 {
	return p.Pix[y*p.Width+x]
}

// Set writes the value at (x, y).
func (p *Plane) Set(x, y int, v uint8) {
	p.Pix[y*p.Width+x] = v
}

// Clone returns a deep copy of the plane.
func (p *Plane) Clone() *Plane {
	c := NewPlane(p.Width, p.Height)
	copy(c.Pix, p.Pix)
	return c
}

// SameSize reports whether both planes have identical dimensions.
func (p *Plane) SameSize(q *Plane) bool {
	return p.Width == q.Width && p.Height == q.Height
}

// Count returns the number of non-zero pixels.
func (p *Plane) Count() int {
	n := 0
	for _, v := range p.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

// Gray wraps a copy of the plane as an *image.Gray for encoding or display.
func (p *Plane) Gray() *image.Gray {
	g := image.NewGray(image.Rect(0, 0, p.Width, p.Height))
	copy(g.Pix, p.Pix)
	return g
}

// Threshold is a binary threshold with a strict comparison: pixels greater
// than level become 255, all others 0.
func (p *Plane) Threshold(level uint8) *Plane {
	return p.mapPix(func(v uint8) uint8 {
		if v > level {
			return 255
		}
		return 0
	})
}

// ThresholdAtLeast is a binary threshold with an inclusive comparison: pixels
// greater than or equal to level become 255, all others 0.
func (p *Plane) ThresholdAtLeast(level uint8) *Plane {
	return p.mapPix(func(v uint8) uint8 {
		if v >= level {
			return 255
		}
		return 0
	})
}

// Invert returns 255 - v for every pixel.
func (p *Plane) Invert() *Plane {
	return p.mapPix(func(v uint8) uint8 { return 255 - v })
}

// AddScalar adds k to every pixel, saturating at 255.
func (p *Plane) AddScalar(k uint8) *Plane {
	return p.mapPix(func(v uint8) uint8 { return addSat(v, k) })
}

// SubScalar subtracts k from every pixel, saturating at 0.
func (p *Plane) SubScalar(k uint8) *Plane {
	return p.mapPix(func(v uint8) uint8 {
		if v < k {
			return 0
		}
		return v - k
	})
}

// And returns the bitwise AND of two planes of equal size.
func (p *Plane) And(q *Plane) (*Plane, error) {
	return p.zipPix(q, "and", func(a, b uint8) uint8 { return a & b })
}

// Or returns the bitwise OR of two planes of equal size.
func (p *Plane) Or(q *Plane) (*Plane, error) {
	return p.zipPix(q, "or", func(a, b uint8) uint8 { return a | b })
}

// Add returns the pixel-wise sum of two planes, saturating at 255.
func (p *Plane) Add(q *Plane) (*Plane, error) {
	return p.zipPix(q, "add", addSat)
}

func (p *Plane) mapPix(fn func(uint8) uint8) *Plane {
	out := NewPlane(p.Width, p.Height)
	for i, v := range p.Pix {
		out.Pix[i] = fn(v)
	}
	return out
}

func (p *Plane) zipPix(q *Plane, op string, fn func(a, b uint8) uint8) (*Plane, error) {
	if !p.SameSize(q) {
		return nil, fault.Invariant("%s: plane sizes differ: %dx%d vs %dx%d",
			op, p.Width, p.Height, q.Width, q.Height)
	}
	out := NewPlane(p.Width, p.Height)
	for i := range p.Pix {
		out.Pix[i] = fn(p.Pix[i], q.Pix[i])
	}
	return out, nil
}

func addSat(a, b uint8) uint8 {
	s := uint16(a) + uint16(b)
	if s > 255 {
		return 255
	}
	return uint8(s)
}
