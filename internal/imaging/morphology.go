package imaging

import (
	"github.com/anthonynsimon/bild/parallel"
)

// Shape selects the structuring element used by the morphology operations.
type Shape int

const (
	// Rect is a filled (2r+1) x (2r+1) square.
	Rect Shape = iota
	// Cross is a horizontal and a vertical bar of length 2r+1 through the anchor.
	Cross
)

func (s Shape) String() string {
	switch s {
	case Rect:
		return "rect"
	case Cross:
		return "cross"
	default:
		return "unknown"
	}
}

// Erode shrinks the foreground of a mask. A pixel stays foreground only if
// every in-image pixel under the structuring element is foreground; pixels
// outside the image do not take part.
//
// Non-zero input pixels count as foreground. The result holds only 0 and 255.
// A radius of zero or less returns a normalized copy.
func Erode(p *Plane, shape Shape, radius int) *Plane {
	if radius <= 0 {
		return p.Threshold(0)
	}
	h := runRows(p, radius, true)
	if shape == Cross {
		v := runCols(p, radius, true)
		out, _ := h.And(v)
		return out
	}
	return runCols(h, radius, true)
}

// Dilate grows the foreground of a mask. A pixel becomes foreground if any
// in-image pixel under the structuring element is foreground.
//
// Non-zero input pixels count as foreground. The result holds only 0 and 255.
// A radius of zero or less returns a normalized copy.
func Dilate(p *Plane, shape Shape, radius int) *Plane {
	if radius <= 0 {
		return p.Threshold(0)
	}
	h := runRows(p, radius, false)
	if shape == Cross {
		v := runCols(p, radius, false)
		out, _ := h.Or(v)
		return out
	}
	return runCols(h, radius, false)
}

// Open erodes then dilates, removing foreground specks smaller than the
// structuring element.
func Open(p *Plane, shape Shape, radius int) *Plane {
	return Dilate(Erode(p, shape, radius), shape, radius)
}

// Close dilates then erodes, filling background gaps smaller than the
// structuring element.
func Close(p *Plane, shape Shape, radius int) *Plane {
	return Erode(Dilate(p, shape, radius), shape, radius)
}

// runRows applies a 1-D window of half-width r along every row. With erode set
// the window must be all foreground, otherwise any foreground suffices.
//
// Counting uses a prefix sum per row so the cost is independent of r.
func runRows(p *Plane, r int, erode bool) *Plane {
	out := NewPlane(p.Width, p.Height)
	w := p.Width
	parallel.Line(p.Height, func(start, end int) {
		prefix := make([]int, w+1)
		for y := start; y < end; y++ {
			row := p.Pix[y*w : (y+1)*w]
			for x, v := range row {
				prefix[x+1] = prefix[x] + hit(v, erode)
			}
			dst := out.Pix[y*w : (y+1)*w]
			for x := range dst {
				lo, hi := window(x, r, w)
				dst[x] = decide(prefix[hi]-prefix[lo], erode)
			}
		}
	})
	return out
}

// runCols is runRows along columns.
func runCols(p *Plane, r int, erode bool) *Plane {
	out := NewPlane(p.Width, p.Height)
	w, h := p.Width, p.Height
	parallel.Line(w, func(start, end int) {
		prefix := make([]int, h+1)
		for x := start; x < end; x++ {
			for y := 0; y < h; y++ {
				prefix[y+1] = prefix[y] + hit(p.Pix[y*w+x], erode)
			}
			for y := 0; y < h; y++ {
				lo, hi := window(y, r, h)
				out.Pix[y*w+x] = decide(prefix[hi]-prefix[lo], erode)
			}
		}
	})
	return out
}

// hit counts background pixels when eroding and foreground pixels when
// dilating.
func hit(v uint8, erode bool) int {
	if (v == 0) == erode {
		return 1
	}
	return 0
}

func decide(hits int, erode bool) uint8 {
	if erode {
		if hits == 0 {
			return 255
		}
		return 0
	}
	if hits > 0 {
		return 255
	}
	return 0
}

// window returns the prefix-sum bounds [lo, hi) of the clamped window
// centered on i.
func window(i, r, n int) (int, int) {
	lo := i - r
	if lo < 0 {
		lo = 0
	}
	hi := i + r + 1
	if hi > n {
		hi = n
	}
	return lo, hi
}
