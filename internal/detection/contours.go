package detection

import (
	"github.com/ironsheep/puck-vision/internal/imaging"
)

// Point represents a 2D coordinate in pixel space.
type Point struct {
	X int `json:"x"` // Horizontal position (0 = leftmost)
	Y int `json:"y"` // Vertical position (0 = topmost)
}

// Contour is one traced border of a foreground region.
type Contour struct {
	// Points is the closed border, compressed so that only the end points of
	// horizontal, vertical and diagonal runs remain. An isolated pixel yields a
	// single point.
	Points []Point `json:"points"`

	// Hole is true for the inner border around a background hole, false for
	// the outer border of a foreground region.
	Hole bool `json:"hole"`

	// Parent is the index of the enclosing contour, or -1 when the contour
	// sits directly inside the image frame.
	Parent int `json:"parent"`
}

// TopLevel reports whether c is an outer border that no other contour
// encloses.
func (c Contour) TopLevel() bool {
	return !c.Hole && c.Parent < 0
}

// neighbours lists the 8 directions counter-clockwise on screen, starting
// east. Stepping the index backwards walks clockwise.
var neighbours = [8]Point{
	{1, 0}, {1, -1}, {0, -1}, {-1, -1},
	{-1, 0}, {-1, 1}, {0, 1}, {1, 1},
}

// FindContours traces every border of a binary mask and returns them in
// discovery order (raster scan of each border's first pixel), with the
// nesting recorded in Parent.
//
// # Algorithm
//
// Topological border following (Suzuki and Abe, 1985) with 8-connected
// foreground. Pixels outside the mask count as background. Each border gets a
// sequential number; while scanning, the last border number seen on the
// current row decides the parent of a newly found border:
//
//   - an outer border inside a hole (or the frame) is a child of that hole;
//   - a hole inside an outer border is a child of that border;
//   - otherwise the new border is a sibling and shares its parent.
//
// Any non-zero mask pixel counts as foreground.
func FindContours(mask *imaging.Plane) []Contour {
	w, h := mask.Width, mask.Height
	if w == 0 || h == 0 {
		return []Contour{}
	}

	t := newTracer(mask)

	// Border number 1 is the frame, which behaves as a hole.
	hole := []bool{false, true}
	parent := []int{0, 0}
	contours := make([]Contour, 0)

	for y := 1; y <= h; y++ {
		lnbd := 1
		for x := 1; x <= w; x++ {
			i := y*t.stride + x
			v := t.labels[i]
			if v == 0 {
				continue
			}

			from := -1
			isHole := false
			switch {
			case v == 1 && t.labels[i-1] == 0:
				from = i - 1
			case v >= 1 && t.labels[i+1] == 0:
				from = i + 1
				isHole = true
				if v > 1 {
					lnbd = v
				}
			}

			if from >= 0 {
				nbd := len(hole)
				p := lnbd
				if isHole == hole[lnbd] {
					p = parent[lnbd]
				}
				hole = append(hole, isHole)
				parent = append(parent, p)

				// Border numbers start at 2, so border n is contours[n-2]
				// and the frame maps to -1.
				contours = append(contours, Contour{
					Points: compress(t.follow(i, from, nbd)),
					Hole:   isHole,
					Parent: p - 2,
				})
			}

			if lv := t.labels[i]; lv != 1 {
				lnbd = abs(lv)
			}
		}
	}
	return contours
}

// tracer holds the label image: the mask padded with one background pixel on
// every side, foreground 1, background 0, and traced border pixels relabelled
// with their border number (negative on a border's right edge).
type tracer struct {
	labels []int
	stride int
	offset [8]int
}

func newTracer(mask *imaging.Plane) *tracer {
	stride := mask.Width + 2
	t := &tracer{
		labels: make([]int, stride*(mask.Height+2)),
		stride: stride,
	}
	for y := 0; y < mask.Height; y++ {
		for x := 0; x < mask.Width; x++ {
			if mask.Pix[y*mask.Width+x] != 0 {
				t.labels[(y+1)*stride+x+1] = 1
			}
		}
	}
	for d, n := range neighbours {
		t.offset[d] = n.Y*stride + n.X
	}
	return t
}

// direction returns the neighbour index that leads from a to b.
func (t *tracer) direction(a, b int) int {
	for d, off := range t.offset {
		if a+off == b {
			return d
		}
	}
	return 0
}

func (t *tracer) point(i int) Point {
	return Point{X: i%t.stride - 1, Y: i/t.stride - 1}
}

// follow traces the border that starts at pixel start, entered from the
// background pixel from, and labels it with nbd. It returns every border
// pixel in tracing order.
func (t *tracer) follow(start, from, nbd int) []Point {
	// Clockwise search for the first foreground neighbour.
	first := -1
	d0 := t.direction(start, from)
	for k := 0; k < 8; k++ {
		q := start + t.offset[(d0-k+8)%8]
		if t.labels[q] != 0 {
			first = q
			break
		}
	}
	if first < 0 {
		t.labels[start] = -nbd
		return []Point{t.point(start)}
	}

	var pts []Point
	prev, cur := first, start
	for {
		// Counter-clockwise search around cur, starting just after prev.
		d := t.direction(cur, prev)
		eastClear := false
		next := prev
		for k := 1; k <= 8; k++ {
			dd := (d + k) % 8
			q := cur + t.offset[dd]
			if t.labels[q] != 0 {
				next = q
				break
			}
			if dd == 0 {
				eastClear = true
			}
		}

		pts = append(pts, t.point(cur))
		if eastClear {
			t.labels[cur] = -nbd
		} else if t.labels[cur] == 1 {
			t.labels[cur] = nbd
		}

		if next == start && cur == first {
			return pts
		}
		prev, cur = cur, next
	}
}

// compress keeps only the points where the chain changes direction.
func compress(pts []Point) []Point {
	n := len(pts)
	if n < 3 {
		return pts
	}
	out := make([]Point, 0, n)
	for i, p := range pts {
		prev := pts[(i-1+n)%n]
		next := pts[(i+1)%n]
		in := Point{p.X - prev.X, p.Y - prev.Y}
		outDir := Point{next.X - p.X, next.Y - p.Y}
		if in != outDir {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return pts[:1]
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
