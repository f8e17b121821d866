// Package geometry projects image positions onto the floor in front of a
// fixed, downward-tilted camera.
//
// The camera sits MountHeight above the floor. The bottom image row looks at
// the floor NearDistance away, the top row at FarDistance; NearDistance is
// also where the horizontal field of view spans DepthWidth. Row angles are
// interpolated linearly between those two rays, which is a pinhole
// approximation without lens-distortion correction.
//
// Linear is the default projection. The older Legacy row formula starts at the
// far ray and tilts upward for lower rows, so its distances shrink and then
// turn negative as rows move up the image; Linear keeps distance growing as
// the row index decreases. Legacy stays selectable for comparing recorded runs.
package geometry

import (
	"fmt"
	"math"
	"strings"

	"go.uber.org/multierr"

	"github.com/ironsheep/puck-vision/internal/detection"
	"github.com/ironsheep/puck-vision/internal/fault"
)

// Camera describes the mount and the image size. Distances are in
// centimeters, sizes in pixels.
type Camera struct {
	MountHeight  float64 `json:"camera_height"`
	NearDistance float64 `json:"camera_close_distance"`
	FarDistance  float64 `json:"camera_far_distance"`
	DepthWidth   float64 `json:"camera_depth_width"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
}

// DefaultCamera returns the calibration of the reference robot: a camera 28 cm
// above the floor seeing from 28 cm to 115 cm, 88 cm wide at the near edge,
// producing 320x240 frames.
func DefaultCamera() Camera {
	return Camera{
		MountHeight:  28,
		NearDistance: 28,
		FarDistance:  115,
		DepthWidth:   88,
		Width:        320,
		Height:       240,
	}
}

// Validate checks that every field allows a finite projection.
func (c Camera) Validate() error {
	var err error
	positive := func(name string, v float64) {
		if !(v > 0) || math.IsInf(v, 0) {
			err = multierr.Append(err, fault.InvalidArgument("%s must be positive, got %v", name, v))
		}
	}
	positive("camera_height", c.MountHeight)
	positive("camera_close_distance", c.NearDistance)
	positive("camera_far_distance", c.FarDistance)
	positive("camera_depth_width", c.DepthWidth)
	if c.Width <= 0 || c.Height <= 0 {
		err = multierr.Append(err, fault.InvalidArgument("frame size must be positive, got %dx%d", c.Width, c.Height))
	}
	if c.FarDistance <= c.NearDistance {
		err = multierr.Append(err, fault.InvalidArgument(
			"camera_far_distance (%v) must exceed camera_close_distance (%v)", c.FarDistance, c.NearDistance))
	}
	return err
}

// Projection selects how a row maps to a ray angle.
type Projection int

const (
	// Linear maps row 0 to the far ray and the bottom row to the near ray.
	Linear Projection = iota
	// Legacy is theta = row*(beta-alpha)/height + beta, which starts at the
	// far ray and tilts further up for lower rows. Kept for comparison with
	// recorded runs made before the linear mapping.
	Legacy
)

// ParseProjection accepts "linear" or "legacy" (case-insensitive). An empty
// string selects Linear.
func ParseProjection(name string) (Projection, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "linear":
		return Linear, nil
	case "legacy":
		return Legacy, nil
	default:
		return 0, fault.InvalidArgument("unknown projection %q", name)
	}
}

func (p Projection) String() string {
	switch p {
	case Linear:
		return "linear"
	case Legacy:
		return "legacy"
	default:
		return fmt.Sprintf("Projection(%d)", int(p))
	}
}

// Position is the floor position of one object.
type Position struct {
	// Distance is the forward distance from the camera foot in centimeters.
	Distance float64 `json:"distance"`
	// Direction is the bearing proxy: 0 at the image center, negative to the
	// left, +gamma at the right edge.
	Direction float64 `json:"direction"`
}

// Estimator converts centroids to positions. The ray angles depend only on
// the camera, so they are computed once in NewEstimator.
type Estimator struct {
	camera     Camera
	projection Projection

	alpha float64 // near ray, from vertical
	beta  float64 // far ray, from vertical
	gamma float64 // half horizontal field of view
}

// NewEstimator validates the camera and caches its angles.
func NewEstimator(c Camera, p Projection) (*Estimator, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if p != Linear && p != Legacy {
		return nil, fault.InvalidArgument("unknown projection %d", int(p))
	}
	return &Estimator{
		camera:     c,
		projection: p,
		alpha:      math.Atan(c.NearDistance / c.MountHeight),
		beta:       math.Atan(c.FarDistance / c.MountHeight),
		gamma:      math.Atan(0.5 * c.DepthWidth / c.NearDistance),
	}, nil
}

// Camera returns the calibration the estimator was built from.
func (e *Estimator) Camera() Camera { return e.camera }

// Projection returns the row mapping in use.
func (e *Estimator) Projection() Projection { return e.projection }

// Angles returns the cached near, far and half-width angles in radians.
func (e *Estimator) Angles() (alpha, beta, gamma float64) {
	return e.alpha, e.beta, e.gamma
}

// Theta returns the angle from vertical of the ray through image row j.
func (e *Estimator) Theta(j float64) float64 {
	step := (e.beta - e.alpha) / float64(e.camera.Height)
	if e.projection == Legacy {
		return j*step + e.beta
	}
	return e.beta - j*step
}

// Distance returns the floor distance seen at image row j.
func (e *Estimator) Distance(j float64) float64 {
	return e.camera.MountHeight * math.Tan(e.Theta(j))
}

// Row returns the image row at which the floor distance d is seen. ok is
// false when d falls outside the frame.
func (e *Estimator) Row(d float64) (j float64, ok bool) {
	if !(d > 0) {
		return 0, false
	}
	theta := math.Atan(d / e.camera.MountHeight)
	step := (e.beta - e.alpha) / float64(e.camera.Height)
	if e.projection == Legacy {
		j = (theta - e.beta) / step
	} else {
		j = (e.beta - theta) / step
	}
	const eps = 1e-9
	return j, j >= -eps && j <= float64(e.camera.Height)+eps
}

// Direction returns the bearing proxy of image column i.
func (e *Estimator) Direction(i float64) float64 {
	half := float64(e.camera.Width) / 2
	return e.gamma * (i - half) / half
}

// Estimate projects one centroid.
func (e *Estimator) Estimate(c detection.Centroid) Position {
	return Position{Distance: e.Distance(c.Y), Direction: e.Direction(c.X)}
}

// EstimateAll projects centroids in order.
func (e *Estimator) EstimateAll(cs []detection.Centroid) []Position {
	out := make([]Position, len(cs))
	for k, c := range cs {
		out[k] = e.Estimate(c)
	}
	return out
}
