// Package pipeline runs the puck localization passes.
//
// A Pipeline owns the latest camera frame and produces, per pass, the masks,
// contours and floor positions of the selected puck color. Frames are swapped
// in whole through an atomic pointer and parameters are read as one immutable
// snapshot, so a pass never observes a half-written frame or a half-applied
// calibration change.
package pipeline

import (
	"context"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ironsheep/puck-vision/internal/detection"
	"github.com/ironsheep/puck-vision/internal/geometry"
	"github.com/ironsheep/puck-vision/internal/imaging"
	"github.com/ironsheep/puck-vision/internal/params"
	"github.com/ironsheep/puck-vision/internal/segmentation"
)

// Result is everything one pass produced.
type Result struct {
	// Snapshot is the parameter version the pass ran with.
	Snapshot params.Snapshot

	Frame     *imaging.Frame
	Masks     *segmentation.Masks
	Final     *imaging.Plane
	Detection *detection.Detection
	Positions []geometry.Position
}

// Objects is the reply to a find-objects request. Distances and Directions are
// parallel arrays in contour discovery order.
type Objects struct {
	Preset     params.Preset        `json:"preset"`
	Distances  []float64            `json:"distances"`
	Directions []float64            `json:"directions"`
	Centroids  []detection.Centroid `json:"centroids"`
}

// Objects flattens the result's positions.
func (r *Result) Objects() *Objects {
	out := &Objects{
		Preset:     r.Snapshot.Preset,
		Distances:  make([]float64, len(r.Positions)),
		Directions: make([]float64, len(r.Positions)),
		Centroids:  r.Detection.Centroids(),
	}
	for k, p := range r.Positions {
		out.Distances[k] = p.Distance
		out.Directions[k] = p.Direction
	}
	return out
}

// Pipeline holds the frame slot and runs passes against the parameter store.
type Pipeline struct {
	store     *params.Store
	estimator *geometry.Estimator
	logger    *zap.SugaredLogger

	frame       atomic.Pointer[imaging.Frame]
	last        atomic.Pointer[Result]
	calibration atomic.Bool
	passes      atomic.Uint64

	// passMu keeps a find-objects selection and its pass together.
	passMu sync.Mutex

	overlay imaging.Overlay
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithCalibration sets the initial calibration mode.
func WithCalibration(enabled bool) Option {
	return func(p *Pipeline) { p.calibration.Store(enabled) }
}

// WithOverlayColors sets the contour and guide colors of the debug overlay.
func WithOverlayColors(outline, guide color.RGBA) Option {
	return func(p *Pipeline) {
		p.overlay.Color = outline
		p.overlay.GuideColor = guide
	}
}

// New returns a pipeline holding a blank frame of the camera's size.
func New(store *params.Store, estimator *geometry.Estimator, logger *zap.SugaredLogger, opts ...Option) *Pipeline {
	p := &Pipeline{
		store:     store,
		estimator: estimator,
		logger:    logger,
		overlay: imaging.Overlay{
			Color:      imaging.DefaultOverlayColor,
			GuideColor: imaging.DefaultGuideColor,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.frame.Store(p.blank())
	return p
}

func (p *Pipeline) blank() *imaging.Frame {
	c := p.estimator.Camera()
	return imaging.NewFrame(c.Width, c.Height)
}

// Store returns the parameter store the pipeline reads.
func (p *Pipeline) Store() *params.Store { return p.store }

// Estimator returns the position estimator.
func (p *Pipeline) Estimator() *geometry.Estimator { return p.estimator }

// PushFrame replaces the current frame. The pipeline takes ownership of f and
// never writes to it. Frames of another size are resized to the camera size;
// a nil frame is replaced by a blank one.
func (p *Pipeline) PushFrame(f *imaging.Frame) {
	if f == nil {
		f = p.blank()
	}
	c := p.estimator.Camera()
	if f.Width != c.Width || f.Height != c.Height {
		f = f.Resize(c.Width, c.Height)
	}
	p.frame.Store(f)
}

// PushImage converts a decoded image and pushes it.
func (p *Pipeline) PushImage(img image.Image) {
	p.PushFrame(imaging.FrameFromImage(img))
}

// Frame returns the current frame. Callers must not modify it.
func (p *Pipeline) Frame() *imaging.Frame {
	return p.frame.Load()
}

// LastResult returns the result of the most recent pass, or nil.
func (p *Pipeline) LastResult() *Result {
	return p.last.Load()
}

// Passes returns the number of completed passes.
func (p *Pipeline) Passes() uint64 {
	return p.passes.Load()
}

// Process runs one pass on the current frame with the active parameters.
func (p *Pipeline) Process(ctx context.Context) (*Result, error) {
	p.passMu.Lock()
	defer p.passMu.Unlock()
	return p.process(ctx)
}

func (p *Pipeline) process(ctx context.Context) (*Result, error) {
	snap := p.store.Snapshot()
	frame := p.frame.Load()

	r, err := Run(ctx, frame, snap, p.estimator)
	if err != nil {
		return nil, err
	}
	p.last.Store(r)
	n := p.passes.Add(1)

	if ce := p.logger.Desugar().Check(zap.DebugLevel, "pass complete"); ce != nil {
		ce.Write(
			zap.Uint64("pass", n),
			zap.Stringer("preset", snap.Preset),
			zap.Uint64("params_version", snap.Version),
			zap.Int("objects", len(r.Positions)),
			zap.Any("positions", r.Positions),
		)
	}
	return r, nil
}

// Run is one pass as a pure function of its inputs: segmentation, contour
// extraction and projection.
func Run(ctx context.Context, frame *imaging.Frame, snap params.Snapshot, est *geometry.Estimator) (*Result, error) {
	masks, final, err := segmentation.Segment(ctx, frame, snap.Bundle)
	if err != nil {
		return nil, errors.Wrap(err, "segment frame")
	}
	det := detection.Detect(final)
	return &Result{
		Snapshot:  snap,
		Frame:     frame,
		Masks:     masks,
		Final:     final,
		Detection: det,
		Positions: est.EstimateAll(det.Centroids()),
	}, nil
}

// FindObjects selects the preset for colorID (0=RED, 1=GREEN, 2=BLUE,
// 3=YELLOW), runs one pass and returns the positions found. An unknown id
// fails with fault.ErrInvalidArgument and leaves the active preset unchanged.
func (p *Pipeline) FindObjects(ctx context.Context, colorID int) (*Objects, error) {
	preset, err := params.ParsePreset(colorID)
	if err != nil {
		return nil, err
	}

	p.passMu.Lock()
	defer p.passMu.Unlock()

	if _, err := p.store.Select(preset); err != nil {
		return nil, err
	}
	r, err := p.process(ctx)
	if err != nil {
		return nil, err
	}
	return r.Objects(), nil
}

// SaveImage writes the current frame to path. The format follows the file
// extension; PNG is lossless. Failures are fault.ErrIO and leave the pipeline
// untouched.
func (p *Pipeline) SaveImage(path string) error {
	if err := imaging.SaveFrame(p.frame.Load(), path); err != nil {
		return err
	}
	p.logger.Infow("frame saved", "path", path)
	return nil
}

// SetCalibration toggles production of debug views. Detection results do not
// depend on it.
func (p *Pipeline) SetCalibration(enabled bool) {
	if p.calibration.Swap(enabled) != enabled {
		p.logger.Infow("calibration mode changed", "enabled", enabled)
	}
}

// Calibration reports whether debug views are enabled.
func (p *Pipeline) Calibration() bool {
	return p.calibration.Load()
}

// Loop runs a pass every interval until ctx is cancelled. A failed pass is
// logged and the loop continues; passes are never interrupted halfway.
func (p *Pipeline) Loop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.logger.Infow("processing loop started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			p.logger.Infow("processing loop stopped", "passes", p.Passes())
			return
		case <-ticker.C:
		}
		// The pass runs to completion even if ctx is cancelled meanwhile.
		if _, err := p.Process(context.WithoutCancel(ctx)); err != nil {
			p.logger.Errorw("pass failed", "error", err)
		}
	}
}
