package imaging

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Frame is a 3-channel 8-bit RGB pixel buffer.
//
// Pixels are stored row-major with a stride of 3*Width bytes:
//
//	offset(x, y) = 3*(y*Width + x)
//	Pix[offset+0] = R, Pix[offset+1] = G, Pix[offset+2] = B
//
// A Frame handed to the pipeline is treated as immutable. Producers build a new
// Frame for every acquisition and swap it in; nothing writes into a Frame that
// has been published.
type Frame struct {
	Width  int
	Height int
	Pix    []uint8
}

// NewFrame allocates an all-black frame of the given dimensions.
func NewFrame(width, height int) *Frame {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Frame{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, 3*width*height),
	}
}

// FrameFromImage copies any decoded image into a new Frame.
//
// The image is first normalized to non-premultiplied RGBA so that translucent
// pixels keep their straight color; alpha is then dropped. The frame origin is
// always (0, 0) regardless of img.Bounds().Min.
func FrameFromImage(img image.Image) *Frame {
	nrgba := imaging.Clone(img)
	bounds := nrgba.Bounds()
	f := NewFrame(bounds.Dx(), bounds.Dy())

	for y := 0; y < f.Height; y++ {
		src := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+4*f.Width]
		dst := f.Pix[3*y*f.Width : 3*(y+1)*f.Width]
		for x := 0; x < f.Width; x++ {
			dst[3*x] = src[4*x]
			dst[3*x+1] = src[4*x+1]
			dst[3*x+2] = src[4*x+2]
		}
	}
	return f
}

// At returns the RGB components of the pixel at (x, y).
// No bounds checking is performed; caller must ensure coordinates are valid.
func (f *Frame) At(x, y int) (r, g, b uint8) {
	i := 3 * (y*f.Width + x)
	return f.Pix[i], f.Pix[i+1], f.Pix[i+2]
}

// Set writes the RGB components of the pixel at (x, y). It is meant for
// building frames before they are published.
func (f *Frame) Set(x, y int, r, g, b uint8) {
	i := 3 * (y*f.Width + x)
	f.Pix[i], f.Pix[i+1], f.Pix[i+2] = r, g, b
}

// InBounds reports whether (x, y) lies inside the frame.
func (f *Frame) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < f.Width && y < f.Height
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	c := &Frame{Width: f.Width, Height: f.Height, Pix: make([]uint8, len(f.Pix))}
	copy(c.Pix, f.Pix)
	return c
}

// Image converts the frame into an opaque *image.NRGBA suitable for encoding
// or drawing.
func (f *Frame) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			r, g, b := f.At(x, y)
			img.SetNRGBA(x, y, color.NRGBA{R: r, G: g, B: b, A: 255})
		}
	}
	return img
}

// Resize returns the frame scaled to width x height using Lanczos resampling.
// If the frame already has these dimensions it is returned unchanged.
func (f *Frame) Resize(width, height int) *Frame {
	if f.Width == width && f.Height == height {
		return f
	}
	if f.Width == 0 || f.Height == 0 {
		return NewFrame(width, height)
	}
	return FrameFromImage(imaging.Resize(f.Image(), width, height, imaging.Lanczos))
}
