// Package imaging provides the pixel buffers and low-level image operations
// used by the puck detection pipeline.
//
// It defines two buffer types:
//   - Frame: a 3-channel 8-bit RGB image delivered by frame acquisition.
//   - Plane: a single-channel 8-bit image. Masks are Planes holding 0 or 255.
//
// On top of these it implements color-space splitting (hue, saturation,
// value), per-pixel arithmetic and thresholds, binary morphology with square
// and cross structuring elements, and frame file I/O.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//
// # Value Semantics
//
// Every operation returns a new buffer and leaves its inputs untouched, so a
// pass over a frame never needs explicit release calls and never observes a
// partially written buffer.
//
// # Thread Safety
//
// Buffers are not synchronized. Published frames and planes must be treated as
// read-only; concurrent readers are then safe. Morphology and color splitting
// split rows across goroutines internally.
//
// # Error Handling
//
// Functions return errors for:
//   - Coordinates outside the frame (SampleColor)
//   - Mismatched plane dimensions (fault.ErrInvariantViolation)
//   - File I/O and decoding failures (fault.ErrIO)
package imaging
