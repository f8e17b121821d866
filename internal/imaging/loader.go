package imaging

import (
	"io"
	"os"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/puck-vision/internal/fault"
)

// FrameInfo describes a frame file on disk.
type FrameInfo struct {
	// Width is the frame width in pixels.
	Width int `json:"width"`

	// Height is the frame height in pixels.
	Height int `json:"height"`

	// FileSizeBytes is the size of the file on disk in bytes.
	FileSizeBytes int64 `json:"file_size_bytes"`
}

// LoadFrame reads an image file and converts it into a Frame.
//
// Parameters:
//   - path: Path to a PNG, JPEG, GIF, BMP or TIFF file.
//   - width, height: Target dimensions. If the decoded image differs, it is
//     resized with Lanczos resampling. Pass zero for either to keep the
//     original size.
//
// Returns:
//   - *Frame: The decoded frame.
//   - error: An fault.ErrIO error if the file cannot be opened or decoded.
func LoadFrame(path string, width, height int) (*Frame, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fault.IO(err, "load frame %s", path)
	}
	return fit(FrameFromImage(img), width, height), nil
}

// DecodeFrame decodes an encoded image from r. Sizing follows LoadFrame.
func DecodeFrame(r io.Reader, width, height int) (*Frame, error) {
	img, err := imaging.Decode(r)
	if err != nil {
		return nil, fault.IO(err, "decode frame")
	}
	return fit(FrameFromImage(img), width, height), nil
}

// SaveFrame writes a frame to path. The encoding is chosen from the file
// extension (".png" is lossless, ".jpg" is lossy at the library's default
// quality).
//
// Returns an fault.ErrIO error if the extension is unsupported or the file
// cannot be written.
func SaveFrame(f *Frame, path string) error {
	if err := imaging.Save(f.Image(), path); err != nil {
		return fault.IO(err, "save frame %s", path)
	}
	return nil
}

// StatFrame loads a frame file and reports its dimensions and size on disk.
func StatFrame(path string) (*FrameInfo, error) {
	f, err := LoadFrame(path, 0, 0)
	if err != nil {
		return nil, err
	}
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fault.IO(err, "stat %s", path)
	}
	return &FrameInfo{
		Width:         f.Width,
		Height:        f.Height,
		FileSizeBytes: stat.Size(),
	}, nil
}

func fit(f *Frame, width, height int) *Frame {
	if width <= 0 || height <= 0 {
		return f
	}
	return f.Resize(width, height)
}
