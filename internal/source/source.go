// Package source delivers camera frames to the pipeline.
//
// A Source produces one frame per call. Acquire polls a Source at a fixed rate
// and hands every frame to a sink; failed reads are logged and replaced by a
// blank frame so that the consumer keeps running and reports no objects.
package source

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ironsheep/puck-vision/internal/fault"
	"github.com/ironsheep/puck-vision/internal/imaging"
)

// Kind names a source implementation in configuration.
type Kind string

const (
	// KindFile re-reads one image file on every frame. Another process can
	// keep overwriting the file with the latest camera image.
	KindFile Kind = "file"
	// KindDir replays the images of a directory in name order, looping.
	KindDir Kind = "dir"
	// KindNone delivers no frames; frames are pushed through the server.
	KindNone Kind = "none"
)

// Source yields frames of a fixed size.
type Source interface {
	// Next returns the next frame. Implementations return fault.ErrIO errors
	// for unreadable or undecodable images.
	Next(ctx context.Context) (*imaging.Frame, error)
}

// New builds the source named by kind. Frames are resized to width x height.
func New(kind Kind, path string, width, height int) (Source, error) {
	switch kind {
	case KindFile:
		return &File{Path: path, Width: width, Height: height}, nil
	case KindDir:
		d, err := NewDir(path, width, height)
		if err != nil {
			return nil, err
		}
		return d, nil
	case KindNone, "":
		return nil, nil
	default:
		return nil, fault.InvalidArgument("unknown source kind %q", string(kind))
	}
}

// File reads the same image path on every call.
type File struct {
	Path   string
	Width  int
	Height int
}

// Next loads the file.
func (f *File) Next(ctx context.Context) (*imaging.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return imaging.LoadFrame(f.Path, f.Width, f.Height)
}

// imageExt lists the extensions Dir picks up.
var imageExt = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".bmp": true, ".tif": true, ".tiff": true,
}

// Dir cycles through the image files of a directory.
type Dir struct {
	width, height int

	mu    sync.Mutex
	files []string
	next  int
}

// NewDir lists the image files in dir. An empty directory is an error.
func NewDir(dir string, width, height int) (*Dir, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fault.IO(err, "list frames in %s", dir)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !imageExt[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	if len(files) == 0 {
		return nil, fault.InvalidArgument("no image files in %s", dir)
	}
	sort.Strings(files)

	return &Dir{width: width, height: height, files: files}, nil
}

// Files returns the frame files in replay order.
func (d *Dir) Files() []string {
	return append([]string(nil), d.files...)
}

// Next loads the next file, wrapping around after the last one.
func (d *Dir) Next(ctx context.Context) (*imaging.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	path := d.files[d.next]
	d.next = (d.next + 1) % len(d.files)
	d.mu.Unlock()

	return imaging.LoadFrame(path, d.width, d.height)
}

// Acquire calls src every interval and passes each frame to sink until ctx is
// cancelled. A failed read is logged and a blank width x height frame is
// delivered in its place. Acquire never retries within one tick.
func Acquire(ctx context.Context, src Source, interval time.Duration, width, height int,
	sink func(*imaging.Frame), logger *zap.SugaredLogger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	failing := false
	for {
		frame, err := src.Next(ctx)
		switch {
		case ctx.Err() != nil:
			return
		case err != nil:
			if !failing {
				logger.Warnw("frame acquisition failed, using blank frame", "error", err)
			} else {
				logger.Debugw("frame acquisition still failing", "error", err)
			}
			failing = true
			sink(imaging.NewFrame(width, height))
		default:
			if failing {
				logger.Infow("frame acquisition recovered")
			}
			failing = false
			sink(frame)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
