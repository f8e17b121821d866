package params

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ironsheep/puck-vision/internal/fault"
)

// CalibrationFile is the JSON layout of an external calibration edit:
//
//	{"preset": "GREEN", "hue_start": 70, "hue_width": 28}
//
// The preset is optional. When present, the preset's defaults are selected
// before the fields are applied, in the same atomic update.
type CalibrationFile struct {
	Preset *Preset `json:"preset,omitempty"`
	Patch
}

// ReadCalibrationFile parses a calibration file.
func ReadCalibrationFile(path string) (CalibrationFile, error) {
	var cf CalibrationFile
	data, err := os.ReadFile(path)
	if err != nil {
		return cf, fault.IO(err, "read calibration file %s", path)
	}
	if err := json.Unmarshal(data, &cf); err != nil {
		return cf, fault.InvalidArgument("parse calibration file %s: %v", path, err)
	}
	return cf, nil
}

// ApplyCalibrationFile reads path and applies it to the store.
func ApplyCalibrationFile(store *Store, path string) (Snapshot, error) {
	cf, err := ReadCalibrationFile(path)
	if err != nil {
		return store.Snapshot(), err
	}
	return store.Calibrate(cf.Preset, cf.Patch)
}

// Watch applies the calibration file at path whenever it is written, until ctx
// is cancelled. The file is applied once at start if it exists.
//
// The parent directory is watched rather than the file itself so that editors
// which replace the file on save are picked up. Parse and validation failures
// are logged and leave the store unchanged.
func Watch(ctx context.Context, store *Store, path string, logger *zap.SugaredLogger) error {
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create calibration watcher")
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return errors.Wrapf(err, "watch %s", filepath.Dir(path))
	}

	apply := func() {
		snap, err := ApplyCalibrationFile(store, path)
		if err != nil {
			logger.Warnw("calibration file rejected", "path", path, "error", err)
			return
		}
		logger.Infow("calibration applied", "path", path, "version", snap.Version, "preset", snap.Preset)
	}

	if _, err := os.Stat(path); err == nil {
		apply()
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				apply()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("calibration watcher error", "error", err)
		}
	}
}
