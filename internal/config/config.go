// Package config loads the puck-vision startup configuration.
//
// The configuration is a JSON file whose fields are all optional: absent
// fields fall back to the defaults returned by the Get* methods, so a partial
// file, or none at all, is valid.
package config

import (
	"encoding/json"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/ironsheep/puck-vision/internal/fault"
	"github.com/ironsheep/puck-vision/internal/geometry"
	"github.com/ironsheep/puck-vision/internal/imaging"
	"github.com/ironsheep/puck-vision/internal/params"
	"github.com/ironsheep/puck-vision/internal/source"
)

// PathEnv names the environment variable consulted when no -config flag is
// given.
const PathEnv = "PUCK_VISION_CONFIG"

// DefaultConfigPath is the reference configuration shipped with the repository.
const DefaultConfigPath = "config/puck-vision.defaults.json"

const (
	defaultRateHz       = 30.0
	defaultInitialColor = "RED"
	maxFileSize         = 1 * 1024 * 1024 // 1MB
	maxRateHz           = 1000.0
)

// SourceConfig selects where frames come from.
type SourceConfig struct {
	// Kind is "file", "dir" or "none".
	Kind string `json:"kind"`
	// Path is the image file or directory.
	Path string `json:"path,omitempty"`
}

// Config is the root configuration.
type Config struct {
	// Camera geometry, centimeters.
	CameraHeight        *float64 `json:"camera_height,omitempty"`
	CameraCloseDistance *float64 `json:"camera_close_distance,omitempty"`
	CameraFarDistance   *float64 `json:"camera_far_distance,omitempty"`
	CameraDepthWidth    *float64 `json:"camera_depth_width,omitempty"`

	// Frame size, pixels.
	Width  *int `json:"width,omitempty"`
	Height *int `json:"height,omitempty"`

	// Processing loop.
	RateHz     *float64 `json:"rate_hz,omitempty"`
	Projection *string  `json:"projection,omitempty"` // "linear" or "legacy"

	// Calibration.
	Calibration     *bool   `json:"calibration,omitempty"`
	CalibrationFile *string `json:"calibration_file,omitempty"`
	InitialColor    *string `json:"initial_color,omitempty"`
	OverlayColor    *string `json:"overlay_color,omitempty"` // hex, "#RRGGBB" or "#RRGGBBAA"
	GuideColor      *string `json:"guide_color,omitempty"`

	Source *SourceConfig `json:"source,omitempty"`

	// Presets overrides preset defaults by name, for example
	// {"GREEN": {"hue_start": 72}}.
	Presets map[string]params.Patch `json:"presets,omitempty"`
}

// Empty returns a Config with every field unset.
func Empty() *Config {
	return &Config{}
}

// ResolvePath returns flagValue if set, else the PathEnv variable. An empty
// result means no configuration file.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv(PathEnv)
}

// Load reads and validates a configuration file.
// The file must have a .json extension and be under 1MB.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fault.InvalidArgument("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fault.IO(err, "stat config file")
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fault.InvalidArgument("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fault.IO(err, "read config file")
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fault.InvalidArgument("parse config JSON: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

// Validate checks every set field and reports all problems together.
func (c *Config) Validate() error {
	var err error

	if cerr := c.Camera().Validate(); cerr != nil {
		err = multierr.Append(err, cerr)
	}
	if c.RateHz != nil && (!(*c.RateHz > 0) || *c.RateHz > maxRateHz) {
		err = multierr.Append(err, fault.InvalidArgument("rate_hz must be in (0, %v], got %v", maxRateHz, *c.RateHz))
	}
	if _, perr := c.GetProjection(); perr != nil {
		err = multierr.Append(err, perr)
	}
	if _, perr := params.PresetByName(c.GetInitialColor()); perr != nil {
		err = multierr.Append(err, errors.Wrap(perr, "initial_color"))
	}
	for name, hex := range map[string]*string{"overlay_color": c.OverlayColor, "guide_color": c.GuideColor} {
		if hex != nil {
			if _, herr := imaging.ParseHexColor(*hex); herr != nil {
				err = multierr.Append(err, fault.InvalidArgument("%s: %v", name, herr))
			}
		}
	}

	if c.Source != nil {
		switch source.Kind(c.Source.Kind) {
		case source.KindNone, "":
		case source.KindFile, source.KindDir:
			if c.Source.Path == "" {
				err = multierr.Append(err, fault.InvalidArgument("source.path is required for kind %q", c.Source.Kind))
			}
		default:
			err = multierr.Append(err, fault.InvalidArgument("unknown source kind %q", c.Source.Kind))
		}
	}

	for _, name := range c.presetNames() {
		p, perr := params.PresetByName(name)
		if perr != nil {
			err = multierr.Append(err, errors.Wrap(perr, "presets"))
			continue
		}
		base, _ := params.DefaultBundle(p)
		if berr := c.Presets[name].Apply(base).Validate(); berr != nil {
			err = multierr.Append(err, errors.Wrapf(berr, "presets.%s", name))
		}
	}
	return err
}

func (c *Config) presetNames() []string {
	names := make([]string, 0, len(c.Presets))
	for name := range c.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Camera returns the camera geometry with defaults filled in.
func (c *Config) Camera() geometry.Camera {
	cam := geometry.DefaultCamera()
	if c.CameraHeight != nil {
		cam.MountHeight = *c.CameraHeight
	}
	if c.CameraCloseDistance != nil {
		cam.NearDistance = *c.CameraCloseDistance
	}
	if c.CameraFarDistance != nil {
		cam.FarDistance = *c.CameraFarDistance
	}
	if c.CameraDepthWidth != nil {
		cam.DepthWidth = *c.CameraDepthWidth
	}
	if c.Width != nil {
		cam.Width = *c.Width
	}
	if c.Height != nil {
		cam.Height = *c.Height
	}
	return cam
}

// GetProjection returns the configured row projection, Linear by default.
func (c *Config) GetProjection() (geometry.Projection, error) {
	if c.Projection == nil {
		return geometry.Linear, nil
	}
	return geometry.ParseProjection(*c.Projection)
}

// Estimator builds the position estimator for this configuration.
func (c *Config) Estimator() (*geometry.Estimator, error) {
	p, err := c.GetProjection()
	if err != nil {
		return nil, err
	}
	return geometry.NewEstimator(c.Camera(), p)
}

// GetRateHz returns the processing loop rate or the default of 30 Hz.
func (c *Config) GetRateHz() float64 {
	if c.RateHz == nil || !(*c.RateHz > 0) {
		return defaultRateHz
	}
	return *c.RateHz
}

// Interval returns the period of the processing loop.
func (c *Config) Interval() time.Duration {
	return time.Duration(float64(time.Second) / c.GetRateHz())
}

// GetCalibration returns whether calibration mode starts enabled.
func (c *Config) GetCalibration() bool {
	if c.Calibration == nil {
		return false
	}
	return *c.Calibration
}

// GetCalibrationFile returns the watched calibration file, or "".
func (c *Config) GetCalibrationFile() string {
	if c.CalibrationFile == nil {
		return ""
	}
	return *c.CalibrationFile
}

// GetInitialColor returns the preset selected at startup, RED by default.
func (c *Config) GetInitialColor() string {
	if c.InitialColor == nil || strings.TrimSpace(*c.InitialColor) == "" {
		return defaultInitialColor
	}
	return *c.InitialColor
}

// InitialPreset returns GetInitialColor as a Preset.
func (c *Config) InitialPreset() (params.Preset, error) {
	return params.PresetByName(c.GetInitialColor())
}

// OverlayColors returns the debug overlay colors, falling back to the defaults
// for unset or unparsable values.
func (c *Config) OverlayColors() (outline, guide color.RGBA) {
	outline, guide = imaging.DefaultOverlayColor, imaging.DefaultGuideColor
	if c.OverlayColor != nil {
		if col, err := imaging.ParseHexColor(*c.OverlayColor); err == nil {
			outline = col
		}
	}
	if c.GuideColor != nil {
		if col, err := imaging.ParseHexColor(*c.GuideColor); err == nil {
			guide = col
		}
	}
	return outline, guide
}

// GetSource returns the frame source settings; no source by default.
func (c *Config) GetSource() SourceConfig {
	if c.Source == nil || c.Source.Kind == "" {
		return SourceConfig{Kind: string(source.KindNone)}
	}
	return *c.Source
}

// NewSource builds the configured frame source. It returns nil when frames
// only arrive through the server.
func (c *Config) NewSource() (source.Source, error) {
	s := c.GetSource()
	cam := c.Camera()
	return source.New(source.Kind(s.Kind), s.Path, cam.Width, cam.Height)
}

// NewStore builds the parameter store with the preset overrides applied and
// the initial color selected.
func (c *Config) NewStore() (*params.Store, error) {
	initial, err := c.InitialPreset()
	if err != nil {
		return nil, err
	}
	store, err := params.NewStore(initial)
	if err != nil {
		return nil, err
	}

	for _, name := range c.presetNames() {
		p, err := params.PresetByName(name)
		if err != nil {
			return nil, err
		}
		base, err := store.Defaults(p)
		if err != nil {
			return nil, err
		}
		if err := store.SetDefaults(p, c.Presets[name].Apply(base)); err != nil {
			return nil, err
		}
	}

	// Re-select so that an override of the initial preset takes effect.
	if _, err := store.Select(initial); err != nil {
		return nil, err
	}
	return store, nil
}
