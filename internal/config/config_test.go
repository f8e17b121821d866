package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/ironsheep/puck-vision/internal/fault"
	"github.com/ironsheep/puck-vision/internal/geometry"
	"github.com/ironsheep/puck-vision/internal/imaging"
	"github.com/ironsheep/puck-vision/internal/params"
	"github.com/ironsheep/puck-vision/internal/source"
)

func ptrFloat64(v float64) *float64 { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestEmpty_Defaults(t *testing.T) {
	cfg := Empty()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, geometry.DefaultCamera(), cfg.Camera())
	assert.Equal(t, 30.0, cfg.GetRateHz())
	assert.Equal(t, time.Second/30, cfg.Interval())
	assert.False(t, cfg.GetCalibration())
	assert.Equal(t, "", cfg.GetCalibrationFile())
	assert.Equal(t, "RED", cfg.GetInitialColor())
	assert.Equal(t, SourceConfig{Kind: "none"}, cfg.GetSource())

	p, err := cfg.GetProjection()
	require.NoError(t, err)
	assert.Equal(t, geometry.Linear, p)

	outline, guide := cfg.OverlayColors()
	assert.Equal(t, imaging.DefaultOverlayColor, outline)
	assert.Equal(t, imaging.DefaultGuideColor, guide)

	src, err := cfg.NewSource()
	require.NoError(t, err)
	assert.Nil(t, src)
}

func TestLoad_DefaultsFile(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", DefaultConfigPath))
	require.NoError(t, err)

	assert.Equal(t, geometry.DefaultCamera(), cfg.Camera())
	store, err := cfg.NewStore()
	require.NoError(t, err)
	assert.Equal(t, params.Red, store.Snapshot().Preset)

	for _, p := range params.Presets {
		want, err := params.DefaultBundle(p)
		require.NoError(t, err)
		got, err := store.Defaults(p)
		require.NoError(t, err)
		assert.Equal(t, want, got, p.String())
	}
}

func TestLoad_PartialFile(t *testing.T) {
	path := writeConfig(t, "partial.json", `{
		"camera_height": 30.5,
		"width": 640,
		"height": 480,
		"rate_hz": 10,
		"projection": "legacy",
		"calibration": true,
		"initial_color": "green",
		"source": {"kind": "dir", "path": "/frames"}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	cam := cfg.Camera()
	assert.Equal(t, 30.5, cam.MountHeight)
	assert.Equal(t, 28.0, cam.NearDistance)
	assert.Equal(t, 640, cam.Width)
	assert.Equal(t, 480, cam.Height)
	assert.Equal(t, 100*time.Millisecond, cfg.Interval())
	assert.True(t, cfg.GetCalibration())

	p, err := cfg.GetProjection()
	require.NoError(t, err)
	assert.Equal(t, geometry.Legacy, p)

	est, err := cfg.Estimator()
	require.NoError(t, err)
	assert.Equal(t, geometry.Legacy, est.Projection())

	preset, err := cfg.InitialPreset()
	require.NoError(t, err)
	assert.Equal(t, params.Green, preset)
	assert.Equal(t, SourceConfig{Kind: "dir", Path: "/frames"}, cfg.GetSource())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load("config.yaml")
	assert.True(t, fault.Is(err, fault.ErrInvalidArgument))

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.True(t, fault.Is(err, fault.ErrIO))

	_, err = Load(writeConfig(t, "bad.json", `{"width": "wide"}`))
	assert.True(t, fault.Is(err, fault.ErrInvalidArgument))

	big := writeConfig(t, "big.json", `{"projection": "`+strings.Repeat("x", maxFileSize)+`"}`)
	_, err = Load(big)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")

	_, err = Load(writeConfig(t, "invalid.json", `{"camera_height": -1}`))
	assert.True(t, fault.Is(err, fault.ErrInvalidArgument))
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := &Config{
		CameraHeight: ptrFloat64(0),
		RateHz:       ptrFloat64(-5),
		Projection:   ptrString("fisheye"),
		InitialColor: ptrString("purple"),
		OverlayColor: ptrString("#12"),
		Source:       &SourceConfig{Kind: "camera"},
		Presets: map[string]params.Patch{
			"GREEN":  {HueWidth: ptrInt(params.MaxLevel + 1)},
			"ORANGE": {},
		},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 8)
	assert.True(t, fault.Is(err, fault.ErrInvalidArgument))
}

func TestValidate_SourcePathRequired(t *testing.T) {
	cfg := &Config{Source: &SourceConfig{Kind: string(source.KindFile)}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source.path")
}

func TestNewStore_PresetOverrides(t *testing.T) {
	cfg := &Config{
		InitialColor: ptrString("BLUE"),
		Presets: map[string]params.Patch{
			"blue":  {HueStart: ptrInt(150), HueWidth: ptrInt(40)},
			"GREEN": {ValueThreshold: ptrInt(80)},
		},
	}
	require.NoError(t, cfg.Validate())

	store, err := cfg.NewStore()
	require.NoError(t, err)

	snap := store.Snapshot()
	assert.Equal(t, params.Blue, snap.Preset)
	assert.Equal(t, 150, snap.Bundle.HueStart)
	assert.Equal(t, 40, snap.Bundle.HueWidth)

	green, err := store.Defaults(params.Green)
	require.NoError(t, err)
	assert.Equal(t, 80, green.ValueThreshold)
	assert.Equal(t, 69, green.HueStart)
}

func TestOverlayColors_Configured(t *testing.T) {
	cfg := &Config{OverlayColor: ptrString("#00FF00"), GuideColor: ptrString("not-a-color")}
	outline, guide := cfg.OverlayColors()
	assert.Equal(t, uint8(255), outline.G)
	assert.Equal(t, uint8(0), outline.R)
	assert.Equal(t, imaging.DefaultGuideColor, guide)
}

func TestResolvePath(t *testing.T) {
	t.Setenv(PathEnv, "/etc/puck.json")
	assert.Equal(t, "/etc/puck.json", ResolvePath(""))
	assert.Equal(t, "local.json", ResolvePath("local.json"))

	t.Setenv(PathEnv, "")
	assert.Equal(t, "", ResolvePath(""))
}
