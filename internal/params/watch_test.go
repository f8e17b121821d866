package params

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ironsheep/puck-vision/internal/fault"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestApplyCalibrationFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calibration.json")
	writeFile(t, path, `{"preset": "blue", "hue_width": 40}`)

	s, err := NewStore(Red)
	require.NoError(t, err)

	snap, err := ApplyCalibrationFile(s, path)
	require.NoError(t, err)
	assert.Equal(t, Blue, snap.Preset)
	assert.Equal(t, 40, snap.Bundle.HueWidth)

	want, _ := DefaultBundle(Blue)
	assert.Equal(t, want.HueStart, snap.Bundle.HueStart)
}

func TestApplyCalibrationFile_Errors(t *testing.T) {
	dir := t.TempDir()
	s, err := NewStore(Green)
	require.NoError(t, err)
	before := s.Snapshot()

	_, err = ApplyCalibrationFile(s, filepath.Join(dir, "missing.json"))
	assert.True(t, fault.Is(err, fault.ErrIO))

	garbage := filepath.Join(dir, "garbage.json")
	writeFile(t, garbage, `{"hue_width":`)
	_, err = ApplyCalibrationFile(s, garbage)
	assert.True(t, fault.Is(err, fault.ErrInvalidArgument))

	outOfRange := filepath.Join(dir, "range.json")
	writeFile(t, outOfRange, `{"value_threshold": 900}`)
	_, err = ApplyCalibrationFile(s, outOfRange)
	assert.True(t, fault.Is(err, fault.ErrInvalidArgument))

	assert.Equal(t, before, s.Snapshot())
}

func TestWatch_AppliesOnStartAndOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calibration.json")
	writeFile(t, path, `{"hue_width": 11}`)

	s, err := NewStore(Green)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, s, path, zaptest.NewLogger(t).Sugar()) }()

	require.Eventually(t, func() bool { return s.Get().HueWidth == 11 },
		2*time.Second, 10*time.Millisecond)

	writeFile(t, path, `{"hue_width": 22}`)
	require.Eventually(t, func() bool { return s.Get().HueWidth == 22 },
		2*time.Second, 10*time.Millisecond)

	// Other files in the directory are ignored.
	writeFile(t, filepath.Join(dir, "other.json"), `{"hue_width": 33}`)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 22, s.Get().HueWidth)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestWatch_MissingDirectory(t *testing.T) {
	s, err := NewStore(Green)
	require.NoError(t, err)

	err = Watch(context.Background(), s, filepath.Join(t.TempDir(), "nope", "c.json"),
		zaptest.NewLogger(t).Sugar())
	assert.Error(t, err)
}
