package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#FF0000", color.RGBA{255, 0, 0, 255}, false},
		{"00ff00", color.RGBA{0, 255, 0, 255}, false},
		{"#0000FF80", color.RGBA{0, 0, 255, 128}, false},
		{"", color.RGBA{}, true},
		{"#FFF", color.RGBA{}, true},
		{"#GGGGGG", color.RGBA{}, true},
	}

	for _, tt := range tests {
		got, err := ParseHexColor(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestDrawOverlay(t *testing.T) {
	base := NewFrame(40, 30).Image()
	ov := Overlay{
		Polygons:   [][]image.Point{{{5, 5}, {5, 20}, {20, 20}, {20, 5}}},
		Markers:    []Marker{{X: 12, Y: 12, Label: "1"}},
		Rows:       []RowLabel{{Y: 25, Label: "30cm"}},
		Center:     true,
		Color:      DefaultOverlayColor,
		GuideColor: DefaultGuideColor,
	}

	out := DrawOverlay(base, ov)
	require.Equal(t, base.Bounds(), out.Bounds())

	// The marker dot is filled with the outline color.
	r, g, b, _ := out.At(12, 12).RGBA()
	assert.Equal(t, []uint32{0xffff, 0, 0xffff}, []uint32{r, g, b})

	// Pixels far from any drawing stay black.
	r, g, b, _ = out.At(35, 2).RGBA()
	assert.Equal(t, []uint32{0, 0, 0}, []uint32{r, g, b})

	// The base image is left alone.
	r, _, _, _ = base.At(12, 12).RGBA()
	assert.Equal(t, uint32(0), r)
}

func TestEncodeImage(t *testing.T) {
	img := NewPlane(8, 6).Gray()

	enc, err := EncodeImage("mask", img, 1)
	require.NoError(t, err)
	assert.Equal(t, "mask", enc.Name)
	assert.Equal(t, 8, enc.Width)
	assert.Equal(t, 6, enc.Height)
	assert.Equal(t, "image/png", enc.MimeType)

	raw, err := base64.StdEncoding.DecodeString(enc.ImageBase64)
	require.NoError(t, err)
	decoded, err := DecodeFrame(bytes.NewReader(raw), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 8, decoded.Width)

	half, err := EncodeImage("mask", img, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 4, half.Width)
	assert.Equal(t, 3, half.Height)
}

func TestEncodePNGBase64(t *testing.T) {
	s, err := EncodePNGBase64(NewPlane(4, 4).Gray())
	require.NoError(t, err)
	assert.NotEmpty(t, s)
}
