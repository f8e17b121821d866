package imaging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/puck-vision/internal/fault"
)

func planeOf(width, height int, values ...uint8) *Plane {
	p := NewPlane(width, height)
	copy(p.Pix, values)
	return p
}

func TestPlane_Threshold(t *testing.T) {
	p := planeOf(5, 1, 0, 49, 50, 51, 255)

	assert.Equal(t, []uint8{0, 0, 0, 255, 255}, p.Threshold(50).Pix)
	assert.Equal(t, []uint8{0, 0, 255, 255, 255}, p.ThresholdAtLeast(50).Pix)
	assert.Equal(t, []uint8{255, 255, 255, 255, 255}, p.ThresholdAtLeast(0).Pix)
	assert.Equal(t, []uint8{0, 0, 0, 0, 0}, p.Threshold(255).Pix)
}

func TestPlane_SaturatingArithmetic(t *testing.T) {
	p := planeOf(4, 1, 0, 10, 200, 255)

	assert.Equal(t, []uint8{0, 0, 110, 165}, p.SubScalar(90).Pix)
	assert.Equal(t, []uint8{165, 175, 255, 255}, p.AddScalar(165).Pix)
	assert.Equal(t, []uint8{255, 245, 55, 0}, p.Invert().Pix)

	sum, err := p.Add(planeOf(4, 1, 1, 1, 100, 1))
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 11, 255, 255}, sum.Pix)
}

func TestPlane_AndOr(t *testing.T) {
	a := planeOf(4, 1, 0, 255, 0, 255)
	b := planeOf(4, 1, 0, 0, 255, 255)

	and, err := a.And(b)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 0, 0, 255}, and.Pix)

	or, err := a.Or(b)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 255, 255, 255}, or.Pix)
}

func TestPlane_SizeMismatch(t *testing.T) {
	a := NewPlane(4, 3)
	b := NewPlane(3, 4)

	_, err := a.And(b)
	require.Error(t, err)
	assert.True(t, fault.Is(err, fault.ErrInvariantViolation))

	_, err = a.Add(b)
	assert.True(t, fault.Is(err, fault.ErrInvariantViolation))
}

func TestPlane_DoesNotMutateInput(t *testing.T) {
	p := planeOf(3, 1, 1, 2, 3)
	_ = p.Invert()
	_ = p.AddScalar(10)
	_ = p.Threshold(1)
	assert.Equal(t, []uint8{1, 2, 3}, p.Pix)
}

func TestPlane_CountAndGray(t *testing.T) {
	p := planeOf(2, 2, 0, 255, 7, 0)
	assert.Equal(t, 2, p.Count())

	g := p.Gray()
	assert.Equal(t, 2, g.Bounds().Dx())
	assert.Equal(t, uint8(7), g.GrayAt(0, 1).Y)
}
