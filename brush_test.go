package pixelwork

import (
	"errors"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBrush_StampsAndUndo(t *testing.T) {
	assert := assert.New(t)

	m := NewBrushMask(32, 24)
	m.Size = 6
	assert.False(m.HasMask())
	assert.False(m.CanUndo())

	points := [][2]float64{{4, 4}, {16, 12}, {30, 22}}
	for _, p := range points {
		m.Stamp(p[0], p[1])
	}
	assert.True(m.HasMask())
	assert.Equal(uint8(255), m.AlphaAt(4, 4))
	assert.Equal(uint8(0), m.AlphaAt(10, 4))

	for range points {
		assert.True(m.CanUndo())
		m.Undo()
	}
	assert.False(m.HasMask())
	assert.False(m.CanUndo())

	// Undo on an empty history is a no-op.
	m.Undo()
	assert.False(m.HasMask())
}

func TestBrush_GestureIsUndoneAtOnce(t *testing.T) {
	assert := assert.New(t)

	m := NewBrushMask(20, 20)
	m.Size = 4
	m.Stamp(2, 2)

	m.BeginStroke()
	m.StampSegment(2, 10, 10, 10)
	m.StampSegment(10, 10, 18, 10)
	m.EndStroke()

	assert.Equal(uint8(255), m.AlphaAt(6, 10))
	assert.Equal(uint8(255), m.AlphaAt(17, 10))

	m.Undo()
	assert.Equal(uint8(0), m.AlphaAt(6, 10))
	assert.Equal(uint8(255), m.AlphaAt(2, 2))
}

func TestBrush_MaxAccumulation(t *testing.T) {
	m := NewBrushMask(10, 10)
	m.Size = 8
	m.Stamp(5, 5)

	m.Strength = 40
	m.Stamp(5, 5)

	assert.Equal(t, uint8(255), m.AlphaAt(5, 5))
}

func TestBrush_ClearDropsHistory(t *testing.T) {
	assert := assert.New(t)

	m := NewBrushMask(10, 10)
	m.Stamp(5, 5)
	m.Clear()

	assert.False(m.HasMask())
	assert.False(m.CanUndo())

	var nilMask *BrushMask
	assert.False(nilMask.HasMask())
}

func TestBrush_ApplyErasesProportionally(t *testing.T) {
	assert := assert.New(t)

	base := solid(10, 10, color.NRGBA{R: 10, G: 20, B: 30, A: 200})
	m := NewBrushMask(10, 10)
	m.Size = 4
	m.Stamp(2, 2)
	m.Strength = 51
	m.Stamp(7, 7)

	assert.NoError(m.Apply(base))
	assert.Equal(uint8(0), base.At(2, 2).A)
	assert.Equal(color.NRGBA{R: 10, G: 20, B: 30, A: 160}, base.At(7, 7))
	assert.Equal(color.NRGBA{R: 10, G: 20, B: 30, A: 200}, base.At(0, 9))
}

func TestBrush_ApplyRejectsSizeMismatch(t *testing.T) {
	m := NewBrushMask(4, 4)
	err := m.Apply(NewPixelBuffer(5, 4))
	assert.True(t, errors.Is(err, ErrMaskLoad))
}

func TestBrush_LoadFromImage(t *testing.T) {
	assert := assert.New(t)

	m := NewBrushMask(12, 8)
	m.Size = 5
	m.StampSegment(1, 1, 10, 6)

	loaded, err := LoadBrushMask(m.Image())
	assert.NoError(err)
	assert.Equal(m.alpha, loaded.alpha)

	_, err = LoadBrushMask(&PixelBuffer{Width: 2, Height: 2})
	assert.True(errors.Is(err, ErrMaskLoad))
}

func TestBrush_RetargetDiscardsMask(t *testing.T) {
	assert := assert.New(t)

	m := NewBrushMask(10, 10)
	m.Stamp(5, 5)

	m.Retarget(10, 10)
	assert.True(m.HasMask())

	m.Retarget(12, 10)
	assert.False(m.HasMask())
	assert.False(m.CanUndo())
	w, h := m.Bounds()
	assert.Equal(12, w)
	assert.Equal(10, h)
}
