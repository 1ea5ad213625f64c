package pixelwork

import (
	"errors"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplit_CoversSheet(t *testing.T) {
	assert := assert.New(t)

	sheet := NewPixelBuffer(10, 7)
	for y := 0; y < 7; y++ {
		for x := 0; x < 10; x++ {
			sheet.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), A: 255})
		}
	}
	pieces, err := SplitSheet(sheet, 3, 2)
	assert.NoError(err)
	assert.Len(pieces, 6)

	widths := []int{3, 3, 4}
	heights := []int{3, 4}
	var area int
	for i, p := range pieces {
		assert.Equal(widths[i%3], p.Width, "piece %d", i)
		assert.Equal(heights[i/3], p.Height, "piece %d", i)
		area += p.Width * p.Height
	}
	assert.Equal(70, area)

	// Bottom-right piece starts at (6, 3).
	assert.Equal(color.NRGBA{R: 6, G: 3, A: 255}, pieces[5].At(0, 0))
	assert.Equal(color.NRGBA{R: 9, G: 6, A: 255}, pieces[5].At(3, 3))
}

func TestSplit_RejectsOversizedGrid(t *testing.T) {
	_, err := SplitSheet(NewPixelBuffer(4, 4), 5, 1)
	assert.True(t, errors.Is(err, ErrInvalid))
}

func TestSplit_Rows(t *testing.T) {
	assert := assert.New(t)

	rows := Rows([]int{1, 2, 3, 4, 5, 6, 7}, 3)
	assert.Equal([][]int{{1, 2, 3}, {4, 5, 6}, {7}}, rows)
	assert.Nil(Rows([]int{}, 3))
}
