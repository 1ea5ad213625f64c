package pixelwork

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTimeline_Timestamps(t *testing.T) {
	assert := assert.New(t)

	ts, err := Timestamps(0, 1, 4, 100)
	assert.NoError(err)
	assert.Equal([]float64{0, 0.25, 0.5, 0.75}, ts)

	ts, err = Timestamps(2, 10, 12, 3)
	assert.NoError(err)
	assert.Len(ts, 3)
	assert.Equal(2.0, ts[0])

	ts, err = Timestamps(0, 10, 12, 300)
	assert.NoError(err)
	assert.Len(ts, 120)
	for _, v := range ts {
		assert.Less(v, 10.0)
	}

	ts, err = Timestamps(5, 5, 12, 10)
	assert.NoError(err)
	assert.Empty(ts)

	_, err = Timestamps(0, 1, 0, 10)
	assert.True(errors.Is(err, ErrInvalid))
}

func TestTimeline_ClampRange(t *testing.T) {
	assert := assert.New(t)

	start, end := ClampRange(-1, 0, 5)
	assert.Equal(0.0, start)
	assert.Equal(5.0, end)

	start, end = ClampRange(2, 10, 5)
	assert.Equal(2.0, start)
	assert.Equal(5.0, end)

	start, end = ClampRange(7, 9, 5)
	assert.Equal(5.0, start)
	assert.Equal(5.0, end)
}
