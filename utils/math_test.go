package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMath_MinMax(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(2, Min(2, 5))
	assert.Equal(2, Min(5, 2))
	assert.Equal(5, Max(2, 5))
	assert.Equal(0.5, Max(0.5, -1.0))
	assert.Equal(3, Abs(-3))
	assert.Equal(0, Clamp(-4, 0, 255))
	assert.Equal(255, Clamp(300, 0, 255))
	assert.Equal(17, Clamp(17, 0, 255))
}
