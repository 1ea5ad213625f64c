package pixelwork

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

func TestDedup_ThreeRedOneBlue(t *testing.T) {
	assert := assert.New(t)

	frames := []*PixelBuffer{
		solid(10, 10, red),
		solid(10, 10, red),
		solid(10, 10, blue),
		solid(10, 10, red),
	}
	dups := FindDuplicates(frames)

	assert.Len(dups, 3)
	for _, i := range []int{0, 1, 3} {
		assert.Equal(DuplicateInfo{GroupID: 0, GroupSize: 3}, dups[i])
	}
	_, ok := dups[2]
	assert.False(ok)

	n, groups := DuplicateSummary(dups)
	assert.Equal(3, n)
	assert.Equal(1, groups)
}

func TestDedup_GroupsFollowFirstOccurrence(t *testing.T) {
	assert := assert.New(t)

	green := color.NRGBA{G: 255, A: 255}
	frames := []*PixelBuffer{
		solid(8, 8, green),
		solid(8, 8, blue),
		solid(8, 8, red),
		solid(8, 8, blue),
		solid(8, 8, green),
	}
	dups := FindDuplicates(frames)

	assert.Equal(0, dups[0].GroupID)
	assert.Equal(0, dups[4].GroupID)
	assert.Equal(1, dups[1].GroupID)
	assert.Equal(1, dups[3].GroupID)
	assert.NotContains(dups, 2)
}

func TestDedup_FingerprintIsDeterministic(t *testing.T) {
	assert := assert.New(t)

	a := solid(16, 16, red)
	b := a.Clone()
	assert.Equal(Fingerprint(a), Fingerprint(b))

	b.Set(0, 0, color.NRGBA{R: 1, A: 255})
	assert.NotEqual(Fingerprint(a), Fingerprint(b))

	// Same samples, different geometry.
	assert.NotEqual(Fingerprint(solid(4, 8, red)), Fingerprint(solid(8, 4, red)))
}

func TestDedup_UniqueFramesYieldNoGroup(t *testing.T) {
	dups := FindDuplicates([]*PixelBuffer{solid(4, 4, red), solid(4, 4, blue)})
	assert.Empty(t, dups)
}
