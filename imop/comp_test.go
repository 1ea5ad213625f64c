package imop

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComp_Basic(t *testing.T) {
	assert := assert.New(t)

	op := InitOp()
	assert.Equal(SrcOver, op.Get())

	assert.NoError(op.Set(Clear))
	assert.Equal(Clear, op.Get())

	err := op.Set("unsupported_composite_operation")
	assert.Error(err)
	assert.Equal(Clear, op.Get())

	assert.NoError(op.Set(Dst))
	assert.Equal(Dst, op.Get())
}

func TestComp_Ops(t *testing.T) {
	assert := assert.New(t)
	op := InitOp()

	transparent := color.NRGBA{R: 0, G: 0, B: 0, A: 0}
	cyan := color.NRGBA{R: 33, G: 150, B: 243, A: 255}
	magenta := color.NRGBA{R: 233, G: 30, B: 99, A: 255}

	rect := image.Rect(0, 0, 10, 10)
	source := image.NewNRGBA(rect)
	draw.Draw(source, image.Rect(0, 4, 6, 10), &image.Uniform{cyan}, image.Point{}, draw.Src)

	// Pick three representative points/pixels from the generated image output.
	// Depending on the applied composition operation the colors of the
	// selected pixels should be the source color, the destination color or transparent.
	cases := []struct {
		op                             string
		topRight, bottomLeft, center color.NRGBA
	}{
		{SrcOver, magenta, cyan, cyan},
		{Clear, transparent, transparent, transparent},
		{Copy, transparent, cyan, cyan},
		{Dst, magenta, transparent, magenta},
		{DstOver, magenta, cyan, magenta},
		{SrcIn, transparent, transparent, cyan},
		{DstIn, transparent, transparent, magenta},
		{SrcOut, transparent, cyan, transparent},
		{DstOut, magenta, transparent, transparent},
		{SrcAtop, magenta, transparent, cyan},
		{DstAtop, transparent, cyan, magenta},
		{Xor, magenta, cyan, transparent},
	}

	for _, tc := range cases {
		backdrop := image.NewNRGBA(rect)
		draw.Draw(backdrop, image.Rect(4, 0, 10, 6), &image.Uniform{magenta}, image.Point{}, draw.Src)

		assert.NoError(op.Set(tc.op))
		op.Draw(backdrop, source, image.Point{})

		assert.EqualValues(tc.topRight, backdrop.NRGBAAt(9, 0), tc.op)
		assert.EqualValues(tc.bottomLeft, backdrop.NRGBAAt(0, 9), tc.op)
		assert.EqualValues(tc.center, backdrop.NRGBAAt(5, 5), tc.op)
	}
}

func TestComp_DstOutErasesProportionally(t *testing.T) {
	assert := assert.New(t)
	op := InitOp()
	assert.NoError(op.Set(DstOut))

	base := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	base.SetNRGBA(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 200})
	mask := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	mask.SetNRGBA(0, 0, color.NRGBA{R: 255, G: 255, B: 255, A: 51})

	op.Draw(base, mask, image.Point{})

	// 200 * (1 - 51/255) = 160
	assert.EqualValues(color.NRGBA{R: 10, G: 20, B: 30, A: 160}, base.NRGBAAt(0, 0))
}

func TestComp_DrawAtOffsetClips(t *testing.T) {
	assert := assert.New(t)
	op := InitOp()
	assert.NoError(op.Set(Copy))

	red := color.NRGBA{R: 255, A: 255}
	dst := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	src := image.NewNRGBA(image.Rect(0, 0, 3, 3))
	draw.Draw(src, src.Bounds(), &image.Uniform{red}, image.Point{}, draw.Src)

	op.Draw(dst, src, image.Pt(2, 2))

	assert.EqualValues(red, dst.NRGBAAt(2, 2))
	assert.EqualValues(red, dst.NRGBAAt(3, 3))
	assert.EqualValues(color.NRGBA{}, dst.NRGBAAt(1, 1))
}
