package pixelwork

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestProcessor(t *testing.T) *Processor {
	p := NewProcessor()
	p.Logger = zaptest.NewLogger(t)
	return p
}

func TestProcessor_ProcessImage(t *testing.T) {
	assert := assert.New(t)

	green := color.NRGBA{G: 255, A: 255}
	src := solid(12, 12, green)
	for y := 4; y < 8; y++ {
		for x := 3; x < 9; x++ {
			src.Set(x, y, red)
		}
	}
	data, err := EncodePNG(src)
	require.NoError(t, err)

	p := newTestProcessor(t)
	p.Matte = true
	p.MatteParams = MatteParams{BgColor: RGB{G: 255}, Tolerance: 10}
	p.CropMode = CropSafe
	p.CropPad = 1
	p.Stroke = StrokeConfig{Width: 1, Color: RGB{B: 255}}

	var out bytes.Buffer
	assert.NoError(p.ProcessImage(bytes.NewReader(data), &out))

	got, err := Decode(&out)
	require.NoError(t, err)
	// The 6×4 red block plus one transparent pixel on every side.
	assert.Equal(8, got.Width)
	assert.Equal(6, got.Height)
	assert.Equal(uint8(0), got.At(0, 0).A)
	assert.Equal(blue, got.At(1, 1))
	assert.Equal(blue, got.At(6, 4))
	assert.Equal(red, got.At(3, 2))
}

func TestProcessor_ProcessImageResizeAndPixelate(t *testing.T) {
	assert := assert.New(t)

	data, err := EncodePNG(solid(40, 20, red))
	require.NoError(t, err)

	p := newTestProcessor(t)
	p.NewWidth, p.NewHeight = 16, 16
	p.Pixelated = true
	p.PixelSize = 2

	var out bytes.Buffer
	assert.NoError(p.ProcessImage(bytes.NewReader(data), &out))
	got, err := Decode(&out)
	require.NoError(t, err)
	assert.Equal(16, got.Width)
	assert.Equal(16, got.Height)
	assert.Equal(uint8(0), got.At(0, 0).A)
	assert.Equal(uint8(255), got.At(8, 8).A)
}

func TestProcessor_ProcessImageSkipsForeignMask(t *testing.T) {
	data, err := EncodePNG(solid(6, 6, red))
	require.NoError(t, err)

	p := newTestProcessor(t)
	p.Mask = NewBrushMask(3, 3)
	p.Mask.Stamp(1, 1)

	var out bytes.Buffer
	assert.NoError(t, p.ProcessImage(bytes.NewReader(data), &out))
	got, err := Decode(&out)
	require.NoError(t, err)
	assert.Equal(t, red, got.At(1, 1))
}

func TestProcessor_Pipeline(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	p := newTestProcessor(t)
	p.Matte = true
	p.MatteParams = MatteParams{BgColor: RGB{}, Tolerance: 1}
	p.Sprite = SpriteOptions{CellW: 8, CellH: 8, Padding: 1, Spacing: 2, Columns: 3}
	p.Stroke = StrokeConfig{Width: 1, Color: RGB{B: 255}}

	src := &fakeSource{w: 8, h: 6, duration: 1}
	frames, err := p.ExtractFrames(ctx, src, 0, 0, 4, 100)
	require.NoError(t, err)
	assert.Len(frames, 4)

	matted, err := p.MatteFrames(frames)
	require.NoError(t, err)
	// The first frame is black and matched the background.
	assert.Equal(uint8(0), matted[0].Buffer.At(3, 3).A)
	assert.Equal(uint8(255), matted[1].Buffer.At(3, 3).A)
	// Inputs are untouched.
	assert.Equal(uint8(255), frames[0].Buffer.At(3, 3).A)

	sheet, err := p.ComposeSheet(matted)
	require.NoError(t, err)
	assert.Len(sheet.Index.Frames, 4)
	assert.Equal(Size{W: 3*(8+2) - 2, H: 2*(8+2) - 2}, sheet.Index.SheetSize)
	// The second cell holds an opaque frame whose edge got stroked.
	assert.Equal(color.NRGBA{B: 255, A: 255}, sheet.Sheet.At(10+1, 1+1))

	p.StrokePerFrame = true
	perFrame, err := p.ComposeSheet(matted)
	require.NoError(t, err)
	assert.Equal(sheet.Index, perFrame.Index)
}

func TestProcessor_MatteFramesIsAtomic(t *testing.T) {
	assert := assert.New(t)

	frames := []Frame{
		{Buffer: solid(4, 4, red), Selected: true},
		{Buffer: &PixelBuffer{Width: 4, Height: 4}, Selected: true},
	}
	p := newTestProcessor(t)
	p.Matte = true
	p.MatteParams = MatteParams{BgColor: RGB{R: 255}, Tolerance: 5}

	out, err := p.MatteFrames(frames)
	assert.Nil(out)
	assert.True(errors.Is(err, ErrDecode))
	assert.Equal(uint8(255), frames[0].Buffer.At(0, 0).A)
}

func TestProcessor_MatteFramesAppliesMask(t *testing.T) {
	p := newTestProcessor(t)
	p.Mask = NewBrushMask(6, 6)
	p.Mask.Size = 2
	p.Mask.Stamp(2, 2)

	out, err := p.MatteFrames([]Frame{
		{Buffer: solid(6, 6, red), Selected: true},
		{Buffer: solid(6, 6, blue)},
	})
	require.NoError(t, err)
	assert.Equal(t, uint8(0), out[0].Buffer.At(2, 2).A)
	assert.Equal(t, uint8(255), out[0].Buffer.At(5, 5).A)
	// Unselected frames pass through.
	assert.Equal(t, uint8(255), out[1].Buffer.At(2, 2).A)
}

func TestProcessor_DeselectDuplicates(t *testing.T) {
	frames := []Frame{
		{Buffer: solid(4, 4, red), Selected: true},
		{Buffer: solid(4, 4, red), Selected: true},
		{Buffer: solid(4, 4, blue), Selected: true},
		{Buffer: solid(4, 4, red), Selected: true},
	}
	out := newTestProcessor(t).DeselectDuplicates(frames)

	var selected []bool
	for _, f := range out {
		selected = append(selected, f.Selected)
	}
	assert.Equal(t, []bool{true, false, true, false}, selected)
	assert.True(t, frames[1].Selected)
}

func TestProcessor_ComposeSheetNeedsSelection(t *testing.T) {
	_, err := newTestProcessor(t).ComposeSheet([]Frame{{Buffer: solid(2, 2, red)}})
	assert.True(t, errors.Is(err, ErrEmpty))
}

func TestExec_Directory(t *testing.T) {
	assert := assert.New(t)

	srcDir := t.TempDir()
	dstDir := filepath.Join(t.TempDir(), "out")
	for name, c := range map[string]color.NRGBA{"a.png": red, "nested/b.png": blue} {
		data, err := EncodePNG(solid(5, 5, c))
		require.NoError(t, err)
		path := filepath.Join(srcDir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, data, 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "notes.txt"), []byte("skip"), 0644))

	p := newTestProcessor(t)
	p.Stroke = StrokeConfig{Width: 1}
	err := p.Execute(&Ops{Src: srcDir, Dst: dstDir, PipeName: "-", Workers: 2, Quiet: true})
	assert.NoError(err)

	for _, name := range []string{"a.png", "b.png"} {
		got, err := DecodeFile(filepath.Join(dstDir, name))
		assert.NoError(err, name)
		if err == nil {
			assert.Equal(5, got.Width)
		}
	}
	_, err = os.Stat(filepath.Join(dstDir, "notes.png"))
	assert.True(os.IsNotExist(err))
}

func TestExec_SingleFileFailureRemovesOutput(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "broken.png")
	require.NoError(t, os.WriteFile(src, []byte("not a png"), 0644))
	dst := filepath.Join(dir, "out.png")

	err := newTestProcessor(t).Execute(&Ops{Src: src, Dst: dst, PipeName: "-", Quiet: true})
	assert.True(t, errors.Is(err, ErrDecode))

	_, statErr := os.Stat(dst)
	assert.True(t, os.IsNotExist(statErr))
}
