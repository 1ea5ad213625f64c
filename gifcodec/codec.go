// Package gifcodec decodes animated GIF containers into composed frames and
// encodes frame sequences back into GIF bytes.
//
// The container itself (block layout, LZW) is handled by image/gif behind the
// ContainerDecoder and ContainerWriter interfaces. This package owns the
// parts that decide what the frames look like: disposal-aware composition on
// decode, and quantization plus transparent palette remapping on encode.
package gifcodec

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"io"
	"math"
	"time"

	"github.com/pixelwork/pixelwork"
)

// Disposal says what happens to a patch's area before the next patch is drawn.
type Disposal int

const (
	DisposalNone Disposal = iota
	DisposalBackground
	DisposalPrevious
)

func (d Disposal) String() string {
	switch d {
	case DisposalBackground:
		return "background"
	case DisposalPrevious:
		return "previous"
	default:
		return "none"
	}
}

func disposalFromGIF(b byte) Disposal {
	switch b {
	case gif.DisposalBackground:
		return DisposalBackground
	case gif.DisposalPrevious:
		return DisposalPrevious
	default:
		return DisposalNone
	}
}

// Patch is one decoded container image, positioned on the logical screen.
type Patch struct {
	Pixels   *pixelwork.PixelBuffer
	Rect     image.Rectangle
	Disposal Disposal
	Delay    time.Duration
}

// Container is the raw content of an animated file.
type Container struct {
	Width, Height int
	LoopCount     int
	Patches       []Patch
}

// ContainerDecoder parses container bytes into patches.
type ContainerDecoder interface {
	Decode(r io.Reader) (*Container, error)
}

// FrameOptions describes one indexed frame handed to a ContainerWriter.
type FrameOptions struct {
	Palette          []color.NRGBA
	Delay            time.Duration
	Transparent      bool
	TransparentIndex int
}

// ContainerWriter accumulates indexed frames and serializes them.
type ContainerWriter interface {
	WriteFrame(indices []uint8, w, h int, opts FrameOptions) error
	Finish() ([]byte, error)
}

// StdDecoder reads containers with image/gif.
type StdDecoder struct{}

// Decode implements ContainerDecoder.
func (StdDecoder) Decode(r io.Reader) (*Container, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pixelwork.ErrDecode, err)
	}
	c := &Container{
		Width:     g.Config.Width,
		Height:    g.Config.Height,
		LoopCount: g.LoopCount,
		Patches:   make([]Patch, 0, len(g.Image)),
	}
	var union image.Rectangle
	for i, img := range g.Image {
		p := Patch{
			Pixels: pixelwork.FromImage(img),
			Rect:   img.Bounds(),
		}
		if i < len(g.Delay) {
			p.Delay = time.Duration(g.Delay[i]) * 10 * time.Millisecond
		}
		if i < len(g.Disposal) {
			p.Disposal = disposalFromGIF(g.Disposal[i])
		}
		union = union.Union(p.Rect)
		c.Patches = append(c.Patches, p)
	}
	// Some encoders leave the logical screen empty.
	if c.Width <= 0 || c.Height <= 0 {
		c.Width, c.Height = union.Max.X, union.Max.Y
	}
	return c, nil
}

// StdWriter writes containers with image/gif.
type StdWriter struct {
	g *gif.GIF
}

// NewStdWriter returns a writer for a width×height logical screen.
func NewStdWriter(width, height, loopCount int) *StdWriter {
	return &StdWriter{
		g: &gif.GIF{
			LoopCount: loopCount,
			Config:    image.Config{Width: width, Height: height},
		},
	}
}

// WriteFrame implements ContainerWriter.
func (sw *StdWriter) WriteFrame(indices []uint8, w, h int, opts FrameOptions) error {
	if w <= 0 || h <= 0 || len(indices) != w*h {
		return fmt.Errorf("%w: %d indices for a %dx%d frame", pixelwork.ErrInvalid, len(indices), w, h)
	}
	if len(opts.Palette) == 0 || len(opts.Palette) > 256 {
		return fmt.Errorf("%w: palette holds %d colors", pixelwork.ErrInvalid, len(opts.Palette))
	}
	if opts.Transparent && (opts.TransparentIndex < 0 || opts.TransparentIndex >= len(opts.Palette)) {
		return fmt.Errorf("%w: transparent index %d out of range", pixelwork.ErrInvalid, opts.TransparentIndex)
	}

	// image/gif marks the first zero-alpha entry as transparent, so every
	// other entry is forced opaque.
	pal := make(color.Palette, len(opts.Palette))
	for i, c := range opts.Palette {
		c.A = 0xff
		pal[i] = c
	}
	if opts.Transparent {
		pal[opts.TransparentIndex] = color.NRGBA{}
	}
	for i, idx := range indices {
		if int(idx) >= len(pal) {
			return fmt.Errorf("%w: index %d at pixel %d exceeds the palette", pixelwork.ErrInvalid, idx, i)
		}
	}

	pix := make([]uint8, len(indices))
	copy(pix, indices)
	frame := &image.Paletted{
		Pix:     pix,
		Stride:  w,
		Rect:    image.Rect(0, 0, w, h),
		Palette: pal,
	}
	disposal := byte(gif.DisposalNone)
	if opts.Transparent {
		disposal = gif.DisposalBackground
	}
	sw.g.Image = append(sw.g.Image, frame)
	sw.g.Delay = append(sw.g.Delay, centiseconds(opts.Delay))
	sw.g.Disposal = append(sw.g.Disposal, disposal)
	return nil
}

// Finish implements ContainerWriter.
func (sw *StdWriter) Finish() ([]byte, error) {
	if len(sw.g.Image) == 0 {
		return nil, fmt.Errorf("%w: nothing to encode", pixelwork.ErrEmpty)
	}
	var buf bytes.Buffer
	if err := gif.EncodeAll(&buf, sw.g); err != nil {
		return nil, fmt.Errorf("%w: %v", pixelwork.ErrSerialize, err)
	}
	return buf.Bytes(), nil
}

// centiseconds converts a frame delay to the GIF time unit.
func centiseconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(math.Round(float64(d) / float64(10*time.Millisecond)))
}
