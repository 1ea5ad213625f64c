package gifcodec

import (
	"fmt"
	"image"
	"io"
	"time"

	"github.com/pixelwork/pixelwork"
	"github.com/pixelwork/pixelwork/imop"
	"github.com/pixelwork/pixelwork/metrics"
)

// Animation is a decoded sequence of full-screen frames.
type Animation struct {
	Frames    []*pixelwork.PixelBuffer
	Delays    []time.Duration
	Width     int
	Height    int
	LoopCount int
}

// Decode reads a GIF from r and composes its frames.
func Decode(r io.Reader) (*Animation, error) {
	return DecodeWith(StdDecoder{}, r)
}

// DecodeWith composes the frames produced by dec.
func DecodeWith(dec ContainerDecoder, r io.Reader) (*Animation, error) {
	c, err := dec.Decode(r)
	if err != nil {
		return nil, err
	}
	a, err := Compose(c)
	if err != nil {
		return nil, err
	}
	metrics.GIFFramesTotal.WithLabelValues("decode").Add(float64(len(a.Frames)))
	return a, nil
}

// Compose replays the patches of c on a running canvas and returns a copy of
// the canvas after every patch.
//
// When the previous patch asked for restore-to-background the whole canvas is
// cleared, not only the patch area. Restore-to-previous is handled as none.
func Compose(c *Container) (*Animation, error) {
	if c.Width <= 0 || c.Height <= 0 {
		return nil, fmt.Errorf("%w: logical screen is %dx%d", pixelwork.ErrDecode, c.Width, c.Height)
	}
	if len(c.Patches) == 0 {
		return nil, fmt.Errorf("%w: container holds no image", pixelwork.ErrEmpty)
	}

	canvas := pixelwork.NewPixelBuffer(c.Width, c.Height)
	op := imop.InitOp()
	if err := op.Set(imop.Copy); err != nil {
		return nil, err
	}

	a := &Animation{
		Frames:    make([]*pixelwork.PixelBuffer, 0, len(c.Patches)),
		Delays:    make([]time.Duration, 0, len(c.Patches)),
		Width:     c.Width,
		Height:    c.Height,
		LoopCount: c.LoopCount,
	}
	prev := DisposalNone
	for i, p := range c.Patches {
		if err := p.Pixels.Validate(); err != nil {
			return nil, fmt.Errorf("%w: patch %d: %v", pixelwork.ErrDecode, i, err)
		}
		if p.Pixels.Width != p.Rect.Dx() || p.Pixels.Height != p.Rect.Dy() {
			return nil, fmt.Errorf("%w: patch %d is %dx%d but its rectangle is %v",
				pixelwork.ErrDecode, i, p.Pixels.Width, p.Pixels.Height, p.Rect)
		}
		if prev == DisposalBackground {
			clear(canvas.Pix)
		}
		op.Draw(canvas.NRGBA(), p.Pixels.NRGBA(), image.Pt(p.Rect.Min.X, p.Rect.Min.Y))

		a.Frames = append(a.Frames, canvas.Clone())
		a.Delays = append(a.Delays, p.Delay)
		prev = p.Disposal
	}
	return a, nil
}
