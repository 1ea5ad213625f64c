package gifcodec

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/pixelwork/pixelwork"
	"github.com/pixelwork/pixelwork/imop"
	"github.com/pixelwork/pixelwork/metrics"
)

const (
	DefaultDelay          = 100 * time.Millisecond
	DefaultAlphaThreshold = 128
	DefaultMaxColors      = 255
)

// EncodeOptions controls quantization and timing.
type EncodeOptions struct {
	// Delay is used for frames added without their own delay.
	Delay time.Duration
	// LoopCount follows image/gif: 0 loops forever, -1 plays once.
	LoopCount int
	// Pixels with alpha below AlphaThreshold become transparent.
	AlphaThreshold uint8
	// MaxColors bounds the quantized palette, not counting the transparent entry.
	MaxColors int
}

// DefaultEncodeOptions returns 100ms frames, a 128 alpha cut and 255 colors.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{
		Delay:          DefaultDelay,
		AlphaThreshold: DefaultAlphaThreshold,
		MaxColors:      DefaultMaxColors,
	}
}

func (o EncodeOptions) withDefaults() EncodeOptions {
	if o.Delay <= 0 {
		o.Delay = DefaultDelay
	}
	if o.AlphaThreshold == 0 {
		o.AlphaThreshold = DefaultAlphaThreshold
	}
	if o.MaxColors <= 0 || o.MaxColors > DefaultMaxColors {
		o.MaxColors = DefaultMaxColors
	}
	return o
}

// Encoder quantizes frames and hands them to a ContainerWriter.
type Encoder struct {
	w      ContainerWriter
	width  int
	height int
	opts   EncodeOptions
	frames int
}

// NewEncoder returns an encoder producing width×height frames. Frames of any
// other size are anchored at the top-left corner of a transparent canvas.
func NewEncoder(w ContainerWriter, width, height int, opts EncodeOptions) (*Encoder, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: animation size %dx%d", pixelwork.ErrInvalid, width, height)
	}
	return &Encoder{
		w:      w,
		width:  width,
		height: height,
		opts:   opts.withDefaults(),
	}, nil
}

// Add appends one frame. A non-positive delay uses the configured default.
func (e *Encoder) Add(b *pixelwork.PixelBuffer, delay time.Duration) error {
	if err := b.Validate(); err != nil {
		return err
	}
	if delay <= 0 {
		delay = e.opts.Delay
	}
	frame, err := e.normalize(b)
	if err != nil {
		return err
	}
	palette, indices := quantize(frame, e.opts.MaxColors, e.opts.AlphaThreshold)
	palette, indices, tr := remapTransparent(palette, indices)

	err = e.w.WriteFrame(indices, frame.Width, frame.Height, FrameOptions{
		Palette:          palette,
		Delay:            delay,
		Transparent:      true,
		TransparentIndex: tr,
	})
	if err != nil {
		return fmt.Errorf("frame %d: %w", e.frames, err)
	}
	e.frames++
	metrics.GIFFramesTotal.WithLabelValues("encode").Inc()
	return nil
}

// Finish returns the encoded container.
func (e *Encoder) Finish() ([]byte, error) {
	return e.w.Finish()
}

func (e *Encoder) normalize(b *pixelwork.PixelBuffer) (*pixelwork.PixelBuffer, error) {
	if b.Width == e.width && b.Height == e.height {
		return b, nil
	}
	out := pixelwork.NewPixelBuffer(e.width, e.height)
	op := imop.InitOp()
	if err := op.Set(imop.Copy); err != nil {
		return nil, err
	}
	op.Draw(out.NRGBA(), b.NRGBA(), image.Point{})
	return out, nil
}

// remapTransparent makes sure the palette has a zero-alpha entry. An existing
// one is reused; otherwise one is prepended and every index shifts by one.
func remapTransparent(palette []color.NRGBA, indices []uint8) ([]color.NRGBA, []uint8, int) {
	for i, c := range palette {
		if c.A == 0 {
			return palette, indices, i
		}
	}
	out := make([]color.NRGBA, 0, len(palette)+1)
	out = append(out, color.NRGBA{})
	out = append(out, palette...)
	shifted := make([]uint8, len(indices))
	for i, idx := range indices {
		shifted[i] = idx + 1
	}
	return out, shifted, 0
}

// Encode writes frames as one GIF sized after the first frame. delays may be
// shorter than frames; missing entries use opts.Delay.
func Encode(frames []*pixelwork.PixelBuffer, delays []time.Duration, opts EncodeOptions) ([]byte, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: nothing to encode", pixelwork.ErrEmpty)
	}
	if err := frames[0].Validate(); err != nil {
		return nil, err
	}
	return EncodeSized(frames, delays, frames[0].Width, frames[0].Height, opts)
}

// EncodeSized is Encode with an explicit animation size.
func EncodeSized(frames []*pixelwork.PixelBuffer, delays []time.Duration, width, height int, opts EncodeOptions) (data []byte, err error) {
	began := time.Now()
	defer func() { metrics.ObserveStage("gif_encode", began, err) }()

	if len(frames) == 0 {
		return nil, fmt.Errorf("%w: nothing to encode", pixelwork.ErrEmpty)
	}
	enc, err := NewEncoder(NewStdWriter(width, height, opts.LoopCount), width, height, opts)
	if err != nil {
		return nil, err
	}
	for i, f := range frames {
		var d time.Duration
		if i < len(delays) {
			d = delays[i]
		}
		if err := enc.Add(f, d); err != nil {
			return nil, err
		}
	}
	return enc.Finish()
}
