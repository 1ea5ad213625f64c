package pixelwork

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/pixelwork/pixelwork/imop"
	"github.com/pixelwork/pixelwork/utils"
)

// filter picks the resampling kernel: hard edges for pixel art, Lanczos otherwise.
func filter(pixelated bool) imaging.ResampleFilter {
	if pixelated {
		return imaging.NearestNeighbor
	}
	return imaging.Lanczos
}

// scaleTo resamples b to exactly w×h. The source is returned untouched when
// the size already matches.
func scaleTo(b *PixelBuffer, w, h int, pixelated bool) *PixelBuffer {
	if b.Width == w && b.Height == h {
		return b
	}
	return FromImage(imaging.Resize(b.NRGBA(), w, h, filter(pixelated)))
}

// FitFrame places b inside a w×h cell. The frame is scaled down (never up)
// with its aspect ratio kept to fit the area left after padding, then centered.
// The rest of the cell stays transparent.
func FitFrame(b *PixelBuffer, w, h, padding int, pixelated bool) (*PixelBuffer, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("%w: cell size %dx%d", ErrInvalid, w, h)
	}
	cell := NewPixelBuffer(w, h)
	if b.Width == 0 || b.Height == 0 {
		return cell, nil
	}
	innerW := utils.Max(1, w-2*padding)
	innerH := utils.Max(1, h-2*padding)

	scale := math.Min(1, math.Min(float64(innerW)/float64(b.Width), float64(innerH)/float64(b.Height)))
	fw := utils.Max(1, int(math.Round(float64(b.Width)*scale)))
	fh := utils.Max(1, int(math.Round(float64(b.Height)*scale)))
	fitted := scaleTo(b, fw, fh, pixelated)

	at := image.Pt(padding+(innerW-fw)/2, padding+(innerH-fh)/2)
	op := imop.InitOp()
	if err := op.Set(imop.Copy); err != nil {
		return nil, err
	}
	op.Draw(cell.NRGBA(), fitted.NRGBA(), at)
	return cell, nil
}

// Resize scales b to a w×h canvas. With keepAspect the image is scaled to fit
// and centered on a transparent canvas; otherwise it is stretched.
func Resize(b *PixelBuffer, w, h int, keepAspect, pixelated bool) (*PixelBuffer, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("%w: target size %dx%d", ErrInvalid, w, h)
	}
	if b.Width == 0 || b.Height == 0 {
		return NewPixelBuffer(w, h), nil
	}
	if !keepAspect {
		return scaleTo(b, w, h, pixelated).Clone(), nil
	}
	scale := math.Min(float64(w)/float64(b.Width), float64(h)/float64(b.Height))
	fw := utils.Clamp(int(math.Round(float64(b.Width)*scale)), 1, w)
	fh := utils.Clamp(int(math.Round(float64(b.Height)*scale)), 1, h)
	fitted := scaleTo(b, fw, fh, pixelated)

	out := NewPixelBuffer(w, h)
	op := imop.InitOp()
	if err := op.Set(imop.Copy); err != nil {
		return nil, err
	}
	op.Draw(out.NRGBA(), fitted.NRGBA(), image.Pt((w-fw)/2, (h-fh)/2))
	return out, nil
}

// Pixelate averages b down by block and scales it back up with nearest
// neighbour sampling, keeping the original size.
func Pixelate(b *PixelBuffer, block int) (*PixelBuffer, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	block = utils.Max(1, block)
	if block == 1 || b.Width == 0 || b.Height == 0 {
		return b.Clone(), nil
	}
	sw := utils.Max(1, b.Width/block)
	sh := utils.Max(1, b.Height/block)

	small := imaging.Resize(b.NRGBA(), sw, sh, imaging.Box)
	return FromImage(imaging.Resize(small, b.Width, b.Height, imaging.NearestNeighbor)), nil
}
