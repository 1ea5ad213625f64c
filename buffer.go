package pixelwork

import (
	"fmt"
	"image"
	"image/color"
)

// PixelBuffer is a width×height raster of non-premultiplied RGBA samples.
// Pix is row-major with a stride of Width*4 bytes and its length is always
// Width*Height*4. Every pixel algorithm in this package mutates it in place.
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// RGB is an opaque color, used for matte backgrounds and stroke colors.
type RGB struct {
	R, G, B uint8
}

// NewPixelBuffer allocates a fully transparent buffer.
func NewPixelBuffer(width, height int) *PixelBuffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &PixelBuffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}
}

// Validate reports whether the length invariant holds.
func (b *PixelBuffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil pixel buffer", ErrInvalid)
	}
	if b.Width < 0 || b.Height < 0 || len(b.Pix) != b.Width*b.Height*4 {
		return fmt.Errorf("%w: pixel buffer %dx%d holds %d bytes", ErrInvalid, b.Width, b.Height, len(b.Pix))
	}
	return nil
}

// Offset returns the index of the first byte of the (x, y) pixel.
func (b *PixelBuffer) Offset(x, y int) int {
	return (y*b.Width + x) * 4
}

// At returns the pixel at (x, y).
func (b *PixelBuffer) At(x, y int) color.NRGBA {
	i := b.Offset(x, y)
	return color.NRGBA{R: b.Pix[i], G: b.Pix[i+1], B: b.Pix[i+2], A: b.Pix[i+3]}
}

// Set overwrites the pixel at (x, y).
func (b *PixelBuffer) Set(x, y int, c color.NRGBA) {
	i := b.Offset(x, y)
	b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3] = c.R, c.G, c.B, c.A
}

// Clone returns a deep copy of the buffer.
func (b *PixelBuffer) Clone() *PixelBuffer {
	pix := make([]uint8, len(b.Pix))
	copy(pix, b.Pix)
	return &PixelBuffer{Width: b.Width, Height: b.Height, Pix: pix}
}

// Equal reports whether two buffers have the same size and bytes.
func (b *PixelBuffer) Equal(o *PixelBuffer) bool {
	if b.Width != o.Width || b.Height != o.Height || len(b.Pix) != len(o.Pix) {
		return false
	}
	for i := range b.Pix {
		if b.Pix[i] != o.Pix[i] {
			return false
		}
	}
	return true
}

// Fill paints every pixel with c.
func (b *PixelBuffer) Fill(c color.NRGBA) {
	for i := 0; i < len(b.Pix); i += 4 {
		b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3] = c.R, c.G, c.B, c.A
	}
}

// NRGBA exposes the buffer as an *image.NRGBA sharing the same backing array.
func (b *PixelBuffer) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    b.Pix,
		Stride: b.Width * 4,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// FromImage converts any image type to a PixelBuffer with its min-point at (0, 0).
// An *image.NRGBA already anchored at the origin with a tight stride is adopted
// without copying.
func FromImage(img image.Image) *PixelBuffer {
	srcBounds := img.Bounds()
	dstW, dstH := srcBounds.Dx(), srcBounds.Dy()

	if src0, ok := img.(*image.NRGBA); ok && srcBounds.Min == (image.Point{}) && src0.Stride == dstW*4 {
		return &PixelBuffer{Width: dstW, Height: dstH, Pix: src0.Pix[:dstW*dstH*4]}
	}
	srcMinX := srcBounds.Min.X
	srcMinY := srcBounds.Min.Y
	dst := NewPixelBuffer(dstW, dstH)

	switch src := img.(type) {
	case *image.NRGBA:
		rowSize := dstW * 4
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.Offset(0, dstY)
			si := src.PixOffset(srcMinX, srcMinY+dstY)
			copy(dst.Pix[di:di+rowSize], src.Pix[si:si+rowSize])
		}
	case *image.YCbCr:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.Offset(0, dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				srcX := srcMinX + dstX
				srcY := srcMinY + dstY
				siy := src.YOffset(srcX, srcY)
				sic := src.COffset(srcX, srcY)
				r, g, b := color.YCbCrToRGB(src.Y[siy], src.Cb[sic], src.Cr[sic])
				dst.Pix[di+0] = r
				dst.Pix[di+1] = g
				dst.Pix[di+2] = b
				dst.Pix[di+3] = 0xff
				di += 4
			}
		}
	default:
		for dstY := 0; dstY < dstH; dstY++ {
			di := dst.Offset(0, dstY)
			for dstX := 0; dstX < dstW; dstX++ {
				c := color.NRGBAModel.Convert(img.At(srcMinX+dstX, srcMinY+dstY)).(color.NRGBA)
				dst.Pix[di+0] = c.R
				dst.Pix[di+1] = c.G
				dst.Pix[di+2] = c.B
				dst.Pix[di+3] = c.A
				di += 4
			}
		}
	}

	return dst
}
