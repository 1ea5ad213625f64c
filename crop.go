package pixelwork

import (
	"fmt"
	"image"

	"github.com/pixelwork/pixelwork/utils"
)

// CropRegion holds the insets trimmed from each edge of a source frame.
type CropRegion struct {
	Left   int `toml:"left" json:"left"`
	Top    int `toml:"top" json:"top"`
	Right  int `toml:"right" json:"right"`
	Bottom int `toml:"bottom" json:"bottom"`
}

// IsZero reports whether the region trims nothing.
func (c CropRegion) IsZero() bool {
	return c.Left == 0 && c.Top == 0 && c.Right == 0 && c.Bottom == 0
}

// Check verifies the region leaves at least a 1×1 area of a srcW×srcH source.
func (c CropRegion) Check(srcW, srcH int) error {
	if c.Left < 0 || c.Top < 0 || c.Right < 0 || c.Bottom < 0 {
		return fmt.Errorf("%w: negative crop inset %+v", ErrInvalid, c)
	}
	if c.Left+c.Right >= srcW || c.Top+c.Bottom >= srcH {
		return fmt.Errorf("%w: crop %+v leaves no pixels of %dx%d", ErrInvalid, c, srcW, srcH)
	}
	return nil
}

// Size returns the dimensions left after cropping a srcW×srcH source.
func (c CropRegion) Size(srcW, srcH int) (int, int) {
	return utils.Max(1, srcW-c.Left-c.Right), utils.Max(1, srcH-c.Top-c.Bottom)
}

// Apply returns a new buffer holding the cropped area of src.
// A zero region returns src itself.
func (c CropRegion) Apply(src *PixelBuffer) (*PixelBuffer, error) {
	if c.IsZero() {
		return src, nil
	}
	if err := c.Check(src.Width, src.Height); err != nil {
		return nil, err
	}
	w, h := c.Size(src.Width, src.Height)
	return SubBuffer(src, image.Rect(c.Left, c.Top, c.Left+w, c.Top+h)), nil
}

// SubBuffer copies the rect area of src into a new buffer. The rect is
// clipped to the source bounds.
func SubBuffer(src *PixelBuffer, rect image.Rectangle) *PixelBuffer {
	rect = rect.Intersect(image.Rect(0, 0, src.Width, src.Height))
	dst := NewPixelBuffer(rect.Dx(), rect.Dy())
	rowSize := rect.Dx() * 4
	for y := 0; y < rect.Dy(); y++ {
		si := src.Offset(rect.Min.X, rect.Min.Y+y)
		di := dst.Offset(0, y)
		copy(dst.Pix[di:di+rowSize], src.Pix[si:si+rowSize])
	}
	return dst
}

// CropMode selects how a matted frame is trimmed before it is fitted into a cell.
type CropMode string

const (
	CropNone  CropMode = "none"
	CropTight CropMode = "tight_bbox"
	CropSafe  CropMode = "safe_bbox"
)

// AlphaBounds returns the smallest rectangle holding every pixel with alpha > 0.
// The second result is false when the buffer is fully transparent.
func AlphaBounds(b *PixelBuffer) (image.Rectangle, bool) {
	minX, minY := b.Width, b.Height
	maxX, maxY := -1, -1
	for y := 0; y < b.Height; y++ {
		row := y * b.Width * 4
		for x := 0; x < b.Width; x++ {
			if b.Pix[row+x*4+3] == 0 {
				continue
			}
			minX = utils.Min(minX, x)
			minY = utils.Min(minY, y)
			maxX = utils.Max(maxX, x)
			maxY = utils.Max(maxY, y)
		}
	}
	if maxX < 0 {
		return image.Rectangle{}, false
	}
	return image.Rect(minX, minY, maxX+1, maxY+1), true
}

// CropToContent trims b according to mode. The safe mode keeps pad extra
// pixels around the content box. Fully transparent frames are returned as is.
func CropToContent(b *PixelBuffer, mode CropMode, pad int) *PixelBuffer {
	if mode == CropNone || mode == "" {
		return b
	}
	box, ok := AlphaBounds(b)
	if !ok {
		return b
	}
	if mode == CropSafe {
		box = box.Inset(-pad)
	}
	return SubBuffer(b, box)
}
