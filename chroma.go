package pixelwork

import (
	"fmt"
	"math"
	"runtime"
	"strconv"
	"strings"

	"github.com/pixelwork/pixelwork/utils"
)

// MatteParams drives the color-distance matte.
type MatteParams struct {
	BgColor   RGB
	Tolerance float64
	Feather   float64
}

// ChromaKey carves alpha out of b using the Euclidean RGB distance of every
// pixel to the background color. Pixels within the tolerance (inclusive) become
// fully transparent, pixels inside the feather band get a linear ramp and the
// rest keep their alpha. Color channels are never touched.
func ChromaKey(b *PixelBuffer, p MatteParams) {
	var (
		br = float64(p.BgColor.R)
		bg = float64(p.BgColor.G)
		bb = float64(p.BgColor.B)
	)
	total := len(b.Pix)
	for start := 0; start < total; start += yieldBatch * 4 {
		end := start + yieldBatch*4
		if end > total {
			end = total
		}
		for i := start; i < end; i += 4 {
			dr := float64(b.Pix[i]) - br
			dg := float64(b.Pix[i+1]) - bg
			db := float64(b.Pix[i+2]) - bb
			dist := math.Sqrt(dr*dr + dg*dg + db*db)

			if dist <= p.Tolerance {
				b.Pix[i+3] = 0
			} else if p.Feather > 0 && dist < p.Tolerance+p.Feather {
				t := (dist - p.Tolerance) / p.Feather
				b.Pix[i+3] = uint8(math.Round(255 * math.Min(1, t)))
			}
		}
		if end < total {
			runtime.Gosched()
		}
	}
}

// SampleColor returns the color under (x, y), clamped to the buffer bounds.
// It is used to pick the matte background from a frame.
func SampleColor(b *PixelBuffer, x, y int) RGB {
	x = utils.Clamp(x, 0, b.Width-1)
	y = utils.Clamp(y, 0, b.Height-1)
	c := b.At(x, y)
	return RGB{R: c.R, G: c.G, B: c.B}
}

// ParseHexColor parses "#rrggbb" or "rrggbb".
func ParseHexColor(s string) (RGB, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("%w: color %q is not #rrggbb", ErrInvalid, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: color %q: %v", ErrInvalid, s, err)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Hex renders the color as #rrggbb.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
