package gifcodec

import (
	"image/color"
	"sort"

	"github.com/pixelwork/pixelwork"
)

// colorCount is one distinct opaque color and the number of pixels using it.
type colorCount struct {
	rgb [3]uint8
	n   int
}

// colorBox is a median cut bucket.
type colorBox struct {
	colors []colorCount
	lo, hi [3]uint8
}

func newColorBox(colors []colorCount) *colorBox {
	b := &colorBox{colors: colors, lo: [3]uint8{255, 255, 255}}
	for _, c := range colors {
		for ch := 0; ch < 3; ch++ {
			b.lo[ch] = min(b.lo[ch], c.rgb[ch])
			b.hi[ch] = max(b.hi[ch], c.rgb[ch])
		}
	}
	return b
}

// widest returns the channel with the largest extent and that extent.
func (b *colorBox) widest() (int, int) {
	ch, span := 0, -1
	for i := 0; i < 3; i++ {
		if s := int(b.hi[i]) - int(b.lo[i]); s > span {
			ch, span = i, s
		}
	}
	return ch, span
}

// split cuts the box at the pixel-weighted median of its widest channel.
func (b *colorBox) split() (*colorBox, *colorBox) {
	ch, _ := b.widest()
	sort.Slice(b.colors, func(i, j int) bool {
		return b.colors[i].rgb[ch] < b.colors[j].rgb[ch]
	})
	total := 0
	for _, c := range b.colors {
		total += c.n
	}
	cut, acc := 1, 0
	for i, c := range b.colors {
		acc += c.n
		if acc*2 >= total {
			cut = i + 1
			break
		}
	}
	cut = min(max(cut, 1), len(b.colors)-1)
	return newColorBox(b.colors[:cut]), newColorBox(b.colors[cut:])
}

// mean returns the pixel-weighted average color of the box.
func (b *colorBox) mean() color.NRGBA {
	var sum [3]int
	total := 0
	for _, c := range b.colors {
		for ch := 0; ch < 3; ch++ {
			sum[ch] += int(c.rgb[ch]) * c.n
		}
		total += c.n
	}
	return color.NRGBA{
		R: uint8((sum[0] + total/2) / total),
		G: uint8((sum[1] + total/2) / total),
		B: uint8((sum[2] + total/2) / total),
		A: 0xff,
	}
}

// quantize reduces b to an indexed image. Pixels with alpha below threshold
// are collected into one trailing zero-alpha palette entry; the remaining
// pixels are mapped to the nearest of at most maxColors opaque colors
// (maxColors-1 when a transparent entry is needed). When the distinct colors
// fit the budget the palette is exact.
func quantize(b *pixelwork.PixelBuffer, maxColors int, threshold uint8) ([]color.NRGBA, []uint8) {
	counts := make(map[[3]uint8]int)
	hasTransparent := false
	for i := 0; i < len(b.Pix); i += 4 {
		if b.Pix[i+3] < threshold {
			hasTransparent = true
			continue
		}
		counts[[3]uint8{b.Pix[i], b.Pix[i+1], b.Pix[i+2]}]++
	}

	budget := maxColors
	if hasTransparent {
		budget--
	}
	budget = max(budget, 1)

	colors := make([]colorCount, 0, len(counts))
	for rgb, n := range counts {
		colors = append(colors, colorCount{rgb: rgb, n: n})
	}
	// Map iteration order must not leak into the palette.
	sort.Slice(colors, func(i, j int) bool {
		a, c := colors[i].rgb, colors[j].rgb
		if a[0] != c[0] {
			return a[0] < c[0]
		}
		if a[1] != c[1] {
			return a[1] < c[1]
		}
		return a[2] < c[2]
	})

	var palette []color.NRGBA
	if len(colors) <= budget {
		palette = make([]color.NRGBA, 0, len(colors)+1)
		for _, c := range colors {
			palette = append(palette, color.NRGBA{R: c.rgb[0], G: c.rgb[1], B: c.rgb[2], A: 0xff})
		}
	} else {
		palette = medianCut(colors, budget)
	}

	transparent := -1
	if hasTransparent {
		transparent = len(palette)
		palette = append(palette, color.NRGBA{})
	}

	cache := make(map[[3]uint8]uint8, len(colors))
	indices := make([]uint8, b.Width*b.Height)
	for i := 0; i < len(b.Pix); i += 4 {
		if b.Pix[i+3] < threshold {
			indices[i/4] = uint8(transparent)
			continue
		}
		rgb := [3]uint8{b.Pix[i], b.Pix[i+1], b.Pix[i+2]}
		idx, ok := cache[rgb]
		if !ok {
			idx = nearest(palette, rgb, transparent)
			cache[rgb] = idx
		}
		indices[i/4] = idx
	}
	return palette, indices
}

func medianCut(colors []colorCount, n int) []color.NRGBA {
	boxes := []*colorBox{newColorBox(colors)}
	for len(boxes) < n {
		pick, span := -1, 0
		for i, b := range boxes {
			if len(b.colors) < 2 {
				continue
			}
			if _, s := b.widest(); s > span {
				pick, span = i, s
			}
		}
		if pick < 0 {
			break
		}
		lo, hi := boxes[pick].split()
		boxes[pick] = lo
		boxes = append(boxes, hi)
	}
	palette := make([]color.NRGBA, 0, len(boxes)+1)
	for _, b := range boxes {
		palette = append(palette, b.mean())
	}
	return palette
}

// nearest returns the palette index closest to rgb, skipping the transparent slot.
func nearest(palette []color.NRGBA, rgb [3]uint8, skip int) uint8 {
	best, bestDist := 0, -1
	for i, c := range palette {
		if i == skip {
			continue
		}
		dr := int(c.R) - int(rgb[0])
		dg := int(c.G) - int(rgb[1])
		db := int(c.B) - int(rgb[2])
		if d := dr*dr + dg*dg + db*db; bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return uint8(best)
}
