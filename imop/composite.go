// Package imop implements the Porter-Duff composition operations
// used for mixing a graphic element with its backdrop.
// Porter and Duff presented in their paper 12 different composition operation,
// but the image/draw core package implements only the source-over-destination and source.
// This package is aimed to overcome the missing composite operations.
//
// The operators work on non-premultiplied NRGBA rasters and write the result
// back into the backdrop. They are used to erase matted frames with a brush mask
// (DstOut), to place fitted frames into sprite cells (SrcOver) and to write
// animation patches onto the running canvas (Copy).
package imop

import (
	"fmt"
	"image"
	"math"
)

const (
	Clear   = "clear"
	Copy    = "copy"
	Dst     = "dst"
	SrcOver = "src_over"
	DstOver = "dst_over"
	SrcIn   = "src_in"
	DstIn   = "dst_in"
	SrcOut  = "src_out"
	DstOut  = "dst_out"
	SrcAtop = "src_atop"
	DstAtop = "dst_atop"
	Xor     = "xor"
)

// factors returns the Porter-Duff fractions (Fa, Fb) applied to the source
// and the backdrop for the given coverage values.
type factors func(as, ab float64) (float64, float64)

var operators = map[string]factors{
	Clear:   func(as, ab float64) (float64, float64) { return 0, 0 },
	Copy:    func(as, ab float64) (float64, float64) { return 1, 0 },
	Dst:     func(as, ab float64) (float64, float64) { return 0, 1 },
	SrcOver: func(as, ab float64) (float64, float64) { return 1, 1 - as },
	DstOver: func(as, ab float64) (float64, float64) { return 1 - ab, 1 },
	SrcIn:   func(as, ab float64) (float64, float64) { return ab, 0 },
	DstIn:   func(as, ab float64) (float64, float64) { return 0, as },
	SrcOut:  func(as, ab float64) (float64, float64) { return 1 - ab, 0 },
	DstOut:  func(as, ab float64) (float64, float64) { return 0, 1 - as },
	SrcAtop: func(as, ab float64) (float64, float64) { return ab, 1 - as },
	DstAtop: func(as, ab float64) (float64, float64) { return 1 - ab, as },
	Xor:     func(as, ab float64) (float64, float64) { return 1 - ab, 1 - as },
}

// Composite holds the currently active composition operation.
type Composite struct {
	current string
}

// InitOp returns a Composite defaulting to SrcOver.
func InitOp() *Composite {
	return &Composite{current: SrcOver}
}

// Set activates one of the supported composition operations.
func (op *Composite) Set(cop string) error {
	if _, ok := operators[cop]; !ok {
		return fmt.Errorf("unsupported composite operation: %q", cop)
	}
	op.current = cop
	return nil
}

// Get returns the currently active composition operation.
func (op *Composite) Get() string {
	return op.current
}

// Draw composites src onto dst with the source's top-left corner placed at
// the point at. Only the overlapping area is touched; dst is modified in place.
func (op *Composite) Draw(dst, src *image.NRGBA, at image.Point) {
	fn := operators[op.current]

	sb := src.Bounds()
	area := image.Rectangle{Min: at, Max: at.Add(sb.Size())}.Intersect(dst.Bounds())
	if area.Empty() {
		return
	}
	// Source coordinates of the first overlapping pixel.
	sx0 := sb.Min.X + area.Min.X - at.X
	sy0 := sb.Min.Y + area.Min.Y - at.Y

	for y := 0; y < area.Dy(); y++ {
		si := src.PixOffset(sx0, sy0+y)
		di := dst.PixOffset(area.Min.X, area.Min.Y+y)
		for x := 0; x < area.Dx(); x++ {
			s := src.Pix[si : si+4 : si+4]
			d := dst.Pix[di : di+4 : di+4]
			blend(fn, s, d)
			si += 4
			di += 4
		}
	}
}

// blend applies the operator to one pixel and stores the result in d.
func blend(fn factors, s, d []uint8) {
	as := float64(s[3]) / 255
	ab := float64(d[3]) / 255
	fa, fb := fn(as, ab)

	ao := fa*as + fb*ab
	if ao <= 0 {
		d[0], d[1], d[2], d[3] = 0, 0, 0, 0
		return
	}
	wa := fa * as / ao
	wb := fb * ab / ao
	for c := 0; c < 3; c++ {
		d[c] = clamp8(wa*float64(s[c]) + wb*float64(d[c]))
	}
	d[3] = clamp8(ao * 255)
}

func clamp8(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
