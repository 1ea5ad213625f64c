package pixelwork

import (
	"fmt"
	"image"
	"math"

	"github.com/pixelwork/pixelwork/imop"
	"github.com/pixelwork/pixelwork/utils"
)

// DefaultBrushSize is the brush diameter in pixels.
const DefaultBrushSize = 20

// BrushMask is a user painted, alpha-only raster used to erase parts of a
// matted frame. Every gesture is preceded by a snapshot on the history stack,
// so strokes can be undone one gesture at a time.
type BrushMask struct {
	Size     float64 // brush diameter
	Strength uint8   // alpha laid down by a stamp

	width, height int
	alpha         []uint8
	history       [][]uint8
	painting      bool
}

// NewBrushMask creates an empty mask for a width×height frame.
func NewBrushMask(width, height int) *BrushMask {
	return &BrushMask{
		Size:     DefaultBrushSize,
		Strength: 255,
		width:    width,
		height:   height,
		alpha:    make([]uint8, width*height),
	}
}

// Bounds returns the dimensions of the frame the mask targets.
func (m *BrushMask) Bounds() (int, int) {
	return m.width, m.height
}

// Retarget binds the mask to a frame of the given size. The mask and its
// history are discarded if the size differs from the current one.
func (m *BrushMask) Retarget(width, height int) {
	if width == m.width && height == m.height {
		return
	}
	m.width, m.height = width, height
	m.alpha = make([]uint8, width*height)
	m.history = nil
	m.painting = false
}

// BeginStroke starts a paint gesture, saving the current state for Undo.
func (m *BrushMask) BeginStroke() {
	snap := make([]uint8, len(m.alpha))
	copy(snap, m.alpha)
	m.history = append(m.history, snap)
	m.painting = true
}

// EndStroke closes the current gesture.
func (m *BrushMask) EndStroke() {
	m.painting = false
}

// Stamp paints a filled circle centered on (x, y). A stamp outside of a
// gesture is recorded as a gesture of its own.
func (m *BrushMask) Stamp(x, y float64) {
	if !m.painting {
		m.BeginStroke()
		defer m.EndStroke()
	}
	m.StampSegment(x, y, x, y)
}

// StampSegment paints a capsule: the segment from (x0, y0) to (x1, y1)
// swept by the brush radius, with round caps.
func (m *BrushMask) StampSegment(x0, y0, x1, y1 float64) {
	if !m.painting {
		m.BeginStroke()
		defer m.EndStroke()
	}
	r := m.Size / 2
	if r <= 0 {
		return
	}
	minX := utils.Max(0, int(math.Floor(math.Min(x0, x1)-r)))
	minY := utils.Max(0, int(math.Floor(math.Min(y0, y1)-r)))
	maxX := utils.Min(m.width-1, int(math.Ceil(math.Max(x0, x1)+r)))
	maxY := utils.Min(m.height-1, int(math.Ceil(math.Max(y0, y1)+r)))

	r2 := r * r
	for py := minY; py <= maxY; py++ {
		for px := minX; px <= maxX; px++ {
			// Sample at the pixel center.
			if segmentDist2(float64(px)+0.5, float64(py)+0.5, x0, y0, x1, y1) > r2 {
				continue
			}
			i := py*m.width + px
			if m.alpha[i] < m.Strength {
				m.alpha[i] = m.Strength
			}
		}
	}
}

// segmentDist2 returns the squared distance from (px, py) to the segment.
func segmentDist2(px, py, x0, y0, x1, y1 float64) float64 {
	dx, dy := x1-x0, y1-y0
	l2 := dx*dx + dy*dy
	t := 0.0
	if l2 > 0 {
		t = utils.Clamp(((px-x0)*dx+(py-y0)*dy)/l2, 0, 1)
	}
	cx, cy := x0+t*dx-px, y0+t*dy-py
	return cx*cx + cy*cy
}

// Undo restores the state saved before the most recent gesture.
// It is a no-op when there is nothing to undo.
func (m *BrushMask) Undo() {
	n := len(m.history)
	if n == 0 {
		return
	}
	m.alpha = m.history[n-1]
	m.history = m.history[:n-1]
	m.painting = false
}

// CanUndo reports whether a snapshot is available.
func (m *BrushMask) CanUndo() bool {
	return len(m.history) > 0
}

// Clear wipes the mask together with its history.
func (m *BrushMask) Clear() {
	for i := range m.alpha {
		m.alpha[i] = 0
	}
	m.history = nil
	m.painting = false
}

// HasMask reports whether any pixel is covered. Dependents skip the erase
// step when it returns false.
func (m *BrushMask) HasMask() bool {
	if m == nil {
		return false
	}
	for _, a := range m.alpha {
		if a != 0 {
			return true
		}
	}
	return false
}

// AlphaAt returns the mask coverage at (x, y).
func (m *BrushMask) AlphaAt(x, y int) uint8 {
	return m.alpha[y*m.width+x]
}

// Image renders the mask as white pixels carrying the mask alpha.
func (m *BrushMask) Image() *PixelBuffer {
	out := NewPixelBuffer(m.width, m.height)
	for i, a := range m.alpha {
		o := i * 4
		out.Pix[o], out.Pix[o+1], out.Pix[o+2], out.Pix[o+3] = 0xff, 0xff, 0xff, a
	}
	return out
}

// LoadBrushMask rebuilds a mask from the alpha channel of a previously
// exported mask image.
func LoadBrushMask(img *PixelBuffer) (*BrushMask, error) {
	if err := img.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMaskLoad, err)
	}
	m := NewBrushMask(img.Width, img.Height)
	for i := range m.alpha {
		m.alpha[i] = img.Pix[i*4+3]
	}
	return m, nil
}

// Apply erases base where the mask is painted:
// result.alpha = base.alpha · (1 − mask/255). Colors pass through.
func (m *BrushMask) Apply(base *PixelBuffer) error {
	if base.Width != m.width || base.Height != m.height {
		return fmt.Errorf("%w: mask is %dx%d, frame is %dx%d",
			ErrMaskLoad, m.width, m.height, base.Width, base.Height)
	}
	op := imop.InitOp()
	if err := op.Set(imop.DstOut); err != nil {
		return err
	}
	op.Draw(base.NRGBA(), m.Image().NRGBA(), image.Point{})
	return nil
}
