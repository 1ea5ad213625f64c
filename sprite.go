package pixelwork

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"runtime"
	"sync"

	"github.com/pixelwork/pixelwork/imop"
	"github.com/pixelwork/pixelwork/utils"
)

// SpriteIndexVersion tags every index document.
const SpriteIndexVersion = "1.0"

// Layout selects how the column count of a sheet is derived.
type Layout string

const (
	LayoutFixedColumns Layout = "fixed_columns"
	LayoutAutoSquare   Layout = "auto_square"
)

// SpriteOptions describes the cell grid of a sprite sheet.
type SpriteOptions struct {
	CellW, CellH int
	Padding      int
	Spacing      int
	Columns      int
	Layout       Layout
	Pixelated    bool
	// Background, when set, fills every cell before its frame is drawn.
	Background *RGB
	// Workers bounds the concurrent cell preparation. Zero means NumCPU.
	Workers int
}

// Size is a width/height pair as written to the index document.
type Size struct {
	W int `json:"w"`
	H int `json:"h"`
}

// SpriteIndexEntry locates one frame on the sheet.
type SpriteIndexEntry struct {
	I int     `json:"i"`
	X int     `json:"x"`
	Y int     `json:"y"`
	W int     `json:"w"`
	H int     `json:"h"`
	T float64 `json:"t"`
}

// SpriteIndex is the positional index shipped alongside a sheet.
type SpriteIndex struct {
	Version   string             `json:"version"`
	FrameSize Size               `json:"frame_size"`
	SheetSize Size               `json:"sheet_size"`
	Frames    []SpriteIndexEntry `json:"frames"`
}

// SpriteSheet is a packed raster with its index.
type SpriteSheet struct {
	Sheet *PixelBuffer
	Index SpriteIndex
	Cols  int
	Rows  int
}

// Grid returns the column and row count used for n frames.
func (o SpriteOptions) Grid(n int) (cols, rows int) {
	switch o.Layout {
	case LayoutAutoSquare:
		cols = int(math.Ceil(math.Sqrt(float64(n))))
	default:
		cols = o.Columns
	}
	cols = utils.Max(1, cols)
	rows = (n + cols - 1) / cols
	return cols, rows
}

// SheetSize returns the sheet dimensions for the given grid.
func (o SpriteOptions) SheetSize(cols, rows int) (int, int) {
	return cols*(o.CellW+o.Spacing) - o.Spacing, rows*(o.CellH+o.Spacing) - o.Spacing
}

// CellOrigin returns the top-left corner of cell i in row-major order.
func (o SpriteOptions) CellOrigin(i, cols int) image.Point {
	return image.Pt((i%cols)*(o.CellW+o.Spacing), (i/cols)*(o.CellH+o.Spacing))
}

// ComposeSprite packs frames into a grid, fitting each into a cell. The
// timestamps (seconds) are carried into the index rounded to milliseconds;
// a missing timestamp is written as 0.
func ComposeSprite(frames []*PixelBuffer, timestamps []float64, opts SpriteOptions) (*SpriteSheet, error) {
	n := len(frames)
	if n == 0 {
		return nil, fmt.Errorf("%w: no frames to compose", ErrEmpty)
	}
	if opts.CellW < 1 || opts.CellH < 1 {
		return nil, fmt.Errorf("%w: cell size %dx%d", ErrInvalid, opts.CellW, opts.CellH)
	}
	if opts.Padding < 0 || opts.Spacing < 0 {
		return nil, fmt.Errorf("%w: negative padding or spacing", ErrInvalid)
	}
	cols, rows := opts.Grid(n)
	sheetW, sheetH := opts.SheetSize(cols, rows)

	cells := make([]*PixelBuffer, n)
	errs := make([]error, n)

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for i := range frames {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer func() {
				<-sem
				wg.Done()
			}()
			cells[i], errs[i] = FitFrame(frames[i], opts.CellW, opts.CellH, opts.Padding, opts.Pixelated)
		}(i)
	}
	// Every cell must be ready before the sheet is finalized.
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("%w: frame %d: %v", ErrSurface, i, err)
		}
	}

	sheet := NewPixelBuffer(sheetW, sheetH)
	dst := sheet.NRGBA()
	op := imop.InitOp()

	index := SpriteIndex{
		Version:   SpriteIndexVersion,
		FrameSize: Size{W: opts.CellW, H: opts.CellH},
		SheetSize: Size{W: sheetW, H: sheetH},
		Frames:    make([]SpriteIndexEntry, 0, n),
	}
	for i, cell := range cells {
		at := opts.CellOrigin(i, cols)
		if opts.Background != nil {
			bg := opts.Background
			fill := NewPixelBuffer(opts.CellW, opts.CellH)
			fill.Fill(color.NRGBA{R: bg.R, G: bg.G, B: bg.B, A: 0xff})
			cell = flatten(fill, cell)
		}
		op.Draw(dst, cell.NRGBA(), at)

		var ts float64
		if i < len(timestamps) {
			ts = math.Round(timestamps[i]*1000) / 1000
		}
		index.Frames = append(index.Frames, SpriteIndexEntry{
			I: i, X: at.X, Y: at.Y, W: opts.CellW, H: opts.CellH, T: ts,
		})
		cells[i] = nil
	}

	return &SpriteSheet{Sheet: sheet, Index: index, Cols: cols, Rows: rows}, nil
}

// flatten draws top over bottom and returns bottom.
func flatten(bottom, top *PixelBuffer) *PixelBuffer {
	op := imop.InitOp()
	op.Draw(bottom.NRGBA(), top.NRGBA(), image.Point{})
	return bottom
}
