package pixelwork

import (
	"fmt"
	"image"

	"github.com/pixelwork/pixelwork/utils"
)

// SplitSheet cuts a sheet into cols×rows pieces in row-major order. Cell
// boundaries are floor(col·W/cols) so the pieces cover the sheet exactly,
// even when its size is not a multiple of the grid.
func SplitSheet(sheet *PixelBuffer, cols, rows int) ([]*PixelBuffer, error) {
	if err := sheet.Validate(); err != nil {
		return nil, err
	}
	cols, rows = utils.Max(1, cols), utils.Max(1, rows)
	if cols > sheet.Width || rows > sheet.Height {
		return nil, fmt.Errorf("%w: %dx%d grid does not fit a %dx%d sheet",
			ErrInvalid, cols, rows, sheet.Width, sheet.Height)
	}
	pieces := make([]*PixelBuffer, 0, cols*rows)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			pieces = append(pieces, SubBuffer(sheet, SplitRect(sheet.Width, sheet.Height, cols, rows, c, r)))
		}
	}
	return pieces, nil
}

// SplitRect returns the area of cell (col, row) on a w×h sheet.
func SplitRect(w, h, cols, rows, col, row int) image.Rectangle {
	return image.Rect(col*w/cols, row*h/rows, (col+1)*w/cols, (row+1)*h/rows)
}

// Rows groups pieces into consecutive runs of cols, the last run possibly
// shorter.
func Rows[T any](pieces []T, cols int) [][]T {
	cols = utils.Max(1, cols)
	var out [][]T
	for start := 0; start < len(pieces); start += cols {
		out = append(out, pieces[start:utils.Min(start+cols, len(pieces))])
	}
	return out
}
