package gifcodec

import (
	"fmt"
	"io"

	"github.com/pixelwork/pixelwork"
	"github.com/pixelwork/pixelwork/bundle"
	"github.com/pixelwork/pixelwork/utils"
)

// FramesFromSheet cuts a sprite sheet into a cols×rows grid and encodes each
// row of the grid as its own animation. Frames of a row are normalized to the
// largest piece in that row.
func FramesFromSheet(sheet *pixelwork.PixelBuffer, cols, rows int, opts EncodeOptions) ([][]byte, error) {
	pieces, err := pixelwork.SplitSheet(sheet, cols, rows)
	if err != nil {
		return nil, err
	}
	var out [][]byte
	for i, row := range pixelwork.Rows(pieces, cols) {
		w, h := 0, 0
		for _, p := range row {
			w, h = utils.Max(w, p.Width), utils.Max(h, p.Height)
		}
		data, err := EncodeSized(row, nil, w, h, opts)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out = append(out, data)
	}
	return out, nil
}

// FrameName is the archive name of the i-th decoded frame, counted from 0.
func FrameName(i int) string {
	return utils.SeqName("frame", i, 3, ".png")
}

// RowName is the archive name of the i-th row animation. Rows are counted
// from 0 and named from 1.
func RowName(i int) string {
	return utils.SeqName("row", i+1, 2, ".gif")
}

// DecodeToZip decodes a GIF and writes every composed frame as a PNG entry
// of a zip archive. It returns the number of frames written.
func DecodeToZip(r io.Reader, w io.Writer) (int, error) {
	a, err := Decode(r)
	if err != nil {
		return 0, err
	}
	ar := bundle.NewArchive(w)
	for i, f := range a.Frames {
		if err := ar.AddPNG(FrameName(i), f); err != nil {
			return 0, err
		}
	}
	if err := ar.Close(); err != nil {
		return 0, err
	}
	return len(a.Frames), nil
}

// RowsToZip writes row animations as row_01.gif, row_02.gif, ...
func RowsToZip(gifs [][]byte, w io.Writer) error {
	names := make([]string, len(gifs))
	for i := range gifs {
		names[i] = RowName(i)
	}
	return bundle.WriteGIFSet(w, names, gifs)
}
