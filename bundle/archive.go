// Package bundle packs pipeline results into zip archives and hands them to a
// Store, either a local directory or an S3 compatible bucket.
package bundle

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"path"

	"github.com/pixelwork/pixelwork"
	"github.com/pixelwork/pixelwork/utils"
)

const (
	SpriteName = "sprite.png"
	IndexName  = "index.json"
)

// Archive is a zip writer whose failures are reported as ErrSerialize.
type Archive struct {
	zw    *zip.Writer
	names []string
}

// NewArchive starts an archive on w.
func NewArchive(w io.Writer) *Archive {
	return &Archive{zw: zip.NewWriter(w)}
}

// Add stores data under name.
func (a *Archive) Add(name string, data []byte) error {
	f, err := a.zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("%w: add %s: %v", pixelwork.ErrSerialize, name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("%w: write %s: %v", pixelwork.ErrSerialize, name, err)
	}
	a.names = append(a.names, name)
	return nil
}

// AddPNG stores the PNG encoding of b under name.
func (a *Archive) AddPNG(name string, b *pixelwork.PixelBuffer) error {
	data, err := pixelwork.EncodePNG(b)
	if err != nil {
		return err
	}
	return a.Add(name, data)
}

// Names lists the entries added so far, in order.
func (a *Archive) Names() []string {
	return a.names
}

// Close writes the central directory.
func (a *Archive) Close() error {
	if err := a.zw.Close(); err != nil {
		return fmt.Errorf("%w: close archive: %v", pixelwork.ErrSerialize, err)
	}
	return nil
}

// IndexJSON renders the sprite index with a two-space indent.
func IndexJSON(index pixelwork.SpriteIndex) ([]byte, error) {
	data, err := json.MarshalIndent(index, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: sprite index: %v", pixelwork.ErrSerialize, err)
	}
	return data, nil
}

// WriteSpriteBundle writes a zip holding sprite.png and index.json.
func WriteSpriteBundle(w io.Writer, sheet *pixelwork.SpriteSheet) error {
	index, err := IndexJSON(sheet.Index)
	if err != nil {
		return err
	}
	a := NewArchive(w)
	if err := a.AddPNG(SpriteName, sheet.Sheet); err != nil {
		return err
	}
	if err := a.Add(IndexName, index); err != nil {
		return err
	}
	return a.Close()
}

// WriteRaster writes the packed sheet alone, as a PNG.
func WriteRaster(w io.Writer, sheet *pixelwork.SpriteSheet) error {
	return pixelwork.Encode(w, sheet.Sheet, pixelwork.FormatPNG)
}

// FrameSetName is the archive path of the n-th frame of a set, numbered from 1.
func FrameSetName(prefix string, n int) string {
	return path.Join(prefix+"s", utils.SeqName(prefix, n, 5, ".png"))
}

// WriteFrameSet writes frames as <prefix>s/<prefix>_00001.png, ...
func WriteFrameSet(w io.Writer, prefix string, frames []*pixelwork.PixelBuffer) error {
	if len(frames) == 0 {
		return fmt.Errorf("%w: empty frame set", pixelwork.ErrEmpty)
	}
	if prefix == "" {
		prefix = "frame"
	}
	a := NewArchive(w)
	for i, f := range frames {
		if err := a.AddPNG(FrameSetName(prefix, i+1), f); err != nil {
			return err
		}
	}
	return a.Close()
}

// WriteGIFSet writes already encoded animations under the given names.
func WriteGIFSet(w io.Writer, names []string, gifs [][]byte) error {
	if len(gifs) == 0 {
		return fmt.Errorf("%w: empty animation set", pixelwork.ErrEmpty)
	}
	if len(names) != len(gifs) {
		return fmt.Errorf("%w: %d names for %d animations", pixelwork.ErrInvalid, len(names), len(gifs))
	}
	a := NewArchive(w)
	for i, data := range gifs {
		if err := a.Add(names[i], data); err != nil {
			return err
		}
	}
	return a.Close()
}
