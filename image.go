package pixelwork

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pixelwork/pixelwork/utils"
	"golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Format names an output raster encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatBMP  Format = "bmp"
)

// FormatFromPath maps a file extension to its output format. Unknown or
// missing extensions fall back to PNG since it preserves the alpha channel.
func FormatFromPath(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case "", ".png":
		return FormatPNG, nil
	case ".jpg", ".jpeg":
		return FormatJPEG, nil
	case ".bmp":
		return FormatBMP, nil
	default:
		return "", fmt.Errorf("%w: unsupported image format %q", ErrInvalid, filepath.Ext(name))
	}
}

// Decode reads any registered raster format (png, jpeg, gif, bmp, webp).
func Decode(r io.Reader) (*PixelBuffer, error) {
	src, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return FromImage(src), nil
}

// DecodeFile opens and decodes an image file after checking its content type.
func DecodeFile(path string) (*PixelBuffer, error) {
	ctype, err := utils.DetectContentType(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if !strings.Contains(ctype, "image") {
		return nil, fmt.Errorf("%w: %s is not an image file (%s)", ErrDecode, path, ctype)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: could not open %s: %v", ErrDecode, path, err)
	}
	defer file.Close()

	return Decode(file)
}

// Encode writes b to w in the given format.
func Encode(w io.Writer, b *PixelBuffer, f Format) error {
	var err error
	img := b.NRGBA()
	switch f {
	case FormatPNG, "":
		err = png.Encode(w, img)
	case FormatJPEG:
		err = jpeg.Encode(w, img, &jpeg.Options{Quality: 100})
	case FormatBMP:
		err = bmp.Encode(w, img)
	default:
		return fmt.Errorf("%w: unsupported image format %q", ErrInvalid, f)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSerialize, err)
	}
	return nil
}

// EncodePNG returns the PNG encoding of b.
func EncodePNG(b *PixelBuffer) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, b, FormatPNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
