package bundle

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pixelwork/pixelwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readZip(t *testing.T, data []byte) map[string][]byte {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	out := make(map[string][]byte)
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		b, err := io.ReadAll(rc)
		require.NoError(t, err)
		rc.Close()
		out[f.Name] = b
	}
	return out
}

func testSheet(t *testing.T) *pixelwork.SpriteSheet {
	t.Helper()
	frames := make([]*pixelwork.PixelBuffer, 3)
	for i := range frames {
		frames[i] = pixelwork.NewPixelBuffer(4, 4)
		frames[i].Fill(color.NRGBA{R: uint8(80 * i), G: 10, A: 255})
	}
	sheet, err := pixelwork.ComposeSprite(frames, []float64{0, 0.5, 1}, pixelwork.SpriteOptions{
		CellW: 8, CellH: 8, Padding: 1, Spacing: 2, Columns: 2,
	})
	require.NoError(t, err)
	return sheet
}

func TestBundle_WriteSpriteBundle(t *testing.T) {
	assert := assert.New(t)
	sheet := testSheet(t)

	var buf bytes.Buffer
	require.NoError(t, WriteSpriteBundle(&buf, sheet))
	files := readZip(t, buf.Bytes())
	require.Len(t, files, 2)

	img, err := pixelwork.Decode(bytes.NewReader(files[SpriteName]))
	require.NoError(t, err)
	assert.True(sheet.Sheet.Equal(img))

	var index pixelwork.SpriteIndex
	require.NoError(t, json.Unmarshal(files[IndexName], &index))
	assert.Equal(sheet.Index, index)
	assert.True(strings.Contains(string(files[IndexName]), "\n  \"version\": \"1.0\""))
}

func TestBundle_WriteRaster(t *testing.T) {
	sheet := testSheet(t)

	var buf bytes.Buffer
	require.NoError(t, WriteRaster(&buf, sheet))
	img, err := pixelwork.Decode(&buf)
	require.NoError(t, err)
	assert.True(t, sheet.Sheet.Equal(img))
}

func TestBundle_WriteFrameSet(t *testing.T) {
	assert := assert.New(t)
	frames := []*pixelwork.PixelBuffer{pixelwork.NewPixelBuffer(2, 2), pixelwork.NewPixelBuffer(2, 2)}

	var buf bytes.Buffer
	require.NoError(t, WriteFrameSet(&buf, "cell", frames))
	files := readZip(t, buf.Bytes())
	assert.Contains(files, "cells/cell_00001.png")
	assert.Contains(files, "cells/cell_00002.png")

	err := WriteFrameSet(&buf, "cell", nil)
	assert.True(errors.Is(err, pixelwork.ErrEmpty))
}

func TestBundle_WriteGIFSet(t *testing.T) {
	assert := assert.New(t)

	var buf bytes.Buffer
	require.NoError(t, WriteGIFSet(&buf, []string{"row_01.gif", "row_02.gif"}, [][]byte{[]byte("a"), []byte("b")}))
	files := readZip(t, buf.Bytes())
	assert.Equal([]byte("b"), files["row_02.gif"])

	err := WriteGIFSet(&buf, []string{"one.gif"}, [][]byte{[]byte("a"), []byte("b")})
	assert.True(errors.Is(err, pixelwork.ErrInvalid))
}

func TestStore_FSStorePublish(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()
	store := FSStore{Dir: dir}
	sheet := testSheet(t)

	err := Publish(context.Background(), store, "runs/abc/sprite.zip", func(w io.Writer) error {
		return WriteSpriteBundle(w, sheet)
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "runs", "abc", "sprite.zip"))
	require.NoError(t, err)
	assert.Len(readZip(t, data), 2)
}

func TestStore_FSStoreRejectsEscapingKeys(t *testing.T) {
	store := FSStore{Dir: t.TempDir()}
	for _, key := range []string{"../out.zip", "/etc/out.zip", ""} {
		err := store.Put(context.Background(), key, strings.NewReader("x"), 1)
		assert.Error(t, err, key)
	}
}

func TestStore_FSStoreHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := FSStore{Dir: t.TempDir()}.Put(ctx, "a.zip", strings.NewReader("x"), 1)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestStore_NewMinIOStore(t *testing.T) {
	_, err := NewMinIOStore(MinIOConfig{Endpoint: "localhost:9000"})
	assert.Error(t, err)

	s, err := NewMinIOStore(MinIOConfig{Endpoint: "localhost:9000", AccessKey: "k", SecretKey: "s", Bucket: "sprites"})
	require.NoError(t, err)
	assert.Equal(t, "sprites", s.bucket)
	assert.Equal(t, "application/zip", contentType("runs/x.ZIP"))
}
