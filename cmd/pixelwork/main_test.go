package main

import (
	"archive/zip"
	"bytes"
	"context"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pixelwork/pixelwork"
	"github.com/pixelwork/pixelwork/gifcodec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writePNG(t *testing.T, path string, b *pixelwork.PixelBuffer) {
	t.Helper()
	data, err := pixelwork.EncodePNG(b)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func TestCLI_ConfigInitAndValidate(t *testing.T) {
	assert := assert.New(t)
	path := filepath.Join(t.TempDir(), "conf", "pixelwork.toml")

	out, err := runCLI(t, "config", "init", "--path", path)
	require.NoError(t, err)
	assert.Contains(out, path)

	_, err = runCLI(t, "config", "init", "--path", path)
	assert.Error(err)

	_, err = runCLI(t, "config", "init", "--path", path, "--overwrite")
	assert.NoError(err)

	out, err = runCLI(t, "--config", path, "config", "validate")
	require.NoError(t, err)
	assert.Contains(out, "Configuration is valid")
}

func TestCLI_SplitSheet(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()

	sheet := pixelwork.NewPixelBuffer(8, 4)
	sheet.Fill(color.NRGBA{R: 200, A: 255})
	src := filepath.Join(dir, "sheet.png")
	writePNG(t, src, sheet)

	dst := filepath.Join(dir, "frames.zip")
	_, err := runCLI(t, "-q", "split", src, "--cols", "2", "--out", dst)
	require.NoError(t, err)

	zr, err := zip.OpenReader(dst)
	require.NoError(t, err)
	defer zr.Close()
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal([]string{"frames/frame_00001.png", "frames/frame_00002.png"}, names)
}

func TestCLI_GIFEncode(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()

	for i, c := range []color.NRGBA{{R: 255, A: 255}, {B: 255, A: 255}} {
		b := pixelwork.NewPixelBuffer(3, 3)
		b.Fill(c)
		writePNG(t, filepath.Join(dir, "f"+string(rune('a'+i))+".png"), b)
	}

	dst := filepath.Join(t.TempDir(), "anim.gif")
	_, err := runCLI(t, "-q", "gif", "encode", dir, "--out", dst, "--delay", "50")
	require.NoError(t, err)

	f, err := os.Open(dst)
	require.NoError(t, err)
	defer f.Close()
	anim, err := gifcodec.Decode(f)
	require.NoError(t, err)
	require.Len(t, anim.Frames, 2)
	assert.Equal([]time.Duration{50 * time.Millisecond, 50 * time.Millisecond}, anim.Delays)
	assert.Equal(color.NRGBA{B: 255, A: 255}, anim.Frames[1].At(1, 1))
}

func TestCLI_MissingArgs(t *testing.T) {
	_, err := runCLI(t, "-q", "split")
	assert.Error(t, err)
}
