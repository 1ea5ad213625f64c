package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/pixelwork/pixelwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pixelwork.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	assert := assert.New(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(12.0, cfg.Capture.FPS)
	assert.Equal(300, cfg.Capture.MaxFrames)
	assert.Equal(256, cfg.Sprite.CellWidth)
	assert.Equal(4, cfg.Sprite.Padding)
	assert.Equal(12, cfg.Sprite.Columns)
	assert.Equal(40.0, cfg.Matte.Tolerance)
	assert.Equal(10.0, cfg.Matte.Feather)
	assert.Equal(0, cfg.Stroke.Width)
	assert.Equal("#000000", cfg.Stroke.Color)
	assert.Equal(100*time.Millisecond, cfg.EncodeOptions().Delay)
	assert.Equal("info", cfg.Logging.Level)
	assert.GreaterOrEqual(cfg.Runtime.Workers, 1)
}

func TestLoad_FileValues(t *testing.T) {
	assert := assert.New(t)

	path := writeConfig(t, `
[capture]
fps = 24.0

[capture.crop]
left = 2
bottom = 3

[sprite]
columns = 5
layout = "auto_square"
background = "#ffffff"

[stroke]
width = 3
color = "#ff0000"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(24.0, cfg.Capture.FPS)
	assert.Equal(pixelwork.CropRegion{Left: 2, Bottom: 3}, cfg.Capture.Crop)
	// Untouched keys keep their defaults.
	assert.Equal(300, cfg.Capture.MaxFrames)

	opts, err := cfg.SpriteOptions()
	require.NoError(t, err)
	assert.Equal(pixelwork.LayoutAutoSquare, opts.Layout)
	require.NotNil(t, opts.Background)
	assert.Equal(pixelwork.RGB{R: 255, G: 255, B: 255}, *opts.Background)

	stroke, err := cfg.StrokeConfig()
	require.NoError(t, err)
	assert.Equal(pixelwork.StrokeConfig{Width: 3, Color: pixelwork.RGB{R: 255}}, stroke)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	assert := assert.New(t)

	path := writeConfig(t, `
[capture]
fps = 24.0
max_frames = 50

[logging]
level = "warn"
`)
	t.Setenv("PIXELWORK_CAPTURE_FPS", "30")
	t.Setenv("PIXELWORK_LOG_LEVEL", "debug")
	t.Setenv("PIXELWORK_STROKE_WIDTH", "2")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(30.0, cfg.Capture.FPS)
	assert.Equal(50, cfg.Capture.MaxFrames)
	assert.Equal("debug", cfg.Logging.Level)
	assert.Equal(2, cfg.Stroke.Width)
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name string
		body string
	}{
		{name: "unknown key", body: "[capture]\nframerate = 3\n"},
		{name: "negative stroke", body: "[stroke]\nwidth = -1\n"},
		{name: "bad color", body: "[matte]\nbg_color = \"green\"\n"},
		{name: "bad layout", body: "[sprite]\nlayout = \"spiral\"\n"},
		{name: "padding fills cell", body: "[sprite]\ncell_width = 8\npadding = 4\n"},
		{name: "zero fps", body: "[capture]\nfps = 0.0\n"},
		{name: "too many colors", body: "[gif]\nmax_colors = 256\n"},
		{name: "bad crop mode", body: "[matte]\ncrop_mode = \"loose\"\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "[runtime]\nworkers = 0\n"))
	assert.True(t, errors.Is(err, pixelwork.ErrInvalid))
}

func TestConfig_Apply(t *testing.T) {
	assert := assert.New(t)

	cfg := Default()
	cfg.Matte.CropMode = string(pixelwork.CropSafe)
	cfg.Matte.CropPad = 2
	cfg.Stroke.PerFrame = true
	cfg.Capture.SeekTimeoutMs = 1500

	p := pixelwork.NewProcessor()
	require.NoError(t, cfg.Apply(p))
	assert.True(p.Matte)
	assert.Equal(pixelwork.RGB{G: 255}, p.MatteParams.BgColor)
	assert.Equal(pixelwork.CropSafe, p.CropMode)
	assert.Equal(2, p.CropPad)
	assert.True(p.StrokePerFrame)
	assert.Equal(256, p.Sprite.CellW)
	assert.Equal(1500*time.Millisecond, p.SeekTimeout)
}

func TestSample_RoundTrips(t *testing.T) {
	data, err := Sample()
	require.NoError(t, err)

	var cfg Config
	require.NoError(t, toml.Unmarshal(data, &cfg))
	assert.Equal(t, Default(), cfg)
}
