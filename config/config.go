// Package config loads pipeline settings from defaults, an optional TOML
// file and PIXELWORK_* environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pelletier/go-toml/v2"
	"github.com/pixelwork/pixelwork"
	"github.com/pixelwork/pixelwork/gifcodec"
)

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "PIXELWORK_"

// Capture holds frame extraction settings.
type Capture struct {
	FPS           float64              `toml:"fps" env:"FPS"`
	MaxFrames     int                  `toml:"max_frames" env:"MAX_FRAMES"`
	SeekTimeoutMs int                  `toml:"seek_timeout_ms" env:"SEEK_TIMEOUT_MS"`
	Crop          pixelwork.CropRegion `toml:"crop"`
}

// Matte holds chroma key and content crop settings.
type Matte struct {
	Enabled   bool    `toml:"enabled" env:"ENABLED"`
	BgColor   string  `toml:"bg_color" env:"BG_COLOR"`
	Tolerance float64 `toml:"tolerance" env:"TOLERANCE"`
	Feather   float64 `toml:"feather" env:"FEATHER"`
	CropMode  string  `toml:"crop_mode" env:"CROP_MODE"`
	CropPad   int     `toml:"crop_pad" env:"CROP_PAD"`
}

// Sprite holds the sheet layout.
type Sprite struct {
	CellWidth  int    `toml:"cell_width" env:"CELL_WIDTH"`
	CellHeight int    `toml:"cell_height" env:"CELL_HEIGHT"`
	Padding    int    `toml:"padding" env:"PADDING"`
	Spacing    int    `toml:"spacing" env:"SPACING"`
	Columns    int    `toml:"columns" env:"COLUMNS"`
	Layout     string `toml:"layout" env:"LAYOUT"`
	Pixelated  bool   `toml:"pixelated" env:"PIXELATED"`
	// Background fills every cell when set, e.g. "#ffffff".
	Background string `toml:"background" env:"BACKGROUND"`
}

// Stroke holds the outline settings.
type Stroke struct {
	Width    int    `toml:"width" env:"WIDTH"`
	Color    string `toml:"color" env:"COLOR"`
	PerFrame bool   `toml:"per_frame" env:"PER_FRAME"`
}

// GIF holds animation encoding settings.
type GIF struct {
	DelayMs   int `toml:"delay_ms" env:"DELAY_MS"`
	LoopCount int `toml:"loop_count" env:"LOOP_COUNT"`
	MaxColors int `toml:"max_colors" env:"MAX_COLORS"`
}

// Runtime holds concurrency settings.
type Runtime struct {
	Workers int `toml:"workers" env:"WORKERS"`
}

// Logging holds log output settings.
type Logging struct {
	Level string `toml:"level" env:"LEVEL"`
}

// Metrics holds the Prometheus endpoint. An empty address disables it.
type Metrics struct {
	Addr string `toml:"addr" env:"ADDR"`
}

// Storage selects where bundles are published. With an empty MinIO endpoint
// bundles are written below Dir.
type Storage struct {
	Dir            string `toml:"dir" env:"DIR"`
	MinIOEndpoint  string `toml:"minio_endpoint" env:"MINIO_ENDPOINT"`
	MinIOAccessKey string `toml:"minio_access_key" env:"MINIO_ACCESS_KEY"`
	MinIOSecretKey string `toml:"minio_secret_key" env:"MINIO_SECRET_KEY"`
	MinIOUseSSL    bool   `toml:"minio_use_ssl" env:"MINIO_USE_SSL"`
	MinIOBucket    string `toml:"minio_bucket" env:"MINIO_BUCKET"`
}

// Config encapsulates every pipeline setting.
//
// Sections:
//   - Capture: frame rate, frame cap, seek timeout and source crop
//   - Matte: chroma key and content crop
//   - Sprite: sheet layout
//   - Stroke: outline width and color
//   - GIF: animation timing and palette size
//   - Runtime, Logging, Metrics, Storage: process level settings
type Config struct {
	Capture Capture `toml:"capture" envPrefix:"CAPTURE_"`
	Matte   Matte   `toml:"matte" envPrefix:"MATTE_"`
	Sprite  Sprite  `toml:"sprite" envPrefix:"SPRITE_"`
	Stroke  Stroke  `toml:"stroke" envPrefix:"STROKE_"`
	GIF     GIF     `toml:"gif" envPrefix:"GIF_"`
	Runtime Runtime `toml:"runtime" envPrefix:"RUNTIME_"`
	Logging Logging `toml:"logging" envPrefix:"LOG_"`
	Metrics Metrics `toml:"metrics" envPrefix:"METRICS_"`
	Storage Storage `toml:"storage" envPrefix:"STORAGE_"`
}

// Load applies defaults, the TOML file at path (skipped when path is empty)
// and environment overrides, then validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Sample renders the defaults as a TOML document.
func Sample() ([]byte, error) {
	data, err := toml.Marshal(Default())
	if err != nil {
		return nil, fmt.Errorf("render sample config: %w", err)
	}
	return data, nil
}

// MatteParams returns the chroma key parameters.
func (c *Config) MatteParams() (pixelwork.MatteParams, error) {
	bg, err := pixelwork.ParseHexColor(c.Matte.BgColor)
	if err != nil {
		return pixelwork.MatteParams{}, err
	}
	return pixelwork.MatteParams{BgColor: bg, Tolerance: c.Matte.Tolerance, Feather: c.Matte.Feather}, nil
}

// StrokeConfig returns the outline settings.
func (c *Config) StrokeConfig() (pixelwork.StrokeConfig, error) {
	col, err := pixelwork.ParseHexColor(c.Stroke.Color)
	if err != nil {
		return pixelwork.StrokeConfig{}, err
	}
	return pixelwork.StrokeConfig{Width: c.Stroke.Width, Color: col}, nil
}

// SpriteOptions returns the sheet layout.
func (c *Config) SpriteOptions() (pixelwork.SpriteOptions, error) {
	opts := pixelwork.SpriteOptions{
		CellW:     c.Sprite.CellWidth,
		CellH:     c.Sprite.CellHeight,
		Padding:   c.Sprite.Padding,
		Spacing:   c.Sprite.Spacing,
		Columns:   c.Sprite.Columns,
		Layout:    pixelwork.Layout(c.Sprite.Layout),
		Pixelated: c.Sprite.Pixelated,
		Workers:   c.Runtime.Workers,
	}
	if c.Sprite.Background != "" {
		bg, err := pixelwork.ParseHexColor(c.Sprite.Background)
		if err != nil {
			return pixelwork.SpriteOptions{}, err
		}
		opts.Background = &bg
	}
	return opts, nil
}

// EncodeOptions returns the animation encoding settings.
func (c *Config) EncodeOptions() gifcodec.EncodeOptions {
	return gifcodec.EncodeOptions{
		Delay:          time.Duration(c.GIF.DelayMs) * time.Millisecond,
		LoopCount:      c.GIF.LoopCount,
		AlphaThreshold: gifcodec.DefaultAlphaThreshold,
		MaxColors:      c.GIF.MaxColors,
	}
}

// SeekTimeout returns the per-frame capture timeout.
func (c *Config) SeekTimeout() time.Duration {
	return time.Duration(c.Capture.SeekTimeoutMs) * time.Millisecond
}

// Apply copies the configuration into a processor.
func (c *Config) Apply(p *pixelwork.Processor) error {
	matte, err := c.MatteParams()
	if err != nil {
		return err
	}
	stroke, err := c.StrokeConfig()
	if err != nil {
		return err
	}
	sprite, err := c.SpriteOptions()
	if err != nil {
		return err
	}
	p.Matte = c.Matte.Enabled
	p.MatteParams = matte
	p.CropMode = pixelwork.CropMode(c.Matte.CropMode)
	p.CropPad = c.Matte.CropPad
	p.Crop = c.Capture.Crop
	p.Sprite = sprite
	p.Stroke = stroke
	p.StrokePerFrame = c.Stroke.PerFrame
	p.SeekTimeout = c.SeekTimeout()
	return nil
}
