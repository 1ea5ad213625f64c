package config

import (
	"fmt"

	"github.com/pixelwork/pixelwork"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	for _, check := range []func() error{
		c.validateCapture,
		c.validateMatte,
		c.validateSprite,
		c.validateStroke,
		c.validateGIF,
		c.validateRuntime,
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{pixelwork.ErrInvalid}, args...)...)
}

func (c *Config) validateCapture() error {
	if c.Capture.FPS <= 0 {
		return invalid("capture.fps must be positive")
	}
	if c.Capture.MaxFrames <= 0 {
		return invalid("capture.max_frames must be positive")
	}
	if c.Capture.SeekTimeoutMs <= 0 {
		return invalid("capture.seek_timeout_ms must be positive")
	}
	crop := c.Capture.Crop
	if crop.Left < 0 || crop.Top < 0 || crop.Right < 0 || crop.Bottom < 0 {
		return invalid("capture.crop values must not be negative")
	}
	return nil
}

func (c *Config) validateMatte() error {
	if _, err := pixelwork.ParseHexColor(c.Matte.BgColor); err != nil {
		return invalid("matte.bg_color: %v", err)
	}
	if c.Matte.Tolerance < 0 || c.Matte.Feather < 0 {
		return invalid("matte.tolerance and matte.feather must not be negative")
	}
	switch pixelwork.CropMode(c.Matte.CropMode) {
	case pixelwork.CropNone, pixelwork.CropTight, pixelwork.CropSafe:
	default:
		return invalid("matte.crop_mode %q is not one of none, tight_bbox, safe_bbox", c.Matte.CropMode)
	}
	if c.Matte.CropPad < 0 {
		return invalid("matte.crop_pad must not be negative")
	}
	return nil
}

func (c *Config) validateSprite() error {
	s := c.Sprite
	if s.CellWidth <= 0 || s.CellHeight <= 0 {
		return invalid("sprite cell size must be positive")
	}
	if s.Padding < 0 || s.Spacing < 0 {
		return invalid("sprite.padding and sprite.spacing must not be negative")
	}
	if 2*s.Padding >= s.CellWidth || 2*s.Padding >= s.CellHeight {
		return invalid("sprite.padding leaves no room inside a %dx%d cell", s.CellWidth, s.CellHeight)
	}
	if s.Columns < 1 {
		return invalid("sprite.columns must be at least 1")
	}
	switch pixelwork.Layout(s.Layout) {
	case pixelwork.LayoutFixedColumns, pixelwork.LayoutAutoSquare:
	default:
		return invalid("sprite.layout %q is not one of fixed_columns, auto_square", s.Layout)
	}
	if s.Background != "" {
		if _, err := pixelwork.ParseHexColor(s.Background); err != nil {
			return invalid("sprite.background: %v", err)
		}
	}
	return nil
}

func (c *Config) validateStroke() error {
	if c.Stroke.Width < 0 {
		return invalid("stroke.width must not be negative")
	}
	if _, err := pixelwork.ParseHexColor(c.Stroke.Color); err != nil {
		return invalid("stroke.color: %v", err)
	}
	return nil
}

func (c *Config) validateGIF() error {
	if c.GIF.DelayMs <= 0 {
		return invalid("gif.delay_ms must be positive")
	}
	if c.GIF.LoopCount < -1 {
		return invalid("gif.loop_count must be -1 or more")
	}
	if c.GIF.MaxColors < 2 || c.GIF.MaxColors > 255 {
		return invalid("gif.max_colors must be between 2 and 255")
	}
	return nil
}

func (c *Config) validateRuntime() error {
	if c.Runtime.Workers < 1 {
		return invalid("runtime.workers must be at least 1")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	return nil
}
