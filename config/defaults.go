package config

import (
	"runtime"

	"github.com/pixelwork/pixelwork"
)

const (
	defaultFPS           = 12
	defaultMaxFrames     = 300
	defaultSeekTimeoutMs = 10000
	defaultBgColor       = "#00ff00"
	defaultTolerance     = 40
	defaultFeather       = 10
	defaultCellSize      = 256
	defaultPadding       = 4
	defaultSpacing       = 4
	defaultColumns       = 12
	defaultStrokeColor   = "#000000"
	defaultGIFDelayMs    = 100
	defaultGIFMaxColors  = 255
	defaultLogLevel      = "info"
	defaultStorageDir    = "bundles"
)

// Default returns a Config populated with the pipeline defaults.
func Default() Config {
	return Config{
		Capture: Capture{
			FPS:           defaultFPS,
			MaxFrames:     defaultMaxFrames,
			SeekTimeoutMs: defaultSeekTimeoutMs,
		},
		Matte: Matte{
			Enabled:   true,
			BgColor:   defaultBgColor,
			Tolerance: defaultTolerance,
			Feather:   defaultFeather,
			CropMode:  string(pixelwork.CropNone),
		},
		Sprite: Sprite{
			CellWidth:  defaultCellSize,
			CellHeight: defaultCellSize,
			Padding:    defaultPadding,
			Spacing:    defaultSpacing,
			Columns:    defaultColumns,
			Layout:     string(pixelwork.LayoutFixedColumns),
		},
		Stroke: Stroke{
			Color: defaultStrokeColor,
		},
		GIF: GIF{
			DelayMs:   defaultGIFDelayMs,
			MaxColors: defaultGIFMaxColors,
		},
		Runtime: Runtime{
			Workers: runtime.NumCPU(),
		},
		Logging: Logging{
			Level: defaultLogLevel,
		},
		Storage: Storage{
			Dir: defaultStorageDir,
		},
	}
}
