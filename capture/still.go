package capture

import (
	"context"
	"fmt"
	"math"

	"github.com/pixelwork/pixelwork"
)

// StillSource serves the same image at every position.
type StillSource struct {
	Image *pixelwork.PixelBuffer
	// Length is the reported duration in seconds.
	Length float64
}

// Size implements pixelwork.FrameSource.
func (s *StillSource) Size() (int, int) { return s.Image.Width, s.Image.Height }

// Duration implements pixelwork.FrameSource.
func (s *StillSource) Duration() float64 { return s.Length }

// Seek implements pixelwork.FrameSource.
func (s *StillSource) Seek(ctx context.Context, ts float64) error {
	return ctx.Err()
}

// Capture implements pixelwork.FrameSource.
func (s *StillSource) Capture(ctx context.Context) (*pixelwork.PixelBuffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Image.Clone(), nil
}

// SequenceSource plays an ordered list of image files at a fixed rate.
// Images are decoded on demand and must share one size.
type SequenceSource struct {
	paths  []string
	fps    float64
	width  int
	height int
	pos    int
}

// OpenSequence checks the first image and returns a source over paths.
func OpenSequence(paths []string, fps float64) (*SequenceSource, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: empty image sequence", pixelwork.ErrEmpty)
	}
	if fps <= 0 {
		return nil, fmt.Errorf("%w: fps must be positive, got %v", pixelwork.ErrInvalid, fps)
	}
	first, err := pixelwork.DecodeFile(paths[0])
	if err != nil {
		return nil, err
	}
	return &SequenceSource{paths: paths, fps: fps, width: first.Width, height: first.Height}, nil
}

// Size implements pixelwork.FrameSource.
func (s *SequenceSource) Size() (int, int) { return s.width, s.height }

// Duration implements pixelwork.FrameSource.
func (s *SequenceSource) Duration() float64 { return float64(len(s.paths)) / s.fps }

// Seek implements pixelwork.FrameSource.
func (s *SequenceSource) Seek(ctx context.Context, ts float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// A small epsilon keeps k/fps on frame k despite rounding.
	i := int(math.Floor(ts*s.fps + 1e-9))
	if i < 0 || i >= len(s.paths) {
		return fmt.Errorf("%w: position %.3fs outside the sequence", pixelwork.ErrInvalid, ts)
	}
	s.pos = i
	return nil
}

// Capture implements pixelwork.FrameSource.
func (s *SequenceSource) Capture(ctx context.Context) (*pixelwork.PixelBuffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := pixelwork.DecodeFile(s.paths[s.pos])
	if err != nil {
		return nil, err
	}
	if b.Width != s.width || b.Height != s.height {
		return nil, fmt.Errorf("%w: %s is %dx%d, expected %dx%d",
			pixelwork.ErrDecode, s.paths[s.pos], b.Width, b.Height, s.width, s.height)
	}
	return b, nil
}
