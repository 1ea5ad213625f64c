package pixelwork

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// DefaultSeekTimeout bounds a single seek-and-capture cycle.
const DefaultSeekTimeout = 10 * time.Second

// FrameSource is a single decode session over a video or still image.
// Implementations are not required to support concurrent seeks.
type FrameSource interface {
	// Size returns the dimensions of the active video image.
	Size() (width, height int)
	// Duration returns the source length in seconds.
	Duration() float64
	// Seek positions the session at ts seconds.
	Seek(ctx context.Context, ts float64) error
	// Capture returns the image at the current position.
	Capture(ctx context.Context) (*PixelBuffer, error)
}

// Extractor captures frames from a FrameSource. Capture cycles are strictly
// serialized: one seek-wait-capture completes before the next one starts.
type Extractor struct {
	Source      FrameSource
	Crop        CropRegion
	SeekTimeout time.Duration
	// Progress is called after every captured frame.
	Progress func(done, total int)

	mu sync.Mutex
}

// NewExtractor binds an extractor to src.
func NewExtractor(src FrameSource) *Extractor {
	return &Extractor{Source: src, SeekTimeout: DefaultSeekTimeout}
}

// Extract captures one frame per timestamp. It is fail-fast and atomic: on the
// first failure every frame captured so far is dropped and an error wrapping
// ErrCapture is returned.
func (e *Extractor) Extract(ctx context.Context, timestamps []float64) ([]Frame, error) {
	if len(timestamps) == 0 {
		return nil, fmt.Errorf("%w: no timestamps to capture", ErrEmpty)
	}
	if !e.Crop.IsZero() {
		w, h := e.Source.Size()
		if err := e.Crop.Check(w, h); err != nil {
			return nil, err
		}
	}

	frames := make([]Frame, 0, len(timestamps))
	for i, ts := range timestamps {
		buf, err := e.CaptureAt(ctx, ts)
		if err != nil {
			Release(frames)
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		frames = append(frames, Frame{Buffer: buf, Timestamp: ts, Selected: true})
		if e.Progress != nil {
			e.Progress(i+1, len(timestamps))
		}
	}
	return frames, nil
}

// CaptureAt runs one seek-wait-capture cycle at ts and applies the crop.
func (e *Extractor) CaptureAt(ctx context.Context, ts float64) (*PixelBuffer, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	timeout := e.SeekTimeout
	if timeout <= 0 {
		timeout = DefaultSeekTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := e.Source.Seek(cctx, ts); err != nil {
		return nil, fmt.Errorf("%w: seek to %.3fs: %v", ErrCapture, ts, err)
	}
	buf, err := e.Source.Capture(cctx)
	if err != nil {
		return nil, fmt.Errorf("%w: capture at %.3fs: %v", ErrCapture, ts, err)
	}
	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("%w: capture at %.3fs: %v", ErrCapture, ts, err)
	}
	if err := cctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: capture at %.3fs: %v", ErrCapture, ts, err)
	}
	out, err := e.Crop.Apply(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCapture, err)
	}
	return out, nil
}
