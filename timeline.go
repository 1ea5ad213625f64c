package pixelwork

import (
	"fmt"
	"math"
)

// Timestamps lists capture times from start, one every 1/fps seconds, while
// t < end and fewer than maxFrames have been produced.
func Timestamps(start, end, fps float64, maxFrames int) ([]float64, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("%w: fps must be positive, got %v", ErrInvalid, fps)
	}
	if maxFrames <= 0 || end <= start {
		return nil, nil
	}
	out := make([]float64, 0, min(maxFrames, int(math.Ceil((end-start)*fps))))
	// Computed from the index to avoid the drift of repeated addition.
	for k := 0; len(out) < maxFrames; k++ {
		t := start + float64(k)/fps
		if t >= end {
			break
		}
		out = append(out, t)
	}
	return out, nil
}

// ClampRange restricts [start, end) to the source duration. A non-positive end
// selects the whole remaining duration.
func ClampRange(start, end, duration float64) (float64, float64) {
	start = math.Max(0, start)
	if end <= 0 || end > duration {
		end = duration
	}
	if start > end {
		start = end
	}
	return start, end
}
