// Package capture provides FrameSource implementations: an ffmpeg backed
// video source, a still image and an ordered image sequence.
package capture

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/pixelwork/pixelwork"
	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"
)

// probeResult holds the parts of the ffprobe report used here.
type probeResult struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		Duration  string `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// parseProbe extracts the first video stream size and the container duration.
func parseProbe(data []byte) (width, height int, duration float64, err error) {
	var probe probeResult
	if err := json.Unmarshal(data, &probe); err != nil {
		return 0, 0, 0, fmt.Errorf("json unmarshal error: %w", err)
	}
	found := false
	streamDuration := ""
	for _, s := range probe.Streams {
		if s.CodecType == "video" && s.Width > 0 && s.Height > 0 {
			width, height, streamDuration = s.Width, s.Height, s.Duration
			found = true
			break
		}
	}
	if !found {
		return 0, 0, 0, fmt.Errorf("no video stream found")
	}
	for _, d := range []string{probe.Format.Duration, streamDuration} {
		if d = strings.TrimSpace(d); d == "" || d == "N/A" {
			continue
		}
		if duration, err = strconv.ParseFloat(d, 64); err == nil && duration > 0 {
			return width, height, duration, nil
		}
	}
	return 0, 0, 0, fmt.Errorf("cannot determine duration")
}

// FFmpegSource captures single frames from a video file by running ffmpeg
// once per capture.
type FFmpegSource struct {
	Path   string
	Logger *zap.Logger

	width    int
	height   int
	duration float64

	mu  sync.Mutex
	pos float64
}

// OpenFFmpeg probes path and returns a source positioned at 0.
func OpenFFmpeg(path string, logger *zap.Logger) (*FFmpegSource, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return nil, fmt.Errorf("%w: ffprobe %s: %v", pixelwork.ErrDecode, path, err)
	}
	w, h, d, err := parseProbe([]byte(out))
	if err != nil {
		return nil, fmt.Errorf("%w: probe %s: %v", pixelwork.ErrDecode, path, err)
	}
	logger.Debug("video probed",
		zap.String("path", path),
		zap.Int("width", w),
		zap.Int("height", h),
		zap.Float64("duration", d),
	)
	return &FFmpegSource{Path: path, Logger: logger, width: w, height: h, duration: d}, nil
}

// Size implements pixelwork.FrameSource.
func (s *FFmpegSource) Size() (int, int) { return s.width, s.height }

// Duration implements pixelwork.FrameSource.
func (s *FFmpegSource) Duration() float64 { return s.duration }

// Seek implements pixelwork.FrameSource. The position is applied by the next
// Capture, which asks ffmpeg to seek before decoding.
func (s *FFmpegSource) Seek(ctx context.Context, ts float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ts < 0 || ts > s.duration {
		return fmt.Errorf("%w: position %.3fs outside [0, %.3f]", pixelwork.ErrInvalid, ts, s.duration)
	}
	s.mu.Lock()
	s.pos = ts
	s.mu.Unlock()
	return nil
}

// Capture implements pixelwork.FrameSource.
func (s *FFmpegSource) Capture(ctx context.Context) (*pixelwork.PixelBuffer, error) {
	s.mu.Lock()
	pos := s.pos
	s.mu.Unlock()

	var out, stderr bytes.Buffer
	cmd := ffmpeg.Input(s.Path, ffmpeg.KwArgs{"ss": strconv.FormatFloat(pos, 'f', 3, 64)}).
		Output("pipe:1", ffmpeg.KwArgs{
			"vframes": 1,
			"format":  "image2pipe",
			"vcodec":  "png",
		}).
		WithOutput(&out).
		WithErrorOutput(&stderr)
	cmd.Context = ctx

	if err := cmd.Run(); err != nil {
		s.Logger.Debug("ffmpeg failed", zap.Float64("position", pos), zap.String("stderr", stderr.String()))
		return nil, fmt.Errorf("ffmpeg at %.3fs: %w", pos, err)
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg at %.3fs produced no image", pos)
	}
	return pixelwork.Decode(&out)
}
