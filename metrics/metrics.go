// Package metrics exposes Prometheus collectors for the pixelwork pipelines.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesExtractedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pixelwork_frames_extracted_total",
		Help: "Total number of frames captured from sources",
	})

	FramesMattedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pixelwork_frames_matted_total",
		Help: "Total number of frames run through the chroma key",
	})

	FramesStrokedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pixelwork_frames_stroked_total",
		Help: "Total number of rasters that received an inward stroke",
	})

	DuplicateGroupsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pixelwork_duplicate_groups_total",
		Help: "Total number of duplicate frame groups detected",
	})

	SheetsComposedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pixelwork_sheets_composed_total",
		Help: "Total number of sprite sheets composed",
	})

	GIFFramesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pixelwork_gif_frames_total",
		Help: "Total number of GIF frames, by direction",
	}, []string{"direction"})

	StageFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pixelwork_stage_failures_total",
		Help: "Total number of failed pipeline stages",
	}, []string{"stage"})

	StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pixelwork_stage_duration_seconds",
		Help:    "Duration of pipeline stages",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
	}, []string{"stage"})
)

// ObserveStage records the time elapsed since start for stage and counts a
// failure when err is not nil.
func ObserveStage(stage string, start time.Time, err error) {
	StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	if err != nil {
		StageFailuresTotal.WithLabelValues(stage).Inc()
	}
}
