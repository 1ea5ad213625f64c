package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_ObserveStageCountsFailures(t *testing.T) {
	assert := assert.New(t)

	before := testutil.ToFloat64(StageFailuresTotal.WithLabelValues("unit"))
	ObserveStage("unit", time.Now(), nil)
	ObserveStage("unit", time.Now(), errors.New("boom"))
	after := testutil.ToFloat64(StageFailuresTotal.WithLabelValues("unit"))

	assert.Equal(before+1, after)
}

func TestMetrics_HandlerExposesCollectors(t *testing.T) {
	assert := assert.New(t)

	FramesExtractedTotal.Add(3)
	rec := httptest.NewRecorder()
	promhttp.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(200, rec.Code)
	assert.True(strings.Contains(rec.Body.String(), "pixelwork_frames_extracted_total"))
}
