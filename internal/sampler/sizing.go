package sampler

import (
	"math"

	"go.uber.org/zap"

	"goflare.io/pulse/internal/config"
	"goflare.io/pulse/internal/ring"
	"goflare.io/pulse/internal/utils"
	"goflare.io/pulse/models"
)

// epsilon guards the error-ratio denominator when actual is 0.
const epsilon = 1e-4

// SizingTracker records predicted-vs-actual item sizes and maintains
// rolling accuracy for all samples and for the dynamic subset separately,
// so the host can judge content-driven sizing on its own.
type SizingTracker struct {
	tolerance float64

	window *ring.Buffer[models.SizingSample]

	errSum    float64
	errors    int
	dynCount  int
	dynErrSum float64
	latSum    float64

	diag   *models.Diagnostics
	logger *zap.Logger
}

// NewSizingTracker creates a SizingTracker from the monitor configuration.
func NewSizingTracker(cfg *config.Config, diag *models.Diagnostics, logger *zap.Logger) *SizingTracker {
	return &SizingTracker{
		tolerance: cfg.SizingErrorTolerance,
		window:    ring.New[models.SizingSample](cfg.WindowSize),
		diag:      diag,
		logger:    logger,
	}
}

// Record appends one sizing sample. Inputs are sanitized the same way as
// frame and scroll samples.
func (s *SizingTracker) Record(predicted, actual float64, dynamic bool, latencyMs float64) {
	var invalid bool
	for _, v := range []*float64{&predicted, &actual, &latencyMs} {
		var bad bool
		*v, bad = utils.Sanitize(*v)
		invalid = invalid || bad
	}
	if invalid {
		s.diag.InvalidSamples.Inc()
		s.logger.Debug("invalid sizing sample clamped")
	}

	sample := models.SizingSample{
		Predicted:  predicted,
		Actual:     actual,
		ErrorRatio: math.Abs(actual-predicted) / math.Max(actual, epsilon),
		Dynamic:    dynamic,
		LatencyMs:  latencyMs,
	}

	evicted, overwrote := s.window.Push(sample)
	if overwrote {
		s.errSum -= evicted.ErrorRatio
		s.latSum -= evicted.LatencyMs
		if evicted.ErrorRatio > s.tolerance {
			s.errors--
		}
		if evicted.Dynamic {
			s.dynCount--
			s.dynErrSum -= evicted.ErrorRatio
		}
	}
	s.errSum += sample.ErrorRatio
	s.latSum += sample.LatencyMs
	if sample.ErrorRatio > s.tolerance {
		s.errors++
	}
	if sample.Dynamic {
		s.dynCount++
		s.dynErrSum += sample.ErrorRatio
	}
}

// Stats returns the rolling sizing statistics. An empty window reports
// the neutral accuracy of 100.
func (s *SizingTracker) Stats() models.AutoSizingMetrics {
	n := s.window.Len()
	if n == 0 {
		return models.AutoSizingMetrics{SizingAccuracy: 100}
	}
	return models.AutoSizingMetrics{
		SizingAccuracy:      accuracy(s.errSum, n),
		SizingErrors:        s.errors,
		DynamicResizeEvents: s.dynCount,
		AverageSizingTimeMs: s.latSum / float64(n),
	}
}

// DynamicAccuracy returns the accuracy over dynamic samples only. With no
// dynamic samples in the window it reports the neutral 100 rather than
// flagging adaptive sizing as untrustworthy.
func (s *SizingTracker) DynamicAccuracy() float64 {
	if s.dynCount == 0 {
		return 100
	}
	return accuracy(s.dynErrSum, s.dynCount)
}

// SampleCount returns the number of live samples in the window.
func (s *SizingTracker) SampleCount() int {
	return s.window.Len()
}

// Reset drops all samples. Used on disposal.
func (s *SizingTracker) Reset() {
	s.window.Reset()
	s.errSum = 0
	s.errors = 0
	s.dynCount = 0
	s.dynErrSum = 0
	s.latSum = 0
}

func accuracy(errSum float64, n int) float64 {
	return utils.Clamp(100*(1-errSum/float64(n)), 0, 100)
}
