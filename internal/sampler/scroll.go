package sampler

import (
	"go.uber.org/zap"

	"goflare.io/pulse/internal/config"
	"goflare.io/pulse/internal/ring"
	"goflare.io/pulse/internal/utils"
	"goflare.io/pulse/models"
)

// ScrollTracker records scroll velocities and classifies smoothness
// against the configured velocity threshold.
type ScrollTracker struct {
	threshold float64

	window *ring.Buffer[models.ScrollSample]
	smooth int
	sumVel float64

	diag   *models.Diagnostics
	logger *zap.Logger
}

// NewScrollTracker creates a ScrollTracker from the monitor configuration.
func NewScrollTracker(cfg *config.Config, diag *models.Diagnostics, logger *zap.Logger) *ScrollTracker {
	return &ScrollTracker{
		threshold: cfg.SmoothnessVelocityThreshold,
		window:    ring.New[models.ScrollSample](cfg.WindowSize),
		diag:      diag,
		logger:    logger,
	}
}

// Record appends one scroll sample. Non-finite or negative velocities are
// treated as 0, which classifies as smooth, and counted as invalid.
func (s *ScrollTracker) Record(velocity float64) models.ScrollResult {
	velocity, invalid := utils.Sanitize(velocity)
	if invalid {
		s.diag.InvalidSamples.Inc()
		s.logger.Debug("invalid scroll velocity clamped to 0")
	}

	sample := models.ScrollSample{
		Velocity: velocity,
		Smooth:   velocity < s.threshold,
	}

	evicted, overwrote := s.window.Push(sample)
	if overwrote {
		s.sumVel -= evicted.Velocity
		if evicted.Smooth {
			s.smooth--
		}
	}
	s.sumVel += sample.Velocity
	if sample.Smooth {
		s.smooth++
	}

	return models.ScrollResult{
		Smooth:           sample.Smooth,
		SmoothPercentage: s.SmoothPercentage(),
	}
}

// SmoothPercentage returns the share of smooth samples in the window.
func (s *ScrollTracker) SmoothPercentage() float64 {
	n := s.window.Len()
	if n == 0 {
		return 0
	}
	return utils.Clamp(float64(s.smooth)/float64(n)*100, 0, 100)
}

// Stats returns the rolling scroll statistics.
func (s *ScrollTracker) Stats() models.SmoothScrollMetrics {
	n := s.window.Len()
	if n == 0 {
		return models.SmoothScrollMetrics{}
	}
	return models.SmoothScrollMetrics{
		SmoothScrollPercentage: s.SmoothPercentage(),
		AvgVelocity:            s.sumVel / float64(n),
	}
}

// Reset drops all samples. Used on disposal.
func (s *ScrollTracker) Reset() {
	s.window.Reset()
	s.smooth = 0
	s.sumVel = 0
}
