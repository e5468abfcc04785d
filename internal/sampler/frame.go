// Package sampler implements the rolling-window samplers fed by the host
// render, scroll and layout callbacks. Each sampler keeps a fixed-capacity
// ring buffer plus running aggregates adjusted on insert and overwrite, so
// every record call is O(1).
package sampler

import (
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"goflare.io/pulse/internal/config"
	"goflare.io/pulse/internal/ring"
	"goflare.io/pulse/internal/utils"
	"goflare.io/pulse/models"
)

// FrameSampler records per-frame render durations and classifies drops
// against the configured frame budget.
type FrameSampler struct {
	budgetMs   float64
	multiplier float64

	window  *ring.Buffer[models.FrameSample]
	dropped int
	sumMs   float64

	diag   *models.Diagnostics
	logger *zap.Logger
}

// NewFrameSampler creates a FrameSampler from the monitor configuration.
func NewFrameSampler(cfg *config.Config, diag *models.Diagnostics, logger *zap.Logger) *FrameSampler {
	return &FrameSampler{
		budgetMs:   cfg.TargetFrameBudgetMs,
		multiplier: cfg.DropThresholdMultiplier,
		window:     ring.New[models.FrameSample](cfg.WindowSize),
		diag:       diag,
		logger:     logger,
	}
}

// Record appends one frame sample. Non-finite or negative durations are
// clamped to 0, counted as invalid, and still recorded.
func (s *FrameSampler) Record(durationMs float64, velocity float64, hasVelocity bool) models.FrameResult {
	durationMs, invalid := utils.Sanitize(durationMs)
	if invalid {
		s.diag.InvalidSamples.Inc()
		s.logger.Debug("invalid frame duration clamped to 0")
	}
	if hasVelocity {
		velocity, invalid = utils.Sanitize(velocity)
		if invalid {
			s.diag.InvalidSamples.Inc()
		}
	}

	sample := models.FrameSample{
		DurationMs:  durationMs,
		Velocity:    velocity,
		HasVelocity: hasVelocity,
		Dropped:     durationMs > s.budgetMs*s.multiplier,
	}

	evicted, overwrote := s.window.Push(sample)
	if overwrote {
		s.sumMs -= evicted.DurationMs
		if evicted.Dropped {
			s.dropped--
		}
	}
	s.sumMs += sample.DurationMs
	if sample.Dropped {
		s.dropped++
	}

	return models.FrameResult{
		Dropped:  sample.Dropped,
		DropRate: s.DropRate(),
	}
}

// DropRate returns the percentage of dropped frames in the current window.
func (s *FrameSampler) DropRate() float64 {
	n := s.window.Len()
	if n == 0 {
		return 0
	}
	return utils.Clamp(float64(s.dropped)/float64(n)*100, 0, 100)
}

// Stats computes the frame timing distribution over the current window.
// Percentiles are computed on demand; the record path stays O(1).
func (s *FrameSampler) Stats() models.FrameDropDetection {
	n := s.window.Len()
	if n == 0 {
		return models.FrameDropDetection{}
	}

	durations := make([]float64, 0, n)
	s.window.Do(func(sm models.FrameSample) {
		durations = append(durations, sm.DurationMs)
	})
	sort.Float64s(durations)

	return models.FrameDropDetection{
		FrameDropRate:  s.DropRate(),
		AvgFrameTimeMs: s.sumMs / float64(n),
		P50FrameTimeMs: stat.Quantile(0.50, stat.Empirical, durations, nil),
		P95FrameTimeMs: stat.Quantile(0.95, stat.Empirical, durations, nil),
		P99FrameTimeMs: stat.Quantile(0.99, stat.Empirical, durations, nil),
	}
}

// Reset drops all samples. Used on disposal.
func (s *FrameSampler) Reset() {
	s.window.Reset()
	s.dropped = 0
	s.sumMs = 0
}
