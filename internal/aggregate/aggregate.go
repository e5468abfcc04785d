// Package aggregate composes the samplers, ledger and pressure estimator
// into one consistent snapshot for the embedding renderer.
package aggregate

import (
	"goflare.io/pulse/internal/config"
	"goflare.io/pulse/internal/ledger"
	"goflare.io/pulse/internal/pressure"
	"goflare.io/pulse/internal/sampler"
	"goflare.io/pulse/internal/utils"
	"goflare.io/pulse/models"
)

// Aggregator assembles MetricsSnapshots. It holds no state of its own;
// every snapshot is rebuilt from the live components, never cached.
type Aggregator struct {
	frames    *sampler.FrameSampler
	scroll    *sampler.ScrollTracker
	sizing    *sampler.SizingTracker
	ledger    *ledger.Ledger
	estimator *pressure.Estimator

	budgetBytes  uint64
	churnPenalty float64
	windowSize   int
	diag         *models.Diagnostics
}

// New creates an Aggregator over the monitor's components.
func New(
	cfg *config.Config,
	frames *sampler.FrameSampler,
	scroll *sampler.ScrollTracker,
	sizing *sampler.SizingTracker,
	l *ledger.Ledger,
	estimator *pressure.Estimator,
	diag *models.Diagnostics,
) *Aggregator {
	return &Aggregator{
		frames:       frames,
		scroll:       scroll,
		sizing:       sizing,
		ledger:       l,
		estimator:    estimator,
		budgetBytes:  cfg.MemoryBudgetBytes,
		churnPenalty: cfg.DynamicChurnPenalty,
		windowSize:   cfg.WindowSize,
		diag:         diag,
	}
}

// Snapshot builds a fully-populated snapshot from current component state.
// With no samples recorded every rate is 0 and every accuracy-style field
// is 100, so the host's decision logic defaults to "no action needed".
func (a *Aggregator) Snapshot() models.MetricsSnapshot {
	sizingStats := a.sizing.Stats()
	cacheStats := a.ledger.Stats()
	p := a.estimator.Pressure()

	return models.MetricsSnapshot{
		FrameDropDetection:  a.frames.Stats(),
		SmoothScrollMetrics: a.scroll.Stats(),
		AutoSizingMetrics:   sizingStats,
		MemoryUsage: models.MemoryUsage{
			EstimatedBytes: a.ledger.EstimatedBytes(),
			BudgetBytes:    a.budgetBytes,
			PressureLevel:  p.Level,
			EntryCount:     a.ledger.Len(),
		},
		CacheStats:            cacheStats,
		AutoSizingEfficiency:  a.efficiency(sizingStats),
		DynamicSizingAccuracy: a.sizing.DynamicAccuracy(),
		InvalidSamples:        a.diag.InvalidSamples.Load(),
	}
}

// efficiency discounts the raw sizing accuracy by dynamic resize churn:
// frequent content-driven resizes cost layout work even when each
// individual prediction lands inside tolerance.
func (a *Aggregator) efficiency(stats models.AutoSizingMetrics) float64 {
	n := a.sizing.SampleCount()
	if n == 0 {
		return 100
	}
	churn := float64(stats.DynamicResizeEvents) / float64(n)
	return utils.Clamp(stats.SizingAccuracy*(1-a.churnPenalty*churn), 0, 100)
}
