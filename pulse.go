// Package pulse is an in-process performance monitor for virtualized-list
// rendering. A Monitor observes per-frame render timing, scroll velocity,
// item-size prediction accuracy and the memory pressure of the host's item
// cache, and exposes aggregate metrics the embedding renderer can act on.
//
// One Monitor serves one list. Construct it with its own configuration and
// dispose it explicitly; there is no shared global instance.
package pulse

import (
	"context"
	"fmt"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"goflare.io/pulse/internal/aggregate"
	"goflare.io/pulse/internal/config"
	"goflare.io/pulse/internal/ledger"
	"goflare.io/pulse/internal/pressure"
	"goflare.io/pulse/internal/sampler"
	"goflare.io/pulse/models"
)

// Strategy names a cleanup aggressiveness tier.
type Strategy = pressure.Strategy

const (
	StrategyLight      = pressure.StrategyLight
	StrategyModerate   = pressure.StrategyModerate
	StrategyAggressive = pressure.StrategyAggressive
)

// State is the monitor-wide lifecycle state.
type State int32

const (
	StateIdle State = iota
	StateSampling
	StateCleanupInFlight
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSampling:
		return "sampling"
	case StateCleanupInFlight:
		return "cleanup_in_flight"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// Option configures a Monitor at construction time.
type Option = config.Option

// WithLogger sets a custom logger.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *config.Config) error {
		if logger != nil {
			cfg.Logger = logger
		}
		return nil
	}
}

// WithWindowSize sets the rolling-window capacity shared by all samplers.
func WithWindowSize(size int) Option {
	return func(cfg *config.Config) error {
		cfg.WindowSize = size
		return nil
	}
}

// WithFrameBudget sets the target render duration per frame in
// milliseconds (16.67 for 60Hz).
func WithFrameBudget(budgetMs float64) Option {
	return func(cfg *config.Config) error {
		if budgetMs <= 0 {
			return fmt.Errorf("frame budget must be greater than 0, got %v", budgetMs)
		}
		cfg.TargetFrameBudgetMs = budgetMs
		return nil
	}
}

// WithDropThresholdMultiplier scales the frame budget before drop
// classification.
func WithDropThresholdMultiplier(multiplier float64) Option {
	return func(cfg *config.Config) error {
		if multiplier <= 0 {
			return fmt.Errorf("drop threshold multiplier must be greater than 0, got %v", multiplier)
		}
		cfg.DropThresholdMultiplier = multiplier
		return nil
	}
}

// WithSmoothnessThreshold sets the scroll velocity below which motion is
// classified smooth.
func WithSmoothnessThreshold(velocity float64) Option {
	return func(cfg *config.Config) error {
		if velocity <= 0 {
			return fmt.Errorf("smoothness threshold must be greater than 0, got %v", velocity)
		}
		cfg.SmoothnessVelocityThreshold = velocity
		return nil
	}
}

// WithCleanupPressureThreshold sets the pressure level at or above which
// cleanup is recommended.
func WithCleanupPressureThreshold(threshold float64) Option {
	return func(cfg *config.Config) error {
		cfg.CleanupPressureThreshold = threshold
		return nil
	}
}

// WithSizingErrorTolerance sets the relative error above which a size
// prediction counts as a sizing error.
func WithSizingErrorTolerance(tolerance float64) Option {
	return func(cfg *config.Config) error {
		cfg.SizingErrorTolerance = tolerance
		return nil
	}
}

// WithCleanupFractions sets the footprint share each cleanup strategy
// targets.
func WithCleanupFractions(light, moderate, aggressive float64) Option {
	return func(cfg *config.Config) error {
		cfg.CleanupFractions = config.CleanupFractions{
			Light:      light,
			Moderate:   moderate,
			Aggressive: aggressive,
		}
		return nil
	}
}

// WithDynamicChurnPenalty sets the weight of dynamic-resize churn in the
// auto-sizing efficiency score.
func WithDynamicChurnPenalty(penalty float64) Option {
	return func(cfg *config.Config) error {
		if penalty < 0 || penalty > 1 {
			return fmt.Errorf("churn penalty must be in [0, 1], got %v", penalty)
		}
		cfg.DynamicChurnPenalty = penalty
		return nil
	}
}

// WithMaxTrackedEntries bounds how many cache keys the ledger tracks.
func WithMaxTrackedEntries(entries int) Option {
	return func(cfg *config.Config) error {
		cfg.MaxTrackedEntries = entries
		return nil
	}
}

// WithYAMLFile overlays settings from a YAML file. Later options still
// override what the file set.
func WithYAMLFile(path string) Option {
	return func(cfg *config.Config) error {
		return config.ApplyYAMLFile(cfg, path)
	}
}

// Monitor is one list's performance monitor. It is single-threaded by
// design: the host render/scroll/layout loop drives all Record calls from
// one logical sequence (see Relay for multi-producer hosts).
type Monitor struct {
	cfg *config.Config

	frames    *sampler.FrameSampler
	scroll    *sampler.ScrollTracker
	sizing    *sampler.SizingTracker
	ledger    *ledger.Ledger
	estimator *pressure.Estimator
	agg       *aggregate.Aggregator

	diag     *models.Diagnostics
	sampled  *atomic.Bool
	disposed *atomic.Bool
	logger   *zap.Logger
}

// New creates a Monitor. The memory budget has no universal default and
// must be supplied; everything else is optional.
func New(memoryBudgetBytes uint64, opts ...Option) (*Monitor, error) {
	cfg, err := config.NewConfig(memoryBudgetBytes, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create config: %w", err)
	}

	diag := models.NewDiagnostics()
	l, err := ledger.New(cfg, cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger: %w", err)
	}

	frames := sampler.NewFrameSampler(cfg, diag, cfg.Logger)
	scroll := sampler.NewScrollTracker(cfg, diag, cfg.Logger)
	sizing := sampler.NewSizingTracker(cfg, diag, cfg.Logger)
	estimator := pressure.NewEstimator(cfg, l, cfg.Logger)

	return &Monitor{
		cfg:       cfg,
		frames:    frames,
		scroll:    scroll,
		sizing:    sizing,
		ledger:    l,
		estimator: estimator,
		agg:       aggregate.New(cfg, frames, scroll, sizing, l, estimator, diag),
		diag:      diag,
		sampled:   atomic.NewBool(false),
		disposed:  atomic.NewBool(false),
		logger:    cfg.Logger,
	}, nil
}

// RecordFrame records one render frame. The optional trailing argument is
// the scroll velocity during the frame.
func (m *Monitor) RecordFrame(durationMs float64, velocity ...float64) models.FrameResult {
	if m.disposed.Load() {
		return models.FrameResult{}
	}
	m.sampled.Store(true)

	var v float64
	hasVelocity := len(velocity) > 0
	if hasVelocity {
		v = velocity[0]
	}
	return m.frames.Record(durationMs, v, hasVelocity)
}

// RecordScrollEvent records one scroll sample.
func (m *Monitor) RecordScrollEvent(velocity float64) models.ScrollResult {
	if m.disposed.Load() {
		return models.ScrollResult{}
	}
	m.sampled.Store(true)
	return m.scroll.Record(velocity)
}

// RecordSizing records one predicted-vs-actual item size measurement.
func (m *Monitor) RecordSizing(predicted, actual float64, isDynamic bool, latencyMs float64) {
	if m.disposed.Load() {
		return
	}
	m.sampled.Store(true)
	m.sizing.Record(predicted, actual, isDynamic, latencyMs)
}

// RecordAccess records one host cache access.
func (m *Monitor) RecordAccess(key string, sizeBytes uint64, hit bool) {
	if m.disposed.Load() {
		return
	}
	m.sampled.Store(true)
	m.ledger.RecordAccess(key, sizeBytes, hit)
}

// GetMetrics assembles a fresh, fully-populated snapshot.
func (m *Monitor) GetMetrics() models.MetricsSnapshot {
	if m.disposed.Load() {
		return neutralSnapshot(m.cfg.MemoryBudgetBytes)
	}
	return m.agg.Snapshot()
}

// GetMemoryPressure returns the current pressure score and cleanup
// recommendation.
func (m *Monitor) GetMemoryPressure() models.Pressure {
	if m.disposed.Load() {
		return models.Pressure{}
	}
	return m.estimator.Pressure()
}

// GetCacheStats returns cumulative cache effectiveness statistics.
func (m *Monitor) GetCacheStats() models.CacheStats {
	if m.disposed.Load() {
		return models.CacheStats{}
	}
	return m.ledger.Stats()
}

// PerformCleanup runs one cleanup pass against the ledger. A pass that
// finds another in flight is rejected with a zero result, never queued.
func (m *Monitor) PerformCleanup(ctx context.Context, strategy Strategy) models.CleanupResult {
	if m.disposed.Load() {
		return models.CleanupResult{}
	}
	return m.estimator.Cleanup(ctx, strategy)
}

// State returns the monitor's lifecycle state.
func (m *Monitor) State() State {
	switch {
	case m.disposed.Load():
		return StateDisposed
	case m.estimator.InFlight():
		return StateCleanupInFlight
	case m.sampled.Load():
		return StateSampling
	default:
		return StateIdle
	}
}

// Dispose clears all buffers and the ledger. Disposal is terminal and
// idempotent; every call after it is a no-op.
func (m *Monitor) Dispose() {
	if !m.disposed.CompareAndSwap(false, true) {
		return
	}
	m.frames.Reset()
	m.scroll.Reset()
	m.sizing.Reset()
	m.ledger.Purge()
	m.logger.Debug("monitor disposed")
}

// neutralSnapshot is what a disposed monitor reports: all rates zero,
// accuracy-style fields at their neutral 100.
func neutralSnapshot(budgetBytes uint64) models.MetricsSnapshot {
	return models.MetricsSnapshot{
		AutoSizingMetrics:     models.AutoSizingMetrics{SizingAccuracy: 100},
		MemoryUsage:           models.MemoryUsage{BudgetBytes: budgetBytes},
		AutoSizingEfficiency:  100,
		DynamicSizingAccuracy: 100,
	}
}
