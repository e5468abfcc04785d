// Package pressure derives a 0-100 memory pressure score from the ledger's
// tracked footprint and runs the cleanup protocol against it.
package pressure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"goflare.io/pulse/internal/config"
	"goflare.io/pulse/internal/ledger"
	"goflare.io/pulse/internal/utils"
	"goflare.io/pulse/models"
)

// Strategy names a cleanup aggressiveness tier.
type Strategy string

const (
	StrategyLight      Strategy = "light"
	StrategyModerate   Strategy = "moderate"
	StrategyAggressive Strategy = "aggressive"
)

// Estimator decides whether the tracked footprint warrants cleanup and is
// the only component that mutates the ledger. Cleanup is exclusive: a
// request arriving while one is in flight is rejected with a zero result,
// never queued.
type Estimator struct {
	ledger      *ledger.Ledger
	budgetBytes uint64
	threshold   float64
	fractions   config.CleanupFractions

	inFlight *atomic.Bool
	tracer   trace.Tracer
	logger   *zap.Logger
}

// NewEstimator creates an Estimator over the given ledger.
func NewEstimator(cfg *config.Config, l *ledger.Ledger, logger *zap.Logger) *Estimator {
	return &Estimator{
		ledger:      l,
		budgetBytes: cfg.MemoryBudgetBytes,
		threshold:   cfg.CleanupPressureThreshold,
		fractions:   cfg.CleanupFractions,
		inFlight:    atomic.NewBool(false),
		tracer:      otel.Tracer("pulse"),
		logger:      logger,
	}
}

// Pressure returns the current pressure score and cleanup recommendation.
func (e *Estimator) Pressure() models.Pressure {
	level := utils.Clamp(float64(e.ledger.EstimatedBytes())/float64(e.budgetBytes)*100, 0, 100)
	return models.Pressure{
		Level:         level,
		ShouldCleanup: level >= e.threshold,
	}
}

// Cleanup evicts least-recently-used ledger entries until the strategy's
// share of the tracked footprint is freed. A pass that finds another pass
// in flight, or an unknown strategy, returns a zero result and evicts
// nothing. Cleanup never fails: an empty ledger simply frees zero bytes.
func (e *Estimator) Cleanup(ctx context.Context, strategy Strategy) models.CleanupResult {
	fraction, ok := e.fraction(strategy)
	if !ok {
		e.logger.Warn("unknown cleanup strategy", zap.String("strategy", string(strategy)))
		return models.CleanupResult{}
	}

	if !e.inFlight.CompareAndSwap(false, true) {
		return models.CleanupResult{}
	}
	defer e.inFlight.Store(false)

	_, span := e.tracer.Start(ctx, "pulse.cleanup",
		trace.WithAttributes(attribute.String("strategy", string(strategy))))
	defer span.End()

	start := time.Now()
	target := uint64(float64(e.ledger.EstimatedBytes()) * fraction)
	freed := e.ledger.EvictOldest(target)
	elapsed := time.Since(start)

	span.SetAttributes(
		attribute.Int64("freed_bytes", int64(freed)),
		attribute.Int64("target_bytes", int64(target)),
	)
	e.logger.Debug("cleanup pass finished",
		zap.String("strategy", string(strategy)),
		zap.Uint64("freed_bytes", freed),
		zap.Duration("elapsed", elapsed))

	return models.CleanupResult{
		FreedBytes: freed,
		Elapsed:    elapsed,
	}
}

// InFlight reports whether a cleanup pass is currently running.
func (e *Estimator) InFlight() bool {
	return e.inFlight.Load()
}

func (e *Estimator) fraction(strategy Strategy) (float64, bool) {
	switch strategy {
	case StrategyLight:
		return e.fractions.Light, true
	case StrategyModerate:
		return e.fractions.Moderate, true
	case StrategyAggressive:
		return e.fractions.Aggressive, true
	default:
		return 0, false
	}
}
