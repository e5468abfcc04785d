package pressure

import (
	"context"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"goflare.io/pulse/internal/config"
	"goflare.io/pulse/internal/ledger"
)

func newEstimator(t *testing.T, budgetBytes uint64) (*Estimator, *ledger.Ledger) {
	t.Helper()
	cfg, err := config.NewConfig(budgetBytes, func(c *config.Config) error {
		c.Logger = zap.NewNop()
		return nil
	})
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	l, err := ledger.New(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	return NewEstimator(cfg, l, zap.NewNop()), l
}

func fill(l *ledger.Ledger, entries int, sizeBytes uint64) {
	for i := 0; i < entries; i++ {
		l.RecordAccess(fmt.Sprintf("k%d", i), sizeBytes, false)
	}
}

func TestEstimator_PressureLevel(t *testing.T) {
	e, l := newEstimator(t, 1000)

	if got := e.Pressure().Level; got != 0 {
		t.Errorf("expected 0 pressure on empty ledger, got %v", got)
	}

	fill(l, 5, 100) // 500 of 1000
	p := e.Pressure()
	if p.Level != 50 {
		t.Errorf("expected pressure 50, got %v", p.Level)
	}
	if p.ShouldCleanup {
		t.Error("pressure 50 is below threshold 70, should not request cleanup")
	}
}

func TestEstimator_PressureClampedAt100(t *testing.T) {
	e, l := newEstimator(t, 1000)

	fill(l, 20, 100) // 2000 of 1000
	if got := e.Pressure().Level; got != 100 {
		t.Errorf("expected pressure clamped to 100, got %v", got)
	}
}

func TestEstimator_ShouldCleanupAtThreshold(t *testing.T) {
	e, l := newEstimator(t, 1000)

	fill(l, 7, 100) // exactly 70%
	if !e.Pressure().ShouldCleanup {
		t.Error("pressure at threshold should request cleanup")
	}
}

func TestEstimator_CleanupFreesStrategyFraction(t *testing.T) {
	e, l := newEstimator(t, 1000)
	fill(l, 10, 100)

	res := e.Cleanup(context.Background(), StrategyModerate)
	// 30% of 1000 bytes; entries are 100 bytes each.
	if res.FreedBytes != 300 {
		t.Errorf("expected 300 bytes freed, got %d", res.FreedBytes)
	}
	if l.EstimatedBytes() != 700 {
		t.Errorf("expected 700 bytes remaining, got %d", l.EstimatedBytes())
	}
}

func TestEstimator_CleanupLowersPressure(t *testing.T) {
	e, l := newEstimator(t, 1000)
	fill(l, 8, 100)

	before := e.Pressure()
	if !before.ShouldCleanup {
		t.Fatal("expected cleanup requested at 80% pressure")
	}

	res := e.Cleanup(context.Background(), StrategyModerate)
	if res.FreedBytes == 0 {
		t.Fatal("expected a non-empty cleanup")
	}
	if after := e.Pressure(); after.Level >= before.Level {
		t.Errorf("pressure should strictly decrease: %v -> %v", before.Level, after.Level)
	}
}

func TestEstimator_CleanupEmptyLedger(t *testing.T) {
	e, _ := newEstimator(t, 1000)

	res := e.Cleanup(context.Background(), StrategyAggressive)
	if res.FreedBytes != 0 {
		t.Errorf("expected 0 bytes freed from empty ledger, got %d", res.FreedBytes)
	}
}

func TestEstimator_CleanupRejectedWhileInFlight(t *testing.T) {
	e, l := newEstimator(t, 1000)
	fill(l, 10, 100)

	e.inFlight.Store(true)
	res := e.Cleanup(context.Background(), StrategyModerate)
	if res.FreedBytes != 0 || res.Elapsed != 0 {
		t.Errorf("in-flight cleanup must be rejected with a zero result, got %+v", res)
	}
	if l.EstimatedBytes() != 1000 {
		t.Error("rejected cleanup must not evict anything")
	}

	// The flag belongs to the rejected-away pass; it stays set.
	if !e.InFlight() {
		t.Error("rejection must not clear the in-flight flag")
	}
}

func TestEstimator_CleanupClearsInFlight(t *testing.T) {
	e, l := newEstimator(t, 1000)
	fill(l, 4, 100)

	e.Cleanup(context.Background(), StrategyLight)
	if e.InFlight() {
		t.Error("in-flight flag must be cleared after cleanup returns")
	}

	// A subsequent pass runs normally.
	if res := e.Cleanup(context.Background(), StrategyAggressive); res.FreedBytes == 0 {
		t.Error("expected the follow-up cleanup to evict")
	}
}

func TestEstimator_UnknownStrategy(t *testing.T) {
	e, l := newEstimator(t, 1000)
	fill(l, 10, 100)

	res := e.Cleanup(context.Background(), Strategy("frantic"))
	if res.FreedBytes != 0 {
		t.Errorf("unknown strategy must evict nothing, got %d", res.FreedBytes)
	}
	if l.EstimatedBytes() != 1000 {
		t.Error("unknown strategy must leave the ledger untouched")
	}
}

func TestEstimator_StrategyOrdering(t *testing.T) {
	strategies := []Strategy{StrategyLight, StrategyModerate, StrategyAggressive}
	var freed []uint64

	for _, s := range strategies {
		e, l := newEstimator(t, 1000)
		fill(l, 10, 100)
		freed = append(freed, e.Cleanup(context.Background(), s).FreedBytes)
	}

	if !(freed[0] < freed[1] && freed[1] < freed[2]) {
		t.Errorf("expected strictly increasing reclamation per tier, got %v", freed)
	}
}
