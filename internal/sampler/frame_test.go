package sampler

import (
	"math"
	"testing"

	"go.uber.org/zap"

	"goflare.io/pulse/internal/config"
	"goflare.io/pulse/models"
)

func newTestConfig(t *testing.T, windowSize int) *config.Config {
	t.Helper()
	cfg, err := config.NewConfig(1<<20, func(c *config.Config) error {
		c.WindowSize = windowSize
		c.Logger = zap.NewNop()
		return nil
	})
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	return cfg
}

func newFrameSampler(t *testing.T, windowSize int) (*FrameSampler, *models.Diagnostics) {
	t.Helper()
	diag := models.NewDiagnostics()
	return NewFrameSampler(newTestConfig(t, windowSize), diag, zap.NewNop()), diag
}

func TestFrameSampler_DropClassification(t *testing.T) {
	s, _ := newFrameSampler(t, 120)

	// 16.67ms budget, multiplier 1.0
	if res := s.Record(16.67, 0, false); res.Dropped {
		t.Error("frame at budget should not count as dropped")
	}
	if res := s.Record(16.68, 0, false); !res.Dropped {
		t.Error("frame over budget should count as dropped")
	}
	if res := s.Record(33.33, 0, false); !res.Dropped {
		t.Error("frame at double budget should count as dropped")
	}
}

func TestFrameSampler_NoDropsYieldZeroRate(t *testing.T) {
	s, _ := newFrameSampler(t, 120)

	var res models.FrameResult
	for i := 0; i < 100; i++ {
		res = s.Record(16.67, 0, false)
	}
	if res.DropRate != 0 {
		t.Errorf("expected 0%% drop rate, got %v", res.DropRate)
	}
}

func TestFrameSampler_HalfDropsYieldFiftyPercent(t *testing.T) {
	s, _ := newFrameSampler(t, 120)

	for i := 0; i < 50; i++ {
		s.Record(33.33, 0, false)
	}
	var res models.FrameResult
	for i := 0; i < 50; i++ {
		res = s.Record(16.67, 0, false)
	}
	if res.DropRate != 50 {
		t.Errorf("expected 50%% drop rate, got %v", res.DropRate)
	}
}

func TestFrameSampler_PartialWindowRate(t *testing.T) {
	s, _ := newFrameSampler(t, 120)

	s.Record(33.33, 0, false)
	s.Record(16.0, 0, false)
	s.Record(16.0, 0, false)
	s.Record(16.0, 0, false)

	// 1 drop among 4 samples
	if got := s.DropRate(); got != 25 {
		t.Errorf("expected 25%% drop rate, got %v", got)
	}
}

func TestFrameSampler_OverwriteAdjustsRunningCounts(t *testing.T) {
	s, _ := newFrameSampler(t, 4)

	// Fill with drops, then push clean frames through the whole window.
	for i := 0; i < 4; i++ {
		s.Record(40, 0, false)
	}
	for i := 0; i < 4; i++ {
		s.Record(10, 0, false)
	}

	if got := s.DropRate(); got != 0 {
		t.Errorf("expected 0%% after drops rotated out, got %v", got)
	}
	stats := s.Stats()
	if stats.AvgFrameTimeMs != 10 {
		t.Errorf("expected avg 10ms, got %v", stats.AvgFrameTimeMs)
	}
}

func TestFrameSampler_InvalidInputClampedAndCounted(t *testing.T) {
	s, diag := newFrameSampler(t, 120)

	s.Record(math.NaN(), 0, false)
	s.Record(-5, 0, false)
	s.Record(math.Inf(1), 0, false)

	if diag.InvalidSamples.Load() != 3 {
		t.Errorf("expected 3 invalid samples, got %d", diag.InvalidSamples.Load())
	}
	// Clamped to 0, still recorded, never dropped.
	if got := s.DropRate(); got != 0 {
		t.Errorf("clamped samples should not be drops, got rate %v", got)
	}
	if s.Stats().AvgFrameTimeMs != 0 {
		t.Error("clamped samples should contribute 0 to the average")
	}
}

func TestFrameSampler_Percentiles(t *testing.T) {
	s, _ := newFrameSampler(t, 120)

	for i := 1; i <= 100; i++ {
		s.Record(float64(i), 0, false)
	}

	stats := s.Stats()
	if stats.P50FrameTimeMs < 45 || stats.P50FrameTimeMs > 55 {
		t.Errorf("p50 out of range: %v", stats.P50FrameTimeMs)
	}
	if stats.P95FrameTimeMs < 90 || stats.P95FrameTimeMs > 100 {
		t.Errorf("p95 out of range: %v", stats.P95FrameTimeMs)
	}
	if stats.P99FrameTimeMs < stats.P95FrameTimeMs {
		t.Error("p99 should not be below p95")
	}
	if stats.AvgFrameTimeMs != 50.5 {
		t.Errorf("expected avg 50.5, got %v", stats.AvgFrameTimeMs)
	}
}

func TestFrameSampler_EmptyStats(t *testing.T) {
	s, _ := newFrameSampler(t, 120)

	stats := s.Stats()
	if stats != (models.FrameDropDetection{}) {
		t.Errorf("expected zero stats for empty window, got %+v", stats)
	}
}
