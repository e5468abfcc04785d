package config

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Defaults for every tunable except MemoryBudgetBytes, which has no
// universal default and must be provided by the host.
const (
	DefaultTargetFrameBudgetMs         = 16.67
	DefaultDropThresholdMultiplier     = 1.0
	DefaultSmoothnessVelocityThreshold = 1000.0
	DefaultCleanupPressureThreshold    = 70.0
	DefaultWindowSize                  = 120
	DefaultSizingErrorTolerance        = 0.15
	DefaultDynamicChurnPenalty         = 0.25
	DefaultMaxTrackedEntries           = 65536
)

var (
	ErrMissingMemoryBudget   = errors.New("memory budget must be greater than 0")
	ErrInvalidWindowSize     = errors.New("window size must be at least 1")
	ErrInvalidFraction       = errors.New("cleanup fractions must be in (0, 1]")
	ErrInvalidThreshold      = errors.New("cleanup pressure threshold must be in [0, 100]")
	ErrInvalidTolerance      = errors.New("sizing error tolerance must be greater than 0")
	ErrInvalidTrackedEntries = errors.New("max tracked entries must be at least 1")
)

// CleanupFractions maps each cleanup strategy to the share of the tracked
// footprint it targets.
type CleanupFractions struct {
	Light      float64
	Moderate   float64
	Aggressive float64
}

// BloomFilterConfig configures the seen-key filter used to split misses
// into cold and capacity misses.
type BloomFilterConfig struct {
	ExpectedItems     uint
	FalsePositiveRate float64
}

// Config holds every tunable of the monitor.
type Config struct {
	TargetFrameBudgetMs         float64
	DropThresholdMultiplier     float64
	SmoothnessVelocityThreshold float64
	MemoryBudgetBytes           uint64
	CleanupPressureThreshold    float64
	WindowSize                  int
	SizingErrorTolerance        float64
	DynamicChurnPenalty         float64
	MaxTrackedEntries           int

	CleanupFractions    CleanupFractions
	BloomFilterSettings BloomFilterConfig
	Logger              *zap.Logger
}

// Option mutates a Config during construction.
type Option func(*Config) error

// NewConfig creates a Config with defaults, applies all options, then
// validates. Validation failures are programmer error and fail fast.
func NewConfig(memoryBudgetBytes uint64, options ...Option) (*Config, error) {
	cfg := &Config{
		TargetFrameBudgetMs:         DefaultTargetFrameBudgetMs,
		DropThresholdMultiplier:     DefaultDropThresholdMultiplier,
		SmoothnessVelocityThreshold: DefaultSmoothnessVelocityThreshold,
		MemoryBudgetBytes:           memoryBudgetBytes,
		CleanupPressureThreshold:    DefaultCleanupPressureThreshold,
		WindowSize:                  DefaultWindowSize,
		SizingErrorTolerance:        DefaultSizingErrorTolerance,
		DynamicChurnPenalty:         DefaultDynamicChurnPenalty,
		MaxTrackedEntries:           DefaultMaxTrackedEntries,
		CleanupFractions: CleanupFractions{
			Light:      0.10,
			Moderate:   0.30,
			Aggressive: 0.60,
		},
		BloomFilterSettings: BloomFilterConfig{
			ExpectedItems:     65536,
			FalsePositiveRate: 0.01,
		},
	}

	for _, option := range options {
		if err := option(cfg); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if cfg.Logger == nil {
		logger, err := zap.NewProduction()
		if err != nil {
			return nil, fmt.Errorf("failed to initialize default logger: %w", err)
		}
		cfg.Logger = logger
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks structural invariants of the configuration.
func (c *Config) Validate() error {
	if c.MemoryBudgetBytes == 0 {
		return ErrMissingMemoryBudget
	}
	if c.WindowSize < 1 {
		return ErrInvalidWindowSize
	}
	if c.CleanupPressureThreshold < 0 || c.CleanupPressureThreshold > 100 {
		return ErrInvalidThreshold
	}
	if c.SizingErrorTolerance <= 0 {
		return ErrInvalidTolerance
	}
	if c.MaxTrackedEntries < 1 {
		return ErrInvalidTrackedEntries
	}
	for _, f := range []float64{
		c.CleanupFractions.Light,
		c.CleanupFractions.Moderate,
		c.CleanupFractions.Aggressive,
	} {
		if f <= 0 || f > 1 {
			return ErrInvalidFraction
		}
	}
	return nil
}
