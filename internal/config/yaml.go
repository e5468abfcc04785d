package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the tunable subset of Config for YAML overlays.
// Pointer fields distinguish "absent" from zero so a file only overrides
// what it names.
type fileConfig struct {
	TargetFrameBudgetMs         *float64 `yaml:"target_frame_budget_ms"`
	DropThresholdMultiplier     *float64 `yaml:"drop_threshold_multiplier"`
	SmoothnessVelocityThreshold *float64 `yaml:"smoothness_velocity_threshold"`
	MemoryBudgetBytes           *uint64  `yaml:"memory_budget_bytes"`
	CleanupPressureThreshold    *float64 `yaml:"cleanup_pressure_threshold"`
	WindowSize                  *int     `yaml:"window_size"`
	SizingErrorTolerance        *float64 `yaml:"sizing_error_tolerance"`
	DynamicChurnPenalty         *float64 `yaml:"dynamic_churn_penalty"`
	MaxTrackedEntries           *int     `yaml:"max_tracked_entries"`

	CleanupFractions *struct {
		Light      float64 `yaml:"light"`
		Moderate   float64 `yaml:"moderate"`
		Aggressive float64 `yaml:"aggressive"`
	} `yaml:"cleanup_fractions"`
}

// ApplyYAMLFile overlays settings from a YAML file onto the config.
func ApplyYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return applyYAML(cfg, data)
}

func applyYAML(cfg *Config, data []byte) error {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if fc.TargetFrameBudgetMs != nil {
		cfg.TargetFrameBudgetMs = *fc.TargetFrameBudgetMs
	}
	if fc.DropThresholdMultiplier != nil {
		cfg.DropThresholdMultiplier = *fc.DropThresholdMultiplier
	}
	if fc.SmoothnessVelocityThreshold != nil {
		cfg.SmoothnessVelocityThreshold = *fc.SmoothnessVelocityThreshold
	}
	if fc.MemoryBudgetBytes != nil {
		cfg.MemoryBudgetBytes = *fc.MemoryBudgetBytes
	}
	if fc.CleanupPressureThreshold != nil {
		cfg.CleanupPressureThreshold = *fc.CleanupPressureThreshold
	}
	if fc.WindowSize != nil {
		cfg.WindowSize = *fc.WindowSize
	}
	if fc.SizingErrorTolerance != nil {
		cfg.SizingErrorTolerance = *fc.SizingErrorTolerance
	}
	if fc.DynamicChurnPenalty != nil {
		cfg.DynamicChurnPenalty = *fc.DynamicChurnPenalty
	}
	if fc.MaxTrackedEntries != nil {
		cfg.MaxTrackedEntries = *fc.MaxTrackedEntries
	}
	if fc.CleanupFractions != nil {
		cfg.CleanupFractions = CleanupFractions{
			Light:      fc.CleanupFractions.Light,
			Moderate:   fc.CleanupFractions.Moderate,
			Aggressive: fc.CleanupFractions.Aggressive,
		}
	}
	return nil
}
