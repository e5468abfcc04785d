package pulse

import "goflare.io/pulse/internal/config"

// Configuration errors returned by New. They represent programmer error
// and are reported at construction rather than degrading silently at
// runtime.
var (
	ErrMissingMemoryBudget = config.ErrMissingMemoryBudget
	ErrInvalidWindowSize   = config.ErrInvalidWindowSize
	ErrInvalidFraction     = config.ErrInvalidFraction
	ErrInvalidThreshold    = config.ErrInvalidThreshold
	ErrInvalidTolerance    = config.ErrInvalidTolerance
)
