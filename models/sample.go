package models

// FrameSample records the timing of a single render frame.
// Derived on insertion and never mutated afterwards.
type FrameSample struct {
	DurationMs  float64
	Velocity    float64
	HasVelocity bool
	Dropped     bool
}

// ScrollSample records a single scroll event.
type ScrollSample struct {
	Velocity float64
	Smooth   bool
}

// SizingSample records one predicted-vs-actual item size measurement.
type SizingSample struct {
	Predicted  float64
	Actual     float64
	ErrorRatio float64
	Dynamic    bool
	LatencyMs  float64
}

// FrameResult is returned to the host for each recorded frame.
type FrameResult struct {
	Dropped  bool
	DropRate float64
}

// ScrollResult is returned to the host for each recorded scroll event.
type ScrollResult struct {
	Smooth           bool
	SmoothPercentage float64
}
