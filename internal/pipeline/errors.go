package pipeline

import "errors"

// Sentinel errors for fatal run conditions.
var (
	// ErrRunSetup is returned when the run directory or the inbox cannot be read.
	ErrRunSetup = errors.New("run setup failed")

	// ErrIndexWrite is returned when the run index cannot be rewritten.
	ErrIndexWrite = errors.New("run index write failed")
)
