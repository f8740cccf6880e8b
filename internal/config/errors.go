package config

import "errors"

// Sentinel errors for the config package.
var (
	// ErrInvalidOutput is returned for an output format other than table, json or yaml.
	ErrInvalidOutput = errors.New("invalid output format")

	// ErrUnknownProvider is returned for a consult provider other than mock, command or none.
	ErrUnknownProvider = errors.New("unknown consult provider")

	// ErrThresholdRange is returned when a gate threshold is outside [0,1].
	ErrThresholdRange = errors.New("gate threshold outside [0,1]")

	// ErrThresholdOrder is returned when gate thresholds are not ascending
	// (silence_below <= downgrade_below <= hedge_down_below <= hedge_up_at <= force_yes_at).
	ErrThresholdOrder = errors.New("gate thresholds out of order")
)
