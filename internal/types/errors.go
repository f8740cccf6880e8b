package types

import "errors"

// Sentinel errors shared across the pipeline. Using sentinels allows callers
// to match with errors.Is for reliable error handling.
var (
	// ErrMalformedTicket is returned when id, title or body is empty after defaulting.
	ErrMalformedTicket = errors.New("malformed ticket")

	// ErrUnknownClassification is returned when a classification label is not YES, POSSIBLY or NO.
	ErrUnknownClassification = errors.New("unknown classification")
)
