package storage

import "errors"

// Sentinel errors for the storage package. Using sentinels instead of ad-hoc
// fmt.Errorf allows callers to match with errors.Is for reliable error handling.
var (
	// ErrEmptyFile is returned when a JSON document has no content.
	ErrEmptyFile = errors.New("empty file")
)
