package ledger

import "errors"

// Sentinel errors for the ledger package.
var (
	// ErrCorruptIndex is returned when index.json exists but does not decode.
	ErrCorruptIndex = errors.New("corrupt run index")

	// ErrRunExists is returned when no free run directory name is left for a timestamp.
	ErrRunExists = errors.New("run directory already exists")
)
