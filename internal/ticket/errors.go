package ticket

import "errors"

// Sentinel errors for ticket store operations.
var (
	// ErrNotArchivable is returned when a ticket has no source path to rename.
	ErrNotArchivable = errors.New("ticket has no source path")
)
