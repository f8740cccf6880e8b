package sandbox

import "errors"

// Sentinel errors for the sandbox package.
var (
	// ErrPathEscape is returned when a step names a path outside the workspace.
	ErrPathEscape = errors.New("path escapes workspace")

	// ErrWorkspace is returned when the ticket workspace cannot be created.
	ErrWorkspace = errors.New("create workspace")
)
