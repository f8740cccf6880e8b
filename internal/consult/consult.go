// Package consult provides the external reasoning capability used by the
// signal engine in explain mode.
//
// A Consultant never returns an error. Failures are reported in-band as a
// Suggestion with Failed set and an ErrorPrefix rationale.
package consult

import (
	"context"
	"time"

	"github.com/clearframe/clearframe/internal/types"
)

// ErrorPrefix tags the rationale of a failed consultation.
const ErrorPrefix = "LLM_ERROR: "

// MockRationale is the fixed rationale returned by Mock.
const MockRationale = "Mock analysis: possible sunk cost reasoning detected."

// Consultant asks an external reasoner about text and an optional bias category.
type Consultant interface {
	Consult(ctx context.Context, text, category string) types.Suggestion
}

// Settings selects and configures a Consultant.
type Settings struct {
	// Provider is mock, command or none.
	Provider string

	// Command and Args describe the CLI spawned by the command provider.
	Command string
	Args    []string

	// Timeout bounds one command invocation.
	Timeout time.Duration
}

// Provider names accepted by New.
const (
	ProviderMock    = "mock"
	ProviderCommand = "command"
	ProviderNone    = "none"
)

// New builds the Consultant for s. The none provider yields nil, which
// disables consultation. Unknown providers fall back to Mock.
func New(s Settings) Consultant {
	switch s.Provider {
	case ProviderNone:
		return nil
	case ProviderCommand:
		return &Command{Name: s.Command, Args: s.Args, Timeout: s.Timeout}
	default:
		return Mock{}
	}
}

// Mock returns a fixed rationale without side effects.
type Mock struct{}

// Consult implements Consultant.
func (Mock) Consult(_ context.Context, _, _ string) types.Suggestion {
	return types.Suggestion{Rationale: MockRationale}
}

// failed converts err into an error-tagged suggestion.
func failed(err error) types.Suggestion {
	return types.Suggestion{Rationale: ErrorPrefix + err.Error(), Failed: true}
}
