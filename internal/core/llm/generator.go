// Package llm wraps the external language model used to normalize free-text
// food mentions into canonical corpus names. The model is a collaborator
// that may fail or return garbage; callers treat every outcome as normal
// control flow.
package llm

import (
	"context"
)

// CandidateGenerator produces canonical candidate names for a raw food
// mention. The result is ordered, may be empty, and calls must have no side
// effects on core state.
type CandidateGenerator interface {
	Generate(ctx context.Context, text string) ([]string, error)
}
