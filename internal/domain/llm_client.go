package domain

import "context"

// LLMClient defines the capability to send a system/user prompt pair to a
// chat model and receive the raw textual response. It serves both the
// routing classifier and the answer synthesis step.
type LLMClient interface {
	Chat(ctx context.Context, system, user string, maxTokens int) (string, error)
	Version() string
}
