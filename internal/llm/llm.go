package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// Client abstracts LLM providers for resume review agents.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
}

// CompletionRequest carries one rendered prompt to the provider.
type CompletionRequest struct {
	System string
	User   string
	// ForceJSON asks the provider to constrain output to a JSON object
	// where the API supports it.
	ForceJSON bool
}

// Completion is a provider response.
type Completion struct {
	Text             string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// PromptHash returns a stable fingerprint for a rendered prompt, used in
// prompt usage records.
func PromptHash(system, user string) string {
	sum := sha256.Sum256([]byte(system + "\n\n" + user))
	return hex.EncodeToString(sum[:])
}

// ErrNotConfigured is returned by the placeholder client when no provider
// is wired.
var ErrNotConfigured = errors.New("llm provider not configured")

// PlaceholderClient stands in when LLM_PROVIDER is unset.
type PlaceholderClient struct{}

func (PlaceholderClient) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	_ = ctx
	_ = req
	return Completion{}, ErrNotConfigured
}
