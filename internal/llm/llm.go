// Package llm builds analysis prompts, talks to the provider through Client
// and maps provider text back into structured analysis fields.
package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// Request is one rendered provider call.
type Request struct {
	System    string
	Prompt    string
	MaxTokens int
}

// Hash returns the sha256 hex digest of the rendered prompt.
func (r Request) Hash() string {
	sum := sha256.Sum256([]byte(r.System + "\n\n" + r.Prompt))
	return hex.EncodeToString(sum[:])
}

// Response is the provider's raw answer.
type Response struct {
	Text         string
	Model        string
	StopReason   string
	InputTokens  int64
	OutputTokens int64
}

// Client abstracts LLM providers.
type Client interface {
	Name() string
	Complete(ctx context.Context, req Request) (Response, error)
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("llm provider not configured")

// PlaceholderClient stands in when no provider key is set.
type PlaceholderClient struct{}

func (PlaceholderClient) Name() string { return "placeholder" }

// Complete returns ErrNotConfigured.
func (PlaceholderClient) Complete(context.Context, Request) (Response, error) {
	return Response{}, ErrNotConfigured
}
