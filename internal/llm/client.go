package llm

import (
	"context"
	"errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrNotConfigured is returned by clients constructed without an API key.
// Startup never fails on a missing key; the error surfaces on first use.
var ErrNotConfigured = errors.New("llm: api key is not configured")

// Message is a single chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request describes one completion call.
type Request struct {
	System      string
	Messages    []Message
	Temperature float32
	MaxTokens   int32
}

// Response is the completion result.
type Response struct {
	Text       string
	StopReason string
}

// Client generates chat completions. Implementations wrap a hosted
// inference API and are treated as opaque text-in/text-out functions.
type Client interface {
	Complete(ctx context.Context, req Request) (Response, error)
	Close() error
}
