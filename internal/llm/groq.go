package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultGroqBaseURL is Groq's OpenAI-compatible endpoint.
const DefaultGroqBaseURL = "https://api.groq.com/openai/v1"

// GroqClient implements Client against Groq's chat completion API.
// Groq speaks the OpenAI wire protocol, so the client is go-openai
// pointed at Groq's base URL.
type GroqClient struct {
	client *openai.Client
	model  string
}

// NewGroqClient creates a Groq-backed LLM client. An empty API key is
// allowed; completion calls then fail with ErrNotConfigured so that a
// misconfigured deployment still serves its other agents.
func NewGroqClient(apiKey, model, baseURL string) *GroqClient {
	if strings.TrimSpace(model) == "" {
		model = "llama3-8b-8192"
	}
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultGroqBaseURL
	}

	var client *openai.Client
	if strings.TrimSpace(apiKey) != "" {
		cfg := openai.DefaultConfig(apiKey)
		cfg.BaseURL = baseURL
		client = openai.NewClientWithConfig(cfg)
	}

	return &GroqClient{client: client, model: model}
}

// Complete sends a chat completion request to Groq.
func (c *GroqClient) Complete(ctx context.Context, req Request) (Response, error) {
	if c.client == nil {
		return Response{}, ErrNotConfigured
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if strings.TrimSpace(req.System) != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	for _, msg := range req.Messages {
		role := msg.Role
		if role == "" {
			role = RoleUser
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}
	if len(messages) == 0 {
		return Response{}, errors.New("llm: groq requires at least one message")
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: req.Temperature,
		MaxTokens:   int(req.MaxTokens),
	})
	if err != nil {
		return Response{}, fmt.Errorf("llm: groq completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Response{}, errors.New("llm: groq returned no choices")
	}

	choice := resp.Choices[0]
	return Response{
		Text:       strings.TrimSpace(choice.Message.Content),
		StopReason: string(choice.FinishReason),
	}, nil
}

// Close is a no-op; the underlying HTTP client holds no resources.
func (c *GroqClient) Close() error { return nil }
