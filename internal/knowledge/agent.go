// Package knowledge implements the profile Q&A agent: it answers questions
// about the portfolio owner by prompting the LLM with profile data.
package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/mnoushir/portfolio-assistant/internal/llm"
	"github.com/mnoushir/portfolio-assistant/pkg/logging"
)

// Agent answers profile questions from loaded profile data.
type Agent struct {
	llm     llm.Client
	profile map[string]any
	logger  *logging.Logger
}

// NewAgent creates a knowledge agent. The profile is loaded once at
// construction; a missing or unreadable file falls back to a minimal
// built-in profile rather than failing startup.
func NewAgent(client llm.Client, profilePath string, logger *logging.Logger) *Agent {
	if logger == nil {
		logger = logging.Default()
	}
	profile := loadProfile(profilePath, logger)
	logger.Info("knowledge agent initialized", "profile_name", profile["name"])
	return &Agent{
		llm:     client,
		profile: profile,
		logger:  logger,
	}
}

// Respond answers a single profile question.
func (a *Agent) Respond(ctx context.Context, query string) (string, error) {
	profileJSON, err := json.MarshalIndent(a.profile, "", "  ")
	if err != nil {
		return "", fmt.Errorf("knowledge: marshal profile: %w", err)
	}

	name, _ := a.profile["name"].(string)
	if name == "" {
		name = "the portfolio owner"
	}

	system := fmt.Sprintf(`You are a helpful assistant representing %s.
Keep it short and concise but informative with a touch of humor sometimes. Keep a conversational tone like a real person.
Answer questions based on this profile information only:
%s

If you don't know the answer, say so politely.`, name, profileJSON)

	resp, err := a.llm.Complete(ctx, llm.Request{
		System:   system,
		Messages: []llm.Message{{Role: llm.RoleUser, Content: query}},
	})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}

func loadProfile(path string, logger *logging.Logger) map[string]any {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("profile file not found, using built-in profile", "path", path, "error", err)
		return fallbackProfile()
	}

	var profile map[string]any
	if err := json.Unmarshal(data, &profile); err != nil {
		logger.Error("profile file is not valid JSON, using built-in profile", "path", path, "error", err)
		return fallbackProfile()
	}
	logger.Info("profile loaded", "path", path)
	return profile
}

// fallbackProfile keeps the agent useful when no profile file is deployed.
func fallbackProfile() map[string]any {
	return map[string]any{
		"name": "Mohammed Noushir",
		"bio":  "AI/ML researcher, innovator, and builder with a passion for agentic AI, multimodal systems, and real-world impact.",
		"skills": []map[string]string{
			{"name": "Python", "level": "Expert"},
			{"name": "PyTorch", "level": "Advanced"},
			{"name": "TensorFlow", "level": "Advanced"},
			{"name": "LangChain", "level": "Advanced"},
			{"name": "Agentic AI", "level": "Advanced"},
			{"name": "Knowledge Graphs", "level": "Advanced"},
			{"name": "AWS", "level": "Advanced"},
			{"name": "Docker", "level": "Intermediate"},
		},
	}
}
