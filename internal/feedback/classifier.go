// Package feedback implements the feedback triage agent: a spam gate,
// LLM-backed classification, and fire-and-forget owner notification.
package feedback

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/mnoushir/portfolio-assistant/internal/llm"
	"github.com/mnoushir/portfolio-assistant/pkg/logging"
)

// spamKeywords gate submissions before any LLM call. Matching is a
// case-insensitive substring check.
var spamKeywords = []string{"spam", "virus", "hack", "free money", "lottery"}

// IsSpam reports whether the message trips the keyword gate.
func IsSpam(message string) bool {
	lower := strings.ToLower(message)
	for _, kw := range spamKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Assessment is the triage result attached to a submission.
type Assessment struct {
	Sentiment string `json:"sentiment"`
	Priority  int    `json:"priority"`
	Category  string `json:"category"`
}

func defaultAssessment() Assessment {
	return Assessment{Sentiment: "neutral", Priority: 1, Category: "other"}
}

// Classifier asks the LLM to triage a feedback message.
type Classifier struct {
	llm    llm.Client
	logger *logging.Logger
}

func NewClassifier(client llm.Client, logger *logging.Logger) *Classifier {
	if logger == nil {
		logger = logging.Default()
	}
	return &Classifier{llm: client, logger: logger}
}

const classifyPrompt = `Analyze the following feedback message.
Determine:
1. The sentiment (positive, negative, neutral)
2. A priority level (1-5, where 5 is highest)
3. A category (bug, feature request, complaint, praise, question, other)

Respond with ONLY a JSON object with fields: sentiment, priority, category`

// Classify triages a message. It never fails: any LLM or parse error
// degrades to the neutral default so feedback intake keeps working.
func (c *Classifier) Classify(ctx context.Context, message string) Assessment {
	resp, err := c.llm.Complete(ctx, llm.Request{
		System:   classifyPrompt,
		Messages: []llm.Message{{Role: llm.RoleUser, Content: message}},
	})
	if err != nil {
		c.logger.Warn("feedback classification unavailable, using defaults", "error", err)
		return defaultAssessment()
	}

	assessment, ok := parseAssessment(resp.Text)
	if !ok {
		c.logger.Warn("feedback classification returned malformed JSON, using defaults", "response", resp.Text)
		return defaultAssessment()
	}
	return assessment
}

// parseAssessment tolerates code fences and surrounding prose by
// extracting the outermost JSON object.
func parseAssessment(text string) (Assessment, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return Assessment{}, false
	}

	var a Assessment
	if err := json.Unmarshal([]byte(text[start:end+1]), &a); err != nil {
		return Assessment{}, false
	}
	if a.Sentiment == "" {
		a.Sentiment = "neutral"
	}
	if a.Priority < 1 || a.Priority > 5 {
		a.Priority = 1
	}
	if a.Category == "" {
		a.Category = "other"
	}
	return a, true
}
