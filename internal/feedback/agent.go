package feedback

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/mnoushir/portfolio-assistant/internal/notify"
	"github.com/mnoushir/portfolio-assistant/internal/observability/metrics"
	"github.com/mnoushir/portfolio-assistant/pkg/logging"
)

// Submission is a visitor feedback entry.
type Submission struct {
	Message  string `json:"message"`
	Rating   *int   `json:"rating,omitempty"`
	Category string `json:"category,omitempty"`
}

// Result is what the submitter sees. Spam submissions are rejected
// without revealing the gate's criteria.
type Result struct {
	Success bool
	Message string
	Spam    bool
	Triage  Assessment
}

const (
	spamMessage  = "Your message has been flagged as potential spam."
	thankYouText = "Thank you for your feedback! I appreciate you taking the time to share your thoughts."
)

// Agent runs the full triage pipeline for one submission.
type Agent struct {
	classifier *Classifier
	dispatcher *Dispatcher
	recipient  string
	logger     *logging.Logger
	metrics    *metrics.AgentMetrics
	now        func() time.Time
}

func NewAgent(classifier *Classifier, dispatcher *Dispatcher, recipient string, logger *logging.Logger, m *metrics.AgentMetrics) *Agent {
	if logger == nil {
		logger = logging.Default()
	}
	return &Agent{
		classifier: classifier,
		dispatcher: dispatcher,
		recipient:  recipient,
		logger:     logger,
		metrics:    m,
		now:        time.Now,
	}
}

// Process gates, classifies, and queues the notification. The spam
// check runs first so gated messages never reach the LLM or email.
func (a *Agent) Process(ctx context.Context, sub Submission) Result {
	if IsSpam(sub.Message) {
		a.logger.Info("feedback flagged as potential spam")
		a.metrics.ObserveSpamGated()
		return Result{
			Success: false,
			Spam:    true,
			Message: spamMessage,
			Triage:  Assessment{Sentiment: "neutral", Priority: 1, Category: "spam"},
		}
	}

	assessment := a.classifier.Classify(ctx, sub.Message)
	// A category named by the submitter wins over the classifier's guess.
	if c := strings.TrimSpace(sub.Category); c != "" {
		assessment.Category = c
	}

	if a.recipient != "" {
		a.dispatcher.Dispatch(buildNotification(a.recipient, sub, assessment, a.now()))
	} else {
		a.logger.Warn("no feedback recipient configured, skipping notification")
	}

	return Result{Success: true, Message: thankYouText, Triage: assessment}
}

// Wait flushes in-flight notifications.
func (a *Agent) Wait() {
	a.dispatcher.Wait()
}

func buildNotification(recipient string, sub Submission, assessment Assessment, now time.Time) notify.EmailMessage {
	subject := fmt.Sprintf("Portfolio Feedback: %s [%s]", assessment.Category, assessment.Sentiment)

	rating := "Not provided"
	if sub.Rating != nil {
		rating = fmt.Sprintf("%d/5", *sub.Rating)
	}
	timestamp := now.Format("2006-01-02 15:04:05")

	body := fmt.Sprintf(`New Feedback Received at %s

Category: %s
Sentiment: %s
Priority: %d/5

Message:
%s

Rating: %s
`, timestamp, assessment.Category, assessment.Sentiment, assessment.Priority, sub.Message, rating)

	htmlBody := fmt.Sprintf(`<html>
<body>
<h2>New Portfolio Feedback</h2>
<p>Received at %s</p>
<p><strong>Category:</strong> %s<br>
<strong>Sentiment:</strong> %s<br>
<strong>Priority:</strong> %d/5<br>
<strong>Rating:</strong> %s</p>
<h3>Message:</h3>
<blockquote>%s</blockquote>
<p><em>This is an automated notification from your Portfolio AI Assistant</em></p>
</body>
</html>
`, timestamp, html.EscapeString(assessment.Category), html.EscapeString(assessment.Sentiment),
		assessment.Priority, rating,
		strings.ReplaceAll(html.EscapeString(sub.Message), "\n", "<br>"))

	return notify.EmailMessage{
		To:      recipient,
		Subject: subject,
		Body:    body,
		HTML:    htmlBody,
	}
}
