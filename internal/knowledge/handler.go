package knowledge

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/mnoushir/portfolio-assistant/internal/llm"
	"github.com/mnoushir/portfolio-assistant/internal/observability/metrics"
	"github.com/mnoushir/portfolio-assistant/pkg/logging"
)

const agentName = "knowledge"

// ChatRequest is the POST /api/chat body. Role is accepted for wire
// compatibility; only the content is used.
type ChatRequest struct {
	Content string `json:"content"`
	Role    string `json:"role,omitempty"`
}

// ChatResponse is returned for every chat request, including errors, so
// the frontend can always render the content field.
type ChatResponse struct {
	Content string `json:"content"`
	Agent   string `json:"agent"`
}

// Handler exposes the knowledge agent over HTTP.
type Handler struct {
	agent   *Agent
	logger  *logging.Logger
	metrics *metrics.AgentMetrics
}

func NewHandler(agent *Agent, logger *logging.Logger, m *metrics.AgentMetrics) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{agent: agent, logger: logger, metrics: m}
}

// Chat handles POST /api/chat.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.metrics.ObserveRequest(agentName, "error")
		writeChatJSON(w, http.StatusBadRequest, ChatResponse{
			Content: "Invalid request body.",
			Agent:   agentName,
		})
		return
	}

	query := strings.TrimSpace(req.Content)
	if query == "" {
		h.metrics.ObserveRequest(agentName, "error")
		writeChatJSON(w, http.StatusBadRequest, ChatResponse{
			Content: "Message content is required.",
			Agent:   agentName,
		})
		return
	}

	answer, err := h.agent.Respond(r.Context(), query)
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			h.logger.Error("chat failed: LLM not configured")
			h.metrics.ObserveRequest(agentName, "error")
			writeChatJSON(w, http.StatusInternalServerError, ChatResponse{
				Content: "API configuration error: the language model API key is not set on the server.",
				Agent:   agentName,
			})
			return
		}
		h.logger.Error("chat failed", "error", err)
		h.metrics.ObserveRequest(agentName, "error")
		writeChatJSON(w, http.StatusInternalServerError, ChatResponse{
			Content: "Sorry, I encountered an error processing your request.",
			Agent:   agentName,
		})
		return
	}

	h.metrics.ObserveRequest(agentName, "ok")
	writeChatJSON(w, http.StatusOK, ChatResponse{Content: answer, Agent: agentName})
}

func writeChatJSON(w http.ResponseWriter, status int, resp ChatResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
