package feedback

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mnoushir/portfolio-assistant/internal/observability/metrics"
	"github.com/mnoushir/portfolio-assistant/pkg/logging"
)

const agentName = "feedback"

// SubmitResponse is the POST /api/feedback body returned to the client.
type SubmitResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Handler exposes the feedback agent over HTTP.
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

// Submit handles POST /api/feedback.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var sub Submission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		h.metrics.ObserveRequest(agentName, "error")
		writeSubmitJSON(w, http.StatusBadRequest, SubmitResponse{
			Success: false,
			Message: "Invalid request body.",
		})
		return
	}

	sub.Message = strings.TrimSpace(sub.Message)
	if sub.Message == "" {
		h.metrics.ObserveRequest(agentName, "error")
		writeSubmitJSON(w, http.StatusBadRequest, SubmitResponse{
			Success: false,
			Message: "Feedback message is required.",
		})
		return
	}
	if sub.Rating != nil && (*sub.Rating < 1 || *sub.Rating > 5) {
		h.metrics.ObserveRequest(agentName, "error")
		writeSubmitJSON(w, http.StatusBadRequest, SubmitResponse{
			Success: false,
			Message: "Rating must be between 1 and 5.",
		})
		return
	}

	result := h.agent.Process(r.Context(), sub)

	status := "ok"
	if result.Spam {
		status = "spam"
	}
	h.metrics.ObserveRequest(agentName, status)
	writeSubmitJSON(w, http.StatusOK, SubmitResponse{
		Success: result.Success,
		Message: result.Message,
	})
}

func writeSubmitJSON(w http.ResponseWriter, status int, resp SubmitResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
