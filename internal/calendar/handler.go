package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/oauth2"

	"github.com/mnoushir/portfolio-assistant/internal/observability/metrics"
	"github.com/mnoushir/portfolio-assistant/pkg/logging"
)

// BackendFactory builds a calendar backend from a fresh OAuth token.
type BackendFactory func(ctx context.Context, token *oauth2.Token) (Backend, error)

// TimeSlot is the wire representation of a slot.
type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// AvailabilityResponse lists free slots.
type AvailabilityResponse struct {
	AvailableSlots []TimeSlot `json:"available_slots"`
}

// BookingResponse reports a booking or cancellation outcome.
type BookingResponse struct {
	Success   bool   `json:"success"`
	EventID   string `json:"event_id,omitempty"`
	Message   string `json:"message"`
	EventLink string `json:"event_link,omitempty"`
}

// Handler serves the calendar agent's HTTP surface.
type Handler struct {
	scheduler  *Scheduler
	oauth      *oauth2.Config // nil when OAuth is not configured
	tokens     *TokenStore
	newBackend BackendFactory
	logger     *logging.Logger
	metrics    *metrics.AgentMetrics
}

// NewHandler creates a calendar handler. oauth may be nil; the auth
// endpoints then report a configuration error instead of crashing.
func NewHandler(scheduler *Scheduler, oauth *oauth2.Config, tokens *TokenStore, newBackend BackendFactory, logger *logging.Logger, m *metrics.AgentMetrics) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		scheduler:  scheduler,
		oauth:      oauth,
		tokens:     tokens,
		newBackend: newBackend,
		logger:     logger,
		metrics:    m,
	}
}

// GetAvailability handles GET /api/calendar/availability?days=N
func (h *Handler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	days := 7
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		if parsed, err := strconv.Atoi(daysStr); err == nil && parsed >= 0 {
			days = parsed
		}
	}

	slots, err := h.scheduler.Availability(r.Context(), days)
	if err != nil {
		h.logger.Error("availability query failed", "error", err, "days", days)
		h.metrics.ObserveRequest("calendar", "error")
		http.Error(w, "failed to compute availability", http.StatusInternalServerError)
		return
	}

	resp := AvailabilityResponse{AvailableSlots: make([]TimeSlot, 0, len(slots))}
	for _, slot := range slots {
		resp.AvailableSlots = append(resp.AvailableSlots, TimeSlot{
			Start: slot.Start.Format(time.RFC3339),
			End:   slot.End.Format(time.RFC3339),
		})
	}

	h.metrics.ObserveRequest("calendar", "ok")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// BookSlot handles POST /api/calendar/book
func (h *Handler) BookSlot(w http.ResponseWriter, r *http.Request) {
	var req BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode booking request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.StartTime == "" || req.EndTime == "" || req.Name == "" || req.Email == "" {
		writeBookingJSON(w, http.StatusBadRequest, BookingResponse{
			Success: false,
			Message: "start_time, end_time, name and email are required",
		})
		return
	}

	h.logger.Info("booking request", "name", req.Name, "email", req.Email, "start", req.StartTime, "end", req.EndTime)

	record, err := h.scheduler.Book(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrSlotUnavailable) || errors.Is(err, ErrBadTimeFormat) {
			h.logger.Warn("booking rejected", "error", err, "start", req.StartTime)
			h.metrics.ObserveRequest("calendar", "rejected")
			writeBookingJSON(w, http.StatusBadRequest, BookingResponse{Success: false, Message: err.Error()})
			return
		}
		h.logger.Error("booking failed", "error", err, "name", req.Name, "start", req.StartTime)
		h.metrics.ObserveRequest("calendar", "error")
		writeBookingJSON(w, http.StatusInternalServerError, BookingResponse{Success: false, Message: "could not book appointment"})
		return
	}

	h.metrics.ObserveRequest("calendar", "ok")
	writeBookingJSON(w, http.StatusOK, BookingResponse{
		Success:   true,
		EventID:   record.ID,
		Message:   "Appointment successfully booked with " + record.Name + " for " + req.StartTime,
		EventLink: record.Link,
	})
}

// CancelBooking handles DELETE /api/calendar/book/{eventID}
func (h *Handler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")
	if eventID == "" {
		http.Error(w, "missing event id", http.StatusBadRequest)
		return
	}

	if err := h.scheduler.Cancel(r.Context(), eventID); err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			writeBookingJSON(w, http.StatusNotFound, BookingResponse{Success: false, Message: err.Error()})
			return
		}
		h.logger.Error("cancellation failed", "error", err, "event_id", eventID)
		h.metrics.ObserveRequest("calendar", "error")
		writeBookingJSON(w, http.StatusInternalServerError, BookingResponse{Success: false, Message: "could not cancel appointment"})
		return
	}

	h.metrics.ObserveRequest("calendar", "ok")
	writeBookingJSON(w, http.StatusOK, BookingResponse{Success: true, EventID: eventID, Message: "Appointment cancelled"})
}

// GetAuthURL handles GET /api/calendar/auth/url
func (h *Handler) GetAuthURL(w http.ResponseWriter, r *http.Request) {
	if h.oauth == nil {
		http.Error(w, "Google Calendar OAuth is not configured", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"auth_url": AuthCodeURL(h.oauth)})
}

// OAuthCallback handles GET /api/calendar/oauth/callback?code=...
// On success the exchanged token is persisted and the scheduler leaves
// demo mode.
func (h *Handler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	if h.oauth == nil {
		http.Error(w, "Google Calendar OAuth is not configured", http.StatusInternalServerError)
		return
	}
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "missing authorization code", http.StatusBadRequest)
		return
	}

	token, err := h.oauth.Exchange(r.Context(), code)
	if err != nil {
		h.logger.Error("oauth code exchange failed", "error", err)
		writeBookingJSON(w, http.StatusInternalServerError, BookingResponse{Success: false, Message: "Authentication failed"})
		return
	}

	if err := h.tokens.Save(token); err != nil {
		// The session still works; only the credential won't survive a restart.
		h.logger.Error("failed to persist calendar token", "error", err)
	}

	backend, err := h.newBackend(r.Context(), token)
	if err != nil {
		h.logger.Error("failed to build calendar backend", "error", err)
		writeBookingJSON(w, http.StatusInternalServerError, BookingResponse{Success: false, Message: "Authentication failed"})
		return
	}
	h.scheduler.EnableBackend(backend)

	h.logger.Info("google calendar connected")
	writeBookingJSON(w, http.StatusOK, BookingResponse{Success: true, Message: "Authentication successful"})
}

func writeBookingJSON(w http.ResponseWriter, status int, resp BookingResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}
