package calendar

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func newTestHandler(t *testing.T) (*Handler, *Scheduler) {
	t.Helper()
	s := newDemoScheduler(t)
	h := NewHandler(s, nil, NewTokenStore(t.TempDir()+"/token.json"), nil, nil, nil)
	return h, s
}

func testRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/api/calendar/availability", h.GetAvailability)
	r.Post("/api/calendar/book", h.BookSlot)
	r.Delete("/api/calendar/book/{eventID}", h.CancelBooking)
	r.Get("/api/calendar/auth/url", h.GetAuthURL)
	return r
}

func TestGetAvailability(t *testing.T) {
	h, _ := newTestHandler(t)
	router := testRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/calendar/availability?days=1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp AvailabilityResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.AvailableSlots) != 8 {
		t.Fatalf("expected 8 slots, got %d", len(resp.AvailableSlots))
	}
	if _, err := time.Parse(time.RFC3339, resp.AvailableSlots[0].Start); err != nil {
		t.Errorf("slot start is not RFC3339: %q", resp.AvailableSlots[0].Start)
	}
}

func TestGetAvailabilityZeroDays(t *testing.T) {
	h, _ := newTestHandler(t)
	router := testRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/calendar/availability?days=0", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp AvailabilityResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.AvailableSlots) != 0 {
		t.Fatalf("expected no slots for a zero-day horizon, got %d", len(resp.AvailableSlots))
	}
}

func TestBookSlotSuccess(t *testing.T) {
	h, s := newTestHandler(t)
	router := testRouter(h)

	slots, err := s.Availability(t.Context(), 1)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}

	body, _ := json.Marshal(slotRequest(slots[2], "alice"))
	req := httptest.NewRequest(http.MethodPost, "/api/calendar/book", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp BookingResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.EventID == "" {
		t.Fatalf("expected successful booking with event id, got %+v", resp)
	}

	// The booked interval is gone from subsequent availability queries.
	after, err := s.Availability(t.Context(), 1)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if len(after) != 7 {
		t.Fatalf("expected 7 remaining slots, got %d", len(after))
	}
}

func TestBookSlotUnavailable(t *testing.T) {
	h, _ := newTestHandler(t)
	router := testRouter(h)

	body, _ := json.Marshal(BookingRequest{
		StartTime: "2025-03-03T07:00:00Z",
		EndTime:   "2025-03-03T08:00:00Z",
		Name:      "alice",
		Email:     "alice@example.com",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/calendar/book", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	var resp BookingResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Success {
		t.Fatal("expected success=false")
	}
}

func TestBookSlotMissingFields(t *testing.T) {
	h, _ := newTestHandler(t)
	router := testRouter(h)

	body, _ := json.Marshal(BookingRequest{Name: "alice"})
	req := httptest.NewRequest(http.MethodPost, "/api/calendar/book", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestBookSlotInvalidJSON(t *testing.T) {
	h, _ := newTestHandler(t)
	router := testRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/api/calendar/book", strings.NewReader("{"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCancelBookingNotFound(t *testing.T) {
	h, _ := newTestHandler(t)
	router := testRouter(h)

	req := httptest.NewRequest(http.MethodDelete, "/api/calendar/book/nope", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestCancelBookingRoundTrip(t *testing.T) {
	h, s := newTestHandler(t)
	router := testRouter(h)

	slots, err := s.Availability(t.Context(), 1)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	record, err := s.Book(t.Context(), slotRequest(slots[0], "alice"))
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/api/calendar/book/"+record.ID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	after, err := s.Availability(t.Context(), 1)
	if err != nil {
		t.Fatalf("availability: %v", err)
	}
	if len(after) != 8 {
		t.Fatalf("expected slot returned to pool, got %d slots", len(after))
	}
}

func TestGetAuthURLUnconfigured(t *testing.T) {
	h, _ := newTestHandler(t)
	router := testRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/api/calendar/auth/url", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when OAuth is not configured, got %d", w.Code)
	}
}

func TestGetAuthURLConfigured(t *testing.T) {
	s := newDemoScheduler(t)
	oauthCfg := NewOAuthConfig(OAuthSettings{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURI:  "http://localhost:8080/api/calendar/oauth/callback",
	})
	h := NewHandler(s, oauthCfg, NewTokenStore(t.TempDir()+"/token.json"), nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/calendar/auth/url", nil)
	w := httptest.NewRecorder()
	h.GetAuthURL(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	authURL := resp["auth_url"]
	if !strings.Contains(authURL, "client-id") || !strings.Contains(authURL, "prompt=consent") {
		t.Fatalf("unexpected auth url: %q", authURL)
	}
}
