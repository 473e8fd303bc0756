package knowledge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mnoushir/portfolio-assistant/internal/llm"
)

type fakeLLM struct {
	resp    llm.Response
	err     error
	lastReq llm.Request
	calls   int
}

func (f *fakeLLM) Complete(_ context.Context, req llm.Request) (llm.Response, error) {
	f.lastReq = req
	f.calls++
	return f.resp, f.err
}

func (f *fakeLLM) Close() error { return nil }

func TestAgentRespondIncludesProfileInSystemPrompt(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.json")
	profile := `{"name":"Ada Lovelace","bio":"Analyst and programmer."}`
	if err := os.WriteFile(path, []byte(profile), 0o600); err != nil {
		t.Fatal(err)
	}

	fake := &fakeLLM{resp: llm.Response{Text: "She wrote the first program."}}
	agent := NewAgent(fake, path, nil)

	answer, err := agent.Respond(context.Background(), "What did she do?")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if answer != "She wrote the first program." {
		t.Errorf("unexpected answer %q", answer)
	}
	if !strings.Contains(fake.lastReq.System, "Ada Lovelace") {
		t.Errorf("system prompt missing profile name: %q", fake.lastReq.System)
	}
	if !strings.Contains(fake.lastReq.System, "Analyst and programmer.") {
		t.Errorf("system prompt missing profile bio")
	}
	if len(fake.lastReq.Messages) != 1 || fake.lastReq.Messages[0].Content != "What did she do?" {
		t.Errorf("unexpected messages: %+v", fake.lastReq.Messages)
	}
}

func TestAgentFallsBackWhenProfileMissing(t *testing.T) {
	fake := &fakeLLM{resp: llm.Response{Text: "ok"}}
	agent := NewAgent(fake, filepath.Join(t.TempDir(), "nope.json"), nil)

	if _, err := agent.Respond(context.Background(), "hi"); err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if fake.lastReq.System == "" {
		t.Fatal("expected a system prompt from the built-in profile")
	}
}

func TestAgentFallsBackWhenProfileCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	agent := NewAgent(&fakeLLM{resp: llm.Response{Text: "ok"}}, path, nil)
	if agent.profile["name"] == "" {
		t.Fatal("expected built-in profile")
	}
}

func chatRequest(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Chat(rec, req)
	return rec
}

func decodeChat(t *testing.T, rec *httptest.ResponseRecorder) ChatResponse {
	t.Helper()
	var resp ChatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestChatHandlerSuccess(t *testing.T) {
	fake := &fakeLLM{resp: llm.Response{Text: "I build ML systems."}}
	h := NewHandler(NewAgent(fake, "", nil), nil, nil)

	rec := chatRequest(t, h, `{"content":"What do you do?"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	resp := decodeChat(t, rec)
	if resp.Content != "I build ML systems." {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.Agent != "knowledge" {
		t.Errorf("agent = %q, want knowledge", resp.Agent)
	}
}

func TestChatHandlerEmptyContent(t *testing.T) {
	fake := &fakeLLM{}
	h := NewHandler(NewAgent(fake, "", nil), nil, nil)

	for _, body := range []string{`{"content":""}`, `{"content":"   "}`, `{}`} {
		rec := chatRequest(t, h, body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
	if fake.calls != 0 {
		t.Errorf("LLM called %d times for empty input", fake.calls)
	}
}

func TestChatHandlerInvalidJSON(t *testing.T) {
	h := NewHandler(NewAgent(&fakeLLM{}, "", nil), nil, nil)
	rec := chatRequest(t, h, `{broken`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestChatHandlerUnconfiguredLLM(t *testing.T) {
	h := NewHandler(NewAgent(&fakeLLM{err: llm.ErrNotConfigured}, "", nil), nil, nil)

	rec := chatRequest(t, h, `{"content":"hello"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	resp := decodeChat(t, rec)
	if !strings.Contains(resp.Content, "configuration error") {
		t.Errorf("content = %q, want configuration error message", resp.Content)
	}
	if resp.Agent != "knowledge" {
		t.Errorf("agent = %q", resp.Agent)
	}
}

func TestChatHandlerUpstreamError(t *testing.T) {
	h := NewHandler(NewAgent(&fakeLLM{err: context.DeadlineExceeded}, "", nil), nil, nil)

	rec := chatRequest(t, h, `{"content":"hello"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	resp := decodeChat(t, rec)
	if strings.Contains(resp.Content, "deadline") {
		t.Errorf("internal error leaked to client: %q", resp.Content)
	}
}
