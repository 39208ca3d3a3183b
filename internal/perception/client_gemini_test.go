package perception

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(serverURL string) *GeminiClient {
	return NewGeminiClientWithConfig(GeminiConfig{
		APIKey:  "test-key",
		BaseURL: serverURL,
		Model:   "gemini-2.5-pro",
		Timeout: 5 * time.Second,
	})
}

func writeGeminiReply(w http.ResponseWriter, text string) {
	reply := map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{
				"role":  "model",
				"parts": []map[string]string{{"text": text}},
			},
			"finishReason": "STOP",
		}},
	}
	json.NewEncoder(w).Encode(reply)
}

func TestChatWithHistory_RoleMappingAndSystemInstruction(t *testing.T) {
	var captured GeminiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		writeGeminiReply(w, "The premium is 500.")
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	messages := []Message{
		{Role: RoleUser, Content: "What is the premium for POL001?"},
		{Role: RoleAssistant, Content: "The premium is 500."},
		{Role: RoleUser, Content: "And the renewal date?"},
	}

	got, err := c.ChatWithHistory(context.Background(), "You are an assistant.", messages)
	if err != nil {
		t.Fatalf("ChatWithHistory() error: %v", err)
	}
	if got != "The premium is 500." {
		t.Fatalf("ChatWithHistory() = %q", got)
	}

	if len(captured.Contents) != 3 {
		t.Fatalf("request carried %d contents, want 3", len(captured.Contents))
	}
	wantRoles := []string{"user", "model", "user"}
	for i, want := range wantRoles {
		if captured.Contents[i].Role != want {
			t.Fatalf("contents[%d].Role = %q, want %q", i, captured.Contents[i].Role, want)
		}
	}
	if captured.SystemInstruction == nil {
		t.Fatal("request missing systemInstruction")
	}
	if captured.SystemInstruction.Parts[0].Text != "You are an assistant." {
		t.Fatalf("systemInstruction = %q", captured.SystemInstruction.Parts[0].Text)
	}
}

func TestChatWithHistory_NoSystemInstructionWhenEmpty(t *testing.T) {
	var captured GeminiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		writeGeminiReply(w, "ok")
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	if _, err := c.ChatWithHistory(context.Background(), "", []Message{{Role: RoleUser, Content: "hi"}}); err != nil {
		t.Fatalf("ChatWithHistory() error: %v", err)
	}
	if captured.SystemInstruction != nil {
		t.Fatal("empty system prompt still produced a systemInstruction")
	}
}

func TestChatWithHistory_RetriesRateLimit(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		writeGeminiReply(w, "recovered")
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	got, err := c.ChatWithHistory(context.Background(), "", []Message{{Role: RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("ChatWithHistory() error: %v", err)
	}
	if got != "recovered" {
		t.Fatalf("ChatWithHistory() = %q, want %q", got, "recovered")
	}
	if attempts != 2 {
		t.Fatalf("server saw %d attempts, want 2", attempts)
	}
}

func TestChatWithHistory_NonRetryableStatus(t *testing.T) {
	var attempts int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	if _, err := c.ChatWithHistory(context.Background(), "", []Message{{Role: RoleUser, Content: "hi"}}); err == nil {
		t.Fatal("ChatWithHistory() on 400 returned nil error, want error")
	}
	if attempts != 1 {
		t.Fatalf("server saw %d attempts for a 400, want 1 (no retry)", attempts)
	}
}

func TestChatWithHistory_APIErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"code":403,"message":"key revoked","status":"PERMISSION_DENIED"}}`))
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	if _, err := c.ChatWithHistory(context.Background(), "", []Message{{Role: RoleUser, Content: "hi"}}); err == nil {
		t.Fatal("ChatWithHistory() on API error body returned nil error, want error")
	}
}

func TestChatWithHistory_MissingAPIKey(t *testing.T) {
	c := NewGeminiClientWithConfig(GeminiConfig{})
	if _, err := c.ChatWithHistory(context.Background(), "", []Message{{Role: RoleUser, Content: "hi"}}); err == nil {
		t.Fatal("ChatWithHistory() without API key returned nil error, want error")
	}
}

func TestChatWithHistory_EmptyMessages(t *testing.T) {
	c := NewGeminiClient("test-key")
	if _, err := c.ChatWithHistory(context.Background(), "", nil); err == nil {
		t.Fatal("ChatWithHistory() with no messages returned nil error, want error")
	}
}

func TestCompleteWithSystem_WrapsSingleMessage(t *testing.T) {
	var captured GeminiRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		writeGeminiReply(w, "ok")
	}))
	defer server.Close()

	c := newTestClient(server.URL)
	if _, err := c.CompleteWithSystem(context.Background(), "system", "user prompt"); err != nil {
		t.Fatalf("CompleteWithSystem() error: %v", err)
	}
	if len(captured.Contents) != 1 || captured.Contents[0].Parts[0].Text != "user prompt" {
		t.Fatalf("request contents = %+v", captured.Contents)
	}
}
