package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"jobbuddy-backend/internal/llm"
)

const messageJSON = `{
  "id": "msg_01",
  "type": "message",
  "role": "assistant",
  "model": "claude-sonnet-4-20250514",
  "content": [
    {"type": "text", "text": "{\"fitScore\": 82,"},
    {"type": "text", "text": " \"suggestions\": []}"}
  ],
  "stop_reason": "end_turn",
  "stop_sequence": null,
  "usage": {"input_tokens": 120, "output_tokens": 40}
}`

func TestCompleteSendsPromptAndReadsText(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "test-key" {
			t.Errorf("expected api key header, got %q", r.Header.Get("X-Api-Key"))
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, messageJSON)
	}))
	defer srv.Close()

	client, err := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	resp, err := client.Complete(context.Background(), llm.Request{System: "be honest", Prompt: "analyze this", MaxTokens: 512})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Text != `{"fitScore": 82, "suggestions": []}` {
		t.Fatalf("unexpected text %q", resp.Text)
	}
	if resp.Model != DefaultModel || resp.InputTokens != 120 || resp.OutputTokens != 40 {
		t.Fatalf("unexpected response metadata %+v", resp)
	}
	if got["model"] != DefaultModel {
		t.Fatalf("expected default model in request, got %v", got["model"])
	}
	if got["max_tokens"] != float64(512) {
		t.Fatalf("expected max_tokens 512, got %v", got["max_tokens"])
	}
	if client.Name() != "anthropic" {
		t.Fatalf("unexpected provider name %q", client.Name())
	}
}

func TestCompleteDoesNotRetryServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"api_error","message":"boom"}}`)
	}))
	defer srv.Close()

	client, err := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.Complete(context.Background(), llm.Request{Prompt: "hi"}); err == nil {
		t.Fatalf("expected error")
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected exactly one call, got %d", n)
	}
}

func TestCompleteSurfacesDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client, err := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL, HTTPClient: srv.Client()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = client.Complete(ctx, llm.Request{Prompt: "hi"})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(Config{}); err == nil {
		t.Fatalf("expected error without api key")
	}
}
