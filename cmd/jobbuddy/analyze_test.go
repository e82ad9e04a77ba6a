package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const providerReply = `{
  "id": "msg_01",
  "type": "message",
  "role": "assistant",
  "model": "claude-sonnet-4-20250514",
  "content": [{"type": "text", "text": "{\"fitScore\": \"82%\", \"suggestions\": [\"Lead with Go\"], \"strategicNotes\": \"Apply.\"}"}],
  "stop_reason": "end_turn",
  "stop_sequence": null,
  "usage": {"input_tokens": 10, "output_tokens": 5}
}`

func TestAnalyzeCommandPrintsParsedJSON(t *testing.T) {
	var prompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		prompt = string(body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, providerReply)
	}))
	defer srv.Close()

	t.Setenv("ANTHROPIC_API_KEY", "test-key")
	t.Setenv("ANTHROPIC_BASE_URL", srv.URL)
	t.Setenv("ENV", "dev")

	dir := t.TempDir()
	resumePath := filepath.Join(dir, "resume.txt")
	jobPath := filepath.Join(dir, "job.txt")
	if err := os.WriteFile(resumePath, []byte("Jane Doe, 6 yrs Go"), 0o600); err != nil {
		t.Fatalf("write resume: %v", err)
	}
	if err := os.WriteFile(jobPath, []byte("Senior Engineer, 5 yrs Go"), 0o600); err != nil {
		t.Fatalf("write job: %v", err)
	}

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{"analyze", resumePath, jobPath, "--source", "linkedin"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		analyzeJobSource = ""
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("execute: %v (stderr %s)", err, stderr.String())
	}
	var out struct {
		Provider    string   `json:"provider"`
		FitScore    int      `json:"fitScore"`
		Suggestions []string `json:"suggestions"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		t.Fatalf("decode output %q: %v", stdout.String(), err)
	}
	if out.Provider != "anthropic" || out.FitScore != 82 || len(out.Suggestions) != 1 {
		t.Fatalf("unexpected output %+v", out)
	}
	if !strings.Contains(prompt, "Jane Doe") || !strings.Contains(prompt, "Job Source: linkedin") {
		t.Fatalf("expected resume and job source in prompt")
	}
}

func TestMigrateRejectsUnknownDirection(t *testing.T) {
	rootCmd.SetArgs([]string{"migrate", "sideways"})
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(io.Discard)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	if err := rootCmd.Execute(); err == nil {
		t.Fatalf("expected error for unknown direction")
	}
}
