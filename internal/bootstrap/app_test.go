package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"jobbuddy-backend/internal/llm"
	"jobbuddy-backend/internal/shared/config"
)

type fixedLLM struct{ text string }

func (fixedLLM) Name() string { return "fixed" }

func (f fixedLLM) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	return llm.Response{Text: f.text, Model: "fixed-model"}, nil
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	app, err := Build(config.Config{
		Env:                  "dev",
		LocalStoreDir:        t.TempDir(),
		JWTTTL:               time.Hour,
		LLMTimeout:           time.Second,
		AnalyzeRatePerMinute: 60,
		AnalyzeBurst:         5,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	t.Cleanup(app.Close)
	app.UsersService.BcryptCost = bcrypt.MinCost
	return app
}

func call(t *testing.T, app *App, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	app.Router.ServeHTTP(resp, req)
	return resp
}

func register(t *testing.T, app *App, username string) string {
	t.Helper()
	resp := call(t, app, http.MethodPost, "/api/v1/auth/register", "", `{"username":"`+username+`","password":"correct horse"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("register %s: %d %s", username, resp.Code, resp.Body.String())
	}
	var session struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &session); err != nil || session.Token == "" {
		t.Fatalf("decode session: %v", err)
	}
	return session.Token
}

func TestBuildFallsBackToMemoryAndPlaceholder(t *testing.T) {
	app := newTestApp(t)
	if app.DB != nil || app.Redis != nil {
		t.Fatalf("expected memory-backed app")
	}
	if app.LLM.Name() != "placeholder" {
		t.Fatalf("expected placeholder llm, got %s", app.LLM.Name())
	}
}

func TestBuildRequiresProviderKeyInProduction(t *testing.T) {
	if _, err := BuildLLM(config.Config{Env: "production"}); err == nil {
		t.Fatalf("expected error without ANTHROPIC_API_KEY in production")
	}
	client, err := BuildLLM(config.Config{Env: "production", AnthropicAPIKey: "sk-test"})
	if err != nil || client.Name() != "anthropic" {
		t.Fatalf("expected anthropic client, got %v %v", client, err)
	}
}

func TestAnalyzeFlowEndToEnd(t *testing.T) {
	app := newTestApp(t)
	app.AnalysesService.LLM = fixedLLM{text: "```json\n{\"fitScore\": 82, \"suggestions\": [\"Lead with Go\"], \"strategicNotes\": \"Apply.\"}\n```"}

	alice := register(t, app, "alice")
	bob := register(t, app, "bob")

	resp := call(t, app, http.MethodPost, "/api/v1/resumes", alice, `{"name":"Backend","content":"Jane Doe, 6 yrs Go"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create resume: %d %s", resp.Code, resp.Body.String())
	}
	var resume struct {
		ResumeID string `json:"resumeId"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &resume); err != nil {
		t.Fatalf("decode resume: %v", err)
	}

	resp = call(t, app, http.MethodPost, "/api/v1/resumes/"+resume.ResumeID+"/analyze", bob, `{"jobText":"Senior Engineer, 5 yrs Go"}`)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for bob, got %d", resp.Code)
	}

	resp = call(t, app, http.MethodPost, "/api/v1/resumes/"+resume.ResumeID+"/analyze", alice, `{"jobText":"Senior Engineer, 5 yrs Go"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("analyze: %d %s", resp.Code, resp.Body.String())
	}
	var analysis struct {
		FitScore int    `json:"fitScore"`
		ResumeID string `json:"resumeId"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &analysis); err != nil {
		t.Fatalf("decode analysis: %v", err)
	}
	if analysis.FitScore != 82 || analysis.ResumeID != resume.ResumeID {
		t.Fatalf("unexpected analysis %+v", analysis)
	}

	resp = call(t, app, http.MethodDelete, "/api/v1/resumes/"+resume.ResumeID, alice, "")
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 deleting referenced resume, got %d", resp.Code)
	}

	resp = call(t, app, http.MethodGet, "/api/v1/analyses", bob, "")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"items":[]`) {
		t.Fatalf("expected empty history for bob, got %d %s", resp.Code, resp.Body.String())
	}

	resp = call(t, app, http.MethodDelete, "/api/v1/account", alice, "")
	if resp.Code != http.StatusOK {
		t.Fatalf("delete account: %d %s", resp.Code, resp.Body.String())
	}
	resp = call(t, app, http.MethodPost, "/api/v1/auth/login", "", `{"username":"alice","password":"correct horse"}`)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after account deletion, got %d", resp.Code)
	}
}

func TestPlaceholderProviderReturnsBadGateway(t *testing.T) {
	app := newTestApp(t)
	token := register(t, app, "carol")
	resp := call(t, app, http.MethodPost, "/api/v1/resumes", token, `{"name":"Main","content":"resume"}`)
	var resume struct {
		ResumeID string `json:"resumeId"`
	}
	_ = json.Unmarshal(resp.Body.Bytes(), &resume)

	resp = call(t, app, http.MethodPost, "/api/v1/resumes/"+resume.ResumeID+"/analyze", token, `{"jobText":"job"}`)
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 from placeholder provider, got %d", resp.Code)
	}
}
