package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"jobbuddy-backend/internal/shared/auth"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *auth.Signer) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	signer, err := auth.NewSigner("test-secret", time.Hour, "dev")
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	router := gin.New()
	router.Use(Auth(signer, "/api/v1/auth/", "/api/v1/health"))
	router.GET("/api/v1/resumes", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": UserIDFromContext(c), "username": UsernameFromContext(c)})
	})
	router.POST("/api/v1/auth/login", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.OPTIONS("/api/v1/resumes", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router, signer
}

func TestAuthAllowsOptionsWithoutIdentity(t *testing.T) {
	router, _ := newAuthRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/resumes", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
}

func TestAuthSkipsPublicPrefixes(t *testing.T) {
	router, _ := newAuthRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestAuthRejectsMissingToken(t *testing.T) {
	router, _ := newAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resumes", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthRejectsGarbageToken(t *testing.T) {
	router, _ := newAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resumes", nil)
	req.Header.Set("Authorization", "Bearer not.a.jwt")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.Code)
	}
}

func TestAuthSetsIdentityFromToken(t *testing.T) {
	router, signer := newAuthRouter(t)
	token, err := signer.Sign("user-42", "alice")
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/resumes", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if body := resp.Body.String(); body != `{"userId":"user-42","username":"alice"}` {
		t.Fatalf("unexpected body %s", body)
	}
}
