package respond

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jobbuddy-backend/internal/shared/apperr"
	"jobbuddy-backend/internal/shared/telemetry"
)

// ErrorBody defines the standardized error object.
type ErrorBody struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error sends a standardized error response.
func Error(c *gin.Context, status int, code, message string, details interface{}) {
	fields := map[string]any{
		"status":     status,
		"code":       code,
		"message":    message,
		"path":       c.Request.URL.Path,
		"method":     c.Request.Method,
		"request_id": c.GetString("requestId"),
	}
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	telemetry.Error("http.error", fields)

	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// Err maps an application error onto its HTTP status and error code.
// fallback is the message used for unclassified errors, whose text is never exposed.
func Err(c *gin.Context, err error, fallback string) {
	var parseErr *apperr.ParseError
	var providerErr *apperr.ProviderError
	switch {
	case errors.As(err, &parseErr):
		Error(c, http.StatusBadGateway, "parse_error", "provider response could not be parsed", gin.H{
			"reason":  parseErr.Reason,
			"rawText": parseErr.Raw,
		})
	case errors.As(err, &providerErr):
		if providerErr.Timeout {
			Error(c, http.StatusGatewayTimeout, "provider_timeout", "analysis provider timed out", nil)
			return
		}
		Error(c, http.StatusBadGateway, "provider_error", "analysis provider request failed", nil)
	case errors.Is(err, apperr.ErrValidation):
		Error(c, http.StatusBadRequest, "validation_error", messageOr(err, "invalid request"), nil)
	case errors.Is(err, apperr.ErrAuthorization):
		Error(c, http.StatusForbidden, "forbidden", messageOr(err, "access denied"), nil)
	case errors.Is(err, apperr.ErrNotFound):
		Error(c, http.StatusNotFound, "not_found", messageOr(err, "not found"), nil)
	case errors.Is(err, apperr.ErrConstraint):
		Error(c, http.StatusConflict, "conflict", messageOr(err, "conflict"), nil)
	default:
		if fallback == "" {
			fallback = "internal error"
		}
		telemetry.Error("http.internal", map[string]any{
			"request_id": c.GetString("requestId"),
			"path":       c.Request.URL.Path,
			"error":      err,
		})
		Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}

func messageOr(err error, def string) string {
	if msg := apperr.Message(err); msg != "" {
		return msg
	}
	return def
}
