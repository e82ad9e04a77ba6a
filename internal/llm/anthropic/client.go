// Package anthropic implements llm.Client on the Anthropic Messages API.
package anthropic

import (
	"context"
	"net/http"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/pkg/errors"

	"jobbuddy-backend/internal/llm"
)

const (
	// DefaultModel is used when no model is configured.
	DefaultModel = "claude-sonnet-4-20250514"
	providerName = "anthropic"
)

// Config holds the adapter settings.
type Config struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
}

// Client talks to Claude through the official SDK. SDK retries are off;
// callers decide what a failure means.
type Client struct {
	api   sdk.Client
	model string
}

// NewClient creates a new Claude API client.
func NewClient(cfg Config) (client *Client, err error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		err = errors.New("ANTHROPIC_API_KEY is required")
		return client, err
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, option.WithBaseURL(base))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	client = &Client{
		api:   sdk.NewClient(opts...),
		model: model,
	}
	return client, err
}

// Name identifies the provider in persisted results.
func (c *Client) Name() string { return providerName }

// Complete sends one Messages request and concatenates the text blocks.
func (c *Client) Complete(ctx context.Context, req llm.Request) (resp llm.Response, err error) {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = llm.DefaultMaxTokens
	}
	params := sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt)),
		},
	}
	if strings.TrimSpace(req.System) != "" {
		params.System = []sdk.TextBlockParam{{Text: req.System}}
	}

	var msg *sdk.Message
	msg, err = c.api.Messages.New(ctx, params)
	if err != nil {
		err = errors.Wrap(err, "anthropic messages request failed")
		return resp, err
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(text.String()) == "" {
		err = errors.Errorf("anthropic response had no text content (stop_reason=%s)", msg.StopReason)
		return resp, err
	}

	resp = llm.Response{
		Text:         text.String(),
		Model:        string(msg.Model),
		StopReason:   string(msg.StopReason),
		InputTokens:  msg.Usage.InputTokens,
		OutputTokens: msg.Usage.OutputTokens,
	}
	return resp, err
}

var _ llm.Client = (*Client)(nil)
