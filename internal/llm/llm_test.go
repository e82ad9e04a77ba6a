package llm

import (
	"context"
	"errors"
	"testing"
)

func TestPlaceholderClientIsNotConfigured(t *testing.T) {
	var c Client = PlaceholderClient{}
	if c.Name() != "placeholder" {
		t.Fatalf("unexpected name %q", c.Name())
	}
	_, err := c.Complete(context.Background(), Request{})
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
