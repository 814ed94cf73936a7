package summarizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"goonzette-automation/internal/domain"
	"goonzette-automation/internal/infra/anthropic"
)

type messagesClient interface {
	CreateMessage(ctx context.Context, req anthropic.MessagesRequest) (anthropic.MessagesResponse, error)
}

// Anthropic implements domain.Summarizer via the Messages API.
type Anthropic struct {
	client  messagesClient
	model   string
	timeout time.Duration
}

// NewAnthropic creates the summarization provider.
func NewAnthropic(client messagesClient, model string, timeout time.Duration) *Anthropic {
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Anthropic{client: client, model: model, timeout: timeout}
}

var _ domain.Summarizer = (*Anthropic)(nil)

// Summarize sends the prompt and returns the generated text. Every failure
// mode (transport, HTTP status, empty reply) surfaces as one coarse error.
func (a *Anthropic) Summarize(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		maxTokens = 500
	}
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.CreateMessage(callCtx, anthropic.MessagesRequest{
		Model:     a.model,
		MaxTokens: maxTokens,
		Messages: []anthropic.Message{
			{Role: anthropic.RoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic message: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("anthropic message: empty reply")
	}
	return text, nil
}
