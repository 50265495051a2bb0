// Package llm wraps the reasoning backends used for extraction and cross-validation.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/genai"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/logger"
)

// Backend is an opaque text-in, text-out reasoning service.
// Implementations must honour ctx cancellation and make exactly one request per call.
type Backend interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Name() string
}

// ErrNoBackend is returned by New when the provider is "none".
var ErrNoBackend = errors.New("no reasoning backend configured")

// New builds the backend for provider. "none" yields ErrNoBackend so callers can
// run parser-only.
func New(ctx context.Context, provider string, cfg GeminiConfig) (Backend, error) {
	switch provider {
	case "gemini":
		b, err := NewGeminiBackend(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return b, nil
	case "none", "":
		return nil, ErrNoBackend
	}
	return nil, fmt.Errorf("New: unknown provider %q", provider)
}

// GeminiConfig configures a GeminiBackend.
type GeminiConfig struct {
	Model      string
	APIVersion string
	Timeout    time.Duration
}

// GeminiBackend calls Gemini through the genai client. Credentials come from the
// environment (GOOGLE_API_KEY, or GOOGLE_GENAI_USE_VERTEXAI with a project).
type GeminiBackend struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGeminiBackend creates the genai client.
func NewGeminiBackend(ctx context.Context, cfg GeminiConfig) (*GeminiBackend, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: cfg.APIVersion},
	})
	if err != nil {
		return nil, fmt.Errorf("NewGeminiBackend: create genai client: %w", err)
	}
	return &GeminiBackend{client: client, model: cfg.Model, timeout: cfg.Timeout}, nil
}

func (b *GeminiBackend) Name() string {
	return "gemini:" + b.model
}

// Generate sends prompt as a single user turn and returns the response text.
// The call is bounded by the configured timeout; a timeout is reported as an error.
func (b *GeminiBackend) Generate(ctx context.Context, prompt string) (string, error) {
	log := logger.FromContext(ctx)

	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	temperature := float32(0.1)
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: prompt}},
		},
	}

	start := time.Now()
	resp, err := b.client.Models.GenerateContent(ctx, b.model, contents, &genai.GenerateContentConfig{
		Temperature: &temperature,
	})
	if err != nil {
		return "", fmt.Errorf("Generate: generate content: %w", err)
	}

	text := resp.Text()
	log.Debug().
		Str("model", b.model).
		Dur("elapsed", time.Since(start)).
		Int("response_chars", len(text)).
		Msg("Gemini response received")

	if text == "" {
		return "", fmt.Errorf("Generate: empty response from model")
	}
	return text, nil
}
