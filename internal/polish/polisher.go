// Package polish rewrites supplier remarks through a remote language model.
// Polishing is best effort: every failure falls back to the original text.
package polish

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"google.golang.org/genai"

	"github.com/twl-tooling/quotedesk/internal/config"
)

const promptTemplate = `You are a professional industrial tooling procurement assistant.
Rewrite the following supplier remarks to be more professional, concise, and technically accurate.
Keep the language in Traditional Chinese (Taiwan).

Original Text: %s`

// Polisher rewrites free text. Implementations never fail; they return the input on error.
type Polisher interface {
	Polish(ctx context.Context, text string) string
}

// Passthrough returns text unchanged. It is used when no API key is configured.
type Passthrough struct{}

func (Passthrough) Polish(ctx context.Context, text string) string {
	return text
}

// MinPolishRunes is the shortest text worth sending for polishing
const MinPolishRunes = 5

// GenerateFunc sends a prompt to the model and returns the raw reply
type GenerateFunc func(ctx context.Context, prompt string) (string, error)

// GeminiPolisher polishes text with Google's Gemini API
type GeminiPolisher struct {
	generate GenerateFunc
	model    string
	timeout  time.Duration
}

// NewGeminiPolisher creates a polisher backed by the Gemini API
func NewGeminiPolisher(ctx context.Context, apiKey, model string, timeout time.Duration) (*GeminiPolisher, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if model == "" {
		model = "gemini-3-flash-preview"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	generate := func(ctx context.Context, prompt string) (string, error) {
		resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
		if err != nil {
			return "", err
		}
		return resp.Text(), nil
	}
	return NewGeminiPolisherWithGenerator(generate, model, timeout), nil
}

// NewGeminiPolisherWithGenerator builds a polisher around an existing model call
func NewGeminiPolisherWithGenerator(generate GenerateFunc, model string, timeout time.Duration) *GeminiPolisher {
	return &GeminiPolisher{generate: generate, model: model, timeout: timeout}
}

// Polish asks the model for a rewrite. Blank text and text shorter than
// MinPolishRunes is returned without a call.
func (p *GeminiPolisher) Polish(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" || utf8.RuneCountInString(text) < MinPolishRunes {
		return text
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	reply, err := p.generate(ctx, fmt.Sprintf(promptTemplate, text))
	if err != nil {
		slog.ErrorContext(ctx, "remarks polishing failed, keeping original text",
			"model", p.model,
			"error", err,
		)
		return text
	}

	polished := strings.TrimSpace(reply)
	if polished == "" {
		slog.WarnContext(ctx, "remarks polishing returned no text, keeping original text", "model", p.model)
		return text
	}
	return polished
}

// NewFromConfig returns a Gemini polisher when an API key is configured and a
// Passthrough otherwise.
func NewFromConfig(ctx context.Context, cfg config.PolishConfig) Polisher {
	if cfg.APIKey == "" {
		slog.Warn("API key is missing, remarks will be returned unpolished")
		return Passthrough{}
	}
	p, err := NewGeminiPolisher(ctx, cfg.APIKey, cfg.Model, cfg.Timeout)
	if err != nil {
		slog.Error("failed to initialize remarks polisher, remarks will be returned unpolished", "error", err)
		return Passthrough{}
	}
	slog.Info("remarks polisher enabled", "model", cfg.Model)
	return p
}
