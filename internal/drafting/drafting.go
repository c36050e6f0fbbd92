package drafting

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"commentflow.app/engine/core/config"
)

// Provider constants for draft generation.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Draft is a generated reply together with the model that produced it.
type Draft struct {
	Text  string `json:"reply"`
	Model string `json:"model"`
}

// Drafter generates reply drafts for viewer comments.
type Drafter interface {
	Draft(ctx context.Context, commentText string) (*Draft, error)
}

// generator is a single-model text generation call. The fallback loop is
// written against this so it can be exercised without a live provider.
type generator interface {
	generate(ctx context.Context, model, prompt string) (string, error)
}

// New creates a Drafter for the configured provider. Defaults to Gemini when
// no provider is specified.
func New(cfg config.DraftingConfig) (Drafter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("drafting API key is required")
	}
	if len(cfg.Models) == 0 {
		return nil, fmt.Errorf("at least one drafting model is required")
	}

	provider := cfg.Provider
	if provider == "" {
		provider = ProviderGemini
	}

	var gen generator
	var err error
	switch provider {
	case ProviderGemini:
		gen, err = newGeminiGenerator(cfg)
	case ProviderOpenAI:
		gen, err = newOpenAIGenerator(cfg)
	default:
		return nil, fmt.Errorf("unsupported drafting provider: %s", provider)
	}
	if err != nil {
		return nil, err
	}

	return &fallbackDrafter{gen: gen, models: cfg.Models}, nil
}

// fallbackDrafter walks an ordered model list and returns the first draft a
// model produces. Every failure moves on to the next candidate; the last
// error surfaces only when the whole list is exhausted.
type fallbackDrafter struct {
	gen    generator
	models []string
}

func (d *fallbackDrafter) Draft(ctx context.Context, commentText string) (*Draft, error) {
	prompt := buildPrompt(commentText)

	var lastErr error
	for _, model := range d.models {
		start := time.Now()
		text, err := d.gen.generate(ctx, model, prompt)
		if err != nil {
			slog.WarnContext(ctx, "draft model failed, trying next",
				"model", model,
				"error", err)
			lastErr = err
			continue
		}

		text = strings.TrimSpace(text)
		if text == "" {
			lastErr = fmt.Errorf("model %s returned an empty draft", model)
			continue
		}

		slog.DebugContext(ctx, "draft generated",
			"model", model,
			"duration_ms", time.Since(start).Milliseconds())
		return &Draft{Text: text, Model: model}, nil
	}

	return nil, fmt.Errorf("all draft models failed: %w", lastErr)
}

func buildPrompt(commentText string) string {
	return fmt.Sprintf(`As a friendly and appreciative YouTube creator, please generate a short and engaging reply to the following comment.
Your reply should be based on the content and sentiment of the comment.

**IMPORTANT INSTRUCTIONS:**
1.  IMPORTANT: First, detect the language of the comment (e.g., English, Telugu, Hindi). Your reply MUST be in the same language as the comment.
2.  **No Commitments:** Do NOT make any promises or commitments about future videos or content. If a user asks about the next video, give a friendly, non-committal answer like "I'm working on it, stay tuned!" or "Thanks for the suggestion, I'll keep it in mind!".

Comment: %q

- If the comment is positive (e.g., "Great video!", "I learned so much"), express gratitude and acknowledge the compliment.
- If the comment is a question, provide a helpful and concise answer, but without making promises.
- If the comment is negative or critical, respond politely and professionally.
- Keep the reply authentic and avoid generic phrases.

Generate the reply text only.`, commentText)
}
