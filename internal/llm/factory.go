package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abhisek/quizengine/internal/store"
)

// NewProvider creates a Provider from configuration, wrapped with the
// rate limit, retry and event logging decorators. eventRepo may be nil.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, logger *slog.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// caller -> rate limit -> retry -> logging -> base
	p := WithLogging(base, eventRepo, logger)
	p = WithRetry(p, cfg.Retry)
	p = WithRateLimit(p, cfg.RateLimit)
	return p, nil
}
