package extraction

import (
	"context"
	"fmt"

	"newsdesk/config"
)

// NewCompleter builds the backend named by cfg.Provider.
func NewCompleter(ctx context.Context, cfg config.ExtractionConfig) (Completer, error) {
	switch cfg.Provider {
	case "dashscope", "":
		return NewDashScope(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Temperature, cfg.TopP)
	case "openai":
		return NewOpenAI(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Temperature, cfg.TopP)
	case "gemini":
		return NewGemini(ctx, cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Temperature, cfg.TopP)
	case "cohere":
		return NewCohere(cfg.APIKey, cfg.Model, cfg.Temperature)
	default:
		return nil, fmt.Errorf("unknown extraction provider %q", cfg.Provider)
	}
}
