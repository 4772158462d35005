package llm

import (
	"context"

	"fridge-chef/internal/config"
)

// NewFromConfig builds the generator of the configured provider. It returns
// ErrMissingAPIKey when that provider has no key, without touching the network.
// The returned Closer is nil when the provider holds no resources.
func NewFromConfig(ctx context.Context, cfg *config.Config) (JSONGenerator, Closer, error) {
	if cfg.LLMProvider == config.ProviderGroq {
		gen, err := NewGroqClient(cfg.APIKey(), cfg.GroqModel)
		return gen, nil, err
	}

	gen, err := NewGeminiClient(ctx, cfg.APIKey(), cfg.GeminiModel)
	if err != nil {
		return nil, nil, err
	}
	return gen, gen, nil
}
