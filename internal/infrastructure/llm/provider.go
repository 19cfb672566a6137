package llm

import (
	"fmt"
	"net/http"

	"NewsDigest/internal/config"
	"NewsDigest/internal/ports"
)

// New picks the adapter matching the configured provider.
func New(cfg config.EnrichmentConfig, client *http.Client) (ports.TextGenerator, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewChatGPTClient(cfg, client), nil
	case config.ProviderAnthropic:
		return NewAnthropicClient(cfg, client), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
