package llms

import (
	"fmt"

	"github.com/kadirpekel/sitesmith/pkg/config"
)

// NewProvider creates a provider from config.
func NewProvider(cfg *config.LLMConfig) (Provider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("LLM config cannot be nil")
	}

	switch cfg.Provider {
	case config.LLMProviderAnthropic:
		return NewAnthropicProvider(cfg)
	case config.LLMProviderOpenAI:
		return NewOpenAIProvider(cfg)
	case config.LLMProviderGemini:
		return NewGeminiProvider(cfg)
	case config.LLMProviderOllama:
		return NewOllamaProvider(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s (supported: anthropic, openai, gemini, ollama)", cfg.Provider)
	}
}

// BuildRegistry creates and registers a provider for every configured LLM.
func BuildRegistry(llms map[string]*config.LLMConfig) (*Registry, error) {
	registry := NewRegistry()
	for name, cfg := range llms {
		provider, err := NewProvider(cfg)
		if err != nil {
			registry.Close()
			return nil, fmt.Errorf("failed to create LLM '%s': %w", name, err)
		}
		if err := registry.Register(name, provider); err != nil {
			provider.Close()
			registry.Close()
			return nil, err
		}
	}
	return registry, nil
}
