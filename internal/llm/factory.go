package llm

import (
	"fmt"
	"strings"

	"github.com/dashdoc/webmanager/internal/model"
)

// NewProvider creates a new LLM provider based on configuration
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openai":
		return NewOpenAIProvider(config)

	case "":
		// No provider configured - return nil (notes disabled)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai)", config.Provider)
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(modelConfig model.LLMConfig, httpConfig model.HTTPConfig) Config {
	return Config{
		Provider:           modelConfig.Provider,
		Model:              modelConfig.Model,
		TranscriptionModel: modelConfig.TranscriptionModel,
		APIKey:             modelConfig.APIKey,
		BaseURL:            modelConfig.BaseURL,
		Timeout:            modelConfig.Timeout,
		MaxTokens:          modelConfig.MaxTokens,
		HTTPProxy:          httpConfig.HTTPProxy,
		HTTPSProxy:         httpConfig.HTTPSProxy,
		NoProxy:            httpConfig.NoProxy,
	}
}
