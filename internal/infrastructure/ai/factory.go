package ai

import (
	"fmt"
	"os"

	"github.com/planwright/planwright/internal/domain/ai"
)

func NewProvider(providerName string, modelName string) (ai.Provider, error) {
	switch providerName {
	case "stub", "":
		return NewStubProvider(modelName), nil
	case "ollama":
		if modelName == "" {
			modelName = "llama3"
		}
		return NewOllamaProvider(modelName), nil
	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		return NewOpenAIProvider(modelName, apiKey), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", providerName)
	}
}

// GetDefaultProvider returns a provider based on environment variables or config defaults.
func GetDefaultProvider(providerName, modelName string) (ai.Provider, error) {
	// 1. Check environment variables
	envProvider := os.Getenv("PLANWRIGHT_AI_PROVIDER")
	envModel := os.Getenv("PLANWRIGHT_AI_MODEL")

	if envProvider != "" {
		providerName = envProvider
	}
	if envModel != "" {
		modelName = envModel
	}

	return NewProvider(providerName, modelName)
}
