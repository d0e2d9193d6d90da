package factory

import (
	"fmt"

	"ai-notes-rag-be/pkg/llm"
	"ai-notes-rag-be/pkg/llm/ollama"
	"ai-notes-rag-be/pkg/llm/openai"
)

// NewLLMProvider selects the chat backend once at construction time.
func NewLLMProvider(providerType, modelName, baseURL, apiKey string) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewProvider(baseURL, modelName), nil
	case "openai":
		if apiKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		return openai.NewProvider(apiKey, modelName), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}
