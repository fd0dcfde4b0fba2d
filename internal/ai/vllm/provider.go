package vllm

import (
	"github.com/Cavedragon13/ai-image-organizer/internal/ai/openai"
	"github.com/Cavedragon13/ai-image-organizer/internal/config"
)

// NewProvider returns a client for vLLM's OpenAI-compatible server.
func NewProvider(cfg config.VLLMConfig) *openai.Provider {
	return openai.NewNamedProvider("vllm", config.OpenAIConfig{
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		EmbedModel: cfg.EmbedModel,
	})
}
