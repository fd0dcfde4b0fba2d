package ai

import (
	"fmt"

	"github.com/Cavedragon13/ai-image-organizer/internal/ai/ollama"
	"github.com/Cavedragon13/ai-image-organizer/internal/ai/openai"
	"github.com/Cavedragon13/ai-image-organizer/internal/ai/vllm"
	"github.com/Cavedragon13/ai-image-organizer/internal/config"
	"github.com/Cavedragon13/ai-image-organizer/pkg/models"
)

// NewProvider constructs the appropriate AI provider based on config.
// Called once at server startup.
func NewProvider(cfg config.AIConfig) (models.AIProvider, error) {
	switch cfg.Provider {
	case "ollama":
		return ollama.NewProvider(cfg.Ollama), nil
	case "vllm":
		return vllm.NewProvider(cfg.VLLM), nil
	case "openai":
		return openai.NewProvider(cfg.OpenAI), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q: must be one of ollama, vllm, openai", cfg.Provider)
	}
}
