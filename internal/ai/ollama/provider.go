package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Cavedragon13/ai-image-organizer/internal/ai/aihttp"
	"github.com/Cavedragon13/ai-image-organizer/internal/config"
	"github.com/Cavedragon13/ai-image-organizer/pkg/models"
)

// Provider implements models.AIProvider using Ollama's generate and embed APIs.
type Provider struct {
	cfg    config.OllamaConfig
	client *http.Client
}

func NewProvider(cfg config.OllamaConfig) *Provider {
	return &Provider{
		cfg:    cfg,
		client: &http.Client{},
	}
}

func (p *Provider) Name() string { return "ollama" }

// Describe sends the image to /api/generate. An empty model falls back to the configured one.
func (p *Provider) Describe(ctx context.Context, imagePath, model string) (string, error) {
	if model == "" {
		model = p.cfg.Model
	}
	img, _, err := aihttp.ReadImage(imagePath)
	if err != nil {
		return "", err
	}

	var resp generateResponse
	err = aihttp.PostJSON(ctx, p.client, p.url("/api/generate"), nil, generateRequest{
		Model:  model,
		Prompt: aihttp.DescribePrompt,
		Images: []string{img},
		Stream: false,
	}, &resp)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Response) == "" {
		return "", fmt.Errorf("%w: empty response", models.ErrInvalidResponse)
	}
	return resp.Response, nil
}

// Embed sends all texts to /api/embed in a single batch.
func (p *Provider) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	var resp embedResponse
	err := aihttp.PostJSON(ctx, p.client, p.url("/api/embed"), nil, embedRequest{
		Model: p.cfg.EmbedModel,
		Input: texts,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("%w: %d embeddings for %d inputs", models.ErrInvalidResponse, len(resp.Embeddings), len(texts))
	}
	return resp.Embeddings, nil
}

func (p *Provider) url(path string) string {
	return strings.TrimRight(p.cfg.BaseURL, "/") + path
}

// --- Ollama request/response types ---

type generateRequest struct {
	Model  string   `json:"model"`
	Prompt string   `json:"prompt"`
	Images []string `json:"images"`
	Stream bool     `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float64 `json:"embeddings"`
}

var _ models.AIProvider = (*Provider)(nil)
