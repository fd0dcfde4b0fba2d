package openai

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/Cavedragon13/ai-image-organizer/internal/ai/aihttp"
	"github.com/Cavedragon13/ai-image-organizer/internal/config"
	"github.com/Cavedragon13/ai-image-organizer/pkg/models"
)

// describeMaxTokens caps the caption length; descriptions are a handful of words.
const describeMaxTokens = 64

// Provider implements models.AIProvider against an OpenAI-compatible API
// (chat completions with image input, and embeddings).
type Provider struct {
	name   string
	cfg    config.OpenAIConfig
	client *http.Client
}

func NewProvider(cfg config.OpenAIConfig) *Provider {
	return NewNamedProvider("openai", cfg)
}

// NewNamedProvider creates a client for any server speaking the OpenAI API.
func NewNamedProvider(name string, cfg config.OpenAIConfig) *Provider {
	return &Provider{name: name, cfg: cfg, client: &http.Client{}}
}

func (p *Provider) Name() string { return p.name }

func (p *Provider) Describe(ctx context.Context, imagePath, model string) (string, error) {
	if model == "" {
		model = p.cfg.Model
	}
	img, contentType, err := aihttp.ReadImage(imagePath)
	if err != nil {
		return "", err
	}

	req := chatRequest{
		Model:     model,
		MaxTokens: describeMaxTokens,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: aihttp.DescribePrompt},
				{Type: "image_url", ImageURL: &imageURL{URL: fmt.Sprintf("data:%s;base64,%s", contentType, img)}},
			},
		}},
	}

	var resp chatResponse
	if err := aihttp.PostJSON(ctx, p.client, p.url("/chat/completions"), p.headers(), req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: no completion content", models.ErrInvalidResponse)
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *Provider) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	var resp embeddingResponse
	err := aihttp.PostJSON(ctx, p.client, p.url("/embeddings"), p.headers(), embeddingRequest{
		Model: p.cfg.EmbedModel,
		Input: texts,
	}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: %d embeddings for %d inputs", models.ErrInvalidResponse, len(resp.Data), len(texts))
	}

	sort.Slice(resp.Data, func(i, j int) bool { return resp.Data[i].Index < resp.Data[j].Index })
	out := make([][]float64, len(resp.Data))
	for i, d := range resp.Data {
		out[i] = d.Embedding
	}
	return out, nil
}

func (p *Provider) url(path string) string {
	return strings.TrimRight(p.cfg.BaseURL, "/") + path
}

func (p *Provider) headers() map[string]string {
	if p.cfg.APIKey == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + p.cfg.APIKey}
}

// --- OpenAI request/response types ---

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

var _ models.AIProvider = (*Provider)(nil)
