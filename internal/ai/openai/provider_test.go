package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Cavedragon13/ai-image-organizer/internal/config"
	"github.com/Cavedragon13/ai-image-organizer/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider(t *testing.T, apiKey string, handler http.HandlerFunc) *Provider {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewProvider(config.OpenAIConfig{
		BaseURL:    ts.URL + "/v1",
		APIKey:     apiKey,
		Model:      "gpt-4o-mini",
		EmbedModel: "text-embedding-3-small",
	})
}

func TestDescribe_ChatCompletionWithImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "img.png")
	require.NoError(t, os.WriteFile(path, []byte("\x89PNG\r\n\x1a\nfake"), 0o644))

	p := newTestProvider(t, "sk-test", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		if assert.Len(t, req.Messages, 1) && assert.Len(t, req.Messages[0].Content, 2) {
			img := req.Messages[0].Content[1]
			assert.Equal(t, "image_url", img.Type)
			assert.True(t, strings.HasPrefix(img.ImageURL.URL, "data:image/png;base64,"), img.ImageURL.URL)
		}

		w.Write([]byte(`{"choices":[{"message":{"content":"neon city night"}}]}`))
	})

	desc, err := p.Describe(context.Background(), path, "")
	require.NoError(t, err)
	assert.Equal(t, "neon city night", desc)
	assert.Equal(t, "openai", p.Name())
}

func TestDescribe_NoChoices(t *testing.T) {
	path := filepath.Join(t.TempDir(), "img.jpg")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	p := newTestProvider(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"choices":[]}`))
	})

	_, err := p.Describe(context.Background(), path, "")
	assert.ErrorIs(t, err, models.ErrInvalidResponse)
}

func TestEmbed_OrdersByIndex(t *testing.T) {
	p := newTestProvider(t, "sk-test", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		var req embeddingRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "text-embedding-3-small", req.Model)
		w.Write([]byte(`{"data":[{"index":1,"embedding":[0,1]},{"index":0,"embedding":[1,0]}]}`))
	})

	vecs, err := p.Embed(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, [][]float64{{1, 0}, {0, 1}}, vecs)
}

func TestEmbed_Unauthorized(t *testing.T) {
	p := newTestProvider(t, "bad", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := p.Embed(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, models.ErrProviderUnavailable)
}
