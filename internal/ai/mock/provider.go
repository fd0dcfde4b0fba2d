package mock

import (
	"context"
	"hash/fnv"
	"math"
	"path/filepath"
	"strings"

	"github.com/Cavedragon13/ai-image-organizer/internal/ai"
	"github.com/Cavedragon13/ai-image-organizer/pkg/models"
)

// EmbeddingDims is the vector size produced by the default mock embedder.
const EmbeddingDims = 64

// MockProvider satisfies models.AIProvider for testing.
type MockProvider struct {
	Name_        string
	DescribeFunc func(ctx context.Context, imagePath, model string) (string, error)
	EmbedFunc    func(ctx context.Context, texts []string) ([][]float64, error)
}

func (m *MockProvider) Name() string { return m.Name_ }

func (m *MockProvider) Describe(ctx context.Context, imagePath, model string) (string, error) {
	if m.DescribeFunc != nil {
		return m.DescribeFunc(ctx, imagePath, model)
	}
	return "", nil
}

func (m *MockProvider) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if m.EmbedFunc != nil {
		return m.EmbedFunc(ctx, texts)
	}
	return nil, nil
}

// NewMockProvider returns a MockProvider that describes images by their file
// name (underscores and dashes become spaces) and embeds text as a hashed
// bag of words. Identical descriptions embed to identical vectors.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock",
		DescribeFunc: func(_ context.Context, imagePath, _ string) (string, error) {
			base := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
			return strings.NewReplacer("_", " ", "-", " ").Replace(base), nil
		},
		EmbedFunc: func(_ context.Context, texts []string) ([][]float64, error) {
			out := make([][]float64, len(texts))
			for i, t := range texts {
				out[i] = BagOfWords(t)
			}
			return out, nil
		},
	}
}

// BagOfWords hashes each word of text into one of EmbeddingDims buckets and
// returns the unit-normalized counts. Text with no words maps to a fixed
// non-zero vector.
func BagOfWords(text string) []float64 {
	vec := make([]float64, EmbeddingDims)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(w))
		vec[h.Sum32()%EmbeddingDims]++
	}

	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		vec[0] = 1
		return vec
	}
	n := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= n
	}
	return vec
}

// NewFailingProvider returns a MockProvider that always returns the given error.
func NewFailingProvider(err error) *MockProvider {
	return &MockProvider{
		Name_: "mock-failing",
		DescribeFunc: func(_ context.Context, _, _ string) (string, error) {
			return "", err
		},
		EmbedFunc: func(_ context.Context, _ []string) ([][]float64, error) {
			return nil, err
		},
	}
}

// NewTimeoutProvider returns a MockProvider that blocks until context is cancelled.
func NewTimeoutProvider() *MockProvider {
	return &MockProvider{
		Name_: "mock-timeout",
		DescribeFunc: func(ctx context.Context, _, _ string) (string, error) {
			<-ctx.Done()
			return "", ai.ErrInferenceTimeout
		},
		EmbedFunc: func(ctx context.Context, _ []string) ([][]float64, error) {
			<-ctx.Done()
			return nil, ai.ErrInferenceTimeout
		},
	}
}

// Compile-time check that MockProvider implements AIProvider.
var _ models.AIProvider = (*MockProvider)(nil)
