package mock_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Cavedragon13/ai-image-organizer/internal/ai"
	"github.com/Cavedragon13/ai-image-organizer/internal/ai/mock"
	"github.com/Cavedragon13/ai-image-organizer/internal/analysis"
	"github.com/Cavedragon13/ai-image-organizer/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- NewMockProvider ---

func TestNewMockProvider_Name(t *testing.T) {
	p := mock.NewMockProvider()
	assert.Equal(t, "mock", p.Name())
}

func TestNewMockProvider_DescribeUsesFileName(t *testing.T) {
	p := mock.NewMockProvider()
	desc, err := p.Describe(context.Background(), "/in/sunset_over-ocean.JPG", "any")

	require.NoError(t, err)
	assert.Equal(t, "sunset over ocean", desc)
}

func TestNewMockProvider_Embed(t *testing.T) {
	p := mock.NewMockProvider()
	vecs, err := p.Embed(context.Background(), []string{"red car", "red car", "blue boat"})

	require.NoError(t, err)
	require.Len(t, vecs, 3)
	for _, v := range vecs {
		assert.Len(t, v, mock.EmbeddingDims)
	}
	assert.InDelta(t, 1.0, analysis.CosineSimilarity(vecs[0], vecs[1]), 1e-9)
	assert.Less(t, analysis.CosineSimilarity(vecs[0], vecs[2]), 1.0)
}

func TestBagOfWords_EmptyIsNonZero(t *testing.T) {
	v := mock.BagOfWords("   ")
	assert.Greater(t, analysis.Norm(v), 0.0)
}

// --- NewFailingProvider ---

func TestNewFailingProvider_Name(t *testing.T) {
	p := mock.NewFailingProvider(ai.ErrProviderUnavailable)
	assert.Equal(t, "mock-failing", p.Name())
}

func TestNewFailingProvider_Describe(t *testing.T) {
	p := mock.NewFailingProvider(ai.ErrProviderUnavailable)
	_, err := p.Describe(context.Background(), "/x.png", "m")

	assert.ErrorIs(t, err, ai.ErrProviderUnavailable)
}

func TestNewFailingProvider_CustomError(t *testing.T) {
	customErr := errors.New("custom AI error")
	p := mock.NewFailingProvider(customErr)

	_, err := p.Describe(context.Background(), "/x.png", "m")
	assert.ErrorIs(t, err, customErr)

	_, err = p.Embed(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, customErr)
}

// --- NewTimeoutProvider ---

func TestNewTimeoutProvider_Describe(t *testing.T) {
	p := mock.NewTimeoutProvider()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.Describe(ctx, "/x.png", "m")
	assert.ErrorIs(t, err, ai.ErrInferenceTimeout)
}

func TestNewTimeoutProvider_Embed(t *testing.T) {
	p := mock.NewTimeoutProvider()
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := p.Embed(ctx, []string{"a"})
	assert.ErrorIs(t, err, ai.ErrInferenceTimeout)
}

// --- Zero-value MockProvider ---

func TestMockProvider_NilFuncs(t *testing.T) {
	p := &mock.MockProvider{Name_: "bare"}

	desc, err := p.Describe(context.Background(), "/x.png", "m")
	assert.NoError(t, err)
	assert.Equal(t, "", desc)

	vecs, err := p.Embed(context.Background(), []string{"a"})
	assert.NoError(t, err)
	assert.Nil(t, vecs)
}

// --- Interface compliance ---

func TestMockProvider_ImplementsAIProvider(t *testing.T) {
	var _ models.AIProvider = mock.NewMockProvider()
	var _ models.AIProvider = mock.NewFailingProvider(nil)
	var _ models.AIProvider = mock.NewTimeoutProvider()
}
