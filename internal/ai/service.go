package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Cavedragon13/ai-image-organizer/internal/cache"
	"github.com/Cavedragon13/ai-image-organizer/internal/naming"
	"github.com/Cavedragon13/ai-image-organizer/pkg/models"
)

// Service wraps a provider with per-call timeouts and a description cache.
// It satisfies both models.Describer and models.Embedder.
type Service struct {
	provider models.AIProvider
	cache    cache.Cache
	timeout  time.Duration
	ttl      time.Duration
}

// NewService creates a Service. A nil cache disables caching.
func NewService(provider models.AIProvider, ca cache.Cache, timeout, ttl time.Duration) *Service {
	if ca == nil {
		ca = cache.NopCache{}
	}
	return &Service{
		provider: provider,
		cache:    ca,
		timeout:  timeout,
		ttl:      ttl,
	}
}

func (s *Service) Name() string { return s.provider.Name() }

// Describe returns the normalized description for the image at imagePath.
// Results are cached under the image's content hash; cache failures are
// logged and otherwise ignored.
func (s *Service) Describe(ctx context.Context, imagePath, model string) (string, error) {
	digest, err := fileDigest(imagePath)
	if err != nil {
		return "", fmt.Errorf("hashing image: %w", err)
	}
	key := cache.DescriptionKey(model, digest)

	if val, found, err := s.cache.Get(ctx, key); err != nil {
		slog.Warn("description cache read failed", "key", key, "error", err)
	} else if found {
		return string(val), nil
	}

	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	raw, err := s.provider.Describe(callCtx, imagePath, model)
	if err != nil {
		return "", s.classify(callCtx, err)
	}

	desc := naming.NormalizeDescription(raw)
	if err := s.cache.Set(ctx, key, []byte(desc), s.ttl); err != nil {
		slog.Warn("description cache write failed", "key", key, "error", err)
	}
	return desc, nil
}

// Embed returns one vector per text, in order.
func (s *Service) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	vecs, err := s.provider.Embed(callCtx, texts)
	if err != nil {
		return nil, s.classify(callCtx, err)
	}
	return vecs, nil
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Service) classify(ctx context.Context, err error) error {
	if ctx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("%w: %s after %s", ErrInferenceTimeout, s.provider.Name(), s.timeout)
	}
	return err
}

func fileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

var (
	_ models.Describer = (*Service)(nil)
	_ models.Embedder  = (*Service)(nil)
)
