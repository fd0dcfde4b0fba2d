// Package models contains shared data models used across the image organizer.
package models

import (
	"context"
	"errors"
)

// Describer turns an image into a short natural-language description.
type Describer interface {
	// Describe returns a short description of the image at imagePath using the given model.
	Describe(ctx context.Context, imagePath, model string) (string, error)
}

// Embedder turns descriptions into dense vectors, one per input, in input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

// AIProvider is the core interface that all AI integrations must implement.
// Pipeline code depends on this interface, never on a concrete provider.
type AIProvider interface {
	Describer
	Embedder
	// Name returns the provider identifier (e.g., "ollama", "openai").
	Name() string
}

// Sentinel errors shared by every AI provider implementation.
var (
	ErrProviderUnavailable = errors.New("ai provider unavailable")
	ErrInferenceTimeout    = errors.New("ai inference timeout")
	ErrInvalidResponse     = errors.New("ai provider returned invalid response")
)
