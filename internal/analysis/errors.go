package analysis

import "errors"

var (
	ErrDegenerateEmbedding = errors.New("embedding has zero norm")
	ErrEmbeddingMismatch   = errors.New("embedding backend returned mismatched vectors")
)
