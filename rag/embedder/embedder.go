package embedder

import (
	"context"

	"github.com/sweetpotato0/student-agents/rag/document"
	"github.com/sweetpotato0/student-agents/vector"
)

// Embedder exposes embedding methods tailored for retrieval components.
type Embedder interface {
	EmbedChunk(ctx context.Context, chunk document.Chunk) ([]float32, error)
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
}

// VectorAdapter bridges the generic vector.Embedder interface into a rag Embedder.
type VectorAdapter struct {
	base vector.Embedder
}

// NewVectorAdapter creates a new adapter.
func NewVectorAdapter(base vector.Embedder) *VectorAdapter {
	return &VectorAdapter{base: base}
}

// EmbedChunk embeds the rendered chunk text using the base embedder.
func (v *VectorAdapter) EmbedChunk(ctx context.Context, chunk document.Chunk) ([]float32, error) {
	if v == nil || v.base == nil {
		return nil, nil
	}
	return v.base.Embed(ctx, chunk.Text())
}

// EmbedQuery embeds the query string.
func (v *VectorAdapter) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	if v == nil || v.base == nil {
		return nil, nil
	}
	return v.base.Embed(ctx, query)
}
