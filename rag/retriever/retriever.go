package retriever

import (
	"context"
	"fmt"
	"sync"

	"github.com/sweetpotato0/student-agents/rag/chunking"
	"github.com/sweetpotato0/student-agents/rag/document"
	"github.com/sweetpotato0/student-agents/rag/embedder"
	"github.com/sweetpotato0/student-agents/rag/reranker"
	"github.com/sweetpotato0/student-agents/vector"
)

// Config controls retrieval behaviour.
type Config struct {
	SearchTopK int
	RerankTopK int
}

// Option customizes retriever config.
type Option func(*Config)

// WithSearchTopK sets the number of neighbors fetched from the vector store.
func WithSearchTopK(k int) Option {
	return func(cfg *Config) {
		if k > 0 {
			cfg.SearchTopK = k
		}
	}
}

// WithRerankTopK sets how many chunks survive reranking.
func WithRerankTopK(k int) Option {
	return func(cfg *Config) {
		if k > 0 {
			cfg.RerankTopK = k
		}
	}
}

// Retriever coordinates chunking, embedding, similarity search, and reranking.
// Searches can be scoped to a subset of indexed documents, which models a
// student who has only studied part of the material.
type Retriever struct {
	store    vector.VectorStore
	embedder embedder.Embedder
	chunker  chunking.Chunker
	reranker reranker.Reranker
	cfg      Config

	mu        sync.RWMutex
	documents map[string]document.Document
	chunks    map[string]document.Chunk
}

// New creates a retriever.
func New(store vector.VectorStore, emb embedder.Embedder, chunker chunking.Chunker, rer reranker.Reranker, opts ...Option) *Retriever {
	cfg := Config{
		SearchTopK: 8,
		RerankTopK: 4,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Retriever{
		store:     store,
		embedder:  emb,
		chunker:   chunker,
		reranker:  rer,
		cfg:       cfg,
		documents: make(map[string]document.Document),
		chunks:    make(map[string]document.Chunk),
	}
}

// IndexDocuments ingests documents -> chunks -> embeddings -> vector store.
// Documents that chunk to nothing are recorded but contribute no vectors.
func (r *Retriever) IndexDocuments(ctx context.Context, docs ...document.Document) error {
	if r.store == nil || r.embedder == nil || r.chunker == nil {
		return fmt.Errorf("retriever not fully configured")
	}

	for _, doc := range docs {
		document.EnsureDocumentID(&doc)
		chunks, err := r.chunker.Chunk(ctx, doc)
		if err != nil {
			return fmt.Errorf("chunk document %s: %w", doc.ID, err)
		}

		r.mu.Lock()
		r.documents[doc.ID] = doc.Clone()
		r.mu.Unlock()

		for _, chunk := range chunks {
			vec, err := r.embedder.EmbedChunk(ctx, chunk)
			if err != nil {
				return fmt.Errorf("embed chunk %s: %w", chunk.ID, err)
			}
			embedding := &vector.Embedding{
				ID:         chunk.ID,
				DocumentID: chunk.DocumentID,
				Vector:     vec,
				Text:       chunk.Text(),
			}
			if err := r.store.AddEmbedding(ctx, embedding); err != nil {
				return fmt.Errorf("store chunk %s: %w", chunk.ID, err)
			}

			r.mu.Lock()
			r.chunks[chunk.ID] = chunk.Clone()
			r.mu.Unlock()
		}
	}
	return nil
}

// Search executes semantic search over all indexed documents.
func (r *Retriever) Search(ctx context.Context, query string) ([]reranker.Result, error) {
	return r.SearchScoped(ctx, query, nil)
}

// SearchScoped executes semantic search restricted to the given document IDs.
// A nil scope searches everything; an empty non-nil scope matches nothing.
// Stores that filter server-side are used directly, everything else is
// filtered here after an unscoped search.
func (r *Retriever) SearchScoped(ctx context.Context, query string, scope []string) ([]reranker.Result, error) {
	if r.store == nil || r.embedder == nil {
		return nil, fmt.Errorf("retriever not fully configured")
	}
	if scope != nil && len(scope) == 0 {
		return nil, nil
	}

	queryVec, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.searchStore(ctx, queryVec, scope)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	inScope := scopeSet(scope)
	candidates := make([]reranker.Candidate, 0, len(hits))
	for _, hit := range hits {
		if inScope != nil && !inScope[hit.DocumentID] {
			continue
		}
		chunk, ok := r.lookupChunk(hit.ID)
		if !ok {
			continue
		}
		candidates = append(candidates, reranker.Candidate{
			Chunk:  chunk,
			Vector: hit.Vector,
		})
	}

	if len(candidates) == 0 {
		return nil, nil
	}

	if r.reranker == nil {
		output := make([]reranker.Result, 0, len(candidates))
		for _, cand := range candidates {
			output = append(output, reranker.Result{Chunk: cand.Chunk})
		}
		return r.clip(output), nil
	}

	reranked, err := r.reranker.Rank(ctx, queryVec, candidates)
	if err != nil {
		return nil, err
	}
	return r.clip(reranked), nil
}

// BestPassage returns the text of the single best chunk for the query
// within scope, or the empty string when nothing is indexed in scope.
func (r *Retriever) BestPassage(ctx context.Context, query string, scope []string) (string, error) {
	results, err := r.SearchScoped(ctx, query, scope)
	if err != nil {
		return "", err
	}
	if len(results) == 0 {
		return "", nil
	}
	return results[0].Chunk.Text(), nil
}

func (r *Retriever) searchStore(ctx context.Context, queryVec []float32, scope []string) ([]*vector.Embedding, error) {
	if scope != nil {
		if scoped, ok := r.store.(vector.ScopedVectorStore); ok {
			return scoped.SearchScoped(ctx, queryVec, r.cfg.SearchTopK, scope)
		}
		// Client-side filtering discards out-of-scope hits, so fetch a
		// wider window from the store to keep topK meaningful.
		return r.store.Search(ctx, queryVec, r.cfg.SearchTopK*4)
	}
	return r.store.Search(ctx, queryVec, r.cfg.SearchTopK)
}

func (r *Retriever) clip(results []reranker.Result) []reranker.Result {
	if r.cfg.RerankTopK > 0 && len(results) > r.cfg.RerankTopK {
		return results[:r.cfg.RerankTopK]
	}
	return results
}

func scopeSet(scope []string) map[string]bool {
	if scope == nil {
		return nil
	}
	set := make(map[string]bool, len(scope))
	for _, id := range scope {
		set[id] = true
	}
	return set
}

// Document fetches a document by ID.
func (r *Retriever) Document(id string) (document.Document, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.documents[id]
	return doc.Clone(), ok
}

// DocumentIDs lists all indexed document IDs.
func (r *Retriever) DocumentIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.documents))
	for id := range r.documents {
		ids = append(ids, id)
	}
	return ids
}

// lookupChunk retrieves chunk metadata.
func (r *Retriever) lookupChunk(id string) (document.Chunk, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	chunk, ok := r.chunks[id]
	if !ok {
		return document.Chunk{}, false
	}
	return chunk.Clone(), true
}

// Clear drops all indexed state.
func (r *Retriever) Clear(ctx context.Context) error {
	if r.store != nil {
		if err := r.store.Clear(ctx); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chunks = make(map[string]document.Chunk)
	r.documents = make(map[string]document.Document)
	return nil
}

// Count returns the number of chunks indexed.
func (r *Retriever) Count(ctx context.Context) (int, error) {
	if r.store == nil {
		return 0, nil
	}
	return r.store.Count(ctx)
}
