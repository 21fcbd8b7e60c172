package retriever

import (
	"context"
	"strings"
	"testing"

	"github.com/sweetpotato0/student-agents/contrib/vector/inmemory"
	"github.com/sweetpotato0/student-agents/rag/chunking"
	"github.com/sweetpotato0/student-agents/rag/document"
	"github.com/sweetpotato0/student-agents/rag/embedder"
	"github.com/sweetpotato0/student-agents/rag/reranker"
	"github.com/sweetpotato0/student-agents/vector"
)

// keywordEmbedder produces binary keyword-presence vectors, enough to
// make similarity deterministic in tests.
type keywordEmbedder struct {
	keywords []string
}

func (k *keywordEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, len(k.keywords))
	lower := strings.ToLower(text)
	for i, kw := range k.keywords {
		if strings.Contains(lower, kw) {
			vec[i] = 1
		}
	}
	return vec, nil
}

func (k *keywordEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vec, err := k.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		out = append(out, vec)
	}
	return out, nil
}

func (k *keywordEmbedder) Dimension() int {
	return len(k.keywords)
}

func newTestRetriever(opts ...Option) *Retriever {
	emb := &keywordEmbedder{keywords: []string{"newton", "force", "pandas", "analytics"}}
	return New(
		inmemory.NewInMemoryVectorStore(),
		embedder.NewVectorAdapter(emb),
		chunking.NewSimpleChunker(),
		reranker.NewCosineReranker(),
		opts...,
	)
}

var testDocs = []document.Document{
	{
		ID:      "Week1.pptx",
		Content: "Newton's laws describe force and motion.\n\nForce equals mass times acceleration.",
	},
	{
		ID:      "Week2.pptx",
		Content: "Data analytics extracts insight.\n\npandas is a Python library for analytics.",
	},
}

func TestSearchScopedStaysWithinScope(t *testing.T) {
	ctx := context.Background()
	r := newTestRetriever()
	if err := r.IndexDocuments(ctx, testDocs...); err != nil {
		t.Fatalf("IndexDocuments error: %v", err)
	}

	results, err := r.SearchScoped(ctx, "pandas analytics", []string{"Week2.pptx"})
	if err != nil {
		t.Fatalf("SearchScoped error: %v", err)
	}
	if len(results) == 0 {
		t.Fatalf("expected in-scope results")
	}
	for _, res := range results {
		if res.Chunk.DocumentID != "Week2.pptx" {
			t.Fatalf("result leaked out of scope: %q", res.Chunk.DocumentID)
		}
	}
	if !strings.Contains(results[0].Chunk.Text(), "pandas") {
		t.Fatalf("unexpected top result: %q", results[0].Chunk.Text())
	}
}

func TestSearchScopedMissOutsideScope(t *testing.T) {
	ctx := context.Background()
	r := newTestRetriever()
	if err := r.IndexDocuments(ctx, testDocs...); err != nil {
		t.Fatalf("IndexDocuments error: %v", err)
	}

	// The pandas content exists, but this student only studied Week 1.
	passage, err := r.BestPassage(ctx, "pandas analytics", []string{"Week1.pptx"})
	if err != nil {
		t.Fatalf("BestPassage error: %v", err)
	}
	if strings.Contains(passage, "pandas") {
		t.Fatalf("out-of-scope passage returned: %q", passage)
	}
}

func TestSearchScopedEmptyScopeMatchesNothing(t *testing.T) {
	ctx := context.Background()
	r := newTestRetriever()
	if err := r.IndexDocuments(ctx, testDocs...); err != nil {
		t.Fatalf("IndexDocuments error: %v", err)
	}

	results, err := r.SearchScoped(ctx, "pandas", []string{})
	if err != nil {
		t.Fatalf("SearchScoped error: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("empty scope must match nothing, got %d results", len(results))
	}
}

func TestSearchUnscopedSeesEverything(t *testing.T) {
	ctx := context.Background()
	r := newTestRetriever()
	if err := r.IndexDocuments(ctx, testDocs...); err != nil {
		t.Fatalf("IndexDocuments error: %v", err)
	}

	passage, err := r.BestPassage(ctx, "newton force", nil)
	if err != nil {
		t.Fatalf("BestPassage error: %v", err)
	}
	if !strings.Contains(strings.ToLower(passage), "newton") {
		t.Fatalf("unexpected passage: %q", passage)
	}
}

func TestBestPassageEmptyIndex(t *testing.T) {
	passage, err := newTestRetriever().BestPassage(context.Background(), "anything", nil)
	if err != nil {
		t.Fatalf("BestPassage error: %v", err)
	}
	if passage != "" {
		t.Fatalf("expected empty passage, got %q", passage)
	}
}

func TestRerankTopKClipsResults(t *testing.T) {
	ctx := context.Background()
	r := newTestRetriever(WithRerankTopK(1))
	if err := r.IndexDocuments(ctx, testDocs...); err != nil {
		t.Fatalf("IndexDocuments error: %v", err)
	}

	results, err := r.Search(ctx, "force")
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result after clipping, got %d", len(results))
	}
}

func TestClientSideScopeFallback(t *testing.T) {
	// unscopedStore hides the scoped search path, forcing the retriever
	// to filter hits itself.
	ctx := context.Background()
	emb := &keywordEmbedder{keywords: []string{"newton", "force", "pandas", "analytics"}}
	r := New(
		&unscopedStore{base: inmemory.NewInMemoryVectorStore()},
		embedder.NewVectorAdapter(emb),
		chunking.NewSimpleChunker(),
		reranker.NewCosineReranker(),
	)
	if err := r.IndexDocuments(ctx, testDocs...); err != nil {
		t.Fatalf("IndexDocuments error: %v", err)
	}

	results, err := r.SearchScoped(ctx, "pandas analytics", []string{"Week2.pptx"})
	if err != nil {
		t.Fatalf("SearchScoped error: %v", err)
	}
	if len(results) == 0 {
		t.Fatalf("expected results from fallback filtering")
	}
	for _, res := range results {
		if res.Chunk.DocumentID != "Week2.pptx" {
			t.Fatalf("fallback filtering leaked scope: %q", res.Chunk.DocumentID)
		}
	}
}

// unscopedStore wraps the in-memory store but only exposes the plain
// VectorStore surface.
type unscopedStore struct {
	base *inmemory.InMemoryVectorStore
}

func (s *unscopedStore) AddEmbedding(ctx context.Context, embedding *vector.Embedding) error {
	return s.base.AddEmbedding(ctx, embedding)
}

func (s *unscopedStore) Search(ctx context.Context, queryVector []float32, topK int) ([]*vector.Embedding, error) {
	return s.base.Search(ctx, queryVector, topK)
}

func (s *unscopedStore) DeleteEmbedding(ctx context.Context, id string) error {
	return s.base.DeleteEmbedding(ctx, id)
}

func (s *unscopedStore) GetEmbedding(ctx context.Context, id string) (*vector.Embedding, error) {
	return s.base.GetEmbedding(ctx, id)
}

func (s *unscopedStore) Clear(ctx context.Context) error {
	return s.base.Clear(ctx)
}

func (s *unscopedStore) Count(ctx context.Context) (int, error) {
	return s.base.Count(ctx)
}
