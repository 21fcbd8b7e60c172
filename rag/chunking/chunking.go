package chunking

import (
	"context"
	"strings"

	"github.com/sweetpotato0/student-agents/rag/document"
)

// Chunker splits documents into chunks that can be embedded and indexed.
type Chunker interface {
	Chunk(ctx context.Context, doc document.Document) ([]document.Chunk, error)
}

type Options struct {
	ChunkSize int
	Overlap   int
	Separator string
}

// SimpleChunker splits documents by separator and enforces max character
// lengths. It is the non-LLM strategy: chunks carry no idea anchor.
type SimpleChunker struct {
	size    int
	overlap int
	sep     string
}

// Option customizes the simple chunker.
type Option func(*Options)

// WithChunkSize overrides the default chunk size (characters).
func WithChunkSize(size int) Option {
	return func(o *Options) {
		if size > 0 {
			o.ChunkSize = size
		}
	}
}

// WithOverlap configures overlap (characters) between consecutive chunks.
func WithOverlap(overlap int) Option {
	return func(o *Options) {
		if overlap >= 0 {
			o.Overlap = overlap
		}
	}
}

// WithSeparator sets the logical separator used before windowing.
func WithSeparator(sep string) Option {
	return func(o *Options) {
		if sep != "" {
			o.Separator = sep
		}
	}
}

// NewSimpleChunker constructs a chunker with sane defaults for most study material.
func NewSimpleChunker(opts ...Option) *SimpleChunker {
	cfg := &Options{
		ChunkSize: 1000,
		Overlap:   100,
		Separator: "\n\n",
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return &SimpleChunker{
		size:    cfg.ChunkSize,
		overlap: cfg.Overlap,
		sep:     cfg.Separator,
	}
}

// Chunk splits the document into bounded pieces.
func (c *SimpleChunker) Chunk(ctx context.Context, doc document.Document) ([]document.Chunk, error) {
	document.EnsureDocumentID(&doc)

	parts := strings.Split(doc.Content, c.sep)
	chunks := make([]document.Chunk, 0, len(parts))
	currentOrdinal := 0

	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		for len(part) > c.size {
			currentOrdinal++
			window := part[:c.size]
			part = part[c.size-c.overlap:]
			chunks = append(chunks, newWindowChunk(doc, currentOrdinal, window))
		}
		currentOrdinal++
		chunks = append(chunks, newWindowChunk(doc, currentOrdinal, part))
	}

	if len(chunks) == 0 {
		currentOrdinal++
		chunks = append(chunks, newWindowChunk(doc, currentOrdinal, doc.Content))
	}

	return chunks, nil
}

func newWindowChunk(doc document.Document, ordinal int, content string) document.Chunk {
	return document.Chunk{
		ID:         document.NextChunkID(doc.ID),
		DocumentID: doc.ID,
		Supporting: []string{strings.TrimSpace(content)},
		Ordinal:    ordinal,
	}
}
