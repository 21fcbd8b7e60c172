package document

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Document represents one piece of study material (the extracted text
// of a slide deck or PDF) that can be chunked and indexed.
type Document struct {
	ID       string         `json:"id"`
	Title    string         `json:"title,omitempty"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Chunk is one retrieval unit: a single extracted idea anchored by the
// verbatim sentences from the source document that support it.
type Chunk struct {
	ID         string   `json:"id"`
	DocumentID string   `json:"document_id"`
	Idea       string   `json:"idea"`
	Supporting []string `json:"supporting"`
	Ordinal    int      `json:"ordinal"`
}

// Text renders the chunk into the single string that is embedded and
// stored: the idea statement followed by its grounding sentences.
func (c Chunk) Text() string {
	support := strings.Join(c.Supporting, " ")
	if support == "" {
		return c.Idea
	}
	if c.Idea == "" {
		return support
	}
	return c.Idea + ". " + support
}

var (
	docCounter   atomic.Int64
	chunkCounter atomic.Int64
)

// EnsureDocumentID makes sure every document has a stable identifier.
func EnsureDocumentID(doc *Document) {
	if doc == nil {
		return
	}
	if doc.ID != "" {
		return
	}
	id := docCounter.Add(1)
	doc.ID = fmt.Sprintf("doc_%d", id)
}

// NextChunkID returns a globally unique chunk identifier derived from document ID.
func NextChunkID(docID string) string {
	next := chunkCounter.Add(1)
	if docID == "" {
		return fmt.Sprintf("chunk_%d", next)
	}
	return fmt.Sprintf("%s_chunk_%d", docID, next)
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := d
	if d.Metadata != nil {
		out.Metadata = make(map[string]any, len(d.Metadata))
		for k, v := range d.Metadata {
			out.Metadata[k] = v
		}
	}
	return out
}

// Clone returns a deep copy of the chunk.
func (c Chunk) Clone() Chunk {
	out := c
	if c.Supporting != nil {
		out.Supporting = append([]string(nil), c.Supporting...)
	}
	return out
}
