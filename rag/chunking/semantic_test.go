package chunking

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/sweetpotato0/student-agents/llm"
	"github.com/sweetpotato0/student-agents/message"
	"github.com/sweetpotato0/student-agents/rag/document"
)

// scriptedLLM answers the plan pass with planReply and every grounding
// pass with groundReply, counting calls to each.
type scriptedLLM struct {
	planReply   string
	groundReply string
	planCalls   int
	groundCalls int
}

func (s *scriptedLLM) Generate(_ context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error) {
	prompt := req.Messages[len(req.Messages)-1].Text()
	reply := s.planReply
	if strings.Contains(prompt, "<idea>") {
		s.groundCalls++
		reply = s.groundReply
	} else {
		s.planCalls++
	}
	return &llm.GenerateResponse{Message: message.NewMessage(message.RoleAssistant, reply)}, nil
}

type failingLLM struct{}

func (failingLLM) Generate(context.Context, *llm.GenerateRequest) (*llm.GenerateResponse, error) {
	return nil, fmt.Errorf("backend unavailable")
}

func TestSemanticChunkerIdeaAnchoredChunk(t *testing.T) {
	client := &scriptedLLM{
		planReply:   "Here are the ideas:\nIdea 1: Newton's second law",
		groundReply: "```json\n{\"related\": [\"Newton's second law: F = ma.\"]}\n```",
	}

	chunker, err := NewSemanticChunker(client, "test-model")
	if err != nil {
		t.Fatalf("NewSemanticChunker error: %v", err)
	}

	chunks, err := chunker.Chunk(context.Background(), document.Document{
		ID:      "Week3.pptx",
		Content: "Newton's second law: F = ma. Forces add as vectors.",
	})
	if err != nil {
		t.Fatalf("Chunk error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}

	got := chunks[0]
	if got.DocumentID != "Week3.pptx" {
		t.Fatalf("unexpected document ID: %q", got.DocumentID)
	}
	if got.Idea != "Newton's second law" {
		t.Fatalf("unexpected idea: %q", got.Idea)
	}
	if got.Ordinal != 1 {
		t.Fatalf("unexpected ordinal: %d", got.Ordinal)
	}
	if want := "Newton's second law. Newton's second law: F = ma."; got.Text() != want {
		t.Fatalf("unexpected chunk text: %q", got.Text())
	}
	if client.planCalls != 1 || client.groundCalls != 1 {
		t.Fatalf("expected one call per pass, got plan=%d ground=%d", client.planCalls, client.groundCalls)
	}
}

func TestSemanticChunkerDropsUngroundedIdeas(t *testing.T) {
	client := &scriptedLLM{
		planReply:   "Idea 1: First idea\nIdea 2: Second idea",
		groundReply: "```json\n{\"related\": []}\n```",
	}

	chunker, err := NewSemanticChunker(client, "test-model")
	if err != nil {
		t.Fatalf("NewSemanticChunker error: %v", err)
	}

	chunks, err := chunker.Chunk(context.Background(), document.Document{Content: "some notes"})
	if err != nil {
		t.Fatalf("Chunk error: %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("ungrounded ideas should be dropped, got %d chunks", len(chunks))
	}
	if client.groundCalls != 2 {
		t.Fatalf("expected grounding call per idea, got %d", client.groundCalls)
	}
}

func TestSemanticChunkerPlanFailureYieldsNoChunks(t *testing.T) {
	chunker, err := NewSemanticChunker(failingLLM{}, "test-model")
	if err != nil {
		t.Fatalf("NewSemanticChunker error: %v", err)
	}

	chunks, err := chunker.Chunk(context.Background(), document.Document{Content: "some notes"})
	if err != nil {
		t.Fatalf("backend failure must not surface as an error, got %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("expected no chunks, got %d", len(chunks))
	}
}

func TestSemanticChunkerGroundingParseFailureDropsIdea(t *testing.T) {
	client := &scriptedLLM{
		planReply:   "Idea 1: Only idea",
		groundReply: "I cannot produce JSON for this.",
	}

	chunker, err := NewSemanticChunker(client, "test-model")
	if err != nil {
		t.Fatalf("NewSemanticChunker error: %v", err)
	}

	chunks, err := chunker.Chunk(context.Background(), document.Document{Content: "some notes"})
	if err != nil {
		t.Fatalf("Chunk error: %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("unparseable grounding should drop the idea, got %d chunks", len(chunks))
	}
}

func TestSemanticChunkerRequiresModel(t *testing.T) {
	if _, err := NewSemanticChunker(&scriptedLLM{}, ""); err == nil {
		t.Fatalf("expected error for missing model")
	}
}

func TestSemanticChunkerCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	chunker, err := NewSemanticChunker(&scriptedLLM{planReply: "Idea 1: x"}, "test-model")
	if err != nil {
		t.Fatalf("NewSemanticChunker error: %v", err)
	}

	if _, err := chunker.Chunk(ctx, document.Document{Content: "notes"}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestSimpleChunkerSplitsOnSeparator(t *testing.T) {
	chunker := NewSimpleChunker(WithChunkSize(50), WithOverlap(5))

	chunks, err := chunker.Chunk(context.Background(), document.Document{
		ID:      "doc",
		Content: "first paragraph\n\nsecond paragraph",
	})
	if err != nil {
		t.Fatalf("Chunk error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Text() != "first paragraph" || chunks[1].Text() != "second paragraph" {
		t.Fatalf("unexpected chunk texts: %q, %q", chunks[0].Text(), chunks[1].Text())
	}
	if chunks[0].Idea != "" {
		t.Fatalf("window chunks carry no idea anchor, got %q", chunks[0].Idea)
	}
}

func TestSimpleChunkerWindowsLongParts(t *testing.T) {
	chunker := NewSimpleChunker(WithChunkSize(10), WithOverlap(2))

	chunks, err := chunker.Chunk(context.Background(), document.Document{
		ID:      "doc",
		Content: strings.Repeat("a", 25),
	})
	if err != nil {
		t.Fatalf("Chunk error: %v", err)
	}
	if len(chunks) < 3 {
		t.Fatalf("expected windowed chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c.Text()) > 10 {
			t.Fatalf("chunk %d exceeds size: %d", i, len(c.Text()))
		}
	}
}
