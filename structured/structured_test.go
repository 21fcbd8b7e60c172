package structured

import (
	"errors"
	"testing"
)

type answerShape struct {
	FinalAnswer []string `json:"final_answer"`
	Confidence  float64  `json:"confidence_score"`
}

func TestExtractFencedBlockWins(t *testing.T) {
	raw := "Some reasoning first. {\"decoy\": true}\n```json\n{\"final_answer\": [\"A\"], \"confidence_score\": 0.9}\n```\ntrailing prose"

	got, err := Extract(raw)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if got != `{"final_answer": ["A"], "confidence_score": 0.9}` {
		t.Fatalf("unexpected extraction: %q", got)
	}
}

func TestExtractInvalidFenceDoesNotFallThrough(t *testing.T) {
	// The bare object after the fence would parse, but a present fence
	// decides the outcome alone.
	raw := "```json\n{not json at all\n```\n{\"valid\": true}"

	_, err := Extract(raw)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if parseErr.Raw != raw {
		t.Fatalf("ParseError should carry the raw reply")
	}
}

func TestExtractBareBracesSkipsNonJSONSpans(t *testing.T) {
	raw := `prefix {this is prose} middle {"comment": "ok"} suffix`

	got, err := Extract(raw)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if got != `{"comment": "ok"}` {
		t.Fatalf("unexpected extraction: %q", got)
	}
}

func TestExtractNestedObject(t *testing.T) {
	raw := `answer: {"outer": {"inner": [1, 2]}, "done": true} thanks`

	got, err := Extract(raw)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if got != `{"outer": {"inner": [1, 2]}, "done": true}` {
		t.Fatalf("unexpected extraction: %q", got)
	}
}

func TestExtractStripsControlCharacters(t *testing.T) {
	raw := "```json\n{\"comment\": \"line\x01 noise\x7f here\"}\n```"

	got, err := Extract(raw)
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if got != `{"comment": "line noise here"}` {
		t.Fatalf("control characters not stripped: %q", got)
	}
}

func TestExtractNoJSON(t *testing.T) {
	_, err := Extract("I cannot answer that question.")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
}

func TestDecodeTypedValue(t *testing.T) {
	raw := "```json\n{\"final_answer\": [\"B\"], \"confidence_score\": 0.75}\n```"

	got, err := Decode[answerShape](raw)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(got.FinalAnswer) != 1 || got.FinalAnswer[0] != "B" {
		t.Fatalf("unexpected answer: %#v", got.FinalAnswer)
	}
	if got.Confidence != 0.75 {
		t.Fatalf("unexpected confidence: %v", got.Confidence)
	}
}

func TestDecodeShapeMismatch(t *testing.T) {
	// Valid JSON whose final_answer is not a list of strings.
	raw := `{"final_answer": 42}`

	_, err := Decode[answerShape](raw)
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if parseErr.Err == nil {
		t.Fatalf("shape mismatch should wrap the unmarshal error")
	}
}
