// Package structured extracts and validates the JSON payload that
// generation backends are asked to embed in their free-form replies.
// Models wrap the payload in prose, markdown fences, or stray control
// characters; callers get either a decoded value or a typed ParseError
// carrying the raw reply, never a partial structure.
package structured

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// ParseError reports a structured-output contract violation. The raw
// model reply is preserved for diagnosis.
type ParseError struct {
	Reason string
	Raw    string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("structured parse failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("structured parse failed: %s", e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var fencedJSON = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)\\s*```")

// Extract locates the JSON object embedded in raw model output and
// returns it as a string ready for unmarshalling. A fenced block wins
// over bare braces; without a fence, the first {...} span that actually
// parses is chosen, not merely the first textually.
func Extract(raw string) (string, error) {
	if m := fencedJSON.FindStringSubmatch(raw); m != nil {
		candidate := stripControl(m[1])
		if !json.Valid([]byte(candidate)) {
			return "", &ParseError{Reason: "fenced block is not valid JSON", Raw: raw}
		}
		return candidate, nil
	}

	for _, span := range braceSpans(raw) {
		candidate := stripControl(span)
		if json.Valid([]byte(candidate)) {
			return candidate, nil
		}
	}

	return "", &ParseError{Reason: "no JSON object found", Raw: raw}
}

// Decode extracts the embedded JSON object and unmarshals it into T.
// Every failure path returns a *ParseError; callers substitute their
// stage-specific default value.
func Decode[T any](raw string) (*T, error) {
	candidate, err := Extract(raw)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal([]byte(candidate), &out); err != nil {
		return nil, &ParseError{Reason: "JSON does not match expected shape", Raw: raw, Err: err}
	}
	return &out, nil
}

// braceSpans yields candidate {...} spans in textual order. For each
// opening brace it offers the balanced span first and the greedy span
// to the last closing brace second; braces inside string values can
// defeat naive balancing, so both are tried.
func braceSpans(raw string) []string {
	lastClose := strings.LastIndexByte(raw, '}')
	if lastClose < 0 {
		return nil
	}

	var spans []string
	for i := 0; i < len(raw); i++ {
		if raw[i] != '{' {
			continue
		}
		if end, ok := matchBrace(raw, i); ok {
			spans = append(spans, raw[i:end+1])
		}
		if lastClose > i {
			spans = append(spans, raw[i:lastClose+1])
		}
	}
	return spans
}

func matchBrace(raw string, start int) (int, bool) {
	depth := 0
	for i := start; i < len(raw); i++ {
		switch raw[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// stripControl removes code points U+0000-U+001F and U+007F-U+009F.
// Generation services occasionally emit literal control characters
// inside string values that break strict parsers.
func stripControl(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || (r >= 0x7F && r <= 0x9F) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}
