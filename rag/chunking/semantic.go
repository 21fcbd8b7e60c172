package chunking

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sweetpotato0/student-agents/llm"
	"github.com/sweetpotato0/student-agents/pkg/logging"
	"github.com/sweetpotato0/student-agents/rag/document"
	"github.com/sweetpotato0/student-agents/structured"
)

const (
	defaultTokenBudget = 10000
	defaultEncoding    = "cl100k_base"
)

var ideaLine = regexp.MustCompile(`Idea \d+: (.*)`)

const planTemplate = `You are a diligent STEM student reviewing study notes for finals. Extract ALL important information as separate ideas.

Extract from these slides:
**FORMULAS & EQUATIONS:**
- List every formula with variable definitions
- Note when each formula applies (conditions/constraints)
- Include units where relevant

**KEY CONCEPTS & DEFINITIONS:**
- Technical terms that will be tested
- Theorems and their conditions
- Physical/mathematical principles
- Constants and their values

**PROCEDURES & ALGORITHMS:**
- Step-by-step methods
- Decision trees for choosing approaches
- Computational procedures

**GENERAL IDEAS:**
- Any other important points for exam prep

<original_content>
%s
</original_content>

IMPORTANT: Format EVERY item as "Idea X:" followed by the BIG PICTURE idea. Number them sequentially.
Break down complex ideas into multiple items if needed.
Do not limit yourself to just 10 ideas; extract ALL relevant information.

Example:
Idea 1: Newton's second law: F = ma, where F is force (N), m is mass (kg), a is acceleration (m/s²)
Idea 2: Kinematic equations apply only when acceleration is constant
Idea 3: To solve projectile motion: separate x and y components, use appropriate kinematic equations for each
`

const groundTemplate = `You are a thoughtful analyst tasked with reviewing a piece of writing and identifying sentences that directly support, explain, or relate to a specific idea.
Your job is to extract exact sentences from the original content that are semantically related to the provided idea. These may reinforce the idea, give examples, expand on it, or express it in different words.
Do not leave out any context that helps explain the sentences.
Here is the original content:
<original_content>
%s
</original_content>
And here is the target idea:
<idea>
%s
</idea>

Return the matching sentences in this JSON format STRICTLY:

<format>` + "\n```json\n" + `{"related": [
"...",
"...",
...
]
}` + "\n```\n" + `</format>

Only include exact sentences from the original content. If no sentences match, return an empty list.
`

type relatedOutput struct {
	Related []string `json:"related"`
}

// SemanticChunker produces idea-anchored chunks in two generation passes:
// one plan call that enumerates the ideas in a document, then one grounding
// call per idea that pulls the verbatim sentences supporting it. Ideas whose
// grounding call fails or returns nothing are dropped rather than surfaced
// as errors; a document that yields nothing produces an empty chunk list.
type SemanticChunker struct {
	client      llm.Client
	model       string
	tokenBudget int
	encoder     *tiktoken.Tiktoken
	logger      *slog.Logger
}

// SemanticOption customizes the semantic chunker.
type SemanticOption func(*SemanticChunker)

// WithModel selects the generation model used for both passes.
func WithModel(model string) SemanticOption {
	return func(c *SemanticChunker) {
		if model != "" {
			c.model = model
		}
	}
}

// WithTokenBudget bounds the document size fed into the plan prompt.
// Longer documents are truncated at the budget, not rejected.
func WithTokenBudget(budget int) SemanticOption {
	return func(c *SemanticChunker) {
		if budget > 0 {
			c.tokenBudget = budget
		}
	}
}

// WithLogger overrides the component logger.
func WithLogger(logger *slog.Logger) SemanticOption {
	return func(c *SemanticChunker) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewSemanticChunker builds a chunker on top of the given generation client.
func NewSemanticChunker(client llm.Client, model string, opts ...SemanticOption) (*SemanticChunker, error) {
	if client == nil {
		return nil, fmt.Errorf("chunking: generation client is required")
	}
	enc, err := tiktoken.GetEncoding(defaultEncoding)
	if err != nil {
		return nil, fmt.Errorf("chunking: load %s encoding: %w", defaultEncoding, err)
	}
	c := &SemanticChunker{
		client:      client,
		model:       model,
		tokenBudget: defaultTokenBudget,
		encoder:     enc,
		logger:      logging.WithComponent("semantic_chunker"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.model == "" {
		return nil, llm.ErrModelRequired
	}
	return c, nil
}

// Chunk implements Chunker. Generation or parse failures degrade to fewer
// chunks, never to an error: the only error returned is context cancellation.
func (c *SemanticChunker) Chunk(ctx context.Context, doc document.Document) ([]document.Chunk, error) {
	document.EnsureDocumentID(&doc)
	content := c.truncate(doc.Content)

	ideas := c.planIdeas(ctx, content)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(ideas) == 0 {
		c.logger.Warn("chunking plan produced no ideas", "document", doc.ID)
		return []document.Chunk{}, nil
	}
	c.logger.Info("chunking plan created", "document", doc.ID, "ideas", len(ideas))

	chunks := make([]document.Chunk, 0, len(ideas))
	for _, idea := range ideas {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sentences := c.groundIdea(ctx, idea, content)
		if len(sentences) == 0 {
			c.logger.Debug("idea dropped, no supporting sentences", "document", doc.ID, "idea", idea)
			continue
		}
		chunks = append(chunks, document.Chunk{
			ID:         document.NextChunkID(doc.ID),
			DocumentID: doc.ID,
			Idea:       idea,
			Supporting: sentences,
			Ordinal:    len(chunks) + 1,
		})
	}
	return chunks, nil
}

// ChunkText is a convenience wrapper for callers holding raw text instead
// of a document. It returns the rendered chunk strings.
func (c *SemanticChunker) ChunkText(ctx context.Context, text string) ([]string, error) {
	chunks, err := c.Chunk(ctx, document.Document{Content: text})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		out = append(out, chunk.Text())
	}
	return out, nil
}

// planIdeas runs the plan pass and parses the numbered idea lines out of
// the free-form reply. Any failure yields an empty list.
func (c *SemanticChunker) planIdeas(ctx context.Context, content string) []string {
	reply, err := llm.Prompt(ctx, c.client, c.model, fmt.Sprintf(planTemplate, content))
	if err != nil {
		c.logger.Error("chunking plan generation failed", "error", err)
		return nil
	}

	matches := ideaLine.FindAllStringSubmatch(reply, -1)
	ideas := make([]string, 0, len(matches))
	for _, m := range matches {
		if idea := strings.TrimSpace(m[1]); idea != "" {
			ideas = append(ideas, idea)
		}
	}
	return ideas
}

// groundIdea runs one grounding pass. The reply must carry a JSON object
// with a "related" list of verbatim sentences; anything else drops the idea.
func (c *SemanticChunker) groundIdea(ctx context.Context, idea, content string) []string {
	reply, err := llm.Prompt(ctx, c.client, c.model, fmt.Sprintf(groundTemplate, content, idea))
	if err != nil {
		c.logger.Error("grounding generation failed", "idea", idea, "error", err)
		return nil
	}

	parsed, err := structured.Decode[relatedOutput](reply)
	if err != nil {
		c.logger.Warn("grounding reply was not valid JSON", "idea", idea, "error", err)
		return nil
	}
	return parsed.Related
}

func (c *SemanticChunker) truncate(content string) string {
	ids := c.encoder.Encode(content, nil, nil)
	if len(ids) <= c.tokenBudget {
		return content
	}
	c.logger.Warn("document over token budget, truncating", "tokens", len(ids), "budget", c.tokenBudget)
	return c.encoder.Decode(ids[:c.tokenBudget])
}
