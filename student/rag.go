package student

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/sweetpotato0/student-agents/llm"
	"github.com/sweetpotato0/student-agents/pkg/logging"
	"github.com/sweetpotato0/student-agents/structured"
	"github.com/sweetpotato0/student-agents/workflow"
)

// KnowledgeSearcher is the slice of the retriever the agent needs:
// the best passage for a query within the studied documents, or the
// empty string on a miss.
type KnowledgeSearcher interface {
	BestPassage(ctx context.Context, query string, scope []string) (string, error)
}

type planOutput struct {
	GetKnowledge []string `json:"get_knowledge"`
}

type retrieveOutput struct {
	KeyPhrases []string `json:"key_phrases"`
}

type answerOutput struct {
	FinalAnswer     []string `json:"final_answer"`
	ConfidenceScore *float64 `json:"confidence_score"`
	Justification   string   `json:"justification"`
}

type critiqueOutput struct {
	Comment string `json:"comment"`
}

// RAGAgent answers questions through plan, retrieve, answer, and
// critique stages, grounding the answer stage on passages pulled from
// the documents this student studied.
type RAGAgent struct {
	client      llm.Client
	searcher    KnowledgeSearcher
	model       string
	concurrency int
	logger      *slog.Logger
}

// RAGOption customizes a RAG agent.
type RAGOption func(*RAGAgent)

// WithRetrievalConcurrency caps how many key phrases are searched at once.
func WithRetrievalConcurrency(n int) RAGOption {
	return func(a *RAGAgent) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithLogger overrides the component logger.
func WithLogger(logger *slog.Logger) RAGOption {
	return func(a *RAGAgent) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// NewRAGAgent builds an agent over a generation client and a searcher.
func NewRAGAgent(client llm.Client, searcher KnowledgeSearcher, model string, opts ...RAGOption) (*RAGAgent, error) {
	if client == nil {
		return nil, fmt.Errorf("student: generation client is required")
	}
	if searcher == nil {
		return nil, fmt.Errorf("student: knowledge searcher is required")
	}
	if model == "" {
		return nil, llm.ErrModelRequired
	}
	a := &RAGAgent{
		client:      client,
		searcher:    searcher,
		model:       model,
		concurrency: 4,
		logger:      logging.WithComponent("rag_agent"),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Model returns the generation model identity this agent runs with.
func (a *RAGAgent) Model() string {
	return a.model
}

// Machine wires the agent's stages into a workflow machine.
func (a *RAGAgent) Machine() *workflow.Machine[AgentState] {
	return workflow.New[AgentState](workflow.StagePlan).
		Handle(workflow.StagePlan, a.plan).
		Handle(workflow.StageRetrieve, a.retrieve).
		Handle(workflow.StageAnswer, a.answer).
		Handle(workflow.StageCritique, a.critique)
}

// Answer runs the full workflow against the state.
func (a *RAGAgent) Answer(ctx context.Context, state *AgentState) error {
	return a.Machine().Run(ctx, state)
}

// plan asks the model which knowledge queries the question needs. Any
// failure leaves the query list empty, which routes straight to answer.
func (a *RAGAgent) plan(ctx context.Context, state *AgentState) (workflow.Stage, error) {
	reply, err := llm.Prompt(ctx, a.client, a.model, fmt.Sprintf(planPrompt, state.Question))
	if err != nil {
		a.logger.Error("plan generation failed", "error", err)
		state.KnowledgeQueries = nil
		return workflow.StageAnswer, nil
	}

	parsed, err := structured.Decode[planOutput](reply)
	if err != nil {
		a.logger.Warn("plan reply was not valid JSON", "error", err)
		state.KnowledgeQueries = nil
		return workflow.StageAnswer, nil
	}

	state.KnowledgeQueries = parsed.GetKnowledge
	a.logger.Debug("plan complete", "queries", len(state.KnowledgeQueries))
	if len(state.KnowledgeQueries) == 0 {
		return workflow.StageAnswer, nil
	}
	return workflow.StageRetrieve, nil
}

// retrieve distills the queries into key phrases and searches the
// studied documents once per phrase. A parse failure substitutes the
// retrieval sentinel so the answer stage still has content to cite.
func (a *RAGAgent) retrieve(ctx context.Context, state *AgentState) (workflow.Stage, error) {
	queries, err := json.Marshal(state.KnowledgeQueries)
	if err != nil {
		return "", fmt.Errorf("encode knowledge queries: %w", err)
	}

	reply, err := llm.Prompt(ctx, a.client, a.model, fmt.Sprintf(retrievePrompt, string(queries)))
	if err != nil {
		a.logger.Error("retrieve generation failed", "error", err)
		state.Content = RetrievalFailed
		return workflow.StageAnswer, nil
	}

	parsed, err := structured.Decode[retrieveOutput](reply)
	if err != nil || len(parsed.KeyPhrases) == 0 {
		a.logger.Warn("retrieve reply was not valid JSON", "error", err)
		state.Content = RetrievalFailed
		return workflow.StageAnswer, nil
	}

	state.KeyPhrases = parsed.KeyPhrases
	state.Content = strings.Join(a.searchPhrases(ctx, parsed.KeyPhrases, state.Studied), "\n\n")
	return workflow.StageAnswer, nil
}

// searchPhrases runs one scoped search per phrase with bounded
// concurrency, preserving phrase order in the results.
func (a *RAGAgent) searchPhrases(ctx context.Context, phrases, studied []string) []string {
	results := make([]string, len(phrases))
	sem := make(chan struct{}, a.concurrency)
	var wg sync.WaitGroup

	for i, phrase := range phrases {
		wg.Add(1)
		go func(i int, phrase string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			passage, err := a.searcher.BestPassage(ctx, phrase, studied)
			if err != nil {
				a.logger.Error("scoped search failed", "phrase", phrase, "error", err)
				results[i] = NoMatchingDocuments
				return
			}
			if passage == "" {
				a.logger.Debug("scoped search miss", "phrase", phrase, "studied", studied)
				results[i] = NoMatchingDocuments
				return
			}
			results[i] = passage
		}(i, phrase)
	}

	wg.Wait()
	return results
}

// answer produces the final single-option answer. Parse failures fill
// the answer sentinels; the workflow always proceeds to critique.
func (a *RAGAgent) answer(ctx context.Context, state *AgentState) (workflow.Stage, error) {
	reply, err := llm.Prompt(ctx, a.client, a.model, fmt.Sprintf(answerPrompt, state.Question, state.Content))
	if err != nil {
		a.logger.Error("answer generation failed", "error", err)
		applyAnswerFailure(state, err)
		return workflow.StageCritique, nil
	}

	parsed, err := structured.Decode[answerOutput](reply)
	if err != nil {
		a.logger.Warn("answer reply was not valid JSON", "error", err)
		applyAnswerFailure(state, err)
		return workflow.StageCritique, nil
	}

	applyAnswer(state, parsed)
	a.logger.Debug("answer complete", "answer", state.FinalAnswer, "confidence", state.Confidence)
	return workflow.StageCritique, nil
}

// critique has the model judge question difficulty and alignment with
// the retrieved content.
func (a *RAGAgent) critique(ctx context.Context, state *AgentState) (workflow.Stage, error) {
	reply, err := llm.Prompt(ctx, a.client, a.model, fmt.Sprintf(critiquePrompt, state.Question, state.Content))
	if err != nil {
		a.logger.Error("critique generation failed", "error", err)
		state.Comment = CritiqueFailed
		return workflow.StageDone, nil
	}

	parsed, err := structured.Decode[critiqueOutput](reply)
	if err != nil || parsed.Comment == "" {
		a.logger.Warn("critique reply was not valid JSON", "error", err)
		state.Comment = CritiqueFailed
		return workflow.StageDone, nil
	}

	state.Comment = parsed.Comment
	return workflow.StageDone, nil
}

func applyAnswer(state *AgentState, parsed *answerOutput) {
	state.FinalAnswer = parsed.FinalAnswer
	if state.FinalAnswer == nil {
		state.FinalAnswer = []string{answerUnknown}
	}
	if parsed.ConfidenceScore != nil {
		state.Confidence = clampConfidence(*parsed.ConfidenceScore)
	} else {
		state.Confidence = 0.0
	}
	state.Justification = parsed.Justification
	if state.Justification == "" {
		state.Justification = justificationMissing
	}
}

func applyAnswerFailure(state *AgentState, err error) {
	state.FinalAnswer = []string{AnswerInvalidJSON}
	state.Confidence = 0.0
	state.Justification = fmt.Sprintf("JSON parsing failed: %v", err)
}
