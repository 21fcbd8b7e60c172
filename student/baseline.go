package student

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sweetpotato0/student-agents/llm"
	"github.com/sweetpotato0/student-agents/pkg/logging"
	"github.com/sweetpotato0/student-agents/structured"
	"github.com/sweetpotato0/student-agents/workflow"
)

// DefaultBaselineModel is the model identity baseline agents run with.
// The studied material is baked into this model's system prompt rather
// than retrieved per question.
const DefaultBaselineModel = "weak_student"

// BaselineAgent answers from its model's built-in knowledge alone:
// answer then critique, no planning and no retrieval. It is the control
// arm for retrieval experiments.
type BaselineAgent struct {
	client llm.Client
	model  string
	logger *slog.Logger
}

// NewBaselineAgent builds a baseline agent. An empty model selects
// DefaultBaselineModel.
func NewBaselineAgent(client llm.Client, model string) (*BaselineAgent, error) {
	if client == nil {
		return nil, fmt.Errorf("student: generation client is required")
	}
	if model == "" {
		model = DefaultBaselineModel
	}
	return &BaselineAgent{
		client: client,
		model:  model,
		logger: logging.WithComponent("baseline_agent"),
	}, nil
}

// Model returns the fixed generation model identity.
func (a *BaselineAgent) Model() string {
	return a.model
}

// Machine wires the two baseline stages into a workflow machine.
func (a *BaselineAgent) Machine() *workflow.Machine[AgentState] {
	return workflow.New[AgentState](workflow.StageAnswer).
		Handle(workflow.StageAnswer, a.answer).
		Handle(workflow.StageCritique, a.critique)
}

// Answer runs the baseline workflow against the state.
func (a *BaselineAgent) Answer(ctx context.Context, state *AgentState) error {
	state.Model = a.model
	return a.Machine().Run(ctx, state)
}

func (a *BaselineAgent) answer(ctx context.Context, state *AgentState) (workflow.Stage, error) {
	reply, err := llm.Prompt(ctx, a.client, a.model, fmt.Sprintf(baselineAnswerPrompt, state.Question))
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
	return workflow.StageCritique, nil
}

func (a *BaselineAgent) critique(ctx context.Context, state *AgentState) (workflow.Stage, error) {
	reply, err := llm.Prompt(ctx, a.client, a.model, fmt.Sprintf(baselineCritiquePrompt, state.Question))
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
