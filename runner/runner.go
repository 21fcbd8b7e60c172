// Package runner orchestrates full question runs: build the state, run
// the agent workflow, score the answer, and persist the result row.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/sweetpotato0/student-agents/pkg/logging"
	"github.com/sweetpotato0/student-agents/pkg/telemetry"
	"github.com/sweetpotato0/student-agents/sink"
	"github.com/sweetpotato0/student-agents/student"
	"go.opentelemetry.io/otel/attribute"
)

// Agent is the surface the orchestrator needs from any agent variant.
type Agent interface {
	Answer(ctx context.Context, state *student.AgentState) error
	Model() string
}

// AgentRecord identifies one simulated student and the documents they
// studied.
type AgentRecord struct {
	ID      string
	Name    string
	Studied []string
}

// Result is the outcome of one question run.
type Result struct {
	StudentName string
	QnID        string
	FinalAnswer []string
	Confidence  float64
	Comment     string
	IsCorrect   bool
}

// Orchestrator runs one agent against questions and appends each
// outcome to the sink.
type Orchestrator struct {
	agent  Agent
	sink   sink.TabularSink
	logger *slog.Logger

	// includeModel adds the model column to result rows, used for
	// baseline control arms.
	includeModel bool
}

// Option customizes an orchestrator.
type Option func(*Orchestrator)

// WithModelColumn records the agent's model identity in every row.
func WithModelColumn() Option {
	return func(o *Orchestrator) {
		o.includeModel = true
	}
}

// WithLogger overrides the component logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewOrchestrator creates an orchestrator. The sink may be nil when the
// caller only wants the returned results.
func NewOrchestrator(agent Agent, tabular sink.TabularSink, opts ...Option) (*Orchestrator, error) {
	if agent == nil {
		return nil, fmt.Errorf("runner: agent is required")
	}
	o := &Orchestrator{
		agent:  agent,
		sink:   tabular,
		logger: logging.WithComponent("runner"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// RunQuestion executes the full workflow for one question and one
// student. The run itself never fails on model misbehavior; an error
// here is infrastructure (context, sink, miswired workflow).
func (o *Orchestrator) RunQuestion(ctx context.Context, q sink.Question, rec AgentRecord) (*Result, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "runner.RunQuestion")
	span.SetAttributes(
		attribute.String("question.id", q.ID),
		attribute.String("student.name", rec.Name),
	)

	state := student.NewState(q.Options, rec.Studied)
	err := o.agent.Answer(ctx, state)
	telemetry.End(span, err)
	if err != nil {
		return nil, fmt.Errorf("runner: question %s: %w", q.ID, err)
	}

	// Exact, case-sensitive match on the single answer option.
	isCorrect := state.Answered() && state.FinalAnswer[0] == q.CorrectOption

	o.logger.Info("question answered",
		"student", rec.Name,
		"question", q.ID,
		"answer", state.FinalAnswer,
		"correct_option", q.CorrectOption,
		"is_correct", isCorrect,
	)

	if o.sink != nil {
		row := sink.Row{
			StudentName:   rec.Name,
			Studied:       rec.Studied,
			QnID:          q.ID,
			Question:      q.Options,
			FinalAnswer:   firstOption(state.FinalAnswer),
			Justification: state.Justification,
			Confidence:    state.Confidence,
			Comment:       state.Comment,
			IsCorrect:     isCorrect,
		}
		if o.includeModel {
			row.Model = o.agent.Model()
		}
		if err := o.sink.Append(row); err != nil {
			return nil, fmt.Errorf("runner: append result for question %s: %w", q.ID, err)
		}
	}

	return &Result{
		StudentName: rec.Name,
		QnID:        q.ID,
		FinalAnswer: state.FinalAnswer,
		Confidence:  state.Confidence,
		Comment:     state.Comment,
		IsCorrect:   isCorrect,
	}, nil
}

func firstOption(answer []string) string {
	if len(answer) == 0 {
		return ""
	}
	return answer[0]
}

// Task pairs one question with one student for parallel execution.
type Task struct {
	Question sink.Question
	Record   AgentRecord
}

// TaskResult is the outcome of one parallel task.
type TaskResult struct {
	Task   Task
	Result *Result
	Err    error
}

// ParallelRunner executes many question runs under a concurrency cap.
type ParallelRunner struct {
	orchestrator *Orchestrator
	semaphore    chan struct{}
}

// NewParallelRunner creates a parallel runner over an orchestrator.
func NewParallelRunner(o *Orchestrator, maxConcurrency int) *ParallelRunner {
	if maxConcurrency <= 0 {
		maxConcurrency = 10
	}
	return &ParallelRunner{
		orchestrator: o,
		semaphore:    make(chan struct{}, maxConcurrency),
	}
}

// RunParallel executes all tasks, preserving task order in the results.
func (pr *ParallelRunner) RunParallel(ctx context.Context, tasks []Task) []TaskResult {
	results := make([]TaskResult, len(tasks))
	var wg sync.WaitGroup

	for i, task := range tasks {
		wg.Add(1)
		go func(index int, t Task) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					results[index] = TaskResult{
						Task: t,
						Err:  fmt.Errorf("panic in question %s: %v", t.Question.ID, r),
					}
				}
			}()

			select {
			case pr.semaphore <- struct{}{}:
				defer func() { <-pr.semaphore }()
			case <-ctx.Done():
				results[index] = TaskResult{Task: t, Err: ctx.Err()}
				return
			}

			res, err := pr.orchestrator.RunQuestion(ctx, t.Question, t.Record)
			results[index] = TaskResult{Task: t, Result: res, Err: err}
		}(i, task)
	}

	wg.Wait()
	return results
}
