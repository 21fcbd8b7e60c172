// Package workflow runs a fixed-stage agent workflow as a typed state
// machine. Each stage handler mutates shared state and names the next
// stage; the machine dispatches until the terminal stage. Compared to a
// general graph engine this trades flexibility for a transition table
// the compiler can see.
package workflow

import (
	"context"
	"fmt"

	"github.com/sweetpotato0/student-agents/pkg/telemetry"
)

// Stage identifies one step of an agent workflow.
type Stage string

const (
	StagePlan     Stage = "plan"
	StageRetrieve Stage = "retrieve"
	StageAnswer   Stage = "answer"
	StageCritique Stage = "critique"
	StageDone     Stage = "done"
)

// Handler executes one stage against the state and returns the stage to
// run next. Handlers absorb model misbehavior themselves; an error here
// means a wiring or infrastructure bug, not a bad reply.
type Handler[S any] func(ctx context.Context, state *S) (Stage, error)

// Machine is a dispatch table over stages. Zero value is not usable;
// construct with New and register handlers for every reachable stage.
type Machine[S any] struct {
	start    Stage
	handlers map[Stage]Handler[S]
}

// New creates a machine that begins at the given stage.
func New[S any](start Stage) *Machine[S] {
	return &Machine[S]{
		start:    start,
		handlers: make(map[Stage]Handler[S]),
	}
}

// Handle registers the handler for a stage, replacing any previous one.
func (m *Machine[S]) Handle(stage Stage, h Handler[S]) *Machine[S] {
	m.handlers[stage] = h
	return m
}

// Run executes handlers from the start stage until StageDone. A handler
// routing to a stage with no handler, or revisiting a stage, aborts the
// run: both indicate a miswired table rather than a recoverable state.
func (m *Machine[S]) Run(ctx context.Context, state *S) error {
	visited := make(map[Stage]bool, len(m.handlers))
	current := m.start

	for current != StageDone {
		if err := ctx.Err(); err != nil {
			return err
		}
		if visited[current] {
			return fmt.Errorf("workflow: stage %q visited twice", current)
		}
		visited[current] = true

		handler, ok := m.handlers[current]
		if !ok {
			return fmt.Errorf("workflow: no handler for stage %q", current)
		}

		stageCtx, span := telemetry.Tracer().Start(ctx, "workflow."+string(current))
		next, err := handler(stageCtx, state)
		telemetry.End(span, err)
		if err != nil {
			return fmt.Errorf("workflow: stage %q: %w", current, err)
		}
		current = next
	}
	return nil
}
