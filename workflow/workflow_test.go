package workflow

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

type trace struct {
	stages []Stage
}

func step(tr *trace, stage, next Stage) Handler[trace] {
	return func(_ context.Context, state *trace) (Stage, error) {
		state.stages = append(state.stages, stage)
		return next, nil
	}
}

func TestMachineRunsStagesInOrder(t *testing.T) {
	var state trace
	m := New[trace](StagePlan).
		Handle(StagePlan, step(&state, StagePlan, StageRetrieve)).
		Handle(StageRetrieve, step(&state, StageRetrieve, StageAnswer)).
		Handle(StageAnswer, step(&state, StageAnswer, StageCritique)).
		Handle(StageCritique, step(&state, StageCritique, StageDone))

	if err := m.Run(context.Background(), &state); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	want := []Stage{StagePlan, StageRetrieve, StageAnswer, StageCritique}
	if len(state.stages) != len(want) {
		t.Fatalf("expected %d stages, got %v", len(want), state.stages)
	}
	for i, s := range want {
		if state.stages[i] != s {
			t.Fatalf("stage %d: expected %q, got %q", i, s, state.stages[i])
		}
	}
}

func TestMachineSkippedStage(t *testing.T) {
	// Plan routes straight to answer when there is nothing to retrieve.
	var state trace
	m := New[trace](StagePlan).
		Handle(StagePlan, step(&state, StagePlan, StageAnswer)).
		Handle(StageRetrieve, step(&state, StageRetrieve, StageAnswer)).
		Handle(StageAnswer, step(&state, StageAnswer, StageDone))

	if err := m.Run(context.Background(), &state); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	for _, s := range state.stages {
		if s == StageRetrieve {
			t.Fatalf("retrieve should have been skipped: %v", state.stages)
		}
	}
}

func TestMachineUnknownStage(t *testing.T) {
	var state trace
	m := New[trace](StagePlan).
		Handle(StagePlan, step(&state, StagePlan, Stage("mystery")))

	err := m.Run(context.Background(), &state)
	if err == nil || !strings.Contains(err.Error(), "no handler") {
		t.Fatalf("expected missing-handler error, got %v", err)
	}
}

func TestMachineRejectsRevisit(t *testing.T) {
	var state trace
	m := New[trace](StagePlan).
		Handle(StagePlan, step(&state, StagePlan, StageAnswer)).
		Handle(StageAnswer, step(&state, StageAnswer, StagePlan))

	err := m.Run(context.Background(), &state)
	if err == nil || !strings.Contains(err.Error(), "visited twice") {
		t.Fatalf("expected revisit error, got %v", err)
	}
}

func TestMachineHandlerError(t *testing.T) {
	var state trace
	m := New[trace](StagePlan).
		Handle(StagePlan, func(context.Context, *trace) (Stage, error) {
			return "", fmt.Errorf("broken wiring")
		})

	err := m.Run(context.Background(), &state)
	if err == nil || !strings.Contains(err.Error(), "broken wiring") {
		t.Fatalf("expected wrapped handler error, got %v", err)
	}
}

func TestMachineCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var state trace
	m := New[trace](StagePlan).
		Handle(StagePlan, step(&state, StagePlan, StageDone))

	if err := m.Run(ctx, &state); err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(state.stages) != 0 {
		t.Fatalf("no handler should have run: %v", state.stages)
	}
}
