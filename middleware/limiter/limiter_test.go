package limiter

import (
	"context"
	"errors"
	"testing"

	"github.com/sweetpotato0/student-agents/llm"
	"github.com/sweetpotato0/student-agents/message"
	"github.com/sweetpotato0/student-agents/middleware"
)

func countingClient(calls *int) llm.Client {
	return llm.ClientFunc(func(context.Context, *llm.GenerateRequest) (*llm.GenerateResponse, error) {
		*calls++
		return &llm.GenerateResponse{
			Message: message.NewMessage(message.RoleAssistant, "ok"),
		}, nil
	})
}

func TestCallLimiterEnforcesBudget(t *testing.T) {
	var backendCalls int
	lim := NewCallLimiter(2)
	client := middleware.Wrap(countingClient(&backendCalls), middleware.NewChain(lim))

	req := &llm.GenerateRequest{
		Messages: []*message.Message{message.NewMessage(message.RoleUser, "hi")},
	}

	for i := 0; i < 2; i++ {
		if _, err := client.Generate(context.Background(), req); err != nil {
			t.Fatalf("call %d within budget failed: %v", i+1, err)
		}
	}

	_, err := client.Generate(context.Background(), req)
	if !errors.Is(err, ErrBudgetExceeded) {
		t.Fatalf("expected ErrBudgetExceeded, got %v", err)
	}
	if backendCalls != 2 {
		t.Fatalf("backend should see exactly 2 calls, got %d", backendCalls)
	}
	if lim.Counter() != 2 {
		t.Fatalf("unexpected counter: %d", lim.Counter())
	}
}

func TestCallLimiterReset(t *testing.T) {
	var backendCalls int
	lim := NewCallLimiter(1)
	client := middleware.Wrap(countingClient(&backendCalls), middleware.NewChain(lim))

	req := &llm.GenerateRequest{
		Messages: []*message.Message{message.NewMessage(message.RoleUser, "hi")},
	}

	if _, err := client.Generate(context.Background(), req); err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	if _, err := client.Generate(context.Background(), req); !errors.Is(err, ErrBudgetExceeded) {
		t.Fatalf("expected ErrBudgetExceeded, got %v", err)
	}

	lim.Reset()
	if _, err := client.Generate(context.Background(), req); err != nil {
		t.Fatalf("call after reset failed: %v", err)
	}
	if backendCalls != 2 {
		t.Fatalf("backend should see 2 calls, got %d", backendCalls)
	}
}
