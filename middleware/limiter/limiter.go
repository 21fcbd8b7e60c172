// Package limiter bounds the number of generation calls a simulation
// may issue, protecting experiment budgets against runaway loops.
package limiter

import (
	"errors"
	"sync"

	"github.com/sweetpotato0/student-agents/middleware"
)

// ErrBudgetExceeded indicates the call budget has been exhausted.
var ErrBudgetExceeded = errors.New("generation call budget exceeded")

// CallLimiter middleware enforces a fixed call budget.
type CallLimiter struct {
	maxCalls int

	mu      sync.Mutex
	counter int
}

// NewCallLimiter creates a call limiting middleware.
func NewCallLimiter(maxCalls int) *CallLimiter {
	return &CallLimiter{maxCalls: maxCalls}
}

// Name returns the middleware name.
func (m *CallLimiter) Name() string {
	return "CallLimiter"
}

// Execute checks the budget before forwarding the call.
func (m *CallLimiter) Execute(ctx *middleware.Context, next middleware.Handler) error {
	m.mu.Lock()
	if m.counter >= m.maxCalls {
		m.mu.Unlock()
		return ErrBudgetExceeded
	}
	m.counter++
	m.mu.Unlock()
	return next(ctx)
}

// Reset resets the call counter.
func (m *CallLimiter) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counter = 0
}

// Counter returns the current call count.
func (m *CallLimiter) Counter() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counter
}
