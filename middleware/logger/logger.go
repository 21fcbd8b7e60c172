// Package logger provides request and response logging middleware.
package logger

import (
	"log/slog"
	"time"

	"github.com/sweetpotato0/student-agents/middleware"
	"github.com/sweetpotato0/student-agents/pkg/logging"
)

// GenerationLogger logs every generation call with its model, message
// count, duration, and outcome.
type GenerationLogger struct {
	logger *slog.Logger
}

// NewGenerationLogger creates a generation logging middleware.
func NewGenerationLogger(logger *slog.Logger) *GenerationLogger {
	if logger == nil {
		logger = logging.WithComponent("generation")
	}
	return &GenerationLogger{logger: logger}
}

// Name returns the middleware name.
func (m *GenerationLogger) Name() string {
	return "GenerationLogger"
}

// Execute logs the call around the next handler.
func (m *GenerationLogger) Execute(ctx *middleware.Context, next middleware.Handler) error {
	start := time.Now()
	m.logger.Debug("generation call",
		"model", ctx.Request.Model,
		"messages", len(ctx.Request.Messages),
	)

	err := next(ctx)
	elapsed := time.Since(start)

	if err != nil {
		m.logger.Error("generation failed",
			"model", ctx.Request.Model,
			"duration", elapsed,
			"error", err,
		)
		return err
	}

	var size int
	if ctx.Response != nil && ctx.Response.Message != nil {
		size = len(ctx.Response.Message.Content)
	}
	m.logger.Debug("generation completed",
		"model", ctx.Request.Model,
		"duration", elapsed,
		"response_bytes", size,
	)
	return nil
}
