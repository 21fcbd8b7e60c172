// Package llm defines the contract between the simulation core and any
// text-generation backend. Providers under contrib/provider implement
// Client; the core never retries or reformats on their behalf.
package llm

import (
	"context"

	"github.com/sweetpotato0/student-agents/message"
)

// GenerateRequest bundles inputs for a single generation call.
// Model selects the backend identity per call; agent variants pick
// different fixed models per run, so it travels with the request
// rather than living in provider config alone.
type GenerateRequest struct {
	Model    string
	Messages []*message.Message
}

// GenerateResponse captures the raw reply for a generation call.
type GenerateResponse struct {
	Message *message.Message
}

// Client is the gateway to a conversational generation service.
// Implementations may fail or return malformed text; callers treat any
// error the same as a contract violation and substitute stage defaults.
type Client interface {
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)
}

// ClientFunc adapts a plain function into a Client.
type ClientFunc func(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error)

// Generate implements Client.
func (f ClientFunc) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResponse, error) {
	return f(ctx, req)
}

// Prompt is a convenience for the common single-turn case: it wraps the
// prompt into a user message and returns the reply text.
func Prompt(ctx context.Context, c Client, model, prompt string) (string, error) {
	resp, err := c.Generate(ctx, &GenerateRequest{
		Model:    model,
		Messages: []*message.Message{message.NewMessage(message.RoleUser, prompt)},
	})
	if err != nil {
		return "", err
	}
	if resp == nil || resp.Message == nil {
		return "", ErrEmptyResponse
	}
	return resp.Message.Text(), nil
}
