// Package ollama implements llm.Client against a local Ollama server
// through its OpenAI-compatible endpoint.
package ollama

import (
	"context"
	"fmt"

	openaisdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/packages/param"
	"github.com/sweetpotato0/student-agents/llm"
	"github.com/sweetpotato0/student-agents/message"
)

const defaultBaseURL = "http://localhost:11434/v1"

// Config holds Ollama provider configuration.
type Config struct {
	BaseURL     string
	Model       string
	Temperature float64
}

// DefaultConfig returns configuration pointing at a local Ollama server.
func DefaultConfig() *Config {
	return &Config{
		BaseURL: defaultBaseURL,
	}
}

// Provider implements llm.Client for Ollama.
type Provider struct {
	config *Config
	client openaisdk.Client
}

// New creates a new Ollama provider.
func New(config *Config) *Provider {
	if config == nil {
		config = DefaultConfig()
	}
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}

	// Ollama ignores the key but the SDK requires one.
	client := openaisdk.NewClient(
		option.WithAPIKey("ollama"),
		option.WithBaseURL(config.BaseURL),
	)
	return &Provider{config: config, client: client}
}

// Generate implements llm.Client.
func (p *Provider) Generate(ctx context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("generate request cannot be nil")
	}

	msgs := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, msg := range req.Messages {
		switch msg.Role {
		case message.RoleSystem:
			msgs = append(msgs, openaisdk.SystemMessage(msg.Text()))
		case message.RoleUser:
			msgs = append(msgs, openaisdk.UserMessage(msg.Text()))
		case message.RoleAssistant:
			msgs = append(msgs, openaisdk.AssistantMessage(msg.Text()))
		}
	}

	model := req.Model
	if model == "" {
		model = p.config.Model
	}
	if model == "" {
		return nil, llm.ErrModelRequired
	}

	params := openaisdk.ChatCompletionNewParams{
		Messages: msgs,
		Model:    openaisdk.ChatModel(model),
	}
	if p.config.Temperature > 0 {
		params.Temperature = param.NewOpt(p.config.Temperature)
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("Ollama API error: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned from Ollama")
	}

	responseMsg := message.NewMessage(message.RoleAssistant, completion.Choices[0].Message.Content)
	return &llm.GenerateResponse{Message: responseMsg}, nil
}
