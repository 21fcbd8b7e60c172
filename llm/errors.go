package llm

import "errors"

var (
	// ErrEmptyResponse indicates the provider returned no message.
	ErrEmptyResponse = errors.New("generation returned empty response")

	// ErrModelRequired indicates the request did not name a model.
	ErrModelRequired = errors.New("model identifier is required")
)
