package errors

import "errors"

// Sentinel errors for common failure conditions in the simulation core
var (
	// ErrGenerationFailed indicates the generation backend returned an error
	ErrGenerationFailed = errors.New("generation service failed")

	// ErrRetrievalMiss indicates no passage matched a retrieval query
	ErrRetrievalMiss = errors.New("no matching passage")

	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates that input validation failed
	ErrInvalidInput = errors.New("invalid input")

	// ErrInternal indicates an internal error
	ErrInternal = errors.New("internal error")
)
