// Package middleware provides an interception chain around generation
// calls. Simulations wrap their provider once and get logging, budget
// enforcement, and caching without touching agent code.
package middleware

import (
	"context"

	"github.com/sweetpotato0/student-agents/llm"
)

// Context represents the middleware execution context for one
// generation call.
type Context struct {
	// Request going to the generation backend
	Request *llm.GenerateRequest

	// Response from the backend, set by the final handler
	Response *llm.GenerateResponse

	// Metadata for passing data between middlewares
	Metadata map[string]any

	// Internal state
	context context.Context
}

// NewContext creates a new middleware context.
func NewContext(ctx context.Context, req *llm.GenerateRequest) *Context {
	return &Context{
		Request:  req,
		Metadata: make(map[string]any),
		context:  ctx,
	}
}

// Context returns the underlying context.Context.
func (c *Context) Context() context.Context {
	return c.context
}

// Middleware intercepts generation calls. Returning an error stops the
// chain; the caller sees it as a failed generation.
type Middleware interface {
	// Name returns the name of the middleware for logging and debugging
	Name() string

	// Execute runs the middleware logic around the next handler
	Execute(ctx *Context, next Handler) error
}

// Handler is the function called to pass control to the next middleware.
type Handler func(*Context) error

// Chain represents a sequence of middleware to be executed.
type Chain struct {
	middlewares []Middleware
}

// NewChain creates a new middleware chain.
func NewChain(middlewares ...Middleware) *Chain {
	return &Chain{middlewares: middlewares}
}

// Add appends a middleware to the chain.
func (c *Chain) Add(m Middleware) *Chain {
	c.middlewares = append(c.middlewares, m)
	return c
}

// Execute runs all middlewares in the chain around the final handler.
func (c *Chain) Execute(ctx *Context, finalHandler Handler) error {
	return c.executeMiddleware(ctx, 0, finalHandler)
}

func (c *Chain) executeMiddleware(ctx *Context, index int, finalHandler Handler) error {
	if index >= len(c.middlewares) {
		return finalHandler(ctx)
	}
	nextHandler := func(ctx *Context) error {
		return c.executeMiddleware(ctx, index+1, finalHandler)
	}
	return c.middlewares[index].Execute(ctx, nextHandler)
}

// Wrap turns a chain plus a base client into an llm.Client, so wrapped
// and bare providers are interchangeable everywhere.
func Wrap(base llm.Client, chain *Chain) llm.Client {
	if chain == nil || len(chain.middlewares) == 0 {
		return base
	}
	return llm.ClientFunc(func(ctx context.Context, req *llm.GenerateRequest) (*llm.GenerateResponse, error) {
		mctx := NewContext(ctx, req)
		err := chain.Execute(mctx, func(c *Context) error {
			resp, err := base.Generate(c.Context(), c.Request)
			if err != nil {
				return err
			}
			c.Response = resp
			return nil
		})
		if err != nil {
			return nil, err
		}
		return mctx.Response, nil
	})
}
