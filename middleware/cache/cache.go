// Package cache provides a Redis-backed response cache for generation
// calls. Repeated runs of the same experiment replay identical prompts,
// so caching cuts both cost and wall time.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sweetpotato0/student-agents/llm"
	"github.com/sweetpotato0/student-agents/message"
	"github.com/sweetpotato0/student-agents/middleware"
)

// Config holds Redis cache configuration.
type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

// DefaultConfig returns default Redis cache configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:   "localhost:6379",
		TTL:    24 * time.Hour,
		Prefix: "genrcache",
	}
}

// ResponseCache middleware caches generation replies keyed by model and
// conversation content.
type ResponseCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewResponseCache creates a Redis-backed response cache middleware.
func NewResponseCache(config *Config) (*ResponseCache, error) {
	if config == nil {
		config = DefaultConfig()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})
	return &ResponseCache{
		client: client,
		ttl:    config.TTL,
		prefix: config.Prefix,
	}, nil
}

// Name returns the middleware name.
func (m *ResponseCache) Name() string {
	return "ResponseCache"
}

// Execute serves cached replies and stores fresh ones. Cache failures
// never fail the call, they just fall through to the backend.
func (m *ResponseCache) Execute(ctx *middleware.Context, next middleware.Handler) error {
	key := m.key(ctx)

	if cached, err := m.client.Get(ctx.Context(), key).Result(); err == nil {
		ctx.Response = &llm.GenerateResponse{
			Message: message.NewMessage(message.RoleAssistant, cached),
		}
		ctx.Metadata["cache_hit"] = true
		return nil
	}

	if err := next(ctx); err != nil {
		return err
	}

	if ctx.Response != nil && ctx.Response.Message != nil {
		m.client.Set(ctx.Context(), key, ctx.Response.Message.Text(), m.ttl)
	}
	return nil
}

// Close releases the Redis connection.
func (m *ResponseCache) Close() error {
	return m.client.Close()
}

func (m *ResponseCache) key(ctx *middleware.Context) string {
	h := sha256.New()
	h.Write([]byte(ctx.Request.Model))
	for _, msg := range ctx.Request.Messages {
		h.Write([]byte{0})
		h.Write([]byte(msg.Role))
		h.Write([]byte{0})
		h.Write([]byte(msg.Content))
	}
	return fmt.Sprintf("%s:%s", m.prefix, hex.EncodeToString(h.Sum(nil)))
}
