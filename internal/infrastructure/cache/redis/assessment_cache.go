package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kirillkom/legal-assistant/internal/core/domain"
	"github.com/kirillkom/legal-assistant/internal/infrastructure/resilience"
)

const (
	keyPrefix  = "legal:risk:"
	DefaultTTL = 24 * time.Hour
)

// AssessmentCache stores risk assessments as JSON. Assessment is a pure
// function of the text, so entries never need invalidation beyond the TTL.
type AssessmentCache struct {
	client   redis.UniversalClient
	ttl      time.Duration
	executor *resilience.Executor
}

// NewClient parses a redis:// URL.
func NewClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func NewAssessmentCache(client redis.UniversalClient, ttl time.Duration, executor *resilience.Executor) *AssessmentCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &AssessmentCache{client: client, ttl: ttl, executor: executor}
}

func (c *AssessmentCache) Get(ctx context.Context, key string) (*domain.RiskAssessment, bool, error) {
	raw, err := resilience.Call(ctx, c.executor, "redis.get", func(ctx context.Context) ([]byte, error) {
		raw, err := c.client.Get(ctx, keyPrefix+key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return raw, err
	}, classifyRedisError)
	if err != nil {
		return nil, false, resilience.WrapTemporary("redis get", err, classifyRedisError)
	}
	if raw == nil {
		return nil, false, nil
	}

	var assessment domain.RiskAssessment
	if err := json.Unmarshal(raw, &assessment); err != nil {
		return nil, false, fmt.Errorf("decode cached assessment: %w", err)
	}
	return &assessment, true, nil
}

func (c *AssessmentCache) Set(ctx context.Context, key string, assessment domain.RiskAssessment) error {
	raw, err := json.Marshal(assessment)
	if err != nil {
		return fmt.Errorf("encode assessment: %w", err)
	}
	err = c.executor.Execute(ctx, "redis.set", func(ctx context.Context) error {
		return c.client.Set(ctx, keyPrefix+key, raw, c.ttl).Err()
	}, classifyRedisError)
	return resilience.WrapTemporary("redis set", err, classifyRedisError)
}

func (c *AssessmentCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

var classifyRedisError = resilience.Transient(func(err error) bool {
	return resilience.IsNetworkError(err) || errors.Is(err, redis.ErrClosed)
})
