package handlers

import (
	"context"
	"time"

	"tax-calculator/internal/models"

	"github.com/google/uuid"
)

// ----- Quotes -----

type QuoteService interface {
	Calculate(ctx context.Context, req *models.QuoteRequest) (*models.Quote, error)
	CalculateBatch(ctx context.Context, reqs []models.QuoteRequest) ([]*models.Quote, error)
}

type QuoteRequestPublisher interface {
	PublishQuoteRequested(req *models.QuoteRequest) (uuid.UUID, error)
}

// ----- Rate limit -----

// MiddlewareLimiter описывает контракт для rate limiter.
type MiddlewareLimiter interface {
	Allow(ctx context.Context, key string) (bool, int64, time.Time, error)
	Enabled() bool
	Limit() int64
}

// WeightedLimiter списывает несколько единиц за один запрос.
type WeightedLimiter interface {
	MiddlewareLimiter
	AllowN(ctx context.Context, key string, n int64) (bool, int64, time.Time, error)
}

// RateLimitStatusProvider расширяет интерфейс для эндпоинта статуса.
type RateLimitStatusProvider interface {
	MiddlewareLimiter
	Usage(ctx context.Context, key string) (int64, int64, *time.Time, error)
}

// ----- Health -----

type RedisHealth interface {
	Health(ctx context.Context) error
}

type KafkaHealthFunc func(brokers []string) error
