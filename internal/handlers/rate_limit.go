package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"tax-calculator/internal/config"
	"tax-calculator/internal/logger"
	"tax-calculator/internal/services"
)

// RateLimitHandler отвечает за статус лимита и middleware.
type RateLimitHandler struct {
	limiter RateLimitStatusProvider
	log     *logger.Logger
	cfg     *config.RateLimitConfig
}

// NewRateLimitHandler создает новый RateLimitHandler.
func NewRateLimitHandler(limiter RateLimitStatusProvider, log *logger.Logger, cfg *config.RateLimitConfig) *RateLimitHandler {
	return &RateLimitHandler{
		limiter: limiter,
		log:     log,
		cfg:     cfg,
	}
}

// Status возвращает текущие значения лимита для клиента.
func (h *RateLimitHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if h.limiter == nil || h.cfg == nil || !h.cfg.Enabled {
		writeJSONResponse(w, http.StatusOK, map[string]interface{}{
			"enabled": false,
		})
		return
	}

	key := services.ExtractClientIP(r)
	used, remaining, resetAt, err := h.limiter.Usage(r.Context(), key)
	if err != nil {
		h.log.WithError(err).Error("Failed to fetch rate limit usage")
		writeErrorResponse(w, http.StatusInternalServerError, "Failed to fetch rate limit usage")
		return
	}

	resp := map[string]interface{}{
		"enabled":        true,
		"limit":          h.cfg.Requests,
		"window_seconds": h.cfg.WindowSeconds,
		"used":           used,
		"remaining":      remaining,
		"key":            key,
	}
	if resetAt != nil {
		resp["reset_at"] = resetAt.Format(time.RFC3339)
	}

	writeJSONResponse(w, http.StatusOK, resp)
}

// RateLimitMiddleware применяет rate limiting к хендлеру.
func RateLimitMiddleware(limiter MiddlewareLimiter, log *logger.Logger, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if limiter == nil || !limiter.Enabled() {
			next(w, r)
			return
		}

		if !applyRateLimit(w, r, limiter, log, limiter.Allow) {
			return
		}

		next(w, r)
	}
}

type allowFunc func(ctx context.Context, key string) (bool, int64, time.Time, error)

// applyRateLimit списывает лимит, выставляет заголовки и при отказе пишет ответ.
// Возвращает true, если запрос можно обрабатывать дальше.
func applyRateLimit(w http.ResponseWriter, r *http.Request, limiter MiddlewareLimiter, log *logger.Logger, allow allowFunc) bool {
	key := services.ExtractClientIP(r)
	allowed, remaining, resetAt, err := allow(r.Context(), key)
	if err != nil {
		log.WithError(err).Error("Rate limiter failed")
		writeErrorResponse(w, http.StatusInternalServerError, "Rate limiter error")
		return false
	}

	// Заголовки совместимые с common rate limit policy
	w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(limiter.Limit(), 10))
	w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
	if !resetAt.IsZero() {
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
	}

	if !allowed {
		writeErrorResponse(w, http.StatusTooManyRequests, "Rate limit exceeded")
		return false
	}
	return true
}
