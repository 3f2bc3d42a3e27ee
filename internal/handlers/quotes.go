package handlers

import (
	"context"
	"net/http"
	"time"

	"tax-calculator/internal/logger"
	"tax-calculator/internal/models"
)

// QuoteHandler обрабатывает HTTP запросы расчёта позиций
type QuoteHandler struct {
	quoteService QuoteService
	requests     QuoteRequestPublisher
	limiter      WeightedLimiter
	log          *logger.Logger
}

// NewQuoteHandler создает новый обработчик расчётов.
// requests и limiter могут быть nil.
func NewQuoteHandler(quoteService QuoteService, requests QuoteRequestPublisher, limiter WeightedLimiter, log *logger.Logger) *QuoteHandler {
	return &QuoteHandler{
		quoteService: quoteService,
		requests:     requests,
		limiter:      limiter,
		log:          log,
	}
}

// CreateQuote рассчитывает одну позицию
func (h *QuoteHandler) CreateQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.QuoteRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	quote, err := h.quoteService.Calculate(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to calculate quote")
		return
	}

	writeJSONResponse(w, http.StatusCreated, quote)
}

// CreateBatch рассчитывает независимые позиции одним запросом.
// Лимит списывается по числу позиций.
func (h *QuoteHandler) CreateBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.BatchQuoteRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if h.limiter != nil && h.limiter.Enabled() && len(req.Items) > 0 {
		n := int64(len(req.Items))
		allow := func(ctx context.Context, key string) (bool, int64, time.Time, error) {
			return h.limiter.AllowN(ctx, key, n)
		}
		if !applyRateLimit(w, r, h.limiter, h.log, allow) {
			return
		}
	}

	quotes, err := h.quoteService.CalculateBatch(r.Context(), req.Items)
	if err != nil {
		writeServiceError(w, h.log, err, "Failed to calculate quotes")
		return
	}

	writeJSONResponse(w, http.StatusCreated, models.BatchQuoteResponse{
		Quotes: quotes,
		Count:  len(quotes),
	})
}

// EnqueueQuote отправляет позицию на асинхронный расчёт через Kafka
func (h *QuoteHandler) EnqueueQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if h.requests == nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, "Asynchronous quoting is disabled")
		return
	}

	var req models.QuoteRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	eventID, err := h.requests.PublishQuoteRequested(&req)
	if err != nil {
		h.log.WithError(err).Error("Failed to enqueue quote request")
		writeErrorResponse(w, http.StatusServiceUnavailable, "Failed to enqueue quote request")
		return
	}

	h.log.WithFields(map[string]interface{}{
		"request_id": eventID,
		"reference":  req.Reference,
	}).Info("Quote request enqueued")

	writeJSONResponse(w, http.StatusAccepted, map[string]string{
		"request_id": eventID.String(),
		"status":     "queued",
	})
}
