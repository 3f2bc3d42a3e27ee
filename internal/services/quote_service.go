package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"tax-calculator/internal/apperror"
	"tax-calculator/internal/config"
	"tax-calculator/internal/logger"
	"tax-calculator/internal/models"
	"tax-calculator/internal/redis"
	"tax-calculator/pkg/taxcalc"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const defaultEventClaimTTL = 24 * time.Hour

// QuotePublisher публикует результаты расчёта.
type QuotePublisher interface {
	PublishQuoteCalculated(quote *models.Quote) error
	PublishQuoteRejected(data *models.QuoteRejectedData) error
}

// EventClaimer не даёт обработать одно событие дважды.
type EventClaimer interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// QuoteService рассчитывает позиции через taxcalc.
type QuoteService struct {
	log             *logger.Logger
	publisher       QuotePublisher
	claimer         EventClaimer
	claimTTL        time.Duration
	defaultKind     taxcalc.Kind
	defaultDecimals int32
	maxBatch        int
}

// NewQuoteService создает сервис расчёта. publisher и claimer могут быть nil.
func NewQuoteService(log *logger.Logger, publisher QuotePublisher, claimer EventClaimer, cfg *config.CalculatorConfig, maxBatch int) (*QuoteService, error) {
	kind, err := taxcalc.ParseKind(cfg.DefaultStrategy)
	if err != nil {
		return nil, fmt.Errorf("invalid default strategy: %w", err)
	}
	if cfg.DefaultDecimals < 0 || cfg.DefaultDecimals > int(taxcalc.MaxDecimals) {
		return nil, fmt.Errorf("invalid default decimals: %d", cfg.DefaultDecimals)
	}

	return &QuoteService{
		log:             log,
		publisher:       publisher,
		claimer:         claimer,
		claimTTL:        defaultEventClaimTTL,
		defaultKind:     kind,
		defaultDecimals: int32(cfg.DefaultDecimals),
		maxBatch:        maxBatch,
	}, nil
}

// Calculate рассчитывает одну позицию и публикует результат
func (s *QuoteService) Calculate(ctx context.Context, req *models.QuoteRequest) (*models.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	quote, err := s.compute(req)
	if err != nil {
		return nil, apperror.Validation(err.Error(), err)
	}

	s.publish(quote)
	return quote, nil
}

// CalculateBatch рассчитывает набор независимых позиций.
// Если хотя бы одна позиция невалидна, не публикуется ничего.
func (s *QuoteService) CalculateBatch(ctx context.Context, reqs []models.QuoteRequest) ([]*models.Quote, error) {
	if len(reqs) == 0 {
		return nil, apperror.Validation("items: at least one item is required", nil)
	}
	if s.maxBatch > 0 && len(reqs) > s.maxBatch {
		return nil, apperror.TooLarge(fmt.Sprintf("items: at most %d items are allowed", s.maxBatch), nil)
	}

	quotes := make([]*models.Quote, 0, len(reqs))
	for i := range reqs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		quote, err := s.compute(&reqs[i])
		if err != nil {
			return nil, apperror.Validation(fmt.Sprintf("items[%d].%s", i, err.Error()), err)
		}
		quotes = append(quotes, quote)
	}

	for _, quote := range quotes {
		s.publish(quote)
	}

	s.log.WithField("count", len(quotes)).Info("Batch quotes calculated")
	return quotes, nil
}

// HandleQuoteRequested обрабатывает событие quote.requested из Kafka.
// Невалидные запросы отклоняются событием quote.rejected и не повторяются.
func (s *QuoteService) HandleQuoteRequested(ctx context.Context, event *models.Event) error {
	log := s.log.WithFields(logrus.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
	})

	claimKey := redis.GenerateKey(redis.KeyPrefixEvent, event.ID.String())
	claimed := false
	if s.claimer != nil {
		ok, err := s.claimer.Claim(ctx, claimKey, s.claimTTL)
		if err != nil {
			log.WithError(err).Warn("Failed to claim event, processing anyway")
		} else if !ok {
			log.Info("Duplicate quote request skipped")
			return nil
		} else {
			claimed = true
		}
	}

	var req models.QuoteRequest
	if err := models.DecodeJSON(bytes.NewReader(event.Data), &req); err != nil {
		log.WithError(err).Warn("Invalid quote request payload")
		return s.reject(event.ID, "", fmt.Sprintf("invalid payload: %v", err))
	}

	quote, err := s.compute(&req)
	if err != nil {
		log.WithError(err).WithField("reference", req.Reference).Warn("Quote request rejected")
		return s.reject(event.ID, req.Reference, err.Error())
	}

	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.PublishQuoteCalculated(quote); err != nil {
		if claimed {
			if relErr := s.claimer.Release(ctx, claimKey); relErr != nil {
				log.WithError(relErr).Warn("Failed to release event claim")
			}
		}
		return apperror.Unavailable("failed to publish calculated quote", err)
	}
	return nil
}

func (s *QuoteService) reject(eventID uuid.UUID, reference, reason string) error {
	if s.publisher == nil {
		return nil
	}
	data := &models.QuoteRejectedData{
		RequestEventID: eventID,
		Reference:      reference,
		Reason:         reason,
	}
	if err := s.publisher.PublishQuoteRejected(data); err != nil {
		s.log.WithError(err).WithField("event_id", eventID).Warn("Failed to publish quote rejection")
	}
	return nil
}

func (s *QuoteService) publish(quote *models.Quote) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishQuoteCalculated(quote); err != nil {
		s.log.WithError(err).WithField("quote_id", quote.ID).Warn("Failed to publish quote calculated event")
	}
}

// compute строит фасад по запросу и снимает с него breakdown
func (s *QuoteService) compute(req *models.QuoteRequest) (*models.Quote, error) {
	client, err := s.buildClient(req)
	if err != nil {
		return nil, err
	}

	convertedFrom := ""
	if req.ConvertTo != "" {
		target, err := taxcalc.ParseKind(req.ConvertTo)
		if err != nil {
			return nil, &taxcalc.FieldError{Field: "convert_to", Err: err}
		}
		if target != client.StrategyKind() {
			convertedFrom = client.StrategyName()
			client.ChangeStrategy(taxcalc.New(target, decimal.Zero), true)
			if err := client.Err(); err != nil {
				return nil, err
			}
		}
	}

	quote := &models.Quote{
		ID:            uuid.New(),
		Reference:     req.Reference,
		ConvertedFrom: convertedFrom,
		Breakdown:     client.Breakdown(),
		CreatedAt:     time.Now().UTC(),
	}

	s.log.WithQuote(quote.ID.String(), client.StrategyName()).
		WithField("amount_inc_tax", quote.Breakdown.AmountIncTax.String()).
		Info("Quote calculated")

	return quote, nil
}

func (s *QuoteService) buildClient(req *models.QuoteRequest) (*taxcalc.Client, error) {
	kind := s.defaultKind
	if req.TaxIncluded != nil {
		included, err := taxcalc.ParseTaxIncluded(req.TaxIncluded)
		if err != nil {
			return nil, err
		}
		kind = taxcalc.KindFor(included)
	}

	price, err := taxcalc.ParsePrice(req.Price)
	if err != nil {
		return nil, err
	}
	rate, err := taxcalc.ParseRate(req.TaxRate)
	if err != nil {
		return nil, err
	}
	discount, err := taxcalc.ParsePercentDiscount(req.PercentDiscount)
	if err != nil {
		return nil, err
	}

	quantity := decimal.NewFromInt(1)
	if req.Quantity != nil {
		if quantity, err = taxcalc.ParseQuantity(req.Quantity); err != nil {
			return nil, err
		}
	}

	decimals := s.defaultDecimals
	if req.Decimals != nil {
		if decimals, err = taxcalc.ParseDecimals(req.Decimals); err != nil {
			return nil, err
		}
	}

	client := taxcalc.NewClient(taxcalc.New(kind, price)).
		SetDecimals(decimals).
		SetTaxRate(rate).
		SetPercentDiscount(discount).
		SetQuantity(quantity)
	if err := client.Err(); err != nil {
		return nil, err
	}
	return client, nil
}
