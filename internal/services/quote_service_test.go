package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"tax-calculator/internal/apperror"
	"tax-calculator/internal/config"
	"tax-calculator/internal/logger"
	"tax-calculator/internal/models"

	"github.com/google/uuid"
)

type stubPublisher struct {
	calculated []*models.Quote
	rejected   []*models.QuoteRejectedData
	err        error
}

func (s *stubPublisher) PublishQuoteCalculated(quote *models.Quote) error {
	if s.err != nil {
		return s.err
	}
	s.calculated = append(s.calculated, quote)
	return nil
}

func (s *stubPublisher) PublishQuoteRejected(data *models.QuoteRejectedData) error {
	s.rejected = append(s.rejected, data)
	return nil
}

type stubClaimer struct {
	claimed  map[string]bool
	released []string
	err      error
}

func newStubClaimer() *stubClaimer {
	return &stubClaimer{claimed: make(map[string]bool)}
}

func (s *stubClaimer) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	if s.claimed[key] {
		return false, nil
	}
	s.claimed[key] = true
	return true, nil
}

func (s *stubClaimer) Release(ctx context.Context, key string) error {
	delete(s.claimed, key)
	s.released = append(s.released, key)
	return nil
}

func newTestQuoteService(t *testing.T, pub QuotePublisher, claimer EventClaimer) *QuoteService {
	t.Helper()
	log := logger.New(&config.LoggerConfig{Level: "error", Format: "json"})
	svc, err := NewQuoteService(log, pub, claimer, &config.CalculatorConfig{DefaultDecimals: 2, DefaultStrategy: "inc-tax"}, 3)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return svc
}

func TestNewQuoteService_InvalidDefaults(t *testing.T) {
	log := logger.New(&config.LoggerConfig{Level: "error", Format: "json"})
	if _, err := NewQuoteService(log, nil, nil, &config.CalculatorConfig{DefaultStrategy: "gross"}, 0); err == nil {
		t.Fatalf("expected error for unknown default strategy")
	}
	if _, err := NewQuoteService(log, nil, nil, &config.CalculatorConfig{DefaultStrategy: "inc-tax", DefaultDecimals: -1}, 0); err == nil {
		t.Fatalf("expected error for negative default decimals")
	}
	if _, err := NewQuoteService(log, nil, nil, &config.CalculatorConfig{DefaultStrategy: "inc-tax", DefaultDecimals: 29}, 0); err == nil {
		t.Fatalf("expected error for default decimals above the limit")
	}
}

func TestQuoteService_CalculateIncTax(t *testing.T) {
	pub := &stubPublisher{}
	svc := newTestQuoteService(t, pub, nil)

	quote, err := svc.Calculate(context.Background(), &models.QuoteRequest{
		Reference: "line-1",
		Price:     json.Number("121"),
		TaxRate:   json.Number("0.21"),
		Quantity:  json.Number("2"),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if quote.ID == uuid.Nil || quote.Reference != "line-1" {
		t.Fatalf("unexpected quote identity: %+v", quote)
	}
	b := quote.Breakdown
	if b.Strategy != "inc-tax" || b.BasePrice.String() != "100" || b.AmountIncTax.String() != "242" {
		t.Fatalf("unexpected breakdown: strategy=%s base=%s total=%s", b.Strategy, b.BasePrice, b.AmountIncTax)
	}
	if !b.AmountTax.Valid || b.AmountTax.Decimal.String() != "42" {
		t.Fatalf("expected amount tax 42, got %+v", b.AmountTax)
	}
	if len(pub.calculated) != 1 || pub.calculated[0].ID != quote.ID {
		t.Fatalf("expected quote published once")
	}
}

func TestQuoteService_CalculateWithoutTaxFlag(t *testing.T) {
	svc := newTestQuoteService(t, nil, nil)

	quote, err := svc.Calculate(context.Background(), &models.QuoteRequest{
		Price:           "100",
		TaxRate:         0.21,
		TaxIncluded:     false,
		PercentDiscount: json.Number("0.1"),
		Quantity:        2,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	b := quote.Breakdown
	if b.Strategy != "without-tax" || b.Amount.String() != "180" || b.AmountIncTax.String() != "217.8" {
		t.Fatalf("unexpected breakdown: strategy=%s amount=%s inc=%s", b.Strategy, b.Amount, b.AmountIncTax)
	}
	if !b.AmountDiscount.Valid || b.AmountDiscount.Decimal.String() != "20" {
		t.Fatalf("expected discount 20, got %+v", b.AmountDiscount)
	}
}

func TestQuoteService_ConvertCarriesInputs(t *testing.T) {
	svc := newTestQuoteService(t, nil, nil)

	quote, err := svc.Calculate(context.Background(), &models.QuoteRequest{
		Price:       json.Number("121"),
		TaxRate:     json.Number("0.21"),
		TaxIncluded: true,
		ConvertTo:   "without-tax",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if quote.ConvertedFrom != "inc-tax" || quote.Breakdown.Strategy != "without-tax" {
		t.Fatalf("unexpected conversion: from=%s to=%s", quote.ConvertedFrom, quote.Breakdown.Strategy)
	}
	if quote.Breakdown.BasePriceIncTax.String() != "146.41" {
		t.Fatalf("expected 146.41, got %s", quote.Breakdown.BasePriceIncTax)
	}

	same, err := svc.Calculate(context.Background(), &models.QuoteRequest{Price: 1, ConvertTo: "inc-tax"})
	if err != nil || same.ConvertedFrom != "" {
		t.Fatalf("conversion to the active strategy should be a no-op, got from=%q err=%v", same.ConvertedFrom, err)
	}
}

func TestQuoteService_CalculateDefaults(t *testing.T) {
	svc := newTestQuoteService(t, nil, nil)

	quote, err := svc.Calculate(context.Background(), &models.QuoteRequest{Price: json.Number("10.005")})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	b := quote.Breakdown
	if b.Decimals != 2 || b.Quantity.String() != "1" || b.Price.String() != "10.01" {
		t.Fatalf("unexpected defaults: decimals=%d quantity=%s price=%s", b.Decimals, b.Quantity, b.Price)
	}
	if b.TaxRate.Valid || b.AmountTax.Valid {
		t.Fatalf("expected absent tax figures without a rate")
	}
}

func TestQuoteService_CalculateValidation(t *testing.T) {
	svc := newTestQuoteService(t, &stubPublisher{}, nil)

	cases := []struct {
		name  string
		req   models.QuoteRequest
		field string
	}{
		{"missing price", models.QuoteRequest{}, "price"},
		{"non numeric price", models.QuoteRequest{Price: "abc"}, "price"},
		{"rate above one", models.QuoteRequest{Price: 1, TaxRate: json.Number("1.2")}, "tax_rate"},
		{"negative discount", models.QuoteRequest{Price: 1, PercentDiscount: json.Number("-0.1")}, "percent_discount"},
		{"zero quantity", models.QuoteRequest{Price: 1, Quantity: json.Number("0")}, "quantity"},
		{"fractional decimals", models.QuoteRequest{Price: 1, Decimals: json.Number("1.5")}, "decimals"},
		{"decimals out of range", models.QuoteRequest{Price: 1, Decimals: json.Number("10000000")}, "decimals"},
		{"price exponent out of range", models.QuoteRequest{Price: json.Number("1e10000000")}, "price"},
		{"quantity exponent out of range", models.QuoteRequest{Price: 1, Quantity: "1e-10000000"}, "quantity"},
		{"tax included not bool", models.QuoteRequest{Price: 1, TaxIncluded: "yes"}, "tax_included"},
		{"unknown conversion", models.QuoteRequest{Price: 1, ConvertTo: "gross"}, "convert_to"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Calculate(context.Background(), &tc.req)
			if !apperror.Is(err, apperror.KindValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if !strings.HasPrefix(err.Error(), tc.field+":") {
				t.Fatalf("expected message to start with %q, got %q", tc.field, err.Error())
			}
		})
	}
}

func TestQuoteService_CalculatePublishFailureIsNotFatal(t *testing.T) {
	svc := newTestQuoteService(t, &stubPublisher{err: errors.New("kafka down")}, nil)

	if _, err := svc.Calculate(context.Background(), &models.QuoteRequest{Price: 1}); err != nil {
		t.Fatalf("expected publish failure to be logged only, got %v", err)
	}
}

func TestQuoteService_CalculateCancelledContext(t *testing.T) {
	svc := newTestQuoteService(t, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.Calculate(ctx, &models.QuoteRequest{Price: 1}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancelled, got %v", err)
	}
}

func TestQuoteService_CalculateBatch(t *testing.T) {
	pub := &stubPublisher{}
	svc := newTestQuoteService(t, pub, nil)

	quotes, err := svc.CalculateBatch(context.Background(), []models.QuoteRequest{
		{Reference: "a", Price: 121, TaxRate: json.Number("0.21")},
		{Reference: "b", Price: 100, TaxRate: json.Number("0.21"), TaxIncluded: false},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(quotes) != 2 || len(pub.calculated) != 2 {
		t.Fatalf("expected 2 quotes published, got %d/%d", len(quotes), len(pub.calculated))
	}
	if quotes[0].Breakdown.BasePrice.String() != "100" || quotes[1].Breakdown.BasePriceIncTax.String() != "121" {
		t.Fatalf("unexpected batch figures")
	}
}

func TestQuoteService_CalculateBatchErrors(t *testing.T) {
	pub := &stubPublisher{}
	svc := newTestQuoteService(t, pub, nil)

	if _, err := svc.CalculateBatch(context.Background(), nil); !apperror.Is(err, apperror.KindValidation) {
		t.Fatalf("expected validation error for empty batch, got %v", err)
	}

	tooMany := make([]models.QuoteRequest, 4)
	if _, err := svc.CalculateBatch(context.Background(), tooMany); !apperror.Is(err, apperror.KindTooLarge) {
		t.Fatalf("expected too large error, got %v", err)
	}

	_, err := svc.CalculateBatch(context.Background(), []models.QuoteRequest{
		{Price: 1},
		{Price: 1, Quantity: json.Number("-2")},
	})
	if !apperror.Is(err, apperror.KindValidation) || !strings.HasPrefix(err.Error(), "items[1].quantity:") {
		t.Fatalf("expected indexed validation error, got %v", err)
	}
	if len(pub.calculated) != 0 {
		t.Fatalf("expected nothing published when batch is invalid")
	}
}

func quoteRequestedEvent(t *testing.T, payload string) *models.Event {
	t.Helper()
	return &models.Event{
		ID:        uuid.New(),
		Type:      models.EventTypeQuoteRequested,
		Data:      json.RawMessage(payload),
		Timestamp: time.Now(),
	}
}

func TestQuoteService_HandleQuoteRequested(t *testing.T) {
	pub := &stubPublisher{}
	claimer := newStubClaimer()
	svc := newTestQuoteService(t, pub, claimer)

	event := quoteRequestedEvent(t, `{"reference":"r1","price":"121","tax_rate":0.21,"quantity":3}`)
	if err := svc.HandleQuoteRequested(context.Background(), event); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(pub.calculated) != 1 {
		t.Fatalf("expected one calculated quote, got %d", len(pub.calculated))
	}
	q := pub.calculated[0]
	if q.Reference != "r1" || q.Breakdown.AmountIncTax.String() != "363" {
		t.Fatalf("unexpected quote: ref=%s total=%s", q.Reference, q.Breakdown.AmountIncTax)
	}

	// повторная доставка того же события
	if err := svc.HandleQuoteRequested(context.Background(), event); err != nil {
		t.Fatalf("expected duplicate to be skipped, got %v", err)
	}
	if len(pub.calculated) != 1 {
		t.Fatalf("expected duplicate not to be published")
	}
}

func TestQuoteService_HandleQuoteRequested_Rejects(t *testing.T) {
	pub := &stubPublisher{}
	svc := newTestQuoteService(t, pub, nil)

	if err := svc.HandleQuoteRequested(context.Background(), quoteRequestedEvent(t, `not json`)); err != nil {
		t.Fatalf("invalid payload should be skipped, got %v", err)
	}
	if err := svc.HandleQuoteRequested(context.Background(), quoteRequestedEvent(t, `{"reference":"r2","price":1,"tax_rate":2}`)); err != nil {
		t.Fatalf("invalid request should be skipped, got %v", err)
	}

	if len(pub.calculated) != 0 || len(pub.rejected) != 2 {
		t.Fatalf("expected 2 rejections, got calculated=%d rejected=%d", len(pub.calculated), len(pub.rejected))
	}
	if pub.rejected[1].Reference != "r2" || !strings.HasPrefix(pub.rejected[1].Reason, "tax_rate:") {
		t.Fatalf("unexpected rejection: %+v", pub.rejected[1])
	}
}

func TestQuoteService_HandleQuoteRequested_PublishFailureReleasesClaim(t *testing.T) {
	pub := &stubPublisher{err: errors.New("kafka down")}
	claimer := newStubClaimer()
	svc := newTestQuoteService(t, pub, claimer)

	event := quoteRequestedEvent(t, `{"price":1}`)
	err := svc.HandleQuoteRequested(context.Background(), event)
	if !apperror.Is(err, apperror.KindUnavailable) {
		t.Fatalf("expected unavailable error, got %v", err)
	}
	if len(claimer.released) != 1 || len(claimer.claimed) != 0 {
		t.Fatalf("expected claim released for retry")
	}
}

func TestQuoteService_HandleQuoteRequested_ClaimErrorStillProcesses(t *testing.T) {
	pub := &stubPublisher{}
	claimer := newStubClaimer()
	claimer.err = errors.New("redis down")
	svc := newTestQuoteService(t, pub, claimer)

	if err := svc.HandleQuoteRequested(context.Background(), quoteRequestedEvent(t, `{"price":1}`)); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(pub.calculated) != 1 {
		t.Fatalf("expected quote published despite claim failure")
	}
}
