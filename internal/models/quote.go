package models

import (
	"encoding/json"
	"io"
	"time"

	"tax-calculator/pkg/taxcalc"

	"github.com/google/uuid"
)

// QuoteRequest представляет запрос на расчёт одной позиции.
// Числовые поля принимают число или строку, проверка типов выполняется в taxcalc.
type QuoteRequest struct {
	Reference       string      `json:"reference,omitempty"`
	Price           interface{} `json:"price"`
	TaxRate         interface{} `json:"tax_rate,omitempty"`
	TaxIncluded     interface{} `json:"tax_included,omitempty"`
	PercentDiscount interface{} `json:"percent_discount,omitempty"`
	Quantity        interface{} `json:"quantity,omitempty"`
	Decimals        interface{} `json:"decimals,omitempty"`
	ConvertTo       string      `json:"convert_to,omitempty"` // inc-tax | without-tax
}

// BatchQuoteRequest представляет набор независимых позиций
type BatchQuoteRequest struct {
	Items []QuoteRequest `json:"items"`
}

// Quote представляет рассчитанную позицию
type Quote struct {
	ID            uuid.UUID         `json:"id"`
	Reference     string            `json:"reference,omitempty"`
	ConvertedFrom string            `json:"converted_from,omitempty"`
	Breakdown     taxcalc.Breakdown `json:"breakdown"`
	CreatedAt     time.Time         `json:"created_at"`
}

// BatchQuoteResponse представляет ответ на пакетный расчёт
type BatchQuoteResponse struct {
	Quotes []*Quote `json:"quotes"`
	Count  int      `json:"count"`
}

// DecodeJSON разбирает JSON, сохраняя числа как json.Number
func DecodeJSON(r io.Reader, dest interface{}) error {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return dec.Decode(dest)
}
