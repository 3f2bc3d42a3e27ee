package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType представляет тип события
type EventType string

const (
	EventTypeQuoteRequested  EventType = "quote.requested"
	EventTypeQuoteCalculated EventType = "quote.calculated"
	EventTypeQuoteRejected   EventType = "quote.rejected"
)

// Event представляет событие в Kafka
type Event struct {
	ID        uuid.UUID       `json:"id"`
	Type      EventType       `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// QuoteRejectedData описывает позицию, которую не удалось рассчитать
type QuoteRejectedData struct {
	RequestEventID uuid.UUID `json:"request_event_id"`
	Reference      string    `json:"reference,omitempty"`
	Reason         string    `json:"reason"`
}
