package kafka

import (
	"encoding/json"
	"fmt"
	"time"

	"tax-calculator/internal/config"
	"tax-calculator/internal/logger"
	"tax-calculator/internal/models"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
)

// Producer представляет Kafka producer
type Producer struct {
	producer sarama.SyncProducer
	log      *logger.Logger
	topics   *config.Topics
}

// NewProducer создает новый Kafka producer
func NewProducer(cfg *config.KafkaConfig, log *logger.Logger) (*Producer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner
	saramaConfig.Net.DialTimeout = 5 * time.Second

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	log.WithField("brokers", cfg.Brokers).Info("Kafka producer created")

	return &Producer{
		producer: producer,
		log:      log,
		topics:   &cfg.Topics,
	}, nil
}

// Close закрывает producer
func (p *Producer) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}

// PublishQuoteCalculated публикует рассчитанную позицию
func (p *Producer) PublishQuoteCalculated(quote *models.Quote) error {
	event, err := newEvent(models.EventTypeQuoteCalculated, quote)
	if err != nil {
		return err
	}
	return p.publishEvent(p.topics.Quotes, event)
}

// PublishQuoteRejected публикует отказ в расчёте
func (p *Producer) PublishQuoteRejected(data *models.QuoteRejectedData) error {
	event, err := newEvent(models.EventTypeQuoteRejected, data)
	if err != nil {
		return err
	}
	return p.publishEvent(p.topics.Quotes, event)
}

// PublishQuoteRequested отправляет позицию на асинхронный расчёт
func (p *Producer) PublishQuoteRequested(req *models.QuoteRequest) (uuid.UUID, error) {
	event, err := newEvent(models.EventTypeQuoteRequested, req)
	if err != nil {
		return uuid.Nil, err
	}
	if err := p.publishEvent(p.topics.Requests, event); err != nil {
		return uuid.Nil, err
	}
	return event.ID, nil
}

func newEvent(eventType models.EventType, payload interface{}) (models.Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return models.Event{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return models.Event{
		ID:        uuid.New(),
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}, nil
}

// publishEvent публикует событие в указанный топик
func (p *Producer) publishEvent(topic string, event models.Event) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(event.ID.String()),
		Value: sarama.ByteEncoder(eventData),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.Type)},
		},
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		return fmt.Errorf("failed to send message to topic %s: %w", topic, err)
	}

	p.log.WithFields(map[string]interface{}{
		"topic":      topic,
		"partition":  partition,
		"offset":     offset,
		"event_id":   event.ID,
		"event_type": event.Type,
	}).Debug("Event published to Kafka")

	return nil
}
