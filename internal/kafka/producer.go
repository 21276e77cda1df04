package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"transfer/internal/config"
	"transfer/internal/domain"
	"transfer/internal/logger"
)

// Producer publishes quote events to Kafka.
type Producer struct {
	producer sarama.SyncProducer
	log      *logger.Logger
	topic    string
}

// NewProducer connects a synchronous producer to the configured brokers.
func NewProducer(cfg config.KafkaConfig, log *logger.Logger) (*Producer, error) {
	scfg := sarama.NewConfig()
	scfg.Producer.Return.Successes = true
	scfg.Producer.RequiredAcks = sarama.WaitForLocal
	scfg.Producer.Retry.Max = 3
	scfg.Producer.Timeout = 5 * time.Second

	producer, err := sarama.NewSyncProducer(cfg.Brokers, scfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	log.WithField("brokers", cfg.Brokers).Info("Kafka producer connected")

	return &Producer{producer: producer, log: log, topic: cfg.QuotesTopic}, nil
}

// quoteEventMessage is the wire form of a domain.QuoteEvent.
type quoteEventMessage struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	IssuedAt   time.Time          `json:"issued_at"`
	PickupTime time.Time          `json:"pickup_time"`
	Currency   string             `json:"currency"`
	DistanceKm float64            `json:"distance_km"`
	IsReturn   bool               `json:"is_return"`
	Hourly     bool               `json:"hourly"`
	Quotes     []quoteLineMessage `json:"quotes"`
}

type quoteLineMessage struct {
	VehicleCategoryID string  `json:"vehicle_category_id"`
	PricingMethod     string  `json:"pricing_method"`
	BasePrice         float64 `json:"base_price"`
	Price             float64 `json:"price"`
}

// PublishQuoteIssued publishes a quote.issued event keyed by event ID.
func (p *Producer) PublishQuoteIssued(ctx context.Context, event domain.QuoteEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := quoteEventMessage{
		ID:         event.ID,
		Type:       "quote.issued",
		IssuedAt:   event.IssuedAt,
		PickupTime: event.PickupTime,
		Currency:   event.Currency,
		DistanceKm: event.DistanceKm,
		IsReturn:   event.IsReturn,
		Hourly:     event.Hourly,
		Quotes:     make([]quoteLineMessage, 0, len(event.Quotes)),
	}
	for _, q := range event.Quotes {
		msg.Quotes = append(msg.Quotes, quoteLineMessage{
			VehicleCategoryID: q.VehicleCategoryID,
			PricingMethod:     string(q.PricingMethod),
			BasePrice:         q.BasePrice,
			Price:             q.Price,
		})
	}

	return p.publish(event.ID, msg)
}

func (p *Producer) publish(key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(data),
	})
	if err != nil {
		return fmt.Errorf("failed to send message to %s: %w", p.topic, err)
	}

	p.log.WithField("topic", p.topic).
		WithField("partition", partition).
		WithField("offset", offset).
		Debug("event published")
	return nil
}

// Close flushes and closes the producer.
func (p *Producer) Close() error {
	if p == nil || p.producer == nil {
		return nil
	}
	return p.producer.Close()
}
