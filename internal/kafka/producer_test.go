package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/google/uuid"

	"transfer/internal/domain"
	"transfer/internal/logger"
)

func newEvent() domain.QuoteEvent {
	return domain.QuoteEvent{
		ID:         uuid.New().String(),
		IssuedAt:   time.Now(),
		PickupTime: time.Now().Add(time.Hour),
		Currency:   "EUR",
		DistanceKm: 27.4,
		Quotes: []domain.QuoteEventLine{
			{VehicleCategoryID: "saloon", PricingMethod: domain.PricingMethodMileage, BasePrice: 58.5, Price: 68.45},
		},
	}
}

func TestPublishQuoteIssued(t *testing.T) {
	mp := mocks.NewSyncProducer(t, sarama.NewConfig())
	event := newEvent()

	mp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var msg quoteEventMessage
		if err := json.Unmarshal(val, &msg); err != nil {
			return err
		}
		if msg.Type != "quote.issued" || msg.ID != event.ID {
			return errors.New("unexpected event header")
		}
		if len(msg.Quotes) != 1 || msg.Quotes[0].PricingMethod != "mileage" {
			return errors.New("unexpected quote lines")
		}
		return nil
	})

	p := &Producer{producer: mp, log: logger.Discard(), topic: "quote.issued"}
	if err := p.PublishQuoteIssued(context.Background(), event); err != nil {
		t.Fatalf("expected publish success, got %v", err)
	}

	if err := mp.Close(); err != nil {
		t.Fatalf("failed to close mock producer: %v", err)
	}
}

func TestPublishQuoteIssued_Failure(t *testing.T) {
	mp := mocks.NewSyncProducer(t, sarama.NewConfig())
	mp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := &Producer{producer: mp, log: logger.Discard(), topic: "quote.issued"}
	err := p.PublishQuoteIssued(context.Background(), newEvent())
	if !errors.Is(err, sarama.ErrOutOfBrokers) {
		t.Fatalf("expected ErrOutOfBrokers, got %v", err)
	}

	_ = mp.Close()
}

func TestPublishQuoteIssued_CancelledContext(t *testing.T) {
	mp := mocks.NewSyncProducer(t, sarama.NewConfig())
	p := &Producer{producer: mp, log: logger.Discard(), topic: "quote.issued"}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := p.PublishQuoteIssued(ctx, newEvent()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	_ = mp.Close()
}

func TestProducer_CloseNil(t *testing.T) {
	var p *Producer
	if err := p.Close(); err != nil {
		t.Fatalf("expected nil error closing nil producer, got %v", err)
	}
}
