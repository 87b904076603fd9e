package checkout

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/muhidtech/ecohaven/internal/order"
)

// Publisher drains the orders outbox to Kafka on a fixed tick. Events that
// fail to publish stay unprocessed and are retried on the next tick.
type Publisher struct {
	tick   time.Duration
	repo   order.RepoInterface
	writer *kafka.Writer
}

func NewPublisher(repo order.RepoInterface, brokers ...string) *Publisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  "checkout-completed",
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Publisher{tick: time.Second, repo: repo, writer: w}
}

func (p *Publisher) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.processUnpublishedEvents(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Publisher) Close() {
	if err := p.writer.Close(); err != nil {
		log.Printf("checkout: error closing writer: %v", err)
	}
}

func (p *Publisher) processUnpublishedEvents(ctx context.Context) {
	events, err := p.repo.GetUnprocessedEvents(ctx, 100)
	if err != nil {
		log.Printf("checkout: failed to fetch outbox events: %v", err)
		return
	}

	for _, event := range events {
		if errPublish := p.publish(ctx, event); errPublish != nil {
			log.Printf("checkout: failed to publish event id = %v with error %v", event.ID, errPublish)
			continue
		}

		if errMark := p.repo.MarkEventAsProcessed(ctx, event.ID); errMark != nil {
			log.Printf("checkout: failed to mark event as processed id = %v with error %v", event.ID, errMark)
			continue
		}
	}
}

func (p *Publisher) publish(ctx context.Context, event order.OutboxEvent) error {
	// Validate the payload is well-formed JSON before putting it on the wire.
	var payload map[string]interface{}
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return err
	}

	key, _ := payload["owner_id"].(string)

	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return p.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(key),
		Value: event.Payload,
	})
}
