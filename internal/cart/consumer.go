package cart

import (
	"context"
	"encoding/json"
	"log"

	"github.com/segmentio/kafka-go"
)

// Consumer empties carts when a checkout-completed event arrives. This is
// what destroys the cart after a successful checkout.
type Consumer struct {
	carts  *Service
	reader *kafka.Reader
}

func NewConsumer(carts *Service, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    "checkout-completed",
		GroupID:  "storefront-cart-consumer",
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{carts: carts, reader: reader}
}

func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.consumeOne(ctx)
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		log.Printf("cart: error closing consumer: %v", err)
	}
}

func (c *Consumer) consumeOne(ctx context.Context) {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("cart: error reading checkout event: %v", err)
		}
		return
	}

	var payload struct {
		OwnerID string `json:"owner_id"`
	}
	if err := json.Unmarshal(m.Value, &payload); err != nil {
		log.Printf("cart: error parsing checkout event: %v", err)
		return
	}
	if payload.OwnerID == "" {
		log.Printf("cart: checkout event missing owner_id")
		return
	}

	c.carts.ClearCart(ctx, payload.OwnerID)
}
