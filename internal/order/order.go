package order

import "time"

type Line struct {
	ProductID string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type Order struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"ownerId"`
	Lines          []Line    `json:"lines"`
	Total          float64   `json:"total"`
	Status         string    `json:"status"`
	IdempotencyKey string    `json:"-"`
	CreatedAt      time.Time `json:"createdAt"`
}

const (
	StatusPending   = "PENDING"
	StatusCompleted = "COMPLETED"
)

type OutboxEvent struct {
	ID        int64
	Payload   []byte
	CreatedAt time.Time
}
