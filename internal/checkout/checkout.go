package checkout

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"github.com/muhidtech/ecohaven/internal/cart"
	"github.com/muhidtech/ecohaven/internal/order"
)

var ErrEmptyCart = errors.New("cart is empty, nothing to checkout")

// Service turns a cart into an order. Creation is idempotent on the caller's
// idempotency key; the cart is emptied only after the order is durable.
type Service struct {
	orders order.RepoInterface
	carts  *cart.Service
}

func NewService(orders order.RepoInterface, carts *cart.Service) *Service {
	return &Service{orders: orders, carts: carts}
}

func (s *Service) Checkout(ctx context.Context, ownerID, idempotencyKey string) (*order.Order, error) {
	if idempotencyKey == "" {
		idempotencyKey = uuid.NewString()
	}

	existing, err := s.orders.GetOrderByIdempotencyKey(ctx, idempotencyKey)
	if err != nil && !errors.Is(err, order.ErrIdempotencyKeyNotFound) {
		return nil, fmt.Errorf("failed to check idempotency: %w", err)
	}
	if existing != nil {
		log.Printf("checkout: duplicate request for key %v, returning order %v", idempotencyKey, existing.ID)
		return existing, nil
	}

	agg := s.carts.Cart(ctx, ownerID)
	items := agg.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	// Total is derived from the copied lines so a concurrent cart mutation
	// cannot make it disagree with them.
	total := 0.0
	lines := make([]order.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, order.Line{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
		total += it.Price * float64(it.Quantity)
	}

	o := &order.Order{
		ID:             uuid.NewString(),
		OwnerID:        ownerID,
		Lines:          lines,
		Total:          total,
		Status:         order.StatusCompleted,
		IdempotencyKey: idempotencyKey,
	}

	if err := s.orders.CreateOrder(ctx, o); err != nil {
		// A concurrent request with the same key won the insert race;
		// its order is the canonical one.
		if errors.Is(err, order.ErrDuplicateOrder) {
			log.Printf("checkout: lost insert race for key %v, returning stored order", idempotencyKey)
			stored, readErr := s.orders.GetOrderByIdempotencyKey(ctx, idempotencyKey)
			if readErr != nil {
				return nil, fmt.Errorf("failed to read duplicate order: %w", readErr)
			}
			return stored, nil
		}
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	agg.Clear(ctx)
	return o, nil
}
