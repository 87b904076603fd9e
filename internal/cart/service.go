package cart

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/muhidtech/ecohaven/internal/kv"
)

// Service hands out one Aggregate per cart owner, rehydrating from the kv
// store on first use. Singleflight collapses concurrent first loads for the
// same owner into a single read.
//
// Run evicts empty aggregates on an interval so one-off anonymous owners do
// not pin memory; an evicted owner rehydrates from the store on next use.
type Service struct {
	store      kv.Store
	sfg        singleflight.Group
	evictEvery time.Duration

	mu    sync.RWMutex
	carts map[string]*Aggregate
}

func NewService(store kv.Store) *Service {
	return &Service{
		store:      store,
		evictEvery: time.Minute,
		carts:      make(map[string]*Aggregate),
	}
}

func (s *Service) Cart(ctx context.Context, ownerID string) *Aggregate {
	s.mu.RLock()
	agg, ok := s.carts[ownerID]
	s.mu.RUnlock()
	if ok {
		return agg
	}

	v, _, _ := s.sfg.Do(ownerID, func() (interface{}, error) {
		s.mu.RLock()
		existing, found := s.carts[ownerID]
		s.mu.RUnlock()
		if found {
			return existing, nil
		}

		a := NewAggregate(s.store, ownerID)
		a.Load(ctx)

		s.mu.Lock()
		s.carts[ownerID] = a
		s.mu.Unlock()
		return a, nil
	})
	return v.(*Aggregate)
}

// ClearCart empties the owner's cart. Used after a completed checkout.
func (s *Service) ClearCart(ctx context.Context, ownerID string) {
	s.Cart(ctx, ownerID).Clear(ctx)
}

// Run evicts empty carts until the context is cancelled.
func (s *Service) Run(ctx context.Context) {
	ticker := time.NewTicker(s.evictEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.evictEmpty()
		case <-ctx.Done():
			return
		}
	}
}

func (s *Service) evictEmpty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, agg := range s.carts {
		if agg.ItemCount() == 0 {
			delete(s.carts, id)
		}
	}
}
