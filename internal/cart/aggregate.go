package cart

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/muhidtech/ecohaven/internal/kv"
)

// Aggregate owns the line items of one cart. Each mutation is atomic and
// triggers a best-effort snapshot write; storage failures are logged and the
// in-memory cart stays authoritative.
type Aggregate struct {
	store kv.Store
	key   string

	mu    sync.Mutex
	items []LineItem
}

func NewAggregate(store kv.Store, ownerID string) *Aggregate {
	return &Aggregate{store: store, key: "cart:" + ownerID}
}

// Load rehydrates the persisted snapshot, silently dropping entries that
// fail shape validation.
func (a *Aggregate) Load(ctx context.Context) {
	raw, err := a.store.Get(ctx, a.key)
	if err != nil {
		if !errors.Is(err, kv.ErrNotFound) {
			log.Printf("cart: snapshot read failed: %v", err)
		}
		return
	}

	items, dropped := decodeSnapshot(raw)
	if dropped > 0 {
		log.Printf("cart: dropped %d malformed snapshot entries", dropped)
	}

	a.mu.Lock()
	a.items = items
	a.mu.Unlock()
}

// AddItem merges the quantity into an existing line for the same product or
// appends a new line. The quantity is normalized to at least 1; an item
// without an id is ignored.
func (a *Aggregate) AddItem(ctx context.Context, item LineItem, quantity int) {
	if item.ProductID == "" {
		log.Printf("cart: ignoring item without product id")
		return
	}
	if quantity < 1 {
		quantity = 1
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for i := range a.items {
		if a.items[i].ProductID == item.ProductID {
			a.items[i].Quantity += quantity
			a.items[i].Name = item.Name
			a.items[i].Image = item.Image
			a.items[i].Price = item.Price
			a.persistLocked(ctx)
			return
		}
	}

	item.Quantity = quantity
	a.items = append(a.items, item)
	a.persistLocked(ctx)
}

func (a *Aggregate) RemoveItem(ctx context.Context, id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.removeLocked(id) {
		log.Printf("cart: remove of unknown item %q ignored", id)
		return
	}
	a.persistLocked(ctx)
}

// UpdateQuantity sets (absolute) or adjusts (relative) a line's quantity.
// A resulting quantity of zero or less removes the line.
func (a *Aggregate) UpdateQuantity(ctx context.Context, id string, quantity int, absolute bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	idx := -1
	for i := range a.items {
		if a.items[i].ProductID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		log.Printf("cart: quantity update for unknown item %q ignored", id)
		return
	}

	next := quantity
	if !absolute {
		next = a.items[idx].Quantity + quantity
	}
	if next <= 0 {
		a.removeLocked(id)
	} else {
		a.items[idx].Quantity = next
	}
	a.persistLocked(ctx)
}

// Clear empties the cart and removes the persisted snapshot.
func (a *Aggregate) Clear(ctx context.Context) {
	a.mu.Lock()
	a.items = nil
	a.mu.Unlock()

	if err := a.store.Remove(ctx, a.key); err != nil {
		log.Printf("cart: snapshot remove failed: %v", err)
	}
}

// ItemCount sums all line quantities, treating negative stored values as 0.
func (a *Aggregate) ItemCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	count := 0
	for _, it := range a.items {
		if it.Quantity > 0 {
			count += it.Quantity
		}
	}
	return count
}

// Total sums price times quantity across lines with the same defensive
// clamping as ItemCount.
func (a *Aggregate) Total() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	total := 0.0
	for _, it := range a.items {
		price := it.Price
		if price < 0 {
			price = 0
		}
		qty := it.Quantity
		if qty < 0 {
			qty = 0
		}
		total += price * float64(qty)
	}
	return total
}

// ItemExists reports whether any line's product id or slug equals the key.
func (a *Aggregate) ItemExists(key string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, it := range a.items {
		if it.ProductID == key || (it.Slug != "" && it.Slug == key) {
			return true
		}
	}
	return false
}

// Items returns a copy of the current lines.
func (a *Aggregate) Items() []LineItem {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]LineItem, len(a.items))
	copy(out, a.items)
	return out
}

func (a *Aggregate) removeLocked(id string) bool {
	for i, it := range a.items {
		if it.ProductID == id {
			a.items = append(a.items[:i], a.items[i+1:]...)
			return true
		}
	}
	return false
}

// persistLocked writes the full snapshot. Caller holds a.mu. Failures never
// propagate to the mutator.
func (a *Aggregate) persistLocked(ctx context.Context) {
	raw, err := encodeSnapshot(a.items)
	if err != nil {
		log.Printf("cart: snapshot encode failed: %v", err)
		return
	}
	if err := a.store.Set(ctx, a.key, raw); err != nil {
		log.Printf("cart: snapshot write failed: %v", err)
	}
}
