package cart

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhidtech/ecohaven/internal/kv"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	items := []LineItem{
		{ProductID: "p1", Name: "Bottle", Price: 10, Quantity: 3, Image: "x", Stock: 5, Slug: "bottle"},
		{ProductID: "p2", Name: "Mug", Price: 7.5, Quantity: 1, Image: "m"},
	}

	raw, err := encodeSnapshot(items)
	require.NoError(t, err)

	decoded, dropped := decodeSnapshot(raw)
	assert.Zero(t, dropped)
	assert.Equal(t, items, decoded)
}

func TestSnapshot_DropsMalformedEntries(t *testing.T) {
	raw := `[
		{"id":"p1","name":"Bottle","price":10,"quantity":2,"image":"x"},
		{"id":"","name":"NoID","price":1,"quantity":1,"image":"y"},
		{"name":"MissingID","price":1,"quantity":1,"image":"y"},
		{"id":"p3","name":"BadPrice","price":"ten","quantity":1,"image":"y"},
		{"id":"p4","name":"NegativePrice","price":-2,"quantity":1,"image":"y"},
		{"id":"p5","name":"ZeroQty","price":2,"quantity":0,"image":"y"},
		{"id":"p6","name":"NoImage","price":2,"quantity":1},
		{"id":"p7","name":"Fractional","price":2,"quantity":2.9,"image":"y"}
	]`

	items, dropped := decodeSnapshot(raw)
	require.Len(t, items, 2)
	assert.Equal(t, 6, dropped)
	assert.Equal(t, "p1", items[0].ProductID)
	// Fractional stored quantities are floored.
	assert.Equal(t, "p7", items[1].ProductID)
	assert.Equal(t, 2, items[1].Quantity)
}

func TestSnapshot_GarbageBlob(t *testing.T) {
	items, dropped := decodeSnapshot("not json at all")
	assert.Nil(t, items)
	assert.Zero(t, dropped)
}

func TestAggregate_LoadRehydrates(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()

	first := NewAggregate(store, "c1")
	first.AddItem(ctx, bottle(), 2)

	second := NewAggregate(store, "c1")
	second.Load(ctx)

	assert.Equal(t, first.Items(), second.Items())
	assert.Equal(t, 2, second.ItemCount())
}

func TestAggregate_LoadDiscardsMalformed(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemory()
	require.NoError(t, store.Set(ctx, "cart:c1",
		`[{"id":"p1","name":"Bottle","price":10,"quantity":2,"image":"x"},{"id":""}]`))

	agg := NewAggregate(store, "c1")
	agg.Load(ctx)

	items := agg.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "p1", items[0].ProductID)
}
