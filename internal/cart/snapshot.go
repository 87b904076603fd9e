package cart

import (
	"encoding/json"
	"fmt"
)

// snapshotItem mirrors LineItem with pointer fields so missing keys can be
// told apart from zero values during shape validation.
type snapshotItem struct {
	ID       *string  `json:"id"`
	Name     *string  `json:"name"`
	Price    *float64 `json:"price"`
	Quantity *float64 `json:"quantity"`
	Image    *string  `json:"image"`
	Stock    int      `json:"stock,omitempty"`
	Slug     string   `json:"slug,omitempty"`
}

func encodeSnapshot(items []LineItem) (string, error) {
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cart: %w", err)
	}
	return string(data), nil
}

// decodeSnapshot parses the persisted line list, dropping entries whose
// shape is wrong instead of failing the whole load. Returns the surviving
// items and the number of dropped entries.
func decodeSnapshot(raw string) ([]LineItem, int) {
	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, 0
	}

	var items []LineItem
	dropped := 0
	for _, entry := range entries {
		var snap snapshotItem
		if err := json.Unmarshal(entry, &snap); err != nil {
			dropped++
			continue
		}
		if snap.ID == nil || *snap.ID == "" ||
			snap.Name == nil || snap.Price == nil || *snap.Price < 0 ||
			snap.Quantity == nil || *snap.Quantity < 1 ||
			snap.Image == nil {
			dropped++
			continue
		}
		items = append(items, LineItem{
			ProductID: *snap.ID,
			Name:      *snap.Name,
			Price:     *snap.Price,
			Quantity:  int(*snap.Quantity),
			Image:     *snap.Image,
			Stock:     snap.Stock,
			Slug:      snap.Slug,
		})
	}
	return items, dropped
}
