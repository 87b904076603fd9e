package cart

// LineItem is one product entry in a cart, uniquely keyed by ProductID.
// Name, image and price are display snapshots refreshed on re-add; Stock is
// the ceiling observed when the product was added.
type LineItem struct {
	ProductID string  `json:"id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image"`
	Stock     int     `json:"stock,omitempty"`
	Slug      string  `json:"slug,omitempty"`
}
