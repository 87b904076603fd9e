package product

import "time"

type Product struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	ImageURL    string    `json:"image"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"createdAt"`
}
