package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Category represents a catalog category. Products embed the full value.
type Category struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"`
}

// Product represents a catalog entry as returned by the remote catalog.
// Identity is keyed by ID.
type Product struct {
	ID          int             `json:"id"`
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description,omitempty"`
	Category    Category        `json:"category"`
	Images      []string        `json:"images"`
}

// SameAs reports whether both values describe the same product.
func (p Product) SameAs(other Product) bool {
	return p.ID == other.ID
}

// ShareText renders the product as plain text for sharing.
func (p Product) ShareText() string {
	return fmt.Sprintf("Product: %s\nPrice: %s\nCategory: %s", p.Title, p.Price.String(), p.Category.Name)
}
