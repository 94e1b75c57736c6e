package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// CartItem is one product line in the cart. Quantity is always >= 1;
// a line whose quantity would drop to zero is removed instead.
type CartItem struct {
	Product   Product `json:"product"`
	Quantity  int     `json:"quantity"`
	ImageData []byte  `json:"imageData,omitempty"`
}

// Subtotal returns price * quantity for the line.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CartTotal sums the subtotals of all lines.
func CartTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// CartShareText renders one "<title> - <qty> pcs" line per item.
func CartShareText(items []CartItem) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s - %d pcs", item.Product.Title, item.Quantity))
	}
	return strings.Join(lines, "\n")
}
