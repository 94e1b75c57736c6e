package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestCartTotal(t *testing.T) {
	assert.True(t, CartTotal(nil).IsZero())

	items := []CartItem{
		{Product: product(1, "jacket", "19.99", clothes), Quantity: 3},
		{Product: product(2, "sofa", "0.01", furniture), Quantity: 1},
	}
	assert.True(t, CartTotal(items).Equal(decimal.RequireFromString("59.98")))
	assert.True(t, items[0].Subtotal().Equal(decimal.RequireFromString("59.97")))
}

func TestCartShareText(t *testing.T) {
	items := []CartItem{
		{Product: product(1, "Jacket", "10", clothes), Quantity: 2},
		{Product: product(2, "Sofa", "10", furniture), Quantity: 1},
	}

	assert.Equal(t, "Jacket - 2 pcs\nSofa - 1 pcs", CartShareText(items))
	assert.Empty(t, CartShareText(nil))
}

func TestProductShareText(t *testing.T) {
	p := product(7, "Wooden Chair", "49.5", furniture)

	assert.Equal(t, "Product: Wooden Chair\nPrice: 49.5\nCategory: Furniture", p.ShareText())
	assert.True(t, p.SameAs(Product{ID: 7}))
}
