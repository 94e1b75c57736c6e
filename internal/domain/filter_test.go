package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

var (
	clothes   = Category{ID: 1, Name: "Clothes", Image: "https://i.imgur.com/clothes.jpeg"}
	furniture = Category{ID: 3, Name: "Furniture", Image: "https://i.imgur.com/furniture.jpeg"}
	shoes     = Category{ID: 4, Name: "Shoes", Image: "https://i.imgur.com/shoes.jpeg"}
)

func product(id int, title string, price string, category Category) Product {
	return Product{ID: id, Title: title, Price: decimal.RequireFromString(price), Category: category}
}

func ids(products []Product) []int {
	out := make([]int, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestFilterByTitleIgnoresCase(t *testing.T) {
	products := []Product{
		product(1, "Classic Red Jacket", "10", clothes),
		product(2, "Wooden Chair", "50", furniture),
		product(3, "red sneakers", "70", shoes),
	}

	assert.Equal(t, []int{1, 3}, ids(FilterByTitle(products, "RED")))
	assert.Equal(t, []int{1, 2, 3}, ids(FilterByTitle(products, "")))
	assert.Empty(t, FilterByTitle(products, "lamp"))
	assert.NotNil(t, FilterByTitle(nil, "lamp"))
}

func TestFilterByPriceExact(t *testing.T) {
	products := []Product{
		product(1, "a", "10.50", clothes),
		product(2, "b", "10.5", clothes),
		product(3, "c", "10.51", clothes),
	}

	assert.Equal(t, []int{1, 2}, ids(FilterByPrice(products, decimal.RequireFromString("10.5"))))
}

func TestFilterByPriceRangeInclusive(t *testing.T) {
	products := []Product{
		product(1, "a", "49.99", clothes),
		product(2, "b", "50", clothes),
		product(3, "c", "100", clothes),
		product(4, "d", "100.01", clothes),
	}

	got := FilterByPriceRange(products, decimal.NewFromInt(50), decimal.NewFromInt(100))
	assert.Equal(t, []int{2, 3}, ids(got))
}

func TestFilterByCategoriesAndPrice(t *testing.T) {
	products := []Product{
		product(1, "jacket", "50", clothes),
		product(2, "sofa", "150", furniture),
		product(3, "chair", "80", furniture),
		product(4, "boots", "100", shoes),
	}
	zero, hundred := decimal.Zero, decimal.NewFromInt(100)

	t.Run("no categories matches all", func(t *testing.T) {
		assert.Equal(t, []int{1, 3, 4}, ids(FilterByCategoriesAndPrice(products, nil, zero, hundred)))
	})

	t.Run("category set narrows", func(t *testing.T) {
		got := FilterByCategoriesAndPrice(products, []int{furniture.ID, shoes.ID}, zero, hundred)
		assert.Equal(t, []int{3, 4}, ids(got))
	})

	t.Run("unknown category", func(t *testing.T) {
		assert.Empty(t, FilterByCategoriesAndPrice(products, []int{99}, zero, hundred))
	})
}

func TestFiltersDoNotModifyInput(t *testing.T) {
	products := []Product{
		product(1, "jacket", "50", clothes),
		product(2, "sofa", "150", furniture),
	}
	before := append([]Product(nil), products...)

	_ = FilterByPriceRange(products, decimal.Zero, decimal.NewFromInt(100))
	_ = FilterByTitle(products, "sofa")

	assert.Equal(t, before, products)
}

func TestDistinctCategoriesSortedByName(t *testing.T) {
	products := []Product{
		product(1, "boots", "1", shoes),
		product(2, "jacket", "1", clothes),
		product(3, "sofa", "1", furniture),
		product(4, "cap", "1", clothes),
	}

	assert.Equal(t, []Category{clothes, furniture, shoes}, DistinctCategories(products))
	assert.Empty(t, DistinctCategories(nil))
}
