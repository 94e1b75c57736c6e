package domain

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// Filter engine. All functions are pure: they never modify the input
// and always return a fresh slice (empty, never nil).

// FilterByTitle keeps products whose title contains title, ignoring case.
func FilterByTitle(products []Product, title string) []Product {
	needle := strings.ToLower(title)
	return filter(products, func(p Product) bool {
		return strings.Contains(strings.ToLower(p.Title), needle)
	})
}

// FilterByPrice keeps products whose price equals price exactly.
func FilterByPrice(products []Product, price decimal.Decimal) []Product {
	return filter(products, func(p Product) bool {
		return p.Price.Equal(price)
	})
}

// FilterByPriceRange keeps products priced within [min, max].
func FilterByPriceRange(products []Product, min, max decimal.Decimal) []Product {
	return filter(products, func(p Product) bool {
		return inRange(p.Price, min, max)
	})
}

// FilterByCategoriesAndPrice keeps products priced within [min, max] whose
// category ID is in categoryIDs. An empty categoryIDs matches every category.
func FilterByCategoriesAndPrice(products []Product, categoryIDs []int, min, max decimal.Decimal) []Product {
	wanted := make(map[int]struct{}, len(categoryIDs))
	for _, id := range categoryIDs {
		wanted[id] = struct{}{}
	}

	return filter(products, func(p Product) bool {
		if len(wanted) > 0 {
			if _, ok := wanted[p.Category.ID]; !ok {
				return false
			}
		}
		return inRange(p.Price, min, max)
	})
}

// DistinctCategories returns the categories seen across products,
// deduplicated by value and sorted by name.
func DistinctCategories(products []Product) []Category {
	seen := make(map[Category]struct{})
	categories := make([]Category, 0)
	for _, p := range products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		categories = append(categories, p.Category)
	}

	slices.SortStableFunc(categories, func(a, b Category) int {
		return strings.Compare(a.Name, b.Name)
	})
	return categories
}

func inRange(price, min, max decimal.Decimal) bool {
	return price.GreaterThanOrEqual(min) && price.LessThanOrEqual(max)
}

func filter(products []Product, keep func(Product) bool) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
