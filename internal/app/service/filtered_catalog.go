package service

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/mrops-br/shopping-browser-api/internal/app/async"
	"github.com/mrops-br/shopping-browser-api/internal/domain"
	"github.com/shopspring/decimal"
)

// FilteredCatalog decorates a Catalog with its own product cache so that
// filter queries never touch the wrapped store's pagination state. An empty
// cache defers to the wrapped store's products.
type FilteredCatalog struct {
	wrapped Catalog
	logger  *slog.Logger

	mu       sync.RWMutex
	filtered []domain.Product
}

// NewFilteredCatalog wraps catalog.
func NewFilteredCatalog(catalog Catalog, logger *slog.Logger) *FilteredCatalog {
	return &FilteredCatalog{
		wrapped: catalog,
		logger:  logger,
	}
}

// Products returns the cached products, or the wrapped store's when the cache is empty.
func (f *FilteredCatalog) Products() []domain.Product {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if len(f.filtered) == 0 {
		return f.wrapped.Products()
	}
	return slices.Clone(f.filtered)
}

// FetchProducts delegates to the wrapped store. The fetched page replaces
// the cache on success; any failure empties it. Stale pages leave it alone.
func (f *FilteredCatalog) FetchProducts(ctx context.Context) (*async.Future[[]domain.Product], bool) {
	inner, ok := f.wrapped.FetchProducts(ctx)
	if !ok {
		return nil, false
	}

	return async.Then(inner, func(products []domain.Product, err error) ([]domain.Product, error) {
		if domain.IsStalePage(err) {
			return nil, err
		}

		f.mu.Lock()
		if err != nil {
			f.filtered = nil
		} else {
			f.filtered = slices.Clone(products)
		}
		f.mu.Unlock()

		f.logger.DebugContext(ctx, "Filter cache refreshed from fetch",
			slog.Int("count", len(products)),
			slog.Bool("failed", err != nil),
		)
		return products, err
	}), true
}

// ResetFilters re-seeds the cache with the wrapped store's current products.
func (f *FilteredCatalog) ResetFilters(ctx context.Context) *async.Future[[]domain.Product] {
	products := f.wrapped.Products()

	f.mu.Lock()
	f.filtered = slices.Clone(products)
	f.mu.Unlock()

	f.logger.DebugContext(ctx, "Filter cache reset", slog.Int("count", len(products)))
	return async.Resolved(products)
}

func (f *FilteredCatalog) Categories() []domain.Category {
	return f.wrapped.Categories()
}

func (f *FilteredCatalog) FetchImageData(ctx context.Context, url string) *async.Future[[]byte] {
	return f.wrapped.FetchImageData(ctx, url)
}

func (f *FilteredCatalog) FilterByTitle(title string) []domain.Product {
	return domain.FilterByTitle(f.Products(), title)
}

func (f *FilteredCatalog) FilterByPrice(price decimal.Decimal) []domain.Product {
	return domain.FilterByPrice(f.Products(), price)
}

func (f *FilteredCatalog) FilterByPriceRange(min, max decimal.Decimal) []domain.Product {
	return domain.FilterByPriceRange(f.Products(), min, max)
}

// FilterByCategoriesAndPrice is a pure query over the filtered-or-wrapped products.
func (f *FilteredCatalog) FilterByCategoriesAndPrice(categoryIDs []int, min, max decimal.Decimal) []domain.Product {
	return domain.FilterByCategoriesAndPrice(f.Products(), categoryIDs, min, max)
}
