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

// BrowseSession is the state behind the product list a user is looking at:
// the pages loaded so far, an optional filter-mode list and the search flag.
//
// Leaving filter mode (ResetFilterMode) and refreshing the catalog
// (CatalogStore.ResetFilters) are separate operations.
type BrowseSession struct {
	catalog Catalog
	filters Catalog
	history *SearchHistory
	logger  *slog.Logger

	mu          sync.RWMutex
	products    []domain.Product
	filtered    []domain.Product
	isFiltering bool
	isSearching bool
	hasMoreData bool
	// generation changes on every Refresh. Pages requested earlier are dropped.
	generation uint64
}

// SessionState is a snapshot of the session flags.
type SessionState struct {
	IsFiltering bool
	IsSearching bool
	HasMoreData bool
	Count       int
}

// NewBrowseSession creates a session over catalog. Filter queries go to filters.
func NewBrowseSession(catalog, filters Catalog, history *SearchHistory, logger *slog.Logger) *BrowseSession {
	return &BrowseSession{
		catalog:     catalog,
		filters:     filters,
		history:     history,
		logger:      logger,
		products:    []domain.Product{},
		hasMoreData: true,
	}
}

// Load fetches a page and makes it the session's product list.
func (b *BrowseSession) Load(ctx context.Context) ([]domain.Product, error) {
	return b.fetch(ctx, true)
}

// LoadMore appends the next page. It does nothing once the end of the
// catalog was reached or while a search is active. Reaching the end of the
// catalog is not reported as an error.
func (b *BrowseSession) LoadMore(ctx context.Context) ([]domain.Product, error) {
	b.mu.RLock()
	skip := !b.hasMoreData || b.isSearching
	b.mu.RUnlock()

	if skip {
		return b.Visible(), nil
	}
	return b.fetch(ctx, false)
}

func (b *BrowseSession) fetch(ctx context.Context, replace bool) ([]domain.Product, error) {
	b.mu.RLock()
	generation := b.generation
	b.mu.RUnlock()

	future, ok := b.catalog.FetchProducts(ctx)
	if !ok {
		return b.Visible(), domain.ErrFetchInProgress
	}

	// The page is applied even if the caller stops waiting.
	applied := async.Then(future, func(products []domain.Product, err error) ([]domain.Product, error) {
		b.mu.Lock()
		if generation != b.generation {
			err = domain.ErrStalePage
		}
		switch {
		case domain.IsStalePage(err):
		case err == nil && replace:
			b.products = slices.Clone(products)
		case err == nil:
			b.products = append(b.products, products...)
		case domain.IsEndOfCatalog(err):
			b.hasMoreData = false
		}
		b.mu.Unlock()

		switch {
		case domain.IsStalePage(err):
			b.logger.DebugContext(ctx, "Dropping page requested before refresh")
		case domain.IsEndOfCatalog(err):
			b.logger.InfoContext(ctx, "All products loaded")
		case err != nil:
			return nil, err
		}
		return b.Visible(), nil
	})

	return applied.Await(ctx)
}

// Refresh resets the catalog and makes its first page the session's
// product list. Filter mode and the current search are left as they are.
func (b *BrowseSession) Refresh(ctx context.Context) ([]domain.Product, error) {
	b.mu.Lock()
	b.generation++
	generation := b.generation
	b.mu.Unlock()

	applied := async.Then(b.catalog.ResetFilters(ctx), func(products []domain.Product, err error) ([]domain.Product, error) {
		b.mu.Lock()
		if generation != b.generation {
			err = domain.ErrStalePage
		}
		switch {
		case domain.IsStalePage(err):
		case err == nil:
			b.products = slices.Clone(products)
			b.hasMoreData = true
		case domain.IsEndOfCatalog(err):
			b.products = []domain.Product{}
			b.hasMoreData = false
		}
		b.mu.Unlock()

		if domain.IsLoadFailure(err) {
			return nil, err
		}
		if domain.IsStalePage(err) {
			b.logger.DebugContext(ctx, "Dropping refresh overtaken by a newer one")
			return b.Visible(), nil
		}
		b.logger.InfoContext(ctx, "Catalog refreshed", slog.Int("count", len(products)))
		return b.Visible(), nil
	})

	return applied.Await(ctx)
}

// Visible returns the filter-mode list when filtering, otherwise the loaded pages.
func (b *BrowseSession) Visible() []domain.Product {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.source())
}

// Search matches query against product titles, ignoring case. An empty
// query ends the search and returns the full list.
func (b *BrowseSession) Search(query string) []domain.Product {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.isSearching = query != ""
	if query == "" {
		return slices.Clone(b.source())
	}
	return domain.FilterByTitle(b.source(), query)
}

// ApplyFilters enters filter mode with the products matching the categories
// and the inclusive price range.
func (b *BrowseSession) ApplyFilters(ctx context.Context, categoryIDs []int, min, max decimal.Decimal) ([]domain.Product, error) {
	if min.GreaterThan(max) {
		return nil, domain.ErrInvalidPriceSpan
	}

	products := b.filters.FilterByCategoriesAndPrice(categoryIDs, min, max)

	b.mu.Lock()
	b.isFiltering = true
	b.filtered = products
	b.mu.Unlock()

	b.logger.InfoContext(ctx, "Filters applied",
		slog.Any("category_ids", categoryIDs),
		slog.String("min_price", min.String()),
		slog.String("max_price", max.String()),
		slog.Int("count", len(products)),
	)
	return slices.Clone(products), nil
}

// ResetFilterMode leaves filter mode and re-enables pagination.
func (b *BrowseSession) ResetFilterMode(ctx context.Context) []domain.Product {
	b.mu.Lock()
	b.isFiltering = false
	b.hasMoreData = true
	b.filtered = nil
	products := slices.Clone(b.products)
	b.mu.Unlock()

	b.logger.InfoContext(ctx, "Filter mode reset")
	return products
}

// Categories returns the categories available for filtering.
func (b *BrowseSession) Categories() []domain.Category {
	return b.filters.Categories()
}

// RecordSearch adds query to the search history.
func (b *BrowseSession) RecordSearch(ctx context.Context, query string) {
	b.history.AddSearchQuery(ctx, query)
}

// RecentSearches returns the search history, newest first.
func (b *BrowseSession) RecentSearches() []string {
	return b.history.RecentSearches()
}

// State returns a snapshot of the session flags.
func (b *BrowseSession) State() SessionState {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return SessionState{
		IsFiltering: b.isFiltering,
		IsSearching: b.isSearching,
		HasMoreData: b.hasMoreData,
		Count:       len(b.source()),
	}
}

// source must be called with mu held.
func (b *BrowseSession) source() []domain.Product {
	if b.isFiltering {
		return b.filtered
	}
	return b.products
}
