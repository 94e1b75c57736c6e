package service

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/mrops-br/shopping-browser-api/internal/app/async"
	"github.com/mrops-br/shopping-browser-api/internal/domain"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// DefaultPageLimit is the number of products requested per page.
const DefaultPageLimit = 20

// Catalog is the product surface consumed by presenters. CatalogStore and
// FilteredCatalog both implement it.
type Catalog interface {
	Products() []domain.Product
	Categories() []domain.Category
	FetchProducts(ctx context.Context) (*async.Future[[]domain.Product], bool)
	FetchImageData(ctx context.Context, url string) *async.Future[[]byte]
	FilterByTitle(title string) []domain.Product
	FilterByPrice(price decimal.Decimal) []domain.Product
	FilterByPriceRange(min, max decimal.Decimal) []domain.Product
	FilterByCategoriesAndPrice(categoryIDs []int, min, max decimal.Decimal) []domain.Product
	ResetFilters(ctx context.Context) *async.Future[[]domain.Product]
}

// CatalogStore holds fetched products and the pagination cursor.
type CatalogStore struct {
	client      domain.CatalogClient
	limit       int
	tracer      trace.Tracer
	logger      *slog.Logger
	pageFetches metric.Int64Counter

	mu            sync.RWMutex
	allProducts   []domain.Product
	currentOffset int
	hasMore       bool
	isLoading     bool
	// generation changes on every reset so results of fetches started
	// before the reset are recognised as stale.
	generation uint64
}

// NewCatalogStore creates a new catalog store. A non-positive limit falls
// back to DefaultPageLimit.
func NewCatalogStore(
	client domain.CatalogClient,
	limit int,
	tracer trace.Tracer,
	meter metric.Meter,
	logger *slog.Logger,
) *CatalogStore {
	if limit <= 0 {
		limit = DefaultPageLimit
	}

	pageFetches, _ := meter.Int64Counter(
		"catalog.page_fetches",
		metric.WithDescription("Total number of catalog page fetches by result"),
	)

	return &CatalogStore{
		client:      client,
		limit:       limit,
		tracer:      tracer,
		logger:      logger,
		pageFetches: pageFetches,
		allProducts: []domain.Product{},
		hasMore:     true,
	}
}

// FetchProducts requests the next page. It returns ok=false and does
// nothing when a page fetch is already in flight. The future settles with
// the products of the new page only, with ErrNoMoreData when the remote
// catalog returned an empty page, or with ErrStalePage when a reset
// happened while the page was in flight.
func (s *CatalogStore) FetchProducts(ctx context.Context) (*async.Future[[]domain.Product], bool) {
	s.mu.Lock()
	if s.isLoading {
		offset := s.currentOffset
		s.mu.Unlock()
		s.logger.DebugContext(ctx, "Page fetch dropped, another fetch in flight",
			slog.Int("offset", offset),
		)
		return nil, false
	}
	s.isLoading = true
	offset := s.currentOffset
	generation := s.generation
	s.mu.Unlock()

	return s.fetchPage(ctx, offset, generation), true
}

func (s *CatalogStore) fetchPage(ctx context.Context, offset int, generation uint64) *async.Future[[]domain.Product] {
	// In-flight fetches are never cancelled by the caller.
	ctx = context.WithoutCancel(ctx)

	return async.Go(func() ([]domain.Product, error) {
		ctx, span := s.tracer.Start(ctx, "CatalogStore.FetchProducts")
		defer span.End()

		span.SetAttributes(
			attribute.Int("catalog.offset", offset),
			attribute.Int("catalog.limit", s.limit),
		)

		products, err := s.client.FetchProducts(ctx, offset, s.limit)
		err = domain.CatalogError(err)
		if err == nil && len(products) == 0 {
			err = domain.ErrNoMoreData
		}

		s.mu.Lock()
		stale := generation != s.generation
		if !stale {
			s.isLoading = false
			switch {
			case err == nil:
				s.allProducts = append(s.allProducts, products...)
				s.currentOffset += len(products)
			case domain.IsEndOfCatalog(err):
				s.hasMore = false
			}
		}
		total := len(s.allProducts)
		s.mu.Unlock()

		switch {
		case stale:
			s.logger.DebugContext(ctx, "Discarding page fetched before catalog reset",
				slog.Int("offset", offset),
			)
			s.recordFetch(ctx, "stale")
			return nil, domain.ErrStalePage
		case err == nil:
			span.SetAttributes(attribute.Int("product.count", len(products)))
			span.SetStatus(codes.Ok, "Page fetched")
			s.logger.InfoContext(ctx, "Catalog page fetched",
				slog.Int("offset", offset),
				slog.Int("count", len(products)),
				slog.Int("total", total),
			)
			s.recordFetch(ctx, "success")
		case domain.IsEndOfCatalog(err):
			span.SetStatus(codes.Ok, "No more data")
			s.logger.InfoContext(ctx, "Remote catalog returned an empty page, pagination stopped",
				slog.Int("offset", offset),
			)
			s.recordFetch(ctx, "no_more_data")
		default:
			span.RecordError(err)
			span.SetStatus(codes.Error, "Page fetch failed")
			s.logger.ErrorContext(ctx, "Failed to fetch catalog page",
				slog.Int("offset", offset),
				slog.String("error", err.Error()),
			)
			s.recordFetch(ctx, "failure")
		}

		if err != nil {
			return nil, err
		}
		return products, nil
	})
}

func (s *CatalogStore) recordFetch(ctx context.Context, result string) {
	s.pageFetches.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

// FetchImageData downloads raw bytes from url.
func (s *CatalogStore) FetchImageData(ctx context.Context, url string) *async.Future[[]byte] {
	ctx = context.WithoutCancel(ctx)

	return async.Go(func() ([]byte, error) {
		ctx, span := s.tracer.Start(ctx, "CatalogStore.FetchImageData")
		defer span.End()

		span.SetAttributes(attribute.String("image.url", url))

		data, err := s.client.FetchRawData(ctx, url)
		if err != nil {
			err = domain.CatalogError(err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Image fetch failed")
			s.logger.WarnContext(ctx, "Failed to fetch image data",
				slog.String("url", url),
				slog.String("error", err.Error()),
			)
			return nil, err
		}

		span.SetStatus(codes.Ok, "Image fetched")
		return data, nil
	})
}

// FetchRemoteCategories requests the full category list from the remote
// catalog, independent of which products were fetched.
func (s *CatalogStore) FetchRemoteCategories(ctx context.Context) *async.Future[[]domain.Category] {
	ctx = context.WithoutCancel(ctx)

	return async.Go(func() ([]domain.Category, error) {
		ctx, span := s.tracer.Start(ctx, "CatalogStore.FetchRemoteCategories")
		defer span.End()

		categories, err := s.client.FetchCategories(ctx)
		if err != nil {
			err = domain.CatalogError(err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "Category fetch failed")
			s.logger.ErrorContext(ctx, "Failed to fetch remote categories",
				slog.String("error", err.Error()),
			)
			return nil, err
		}

		span.SetAttributes(attribute.Int("category.count", len(categories)))
		span.SetStatus(codes.Ok, "Categories fetched")
		return categories, nil
	})
}

// ResetFilters drops every fetched product, rewinds the cursor and starts a
// fresh fetch from offset 0. A fetch in flight at the time of the reset is
// left to finish but its result no longer affects the store and its future
// settles with ErrStalePage.
func (s *CatalogStore) ResetFilters(ctx context.Context) *async.Future[[]domain.Product] {
	s.mu.Lock()
	s.allProducts = []domain.Product{}
	s.currentOffset = 0
	s.hasMore = true
	s.generation++
	s.isLoading = true
	generation := s.generation
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "Catalog reset, refetching from the first page")

	return s.fetchPage(ctx, 0, generation)
}

// Products returns a snapshot of every product fetched so far.
func (s *CatalogStore) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.allProducts)
}

// FindProduct looks up a fetched product by ID.
func (s *CatalogStore) FindProduct(id int) (domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.allProducts {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, domain.ErrProductNotFound
}

// Offset returns the pagination cursor.
func (s *CatalogStore) Offset() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentOffset
}

// HasMore reports whether the last page fetch did not hit the end of the catalog.
func (s *CatalogStore) HasMore() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasMore
}

// IsLoading reports whether a page fetch is in flight.
func (s *CatalogStore) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isLoading
}

// Categories returns the distinct categories of the fetched products, sorted by name.
func (s *CatalogStore) Categories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.DistinctCategories(s.allProducts)
}

func (s *CatalogStore) FilterByTitle(title string) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.FilterByTitle(s.allProducts, title)
}

func (s *CatalogStore) FilterByPrice(price decimal.Decimal) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.FilterByPrice(s.allProducts, price)
}

func (s *CatalogStore) FilterByPriceRange(min, max decimal.Decimal) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.FilterByPriceRange(s.allProducts, min, max)
}

func (s *CatalogStore) FilterByCategoriesAndPrice(categoryIDs []int, min, max decimal.Decimal) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return domain.FilterByCategoriesAndPrice(s.allProducts, categoryIDs, min, max)
}
