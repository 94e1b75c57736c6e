package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/mrops-br/shopping-browser-api/internal/app/async"
	"github.com/mrops-br/shopping-browser-api/internal/domain"
	"github.com/mrops-br/shopping-browser-api/internal/domain/mocks"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/mock/gomock"
)

var (
	clothes   = domain.Category{ID: 1, Name: "Clothes"}
	furniture = domain.Category{ID: 3, Name: "Furniture"}
	shoes     = domain.Category{ID: 4, Name: "Shoes"}
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testProduct(id int, price string, category domain.Category) domain.Product {
	return domain.Product{
		ID:       id,
		Title:    fmt.Sprintf("Product %d", id),
		Price:    decimal.RequireFromString(price),
		Category: category,
		Images:   []string{fmt.Sprintf("https://i.imgur.com/%d.jpeg", id)},
	}
}

func productIDs(products []domain.Product) []int {
	out := make([]int, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func await[T any](t *testing.T, f *async.Future[T]) (T, error) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return f.Await(ctx)
}

func newTestCatalogStore(t *testing.T, limit int) (*CatalogStore, *mocks.MockCatalogClient) {
	t.Helper()
	client := mocks.NewMockCatalogClient(gomock.NewController(t))
	store := NewCatalogStore(
		client,
		limit,
		tracenoop.NewTracerProvider().Tracer("test"),
		metricnoop.NewMeterProvider().Meter("test"),
		discardLogger(),
	)
	return store, client
}

func fetch(t *testing.T, c Catalog) ([]domain.Product, error) {
	t.Helper()
	future, ok := c.FetchProducts(context.Background())
	require.True(t, ok, "fetch was dropped")
	return await(t, future)
}

func TestCatalogStoreFetchAppendsPages(t *testing.T) {
	store, client := newTestCatalogStore(t, 2)

	gomock.InOrder(
		client.EXPECT().FetchProducts(gomock.Any(), 0, 2).
			Return([]domain.Product{testProduct(1, "10", clothes), testProduct(2, "20", clothes)}, nil),
		client.EXPECT().FetchProducts(gomock.Any(), 2, 2).
			Return([]domain.Product{testProduct(3, "30", shoes)}, nil),
	)

	page, err := fetch(t, store)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, productIDs(page))

	page, err = fetch(t, store)
	require.NoError(t, err)
	assert.Equal(t, []int{3}, productIDs(page))

	assert.Equal(t, []int{1, 2, 3}, productIDs(store.Products()))
	assert.Equal(t, 3, store.Offset())
	assert.True(t, store.HasMore())
	assert.False(t, store.IsLoading())
}

func TestCatalogStoreDefaultLimit(t *testing.T) {
	store, client := newTestCatalogStore(t, 0)

	client.EXPECT().FetchProducts(gomock.Any(), 0, DefaultPageLimit).
		Return([]domain.Product{testProduct(1, "10", clothes)}, nil)

	_, err := fetch(t, store)
	require.NoError(t, err)
}

func TestCatalogStoreEmptyPageStopsPagination(t *testing.T) {
	store, client := newTestCatalogStore(t, 2)

	client.EXPECT().FetchProducts(gomock.Any(), 0, 2).Return([]domain.Product{}, nil)

	page, err := fetch(t, store)
	assert.ErrorIs(t, err, domain.ErrNoMoreData)
	assert.Nil(t, page)

	assert.Empty(t, store.Products())
	assert.Equal(t, 0, store.Offset())
	assert.False(t, store.HasMore())
	assert.False(t, store.IsLoading())
}

func TestCatalogStoreDropsFetchWhileLoading(t *testing.T) {
	store, client := newTestCatalogStore(t, 2)
	release := make(chan struct{})

	client.EXPECT().FetchProducts(gomock.Any(), 0, 2).
		DoAndReturn(func(ctx context.Context, offset, limit int) ([]domain.Product, error) {
			<-release
			return []domain.Product{testProduct(1, "10", clothes)}, nil
		}).
		Times(1)

	first, ok := store.FetchProducts(context.Background())
	require.True(t, ok)
	assert.True(t, store.IsLoading())

	second, ok := store.FetchProducts(context.Background())
	assert.False(t, ok)
	assert.Nil(t, second)

	close(release)
	page, err := await(t, first)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, productIDs(page))
	assert.False(t, store.IsLoading())
}

func TestCatalogStoreFetchIgnoresCallerCancellation(t *testing.T) {
	store, client := newTestCatalogStore(t, 2)

	client.EXPECT().FetchProducts(gomock.Any(), 0, 2).
		DoAndReturn(func(ctx context.Context, offset, limit int) ([]domain.Product, error) {
			assert.NoError(t, ctx.Err())
			return []domain.Product{testProduct(1, "10", clothes)}, nil
		})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	future, ok := store.FetchProducts(ctx)
	require.True(t, ok)

	_, err := await(t, future)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Offset())
}

func TestCatalogStoreFetchFailure(t *testing.T) {
	tests := []struct {
		name   string
		remote error
		want   error
	}{
		{name: "network", remote: domain.NewNetworkError(fmt.Errorf("connection refused")), want: domain.ErrNetwork},
		{name: "decoding", remote: domain.ErrDecoding, want: domain.ErrDecoding},
		{name: "unclassified", remote: fmt.Errorf("boom"), want: domain.ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, client := newTestCatalogStore(t, 2)
			client.EXPECT().FetchProducts(gomock.Any(), 0, 2).Return(nil, tt.remote)

			page, err := fetch(t, store)
			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, page)

			assert.Equal(t, 0, store.Offset())
			assert.True(t, store.HasMore())
			assert.False(t, store.IsLoading())
		})
	}
}

func TestCatalogStoreResetFilters(t *testing.T) {
	store, client := newTestCatalogStore(t, 2)

	gomock.InOrder(
		client.EXPECT().FetchProducts(gomock.Any(), 0, 2).
			Return([]domain.Product{testProduct(1, "10", clothes), testProduct(2, "20", clothes)}, nil),
		client.EXPECT().FetchProducts(gomock.Any(), 2, 2).
			Return([]domain.Product{}, nil),
		client.EXPECT().FetchProducts(gomock.Any(), 0, 2).
			Return([]domain.Product{testProduct(7, "70", shoes)}, nil),
	)

	_, err := fetch(t, store)
	require.NoError(t, err)
	_, err = fetch(t, store)
	require.ErrorIs(t, err, domain.ErrNoMoreData)
	require.False(t, store.HasMore())

	page, err := await(t, store.ResetFilters(context.Background()))
	require.NoError(t, err)
	assert.Equal(t, []int{7}, productIDs(page))

	assert.Equal(t, []int{7}, productIDs(store.Products()))
	assert.Equal(t, 1, store.Offset())
	assert.True(t, store.HasMore())
}

func TestCatalogStoreResetDiscardsInFlightPage(t *testing.T) {
	store, client := newTestCatalogStore(t, 2)
	release := make(chan struct{})

	client.EXPECT().FetchProducts(gomock.Any(), 0, 2).
		Return([]domain.Product{testProduct(1, "10", clothes), testProduct(2, "20", clothes)}, nil)
	_, err := fetch(t, store)
	require.NoError(t, err)

	client.EXPECT().FetchProducts(gomock.Any(), 2, 2).
		DoAndReturn(func(ctx context.Context, offset, limit int) ([]domain.Product, error) {
			<-release
			return []domain.Product{testProduct(3, "30", clothes)}, nil
		})
	client.EXPECT().FetchProducts(gomock.Any(), 0, 2).
		Return([]domain.Product{testProduct(9, "90", shoes)}, nil)

	inFlight, ok := store.FetchProducts(context.Background())
	require.True(t, ok)

	_, err = await(t, store.ResetFilters(context.Background()))
	require.NoError(t, err)

	close(release)
	products, err := await(t, inFlight)
	assert.ErrorIs(t, err, domain.ErrStalePage)
	assert.Empty(t, products)

	assert.Equal(t, []int{9}, productIDs(store.Products()))
	assert.Equal(t, 1, store.Offset())
	assert.False(t, store.IsLoading())
}

func TestCatalogStoreCategories(t *testing.T) {
	store, client := newTestCatalogStore(t, 10)

	client.EXPECT().FetchProducts(gomock.Any(), 0, 10).Return([]domain.Product{
		testProduct(1, "10", shoes),
		testProduct(2, "10", clothes),
		testProduct(3, "10", furniture),
		testProduct(4, "10", shoes),
	}, nil)

	assert.Empty(t, store.Categories())

	_, err := fetch(t, store)
	require.NoError(t, err)

	assert.Equal(t, []domain.Category{clothes, furniture, shoes}, store.Categories())
}

func TestCatalogStoreFindProduct(t *testing.T) {
	store, client := newTestCatalogStore(t, 10)

	client.EXPECT().FetchProducts(gomock.Any(), 0, 10).
		Return([]domain.Product{testProduct(5, "10", shoes)}, nil)
	_, err := fetch(t, store)
	require.NoError(t, err)

	product, err := store.FindProduct(5)
	require.NoError(t, err)
	assert.Equal(t, 5, product.ID)

	_, err = store.FindProduct(6)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestCatalogStoreFilters(t *testing.T) {
	store, client := newTestCatalogStore(t, 10)

	client.EXPECT().FetchProducts(gomock.Any(), 0, 10).Return([]domain.Product{
		testProduct(1, "50", clothes),
		testProduct(2, "150", furniture),
		testProduct(3, "100", shoes),
	}, nil)
	_, err := fetch(t, store)
	require.NoError(t, err)

	assert.Equal(t, []int{2}, productIDs(store.FilterByTitle("product 2")))
	assert.Equal(t, []int{3}, productIDs(store.FilterByPrice(decimal.NewFromInt(100))))
	assert.Equal(t, []int{1, 3}, productIDs(store.FilterByPriceRange(decimal.NewFromInt(50), decimal.NewFromInt(100))))
	assert.Equal(t, []int{1, 3}, productIDs(store.FilterByCategoriesAndPrice(nil, decimal.Zero, decimal.NewFromInt(100))))
	assert.Equal(t, []int{2}, productIDs(store.FilterByCategoriesAndPrice([]int{furniture.ID}, decimal.Zero, decimal.NewFromInt(200))))
}

func TestCatalogStoreFetchImageData(t *testing.T) {
	store, client := newTestCatalogStore(t, 10)

	client.EXPECT().FetchRawData(gomock.Any(), "https://i.imgur.com/1.jpeg").Return([]byte{0xff, 0xd8}, nil)
	client.EXPECT().FetchRawData(gomock.Any(), "https://i.imgur.com/2.jpeg").Return(nil, domain.ErrNoData)

	data, err := await(t, store.FetchImageData(context.Background(), "https://i.imgur.com/1.jpeg"))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8}, data)

	_, err = await(t, store.FetchImageData(context.Background(), "https://i.imgur.com/2.jpeg"))
	assert.ErrorIs(t, err, domain.ErrNoData)
}

func TestCatalogStoreFetchRemoteCategories(t *testing.T) {
	store, client := newTestCatalogStore(t, 10)

	client.EXPECT().FetchCategories(gomock.Any()).Return([]domain.Category{clothes, shoes}, nil)

	categories, err := await(t, store.FetchRemoteCategories(context.Background()))
	require.NoError(t, err)
	assert.Equal(t, []domain.Category{clothes, shoes}, categories)
}
