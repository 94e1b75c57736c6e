package remote

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/mrops-br/shopping-browser-api/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const productsJSON = `[
  {"id":4,"title":"Handmade Fresh Table","price":687,"description":"Andy shoes","category":{"id":5,"name":"Others","image":"https://placeimg.com/640/480/any"},"images":["https://placeimg.com/640/480/any?r=0.9178"]},
  {"id":5,"title":"Classic Cap","price":12.5,"category":{"id":1,"name":"Clothes","image":"https://i.imgur.com/QkIa5tT.jpeg"},"images":[]}
]`

func newTestClient(t *testing.T, handler http.HandlerFunc) *CatalogClient {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewCatalogClient(srv.URL, 2*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFetchProducts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/products", r.URL.Path)
		assert.Equal(t, "40", r.URL.Query().Get("offset"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(productsJSON))
	})

	products, err := client.FetchProducts(context.Background(), 40, 20)
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, 4, products[0].ID)
	assert.True(t, products[0].Price.Equal(decimal.NewFromInt(687)))
	assert.Equal(t, "Others", products[0].Category.Name)
	assert.Equal(t, "12.5", products[1].Price.String())
	assert.Empty(t, products[1].Description)
	assert.Empty(t, products[1].Images)
}

func TestFetchProductsEmptyPage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	})

	products, err := client.FetchProducts(context.Background(), 0, 20)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestFetchCategories(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/categories", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":1,"name":"Clothes","image":"https://i.imgur.com/QkIa5tT.jpeg"}]`))
	})

	categories, err := client.FetchCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.Category{{ID: 1, Name: "Clothes", Image: "https://i.imgur.com/QkIa5tT.jpeg"}}, categories)
}

func TestCatalogClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"not":"a list"`))
			},
			want: domain.ErrDecoding,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			want: domain.ErrNetwork,
		},
		{
			name: "empty body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			},
			want: domain.ErrNoData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)

			_, err := client.FetchProducts(context.Background(), 0, 20)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestFetchRawData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/img/1.png", r.URL.Path)
		_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
	})

	data, err := client.FetchRawData(context.Background(), client.baseURL+"/img/1.png")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data)
}

func TestFetchRawDataInvalidURL(t *testing.T) {
	client := NewCatalogClient("http://unused", time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := client.FetchRawData(context.Background(), "not a url")
	assert.ErrorIs(t, err, domain.ErrInvalidURL)
}

func TestInvalidBaseURL(t *testing.T) {
	client := NewCatalogClient("::bad", time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := client.FetchProducts(context.Background(), 0, 20)
	assert.ErrorIs(t, err, domain.ErrInvalidURL)
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	client := NewCatalogClient(addr, time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := client.FetchProducts(context.Background(), 0, 20)
	assert.ErrorIs(t, err, domain.ErrNetwork)

	var netErr *domain.NetworkError
	assert.ErrorAs(t, err, &netErr)
}
