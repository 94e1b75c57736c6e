package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/mrops-br/shopping-browser-api/internal/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// CatalogClient talks to the remote catalog REST API.
type CatalogClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewCatalogClient creates a client for the API rooted at baseURL. Requests
// are traced through otelhttp and bounded by timeout.
func NewCatalogClient(baseURL string, timeout time.Duration, logger *slog.Logger) *CatalogClient {
	return &CatalogClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}
}

// FetchProducts handles GET /products?offset=&limit=
func (c *CatalogClient) FetchProducts(ctx context.Context, offset, limit int) ([]domain.Product, error) {
	query := url.Values{}
	query.Set("offset", strconv.Itoa(offset))
	query.Set("limit", strconv.Itoa(limit))

	var products []domain.Product
	if err := c.getJSON(ctx, "/products", query, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// FetchCategories handles GET /categories
func (c *CatalogClient) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := c.getJSON(ctx, "/categories", nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// FetchRawData downloads rawURL and returns the body bytes.
func (c *CatalogClient) FetchRawData(ctx context.Context, rawURL string) ([]byte, error) {
	target, err := url.Parse(rawURL)
	if err != nil || target.Host == "" {
		return nil, domain.ErrInvalidURL
	}
	return c.get(ctx, target)
}

func (c *CatalogClient) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	target, err := url.Parse(c.baseURL + path)
	if err != nil || target.Host == "" {
		return domain.ErrInvalidURL
	}
	if query != nil {
		target.RawQuery = query.Encode()
	}

	body, err := c.get(ctx, target)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		c.logger.WarnContext(ctx, "Failed to decode catalog response",
			slog.String("url", target.String()),
			slog.String("error", err.Error()),
		)
		return errors.Wrap(domain.ErrDecoding, err.Error())
	}
	return nil
}

func (c *CatalogClient) get(ctx context.Context, target *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, domain.ErrInvalidURL
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.NewNetworkError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, domain.NewNetworkError(fmt.Errorf("unexpected status %d from %s", resp.StatusCode, target.Path))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewNetworkError(err)
	}
	if len(body) == 0 {
		return nil, domain.ErrNoData
	}

	c.logger.DebugContext(ctx, "Catalog request completed",
		slog.String("url", target.String()),
		slog.Int("status", resp.StatusCode),
		slog.Int("size", len(body)),
	)
	return body, nil
}
