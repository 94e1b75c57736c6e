package service

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/mrops-br/shopping-browser-api/internal/app/async"
	"github.com/mrops-br/shopping-browser-api/internal/domain"
)

// ImageCache stores downloaded image bytes by URL.
type ImageCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, data []byte, ttl ...time.Duration)
}

// ImageLoader downloads product thumbnails through a Catalog and caches them.
type ImageLoader struct {
	catalog Catalog
	cache   ImageCache
	logger  *slog.Logger
}

// NewImageLoader creates an image loader.
func NewImageLoader(catalog Catalog, cache ImageCache, logger *slog.Logger) *ImageLoader {
	return &ImageLoader{
		catalog: catalog,
		cache:   cache,
		logger:  logger,
	}
}

// ThumbnailURL returns the product's first image URL with stray JSON
// brackets and quotes removed.
func ThumbnailURL(product domain.Product) (string, error) {
	if len(product.Images) == 0 {
		return "", domain.ErrInvalidURL
	}

	cleaned := strings.Trim(product.Images[0], `["]`)
	parsed, err := url.ParseRequestURI(cleaned)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return "", domain.ErrInvalidURL
	}
	return cleaned, nil
}

// Load returns the thumbnail bytes of product.
func (l *ImageLoader) Load(ctx context.Context, product domain.Product) *async.Future[[]byte] {
	imageURL, err := ThumbnailURL(product)
	if err != nil {
		l.logger.DebugContext(ctx, "Product has no usable image URL",
			slog.Int("product_id", product.ID),
		)
		return async.Rejected[[]byte](err)
	}

	if data, ok := l.cache.Get(imageURL); ok {
		return async.Resolved(data)
	}

	return async.Then(l.catalog.FetchImageData(ctx, imageURL), func(data []byte, err error) ([]byte, error) {
		if err != nil {
			return nil, err
		}
		if len(data) == 0 {
			return nil, domain.ErrNoData
		}
		l.cache.Set(imageURL, data)
		return data, nil
	})
}
