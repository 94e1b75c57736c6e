package domain

import (
	"context"
	"image"
)

//go:generate mockgen -destination=mocks/catalog_client_mock.go -package=mocks github.com/mrops-br/shopping-browser-api/internal/domain CatalogClient

// CatalogClient defines the contract for the remote catalog API.
// Failures are reported with the catalog error taxonomy.
type CatalogClient interface {
	FetchProducts(ctx context.Context, offset, limit int) ([]Product, error)
	FetchCategories(ctx context.Context) ([]Category, error)
	FetchRawData(ctx context.Context, url string) ([]byte, error)
}

// BlobStore defines the contract for durable key-value storage.
// Get reports found=false for a key that was never written.
type BlobStore interface {
	Get(ctx context.Context, key string) (data []byte, found bool, err error)
	Set(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
}

// ThumbnailCodec compresses raw image bytes for storage in a cart line
// and decodes stored bytes back to a displayable image.
type ThumbnailCodec interface {
	Encode(raw []byte) ([]byte, error)
	Decode(data []byte) (image.Image, error)
}

// Storage keys.
const (
	CartStorageKey           = "savedCart"
	RecentSearchesStorageKey = "recentSearches"
)
