package domain

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
)

func TestNetworkErrorMatchesSentinel(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := NewNetworkError(cause)

	assert.True(t, errors.Is(err, ErrNetwork))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "network error: connection refused", err.Error())
}

func TestEndOfCatalogIsNotALoadFailure(t *testing.T) {
	assert.True(t, IsEndOfCatalog(ErrNoMoreData))
	assert.False(t, IsLoadFailure(ErrNoMoreData))
	assert.False(t, IsLoadFailure(nil))
	assert.True(t, IsLoadFailure(ErrDecoding))
	assert.True(t, IsLoadFailure(NewNetworkError(context.DeadlineExceeded)))
}

func TestStalePageIsNotALoadFailure(t *testing.T) {
	err := errors.Wrap(ErrStalePage, "fetch offset 20")
	assert.True(t, IsStalePage(err))
	assert.False(t, IsLoadFailure(err))
	assert.False(t, IsEndOfCatalog(err))
}

func TestCatalogError(t *testing.T) {
	assert.NoError(t, CatalogError(nil))
	assert.Same(t, ErrDecoding, CatalogError(ErrDecoding))

	wrapped := errors.Wrap(ErrNoData, "products")
	assert.Equal(t, wrapped, CatalogError(wrapped))

	err := CatalogError(context.Canceled)
	assert.True(t, errors.Is(err, ErrNetwork))
	assert.True(t, errors.Is(err, context.Canceled))
}
