package memory

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func newTestStore() *BlobStore {
	return NewBlobStore(noop.NewTracerProvider().Tracer("test"), slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestBlobStoreMissingKey(t *testing.T) {
	store := newTestStore()

	data, found, err := store.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, data)
}

func TestBlobStoreSetGetDelete(t *testing.T) {
	ctx := context.Background()
	store := newTestStore()

	payload := []byte(`["a","b"]`)
	require.NoError(t, store.Set(ctx, "k", payload))

	// the store keeps its own copy
	payload[0] = 'x'

	data, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `["a","b"]`, string(data))

	require.NoError(t, store.Delete(ctx, "k"))
	_, found, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}
