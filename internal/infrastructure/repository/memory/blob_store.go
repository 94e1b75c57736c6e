package memory

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// BlobStore is an in-memory implementation of domain.BlobStore. Contents
// live as long as the process.
type BlobStore struct {
	mu     sync.RWMutex
	blobs  map[string][]byte
	tracer trace.Tracer
	logger *slog.Logger
}

// NewBlobStore creates a new in-memory blob store
func NewBlobStore(tracer trace.Tracer, logger *slog.Logger) *BlobStore {
	return &BlobStore{
		blobs:  make(map[string][]byte),
		tracer: tracer,
		logger: logger,
	}
}

// Set stores a copy of data under key
func (s *BlobStore) Set(ctx context.Context, key string, data []byte) error {
	ctx, span := s.tracer.Start(ctx, "BlobStore.Set")
	defer span.End()

	span.SetAttributes(
		attribute.String("storage.key", key),
		attribute.Int("storage.size", len(data)),
	)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.blobs[key] = slices.Clone(data)

	s.logger.DebugContext(ctx, "Blob stored in memory",
		slog.String("key", key),
		slog.Int("size", len(data)),
	)

	span.SetStatus(codes.Ok, "Blob stored")
	return nil
}

// Get retrieves a copy of the blob stored under key
func (s *BlobStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	_, span := s.tracer.Start(ctx, "BlobStore.Get")
	defer span.End()

	span.SetAttributes(attribute.String("storage.key", key))

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, exists := s.blobs[key]
	span.SetAttributes(attribute.Bool("storage.found", exists))
	span.SetStatus(codes.Ok, "Blob looked up")

	if !exists {
		return nil, false, nil
	}
	return slices.Clone(data), true, nil
}

// Delete removes the blob stored under key
func (s *BlobStore) Delete(ctx context.Context, key string) error {
	_, span := s.tracer.Start(ctx, "BlobStore.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("storage.key", key))

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blobs, key)

	span.SetStatus(codes.Ok, "Blob deleted")
	return nil
}
