package redis

import (
	"context"
	"log/slog"

	"github.com/go-faster/errors"
	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// BlobStore is a Redis implementation of domain.BlobStore. Keys are
// namespaced with a prefix and stored without expiry.
type BlobStore struct {
	client *goredis.Client
	prefix string
	tracer trace.Tracer
	logger *slog.Logger
}

// NewBlobStore creates a blob store on top of client.
func NewBlobStore(client *goredis.Client, prefix string, tracer trace.Tracer, logger *slog.Logger) *BlobStore {
	return &BlobStore{
		client: client,
		prefix: prefix,
		tracer: tracer,
		logger: logger,
	}
}

// Ping checks the connection to Redis.
func (s *BlobStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, "ping redis")
	}
	return nil
}

func (s *BlobStore) Set(ctx context.Context, key string, data []byte) error {
	ctx, span := s.tracer.Start(ctx, "RedisBlobStore.Set")
	defer span.End()

	span.SetAttributes(
		attribute.String("storage.key", key),
		attribute.Int("storage.size", len(data)),
	)

	if err := s.client.Set(ctx, s.prefix+key, data, 0).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Redis SET failed")
		return errors.Wrapf(err, "redis set %q", key)
	}

	s.logger.DebugContext(ctx, "Blob stored in redis",
		slog.String("key", key),
		slog.Int("size", len(data)),
	)

	span.SetStatus(codes.Ok, "Blob stored")
	return nil
}

func (s *BlobStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, span := s.tracer.Start(ctx, "RedisBlobStore.Get")
	defer span.End()

	span.SetAttributes(attribute.String("storage.key", key))

	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		span.SetAttributes(attribute.Bool("storage.found", false))
		span.SetStatus(codes.Ok, "Blob not found")
		return nil, false, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Redis GET failed")
		return nil, false, errors.Wrapf(err, "redis get %q", key)
	}

	span.SetAttributes(attribute.Bool("storage.found", true))
	span.SetStatus(codes.Ok, "Blob found")
	return data, true, nil
}

func (s *BlobStore) Delete(ctx context.Context, key string) error {
	ctx, span := s.tracer.Start(ctx, "RedisBlobStore.Delete")
	defer span.End()

	span.SetAttributes(attribute.String("storage.key", key))

	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Redis DEL failed")
		return errors.Wrapf(err, "redis del %q", key)
	}

	span.SetStatus(codes.Ok, "Blob deleted")
	return nil
}
