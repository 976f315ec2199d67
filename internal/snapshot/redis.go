package snapshot

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"starsystem-server/internal/shared/errors"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each document under prefix+id and refreshes its TTL on
// every save. A zero TTL keeps documents forever.
type RedisStore struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client redis.Cmdable, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) key(id uuid.UUID) string {
	return s.prefix + id.String()
}

func (s *RedisStore) Save(ctx context.Context, doc *Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, s.key(doc.ID), data, s.ttl).Err(); err != nil {
		return errors.WrapExternal("failed to save snapshot", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id uuid.UUID) (*Document, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, errors.NotFoundf("snapshot %s not found", id)
	}
	if err != nil {
		return nil, errors.WrapExternal("failed to load snapshot", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapInternal("failed to unmarshal snapshot", err)
	}
	return &doc, nil
}

func (s *RedisStore) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return errors.WrapExternal("failed to delete snapshot", err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Backend() string {
	return "redis"
}
