package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"quizforge-backend/internal/models"
)

var ErrKeyNotFound = errors.New("key not found")

// KeyValueStore holds short-lived auth state: OAuth states and refresh tokens.
type KeyValueStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	GetDel(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key string) error
}

// Locker hands out exclusive, expiring locks. ok is false when the lock is
// already held.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error)
}

type EventPublisher interface {
	Publish(ctx context.Context, channel string, msg models.WSMessage) error
}

// RedisStore backs KeyValueStore, Locker and EventPublisher with one client.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) GetDel(ctx context.Context, key string) (string, error) {
	v, err := s.client.GetDel(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}
	return v, err
}

func (s *RedisStore) Del(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// releaseScript deletes the lock only if it still carries our token, so an
// expired lock re-acquired by someone else is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (s *RedisStore) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	token := uuid.NewString()
	ok, err := s.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil || !ok {
		return func() {}, false, err
	}
	release := func() {
		releaseScript.Run(context.WithoutCancel(ctx), s.client, []string{key}, token)
	}
	return release, true, nil
}

func (s *RedisStore) Publish(ctx context.Context, channel string, msg models.WSMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return s.client.Publish(ctx, channel, payload).Err()
}
