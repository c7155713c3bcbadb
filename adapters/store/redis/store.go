package storeredis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-resume/resume"
	"github.com/redis/go-redis/v9"
)

// DefaultKeyPrefix namespaces slot keys.
const DefaultKeyPrefix = "resume:slot:"

// Config holds Redis connection configuration.
type Config struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// Store keeps persistence slots in Redis so several instances share one resume.
type Store struct {
	client    *redis.Client
	keyPrefix string
}

var _ resume.KeyValueStore = (*Store)(nil)

// NewStore connects to Redis and verifies the connection.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, resume.NewError(resume.KindPersistence, "failed to connect to redis", err)
	}
	return NewStoreWithClient(client, cfg.KeyPrefix), nil
}

// NewStoreWithClient creates a store with an existing client.
func NewStoreWithClient(client *redis.Client, keyPrefix string) *Store {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &Store{client: client, keyPrefix: keyPrefix}
}

// Get reads a slot.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := s.check(key); err != nil {
		return nil, err
	}
	data, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, resume.NewError(resume.KindNotFound, fmt.Sprintf("slot %q not found", key), err)
	}
	if err != nil {
		return nil, resume.NewError(resume.KindPersistence, fmt.Sprintf("read slot %q", key), err)
	}
	return data, nil
}

// Set overwrites a slot.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.check(key); err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.keyPrefix+key, value, 0).Err(); err != nil {
		return resume.NewError(resume.KindPersistence, fmt.Sprintf("write slot %q", key), err)
	}
	return nil
}

// Delete removes a slot. Missing slots are ignored.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.check(key); err != nil {
		return err
	}
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return resume.NewError(resume.KindPersistence, fmt.Sprintf("delete slot %q", key), err)
	}
	return nil
}

// Close closes the Redis client.
func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *Store) check(key string) error {
	if s == nil || s.client == nil {
		return resume.NewError(resume.KindNotImpl, "redis client not configured", nil)
	}
	if key == "" {
		return resume.NewError(resume.KindValidation, "slot key is required", nil)
	}
	return nil
}
