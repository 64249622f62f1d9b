package redis

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/types"

	"github.com/redis/go-redis/v9"
)

const (
	keyNameTemplate = "_storefront_kv_%s"
)

// KVStore keeps every value as a plain Redis string.
type KVStore struct {
	cli *redis.Client
}

func NewKVStore(cli *redis.Client) *KVStore {
	return &KVStore{cli: cli}
}

func (s *KVStore) Get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.cli.Get(ctx, getKeyName(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, types.ErrNotFound
		}
		return nil, err
	}
	return out, nil
}

func (s *KVStore) Put(ctx context.Context, key string, value []byte) error {
	return s.cli.Set(ctx, getKeyName(key), value, 0).Err()
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	return s.cli.Del(ctx, getKeyName(key)).Err()
}

func getKeyName(key string) string {
	return fmt.Sprintf(keyNameTemplate, key)
}
