package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
)

// CacheBuilder is a fluent helper around the valkey client for the common
// get/set/delete-a-JSON-struct pattern the repositories use.
type CacheBuilder struct {
	cache CacheClient
	key   string
	value any
	ttl   time.Duration
	ctx   context.Context
}

func NewCacheBuilder(cache CacheClient, key string) *CacheBuilder {
	return &CacheBuilder{
		cache: cache,
		key:   key,
		ctx:   context.Background(),
	}
}

func (b *CacheBuilder) WithStruct(value any) *CacheBuilder {
	b.value = value
	return b
}

func (b *CacheBuilder) WithTTL(ttl time.Duration) *CacheBuilder {
	b.ttl = ttl
	return b
}

func (b *CacheBuilder) WithContext(ctx context.Context) *CacheBuilder {
	b.ctx = ctx
	return b
}

func (b *CacheBuilder) Set() error {
	if b.cache == nil {
		return fmt.Errorf("cache client is nil")
	}
	if b.value == nil {
		return fmt.Errorf("no value to cache for key %q", b.key)
	}

	payload, err := json.Marshal(b.value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	cmd := b.cache.B().Set().Key(b.key).Value(string(payload))
	if b.ttl > 0 {
		return b.cache.Do(b.ctx, cmd.Ex(b.ttl).Build()).Error()
	}
	return b.cache.Do(b.ctx, cmd.Build()).Error()
}

// Get unmarshals the cached value into dest. The boolean reports whether
// the key was present; a missing key is not an error.
func (b *CacheBuilder) Get(dest any) (bool, error) {
	if b.cache == nil {
		return false, fmt.Errorf("cache client is nil")
	}

	resp := b.cache.Do(b.ctx, b.cache.B().Get().Key(b.key).Build())
	if err := resp.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return false, nil
		}
		return false, err
	}

	payload, err := resp.ToString()
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal([]byte(payload), dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return true, nil
}

func (b *CacheBuilder) Delete() error {
	if b.cache == nil {
		return fmt.Errorf("cache client is nil")
	}
	return b.cache.Do(b.ctx, b.cache.B().Del().Key(b.key).Build()).Error()
}

// CacheItem is the typed variant used where the key pattern differs from
// the plain id-keyed builder.
type CacheItem[T any] struct {
	Cache       CacheClient
	Key         string
	Value       T
	Expiry      *time.Duration
	HashPattern *string
}

func (c CacheItem[T]) cacheKey() string {
	if c.HashPattern != nil {
		return fmt.Sprintf(*c.HashPattern, c.Key)
	}
	return c.Key
}

func (c CacheItem[T]) SetValue(ctx context.Context) error {
	builder := NewCacheBuilder(c.Cache, c.cacheKey()).
		WithStruct(c.Value).
		WithContext(ctx)
	if c.Expiry != nil {
		builder = builder.WithTTL(*c.Expiry)
	}
	return builder.Set()
}

func (c CacheItem[T]) GetValue(ctx context.Context) (T, bool, error) {
	var value T
	found, err := NewCacheBuilder(c.Cache, c.cacheKey()).
		WithContext(ctx).
		Get(&value)
	return value, found, err
}

func (c CacheItem[T]) DeleteCachedValue(ctx context.Context) error {
	return NewCacheBuilder(c.Cache, c.cacheKey()).
		WithContext(ctx).
		Delete()
}
