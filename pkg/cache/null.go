package cache

import (
	"context"
	"time"
)

// NullCache misses every lookup and discards every write. It stands in
// for a cache under --no-cache and in tests.
type NullCache struct{}

// NewNullCache returns a NullCache.
func NewNullCache() Cache { return NullCache{} }

func (NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullCache) Delete(context.Context, string) error                     { return nil }
func (NullCache) Close() error                                             { return nil }

