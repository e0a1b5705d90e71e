// Package cache provides short-lived storage for computed gym dashboards.
//
// A cache is never a source of truth: values are opaque bytes that the
// caller can always recompute, and every mutation of a gym's members, plans
// or ledger deletes that gym's key.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// DashboardCache stores serialized dashboards keyed by gym id.
type DashboardCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// DashboardKey is the cache key of a gym's dashboard.
func DashboardKey(gymID string) string {
	return "dashboard:" + gymID
}

// NopCache never stores anything. Useful in tests and when caching is off.
type NopCache struct{}

func (NopCache) Get(context.Context, string) ([]byte, error) { return nil, ErrMiss }
func (NopCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NopCache) Delete(context.Context, string) error { return nil }
