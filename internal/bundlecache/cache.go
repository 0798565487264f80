// Package bundlecache is the optional intermediary cache in front of the
// booklet resolution path. Published content changes rarely, so successful
// bundles may be kept for a short bounded window. Wi-Fi credentials and chat
// requests never go through this package.
package bundlecache

import (
	"context"
	"errors"
	"time"

	"github.com/karlseguin/ccache/v3"

	"welcome-keys/internal/domain"
	"welcome-keys/internal/usecase"
)

const (
	// DefaultTTL matches the endpoint's public max-age.
	DefaultTTL = 120 * time.Second

	defaultMaxSize = 1000
)

// Resolver is the inner resolution surface being decorated.
type Resolver interface {
	ResolveByPin(ctx context.Context, rawCode string) (domain.ContentBundle, error)
}

// CachedResolver memoizes successful resolutions per normalized PIN.
// Failures are never cached: a just-published booklet must become visible on
// the next lookup.
type CachedResolver struct {
	inner Resolver
	cache *ccache.Cache[domain.ContentBundle]
	ttl   time.Duration
}

func New(inner Resolver, ttl time.Duration) (*CachedResolver, error) {
	if inner == nil {
		return nil, errors.New("bundlecache: inner resolver must not be nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &CachedResolver{
		inner: inner,
		cache: ccache.New(ccache.Configure[domain.ContentBundle]().MaxSize(defaultMaxSize)),
		ttl:   ttl,
	}, nil
}

// ResolveByPin serves from cache when fresh, otherwise delegates and caches
// the success. Normalization happens here too, so "ab12 cd" and "AB12CD"
// share one entry.
func (r *CachedResolver) ResolveByPin(ctx context.Context, rawCode string) (domain.ContentBundle, error) {
	code := usecase.NormalizePin(rawCode)

	if item := r.cache.Get(code); item != nil && !item.Expired() {
		return item.Value(), nil
	}

	bundle, err := r.inner.ResolveByPin(ctx, rawCode)
	if err != nil {
		return domain.ContentBundle{}, err
	}
	r.cache.Set(code, bundle, r.ttl)
	return bundle, nil
}
