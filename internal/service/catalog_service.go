//go:generate mockgen -source=$GOFILE -destination=mock/$GOFILE -package=mock
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"shopcompare/backend/internal/cache"
	"shopcompare/backend/internal/catalog"
	"shopcompare/backend/internal/hashutil"
	"shopcompare/backend/pkg/logger"
	"shopcompare/backend/pkg/sanitizer"
)

// CatalogClient is the upstream product API; *catalog.Client implements it.
type CatalogClient interface {
	Search(ctx context.Context, query string) ([]catalog.Product, error)
	Product(ctx context.Context, id int64) (*catalog.ProductDetail, error)
	Reviews(ctx context.Context, productID int64, page int) (*catalog.Reviews, error)
}

type CatalogService interface {
	Search(ctx context.Context, query string) ([]catalog.Product, error)
	// Product returns the detail with its description sanitized.
	Product(ctx context.Context, id int64) (*catalog.ProductDetail, error)
	Reviews(ctx context.Context, productID int64, page int) (*catalog.Reviews, error)
}

// CacheObserver is told about every cache lookup.
type CacheObserver interface {
	ObserveCache(kind string, hit bool)
}

type catalogService struct {
	client   CatalogClient
	store    cache.Cache
	ttl      time.Duration
	group    singleflight.Group
	observer CacheObserver
}

type CatalogOption func(*catalogService)

func WithCacheObserver(o CacheObserver) CatalogOption {
	return func(s *catalogService) { s.observer = o }
}

func NewCatalogService(client CatalogClient, store cache.Cache, ttl time.Duration, opts ...CatalogOption) CatalogService {
	if store == nil {
		store = cache.Nop{}
	}
	s := &catalogService{client: client, store: store, ttl: ttl}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *catalogService) Search(ctx context.Context, query string) ([]catalog.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query parameter is required", ErrInvalid)
	}
	key := hashutil.Key("search", query)
	return loadCached(ctx, s, "search", key, func(ctx context.Context) ([]catalog.Product, error) {
		return s.client.Search(ctx, query)
	})
}

func (s *catalogService) Product(ctx context.Context, id int64) (*catalog.ProductDetail, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: product id must be positive", ErrInvalid)
	}
	key := "product:" + strconv.FormatInt(id, 10)
	return loadCached(ctx, s, "product", key, func(ctx context.Context) (*catalog.ProductDetail, error) {
		detail, err := s.client.Product(ctx, id)
		if err != nil {
			return nil, err
		}
		detail.Description = sanitizer.SanitizeHTML(detail.Description)
		return detail, nil
	})
}

func (s *catalogService) Reviews(ctx context.Context, productID int64, page int) (*catalog.Reviews, error) {
	if productID <= 0 {
		return nil, fmt.Errorf("%w: product id must be positive", ErrInvalid)
	}
	if page < 1 {
		page = 1
	}
	key := fmt.Sprintf("reviews:%d:%d", productID, page)
	return loadCached(ctx, s, "reviews", key, func(ctx context.Context) (*catalog.Reviews, error) {
		return s.client.Reviews(ctx, productID, page)
	})
}

// loadCached serves key from the cache, or fetches it once no matter how many
// callers ask at the same time. Cache failures degrade to a direct fetch.
func loadCached[T any](ctx context.Context, s *catalogService, kind, key string, fetch func(context.Context) (T, error)) (T, error) {
	var zero T

	raw, hit, err := s.store.Get(ctx, key)
	if err != nil {
		logger.Warn("catalog cache read failed", "module", "service", "action", "get", "resource", "cache", "result", "failed", "key", key, "error", err)
	}
	if hit {
		var cached T
		if err := json.Unmarshal(raw, &cached); err == nil {
			s.observe(kind, true)
			return cached, nil
		}
	}
	s.observe(kind, false)

	// The shared fetch outlives any single caller's cancellation; the upstream
	// client carries its own timeout.
	shared := context.WithoutCancel(ctx)
	value, err, _ := s.group.Do(key, func() (interface{}, error) {
		result, err := fetch(shared)
		if err != nil {
			return nil, err
		}
		if encoded, err := json.Marshal(result); err == nil {
			if err := s.store.Set(shared, key, encoded, s.ttl); err != nil {
				logger.Warn("catalog cache write failed", "module", "service", "action", "set", "resource", "cache", "result", "failed", "key", key, "error", err)
			}
		}
		return result, nil
	})
	if err != nil {
		return zero, mapCatalogError(kind, err)
	}
	return value.(T), nil
}

func (s *catalogService) observe(kind string, hit bool) {
	if s.observer != nil {
		s.observer.ObserveCache(kind, hit)
	}
}

func mapCatalogError(kind string, err error) error {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, kind)
	case errors.Is(err, catalog.ErrUnavailable):
		logger.Warn("catalog breaker open", "module", "service", "action", kind, "resource", "catalog", "result", "rejected")
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	default:
		logger.Error("catalog request failed", "module", "service", "action", kind, "resource", "catalog", "result", "failed", "error", err)
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
}
