package remote

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/DarmsTdiuM27/med-drive-bot/internal/metrics"
	"github.com/DarmsTdiuM27/med-drive-bot/pkg/cache"
	"github.com/DarmsTdiuM27/med-drive-bot/pkg/models"
)

// CachedLister serves listings from the TTL cache and coalesces
// concurrent fetches of the same folder into one backend request.
// Failed fetches are never cached, so the next call retries.
type CachedLister struct {
	inner Lister
	cache *cache.Cache
	sf    singleflight.Group
}

// NewCached wraps a backend lister with the listing cache.
func NewCached(inner Lister, c *cache.Cache) *CachedLister {
	return &CachedLister{inner: inner, cache: c}
}

// List implements Lister.
func (l *CachedLister) List(ctx context.Context, folderID string) ([]models.Entry, error) {
	if items, ok := l.cache.Get(folderID); ok {
		metrics.RecordCacheLookup(true)
		return items, nil
	}
	metrics.RecordCacheLookup(false)

	v, err, _ := l.sf.Do(folderID, func() (interface{}, error) {
		items, err := l.inner.List(ctx, folderID)
		if err != nil {
			return nil, err
		}
		l.cache.Put(folderID, items)
		metrics.SetCachedListings(l.cache.Len())
		return items, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Entry), nil
}
