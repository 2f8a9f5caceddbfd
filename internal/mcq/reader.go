package mcq

import (
	"context"
	"strconv"
	"time"
)

const (
	ttlPage  = 60 * time.Second
	ttlCount = 60 * time.Second
	ttlByID  = time.Hour
)

func pageKey(limit, offset int) string {
	return "mcq:page:" + strconv.Itoa(limit) + ":" + strconv.Itoa(offset)
}

func byIDKey(id string) string { return "mcq:byId:" + id }

const countKey = "mcq:count:published"

// Page is one paginated slice of published MCQs plus the total count.
type Page struct {
	Items []PublishedMCQ `json:"items"`
	Total int            `json:"total"`
}

// Reader is the cache-first read path over the published store. Cache
// entries are never authoritative; publish invalidates them and short TTLs
// bound staleness in between.
type Reader struct {
	store PublishedStore
	cache Cache
}

func NewReader(store PublishedStore, cache Cache) *Reader {
	return &Reader{store: store, cache: cache}
}

// GetPage serves page (1-based) with limit items per page.
func (r *Reader) GetPage(ctx context.Context, page, limit int) (Page, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	offset := (page - 1) * limit

	key := pageKey(limit, offset)
	var cached Page
	if r.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	items, err := r.store.ListPage(ctx, limit, offset)
	if err != nil {
		return Page{}, err
	}
	total, err := r.Count(ctx)
	if err != nil {
		return Page{}, err
	}
	if items == nil {
		items = []PublishedMCQ{}
	}

	out := Page{Items: items, Total: total}
	r.cache.SetJSON(ctx, key, out, ttlPage)
	return out, nil
}

// GetByID serves a single published MCQ, cache-first. Returns ErrNotFound
// when no published, latest row exists.
func (r *Reader) GetByID(ctx context.Context, mcqID string) (PublishedMCQ, error) {
	key := byIDKey(mcqID)
	var cached PublishedMCQ
	if r.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	rec, err := r.store.GetByID(ctx, mcqID)
	if err != nil {
		return PublishedMCQ{}, err
	}
	r.cache.SetJSON(ctx, key, rec, ttlByID)
	return rec, nil
}

// Count returns the published total, cached briefly; publishes also delete
// the key explicitly.
func (r *Reader) Count(ctx context.Context) (int, error) {
	var cached int
	if r.cache.GetJSON(ctx, countKey, &cached) {
		return cached, nil
	}
	n, err := r.store.CountPublished(ctx)
	if err != nil {
		return 0, err
	}
	r.cache.SetJSON(ctx, countKey, n, ttlCount)
	return n, nil
}
