// Package index wraps the external full-text search engine behind the
// Index interface consumed by the processing core.
package index

import (
	"context"
	"time"
)

// Record is one indexed document. Key is the join identity shared with
// the store's descriptors; the record is owned by the index once
// upserted.
type Record struct {
	Key           string    `json:"key"`
	FileName      string    `json:"file_name"`
	Content       string    `json:"content"`
	FileExtension string    `json:"file_extension"`
	Size          int64     `json:"size"`
	ModifiedAt    time.Time `json:"modified_at"`
	Fingerprint   string    `json:"fingerprint"`
	URL           string    `json:"url"`
	IndexedAt     time.Time `json:"indexed_at"`
}

// Stats is a snapshot of index-wide statistics.
type Stats struct {
	DocumentCount int
	SizeBytes     int64
}

// Hit is one search result with relevance score and highlight fragments.
type Hit struct {
	Key           string
	FileName      string
	FileExtension string
	Size          int64
	ModifiedAt    time.Time
	URL           string
	Score         float64
	Fragments     []string
}

// SearchResults is a page of scored hits.
type SearchResults struct {
	Query string
	Total uint64
	Hits  []*Hit
}

// Index is the search engine boundary: keyed upsert/delete/lookup plus
// full enumeration and scored search.
//
// Keys must enumerate the entire index, not a scored top-N; large
// indexes are paged internally. Refresh is the explicit visibility
// barrier callers invoke before relying on recent writes.
type Index interface {
	Get(ctx context.Context, key string) (*Record, error)
	Upsert(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, key string) (bool, error)
	Keys(ctx context.Context) ([]string, error)
	Refresh(ctx context.Context) error
	Stats(ctx context.Context) (*Stats, error)
	Search(ctx context.Context, query string, size, offset int) (*SearchResults, error)
}
