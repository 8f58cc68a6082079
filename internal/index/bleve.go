package index

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
)

// keysPageSize is the enumeration page size. Enumeration walks the whole
// index page by page instead of one oversized query.
const keysPageSize = 1000

// BleveIndex implements Index on a Bleve v2 full-text index.
type BleveIndex struct {
	mu     sync.RWMutex
	index  bleve.Index
	path   string
	closed bool
}

// NewBleveIndex opens or creates a Bleve index at path. An empty path
// creates an in-memory index for testing.
func NewBleveIndex(path string) (*BleveIndex, error) {
	indexMapping := createIndexMapping()

	var idx bleve.Index
	var err error
	if path == "" {
		idx, err = bleve.NewMemOnly(indexMapping)
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create index directory: %w", err)
		}

		if validErr := validateIndexIntegrity(path); validErr != nil {
			slog.Warn("search index corrupted, clearing",
				slog.String("path", path),
				slog.String("error", validErr.Error()))
			if removeErr := os.RemoveAll(path); removeErr != nil {
				return nil, fmt.Errorf("index corrupted at %s and cannot remove: %w (original error: %v)",
					path, removeErr, validErr)
			}
		}

		idx, err = bleve.Open(path)
		if err == bleve.ErrorIndexPathDoesNotExist {
			idx, err = bleve.New(path, indexMapping)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create/open index: %w", err)
	}

	return &BleveIndex{index: idx, path: path}, nil
}

// createIndexMapping builds the document mapping: analyzed text for
// content and file name, keyword fields for identities, stored metadata
// for hit construction.
func createIndexMapping() mapping.IndexMapping {
	content := bleve.NewTextFieldMapping()
	content.Store = true

	fileName := bleve.NewTextFieldMapping()
	fileName.Store = true

	keyword := bleve.NewKeywordFieldMapping()
	keyword.Store = true

	size := bleve.NewNumericFieldMapping()
	size.Store = true

	date := bleve.NewDateTimeFieldMapping()
	date.Store = true

	doc := bleve.NewDocumentMapping()
	doc.AddFieldMappingsAt("content", content)
	doc.AddFieldMappingsAt("file_name", fileName)
	doc.AddFieldMappingsAt("key", keyword)
	doc.AddFieldMappingsAt("file_extension", keyword)
	doc.AddFieldMappingsAt("fingerprint", keyword)
	doc.AddFieldMappingsAt("url", keyword)
	doc.AddFieldMappingsAt("size", size)
	doc.AddFieldMappingsAt("modified_at", date)
	doc.AddFieldMappingsAt("indexed_at", date)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = doc
	return indexMapping
}

// validateIndexIntegrity checks whether a Bleve index directory is openable.
// Returns nil when the index does not exist yet (it will be created).
func validateIndexIntegrity(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}

	metaPath := filepath.Join(path, "index_meta.json")
	info, err := os.Stat(metaPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("index_meta.json missing")
	}
	if err != nil {
		return fmt.Errorf("cannot stat index_meta.json: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("index_meta.json is empty")
	}

	data, err := os.ReadFile(metaPath)
	if err != nil {
		return fmt.Errorf("cannot read index_meta.json: %w", err)
	}
	var meta map[string]interface{}
	if err := json.Unmarshal(data, &meta); err != nil {
		return fmt.Errorf("index_meta.json is corrupt: %w", err)
	}
	return nil
}

// toBleveDoc converts a Record to the indexed document shape.
func toBleveDoc(rec *Record) map[string]interface{} {
	return map[string]interface{}{
		"key":            rec.Key,
		"file_name":      rec.FileName,
		"content":        rec.Content,
		"file_extension": rec.FileExtension,
		"size":           rec.Size,
		"modified_at":    rec.ModifiedAt,
		"fingerprint":    rec.Fingerprint,
		"url":            rec.URL,
		"indexed_at":     rec.IndexedAt,
	}
}

// Get looks up a record by key. Returns (nil, nil) when absent.
func (b *BleveIndex) Get(ctx context.Context, key string) (*Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("index is closed")
	}

	req := bleve.NewSearchRequest(bleve.NewDocIDQuery([]string{key}))
	req.Fields = []string{"*"}

	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", key, err)
	}
	if len(res.Hits) == 0 {
		return nil, nil
	}

	fields := res.Hits[0].Fields
	return &Record{
		Key:           fieldString(fields, "key"),
		FileName:      fieldString(fields, "file_name"),
		Content:       fieldString(fields, "content"),
		FileExtension: fieldString(fields, "file_extension"),
		Size:          fieldInt64(fields, "size"),
		ModifiedAt:    fieldTime(fields, "modified_at"),
		Fingerprint:   fieldString(fields, "fingerprint"),
		URL:           fieldString(fields, "url"),
		IndexedAt:     fieldTime(fields, "indexed_at"),
	}, nil
}

// Upsert creates or overwrites the record keyed by its Key.
func (b *BleveIndex) Upsert(ctx context.Context, rec *Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("index is closed")
	}
	if rec.Key == "" {
		return fmt.Errorf("record key must not be empty")
	}

	if err := b.index.Index(rec.Key, toBleveDoc(rec)); err != nil {
		return fmt.Errorf("failed to index document %s: %w", rec.Key, err)
	}
	return nil
}

// Delete removes the record. Returns false when the key was absent.
func (b *BleveIndex) Delete(ctx context.Context, key string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return false, fmt.Errorf("index is closed")
	}

	// Bleve deletes are silent on absent IDs; check first so callers can
	// distinguish deleted from absent.
	req := bleve.NewSearchRequest(bleve.NewDocIDQuery([]string{key}))
	req.Fields = []string{}
	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return false, fmt.Errorf("failed to check document %s: %w", key, err)
	}
	if len(res.Hits) == 0 {
		return false, nil
	}

	if err := b.index.Delete(key); err != nil {
		return false, fmt.Errorf("failed to delete document %s: %w", key, err)
	}
	return true, nil
}

// Keys enumerates every indexed key, paging through the index in
// keysPageSize chunks so the result covers the entire index regardless
// of its size.
func (b *BleveIndex) Keys(ctx context.Context) ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("index is closed")
	}

	var keys []string
	for from := 0; ; from += keysPageSize {
		req := bleve.NewSearchRequestOptions(bleve.NewMatchAllQuery(), keysPageSize, from, false)
		req.SortBy([]string{"_id"})
		req.Fields = []string{}

		res, err := b.index.SearchInContext(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("failed to enumerate index keys: %w", err)
		}
		for _, hit := range res.Hits {
			keys = append(keys, hit.ID)
		}
		if len(res.Hits) < keysPageSize {
			break
		}
	}
	return keys, nil
}

// Refresh is the visibility barrier. Bleve writes are visible once the
// batch returns, so this only verifies the index is still open.
func (b *BleveIndex) Refresh(ctx context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return fmt.Errorf("index is closed")
	}
	return nil
}

// Stats returns document count and on-disk size.
func (b *BleveIndex) Stats(ctx context.Context) (*Stats, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("index is closed")
	}

	count, err := b.index.DocCount()
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	stats := &Stats{DocumentCount: int(count)}
	if b.path != "" {
		stats.SizeBytes = dirSize(b.path)
	}
	return stats, nil
}

// Search runs a scored match query over content and file name, content
// weighted higher, with highlight fragments for content matches.
func (b *BleveIndex) Search(ctx context.Context, query string, size, offset int) (*SearchResults, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return nil, fmt.Errorf("index is closed")
	}

	results := &SearchResults{Query: query, Hits: []*Hit{}}
	if strings.TrimSpace(query) == "" {
		return results, nil
	}

	contentQuery := bleve.NewMatchQuery(query)
	contentQuery.SetField("content")
	contentQuery.SetBoost(2.0)

	nameQuery := bleve.NewMatchQuery(query)
	nameQuery.SetField("file_name")
	nameQuery.SetBoost(1.5)

	req := bleve.NewSearchRequestOptions(
		bleve.NewDisjunctionQuery(contentQuery, nameQuery), size, offset, false)
	req.Fields = []string{"key", "file_name", "file_extension", "size", "modified_at", "url"}
	req.SortBy([]string{"-_score", "-modified_at"})
	req.Highlight = bleve.NewHighlight()
	req.Highlight.AddField("content")

	res, err := b.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	results.Total = res.Total
	for _, hit := range res.Hits {
		results.Hits = append(results.Hits, &Hit{
			Key:           fieldString(hit.Fields, "key"),
			FileName:      fieldString(hit.Fields, "file_name"),
			FileExtension: fieldString(hit.Fields, "file_extension"),
			Size:          fieldInt64(hit.Fields, "size"),
			ModifiedAt:    fieldTime(hit.Fields, "modified_at"),
			URL:           fieldString(hit.Fields, "url"),
			Score:         hit.Score,
			Fragments:     hit.Fragments["content"],
		})
	}
	return results, nil
}

// Close closes the index.
func (b *BleveIndex) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	if b.index != nil {
		return b.index.Close()
	}
	return nil
}

var _ Index = (*BleveIndex)(nil)

// fieldString reads a stored string field from search hit fields.
func fieldString(fields map[string]interface{}, name string) string {
	if v, ok := fields[name].(string); ok {
		return v
	}
	return ""
}

// fieldInt64 reads a stored numeric field. Bleve returns numerics as float64.
func fieldInt64(fields map[string]interface{}, name string) int64 {
	if v, ok := fields[name].(float64); ok {
		return int64(v)
	}
	return 0
}

// fieldTime reads a stored datetime field. Bleve returns dates as RFC3339.
func fieldTime(fields map[string]interface{}, name string) time.Time {
	if v, ok := fields[name].(string); ok {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

// dirSize sums file sizes under dir, best effort.
func dirSize(dir string) int64 {
	var total int64
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})
	return total
}
