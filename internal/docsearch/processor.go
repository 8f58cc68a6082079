package docsearch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/irfanahme/cloud-document-search/internal/blob"
	"github.com/irfanahme/cloud-document-search/internal/extract"
	"github.com/irfanahme/cloud-document-search/internal/index"
)

// Processor runs the per-document pipeline: idempotency guard, size
// gate, fetch, extract, URL resolution, index write. Every failure is
// captured as an Outcome so one bad document never aborts a batch.
type Processor struct {
	store     blob.Store
	idx       index.Index
	extractor extract.Extractor
	maxSize   int64
	urlTTL    time.Duration
	logger    *slog.Logger
}

// NewProcessor builds a processor. maxSize is the per-document byte
// limit; urlTTL is the lifetime requested for access URLs.
func NewProcessor(store blob.Store, idx index.Index, extractor extract.Extractor, maxSize int64, urlTTL time.Duration) *Processor {
	return &Processor{
		store:     store,
		idx:       idx,
		extractor: extractor,
		maxSize:   maxSize,
		urlTTL:    urlTTL,
		logger:    slog.Default().With("component", "processor"),
	}
}

// Process runs the pipeline for one document.
//
// A document whose stored fingerprint matches the index record is
// reported as Success without re-fetching; the size gate runs before
// any fetch so oversized documents cost nothing.
func (p *Processor) Process(ctx context.Context, d blob.Descriptor) Outcome {
	existing, err := p.idx.Get(ctx, d.Key)
	if err != nil {
		p.logger.Error("index lookup failed", "key", d.Key, "error", err)
		return failed(d.Key, fmt.Sprintf("index lookup failed: %v", err))
	}
	if existing != nil && existing.Fingerprint != "" && existing.Fingerprint == d.Fingerprint {
		p.logger.Debug("document unchanged", "key", d.Key, "fingerprint", d.Fingerprint)
		return success(d.Key, "already indexed, unchanged")
	}

	if p.maxSize > 0 && d.Size > p.maxSize {
		return failed(d.Key, fmt.Sprintf("too large: %d bytes exceeds limit of %d", d.Size, p.maxSize))
	}

	data, err := p.store.Fetch(ctx, d.Key)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return failed(d.Key, "not found in store")
		}
		p.logger.Error("fetch failed", "key", d.Key, "error", err)
		return failed(d.Key, fmt.Sprintf("fetch failed: %v", err))
	}

	text := p.extractor.Extract(data, d.Extension())
	if text == "" {
		return failed(d.Key, "no extractable text")
	}

	// Best effort: a missing URL never fails the document.
	url, err := p.store.URLFor(ctx, d.Key, p.urlTTL)
	if err != nil {
		p.logger.Warn("url resolution failed", "key", d.Key, "error", err)
		url = ""
	}

	rec := &index.Record{
		Key:           d.Key,
		FileName:      d.FileName(),
		Content:       text,
		FileExtension: d.Extension(),
		Size:          d.Size,
		ModifiedAt:    d.ModifiedAt,
		Fingerprint:   d.Fingerprint,
		URL:           url,
		IndexedAt:     time.Now().UTC(),
	}
	if err := p.idx.Upsert(ctx, rec); err != nil {
		p.logger.Error("index write failed", "key", d.Key, "error", err)
		return failed(d.Key, fmt.Sprintf("index write failed: %v", err))
	}

	p.logger.Info("document indexed", "key", d.Key, "size", d.Size)
	return success(d.Key, "processed and indexed")
}
