package docsearch

import (
	"context"
	"log/slog"
	"time"

	docerrors "github.com/irfanahme/cloud-document-search/internal/errors"

	"github.com/irfanahme/cloud-document-search/internal/blob"
	"github.com/irfanahme/cloud-document-search/internal/index"
)

// Reconciler converges the index onto the store: documents present in
// the store but absent from the index are processed, index entries
// whose document is gone are removed.
type Reconciler struct {
	store   blob.Store
	idx     index.Index
	batch   *Batch
	workers int
	logger  *slog.Logger
}

// NewReconciler builds a reconciler that adds missing documents at the
// given worker count through the shared batch coordinator.
func NewReconciler(store blob.Store, idx index.Index, batch *Batch, workers int) *Reconciler {
	if workers <= 0 {
		workers = 3
	}
	return &Reconciler{
		store:   store,
		idx:     idx,
		batch:   batch,
		workers: workers,
		logger:  slog.Default().With("component", "reconciler"),
	}
}

// Sync runs one reconciliation pass. Enumeration failures on either
// side abort the pass; individual removal failures are logged and
// skipped so the remaining deletions still run. Recent writes are
// flushed to visibility before the summary is returned.
func (r *Reconciler) Sync(ctx context.Context) (*SyncSummary, error) {
	descs, err := r.store.List(ctx)
	if err != nil {
		return nil, docerrors.StoreUnavailable("listing store documents failed", err)
	}
	keys, err := r.idx.Keys(ctx)
	if err != nil {
		return nil, docerrors.IndexUnavailable("listing index keys failed", err)
	}

	inStore := make(map[string]blob.Descriptor, len(descs))
	for _, d := range descs {
		inStore[d.Key] = d
	}
	inIndex := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		inIndex[k] = struct{}{}
	}

	var toAdd []blob.Descriptor
	for _, d := range descs {
		if _, ok := inIndex[d.Key]; !ok {
			toAdd = append(toAdd, d)
		}
	}
	var toRemove []string
	for _, k := range keys {
		if _, ok := inStore[k]; !ok {
			toRemove = append(toRemove, k)
		}
	}

	r.logger.Info("sync started",
		"store_documents", len(descs),
		"indexed_documents", len(keys),
		"to_add", len(toAdd),
		"to_remove", len(toRemove))

	added := 0
	if len(toAdd) > 0 {
		summary := r.batch.Run(ctx, toAdd, r.workers)
		added = summary.Processed
	}

	removed := 0
	for _, key := range toRemove {
		ok, err := r.idx.Delete(ctx, key)
		if err != nil {
			r.logger.Warn("removal failed", "key", key, "error", err)
			continue
		}
		if ok {
			removed++
		}
	}

	if err := r.idx.Refresh(ctx); err != nil {
		r.logger.Warn("index refresh failed", "error", err)
	}

	summary := &SyncSummary{
		StoreDocuments:   len(descs),
		IndexedDocuments: len(keys),
		Added:            added,
		Removed:          removed,
		CompletedAt:      time.Now().UTC(),
	}
	r.logger.Info("sync finished", "added", added, "removed", removed)
	return summary, nil
}
