package docsearch

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/irfanahme/cloud-document-search/internal/blob"
	"github.com/irfanahme/cloud-document-search/internal/config"
	docerrors "github.com/irfanahme/cloud-document-search/internal/errors"
	"github.com/irfanahme/cloud-document-search/internal/extract"
	"github.com/irfanahme/cloud-document-search/internal/index"
)

const (
	defaultSearchSize = 10
	maxSearchSize     = 100
)

// RunRecorder persists run history. Recording is best effort; a failed
// write is logged, never surfaced to the caller.
type RunRecorder interface {
	RecordBatch(ctx context.Context, summary *BatchSummary, took time.Duration) error
	RecordSync(ctx context.Context, summary *SyncSummary, took time.Duration) error
}

// Service is the explicit context object tying the store, index,
// processor, batch coordinator and reconciler together. All exposed
// operations validate their inputs before touching a collaborator.
type Service struct {
	cfg        *config.Config
	store      blob.Store
	idx        index.Index
	processor  *Processor
	batch      *Batch
	reconciler *Reconciler
	recorder   RunRecorder
	logger     *slog.Logger
}

// Option customizes a Service.
type Option func(*Service)

// WithRecorder attaches a run-history recorder.
func WithRecorder(r RunRecorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// New wires a service from its collaborators and configuration.
func New(cfg *config.Config, store blob.Store, idx index.Index, extractor extract.Extractor, opts ...Option) *Service {
	processor := NewProcessor(store, idx, extractor, cfg.MaxFileSizeBytes(), cfg.Store.URLTTL)
	batch := NewBatch(processor, cfg.Processing.Workers, cfg.Processing.MaxWorkers)
	s := &Service{
		cfg:        cfg,
		store:      store,
		idx:        idx,
		processor:  processor,
		batch:      batch,
		reconciler: NewReconciler(store, idx, batch, cfg.Processing.SyncWorkers),
		logger:     slog.Default().With("component", "service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessAll lists every eligible document in the store and runs them
// through one batch. concurrency zero means the configured default;
// values above the cap are clamped, negatives are rejected.
func (s *Service) ProcessAll(ctx context.Context, concurrency int) (*BatchSummary, error) {
	if concurrency < 0 {
		return nil, docerrors.New(docerrors.ErrCodeInvalidConcurrency,
			"concurrency must not be negative", nil)
	}
	descs, err := s.store.List(ctx)
	if err != nil {
		return nil, docerrors.StoreUnavailable("listing store documents failed", err)
	}

	start := time.Now()
	summary := s.batch.Run(ctx, descs, concurrency)
	if err := s.idx.Refresh(ctx); err != nil {
		s.logger.Warn("index refresh failed", "error", err)
	}
	s.recordBatch(ctx, summary, time.Since(start))
	return summary, nil
}

// ProcessOne processes a single document by key. An absent key yields
// a failed outcome, not an error.
func (s *Service) ProcessOne(ctx context.Context, key string) (Outcome, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return Outcome{}, docerrors.New(docerrors.ErrCodeInvalidKey,
			"document key must not be empty", nil)
	}
	d, err := s.store.Describe(ctx, key)
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return failed(key, "not found in store"), nil
		}
		return Outcome{}, docerrors.StoreUnavailable("describing document failed", err)
	}
	outcome := s.processor.Process(ctx, d)
	if err := s.idx.Refresh(ctx); err != nil {
		s.logger.Warn("index refresh failed", "error", err)
	}
	return outcome, nil
}

// Sync runs one reconciliation pass between the store and the index.
func (s *Service) Sync(ctx context.Context) (*SyncSummary, error) {
	start := time.Now()
	summary, err := s.reconciler.Sync(ctx)
	if err != nil {
		return nil, err
	}
	s.recordSync(ctx, summary, time.Since(start))
	return summary, nil
}

// Search queries the index and enriches hits with fresh access URLs.
// Blank queries are rejected; size defaults to 10 and is capped at 100.
func (s *Service) Search(ctx context.Context, query string, size, offset int) (*index.SearchResults, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, docerrors.New(docerrors.ErrCodeQueryEmpty,
			"search query must not be empty", nil)
	}
	if offset < 0 {
		return nil, docerrors.ValidationError("offset must not be negative", nil)
	}
	if size <= 0 {
		size = defaultSearchSize
	}
	if size > maxSearchSize {
		size = maxSearchSize
	}

	results, err := s.idx.Search(ctx, query, size, offset)
	if err != nil {
		return nil, docerrors.IndexUnavailable("search failed", err)
	}
	for _, hit := range results.Hits {
		if hit.URL != "" {
			continue
		}
		url, err := s.store.URLFor(ctx, hit.Key, s.cfg.Store.URLTTL)
		if err != nil {
			s.logger.Warn("url resolution failed", "key", hit.Key, "error", err)
			continue
		}
		hit.URL = url
	}
	return results, nil
}

// DeleteFromIndex removes one document from the index. It reports
// whether the key was present; the store is never touched.
func (s *Service) DeleteFromIndex(ctx context.Context, key string) (bool, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return false, docerrors.New(docerrors.ErrCodeInvalidKey,
			"document key must not be empty", nil)
	}
	removed, err := s.idx.Delete(ctx, key)
	if err != nil {
		return false, docerrors.IndexUnavailable("delete failed", err)
	}
	if removed {
		if err := s.idx.Refresh(ctx); err != nil {
			s.logger.Warn("index refresh failed", "error", err)
		}
	}
	return removed, nil
}

// Status aggregates store and index statistics with the active limits.
func (s *Service) Status(ctx context.Context) (*StatusReport, error) {
	info, err := s.store.Info(ctx)
	if err != nil {
		return nil, docerrors.StoreUnavailable("reading store info failed", err)
	}
	stats, err := s.idx.Stats(ctx)
	if err != nil {
		return nil, docerrors.IndexUnavailable("reading index stats failed", err)
	}
	return &StatusReport{
		StoreName:           info.Name,
		StoreObjectCount:    info.ObjectCount,
		StoreTotalSize:      info.TotalSize,
		IndexDocumentCount:  stats.DocumentCount,
		IndexSizeBytes:      stats.SizeBytes,
		SupportedExtensions: s.cfg.Store.AllowedExtensions,
		MaxFileSizeMB:       s.cfg.Store.MaxFileSizeMB,
	}, nil
}

func (s *Service) recordBatch(ctx context.Context, summary *BatchSummary, took time.Duration) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordBatch(ctx, summary, took); err != nil {
		s.logger.Warn("recording batch run failed", "error", err)
	}
}

func (s *Service) recordSync(ctx context.Context, summary *SyncSummary, took time.Duration) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordSync(ctx, summary, took); err != nil {
		s.logger.Warn("recording sync run failed", "error", err)
	}
}
