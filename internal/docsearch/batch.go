package docsearch

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/irfanahme/cloud-document-search/internal/blob"
)

// Batch fans documents out to the processor with a bounded worker
// count. A running batch holds the instance mutex, so concurrent
// callers queue behind it rather than interleave; concurrency exists
// only within one batch.
type Batch struct {
	processor      *Processor
	defaultWorkers int
	maxWorkers     int
	logger         *slog.Logger

	mu sync.Mutex
}

// NewBatch builds a coordinator. defaultWorkers is used when a run
// requests zero; maxWorkers is the hard cap on requested concurrency.
func NewBatch(processor *Processor, defaultWorkers, maxWorkers int) *Batch {
	if defaultWorkers <= 0 {
		defaultWorkers = 5
	}
	if maxWorkers <= 0 {
		maxWorkers = 20
	}
	return &Batch{
		processor:      processor,
		defaultWorkers: defaultWorkers,
		maxWorkers:     maxWorkers,
		logger:         slog.Default().With("component", "batch"),
	}
}

// clampWorkers resolves a requested concurrency to the allowed range.
func (b *Batch) clampWorkers(requested int) int {
	if requested <= 0 {
		return b.defaultWorkers
	}
	if requested > b.maxWorkers {
		return b.maxWorkers
	}
	return requested
}

// Run processes every descriptor and aggregates the outcomes.
// Outcomes are collected in completion order. Per-document failures
// are counted, never raised; an empty slice yields an all-zero
// summary without touching any collaborator.
func (b *Batch) Run(ctx context.Context, descs []blob.Descriptor, concurrency int) *BatchSummary {
	b.mu.Lock()
	defer b.mu.Unlock()

	summary := &BatchSummary{Total: len(descs)}
	if len(descs) == 0 {
		return summary
	}

	workers := b.clampWorkers(concurrency)
	b.logger.Info("batch started", "documents", len(descs), "workers", workers)

	outcomes := make(chan Outcome, len(descs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, d := range descs {
		d := d
		g.Go(func() error {
			outcomes <- b.processor.Process(gctx, d)
			return nil
		})
	}
	_ = g.Wait() // workers never return errors
	close(outcomes)

	for o := range outcomes {
		summary.Outcomes = append(summary.Outcomes, o)
		switch o.Status {
		case StatusSuccess:
			summary.Processed++
		case StatusSkipped:
			summary.Skipped++
		default:
			summary.Failed++
		}
	}

	b.logger.Info("batch finished",
		"total", summary.Total,
		"processed", summary.Processed,
		"failed", summary.Failed)
	return summary
}
