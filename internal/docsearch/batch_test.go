package docsearch

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedStore(store *countingStore, n int) {
	for i := 0; i < n; i++ {
		store.Put(fmt.Sprintf("doc-%02d.txt", i), []byte(fmt.Sprintf("document number %d", i)), time.Now())
	}
}

func TestBatch_ProcessesAllDocuments(t *testing.T) {
	// Given ten documents in the store
	store := newCountingStore([]string{".txt"})
	seedStore(store, 10)
	idx := newTestIndex(t)
	batch := NewBatch(newTestProcessor(t, store, idx), 5, 20)
	descs, err := store.List(context.Background())
	require.NoError(t, err)

	// When the batch runs
	summary := batch.Run(context.Background(), descs, 0)

	// Then every document is processed and counted
	assert.Equal(t, 10, summary.Total)
	assert.Equal(t, 10, summary.Processed)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 0, summary.Skipped)
	assert.Len(t, summary.Outcomes, 10)

	keys, err := idx.Keys(context.Background())
	require.NoError(t, err)
	assert.Len(t, keys, 10)
}

func TestBatch_EmptyInputYieldsZeroSummary(t *testing.T) {
	store := newCountingStore([]string{".txt"})
	idx := newTestIndex(t)
	batch := NewBatch(newTestProcessor(t, store, idx), 5, 20)

	summary := batch.Run(context.Background(), nil, 0)

	assert.Equal(t, 0, summary.Total)
	assert.Empty(t, summary.Outcomes)
	assert.Equal(t, 0, store.calls())
}

func TestBatch_FailureIsolation(t *testing.T) {
	// Given a batch where one document has no extractable text
	store := newCountingStore([]string{".txt"})
	seedStore(store, 4)
	store.Put("broken.txt", []byte{0x00, 0x01, 0x02}, time.Now())
	idx := newTestIndex(t)
	batch := NewBatch(newTestProcessor(t, store, idx), 5, 20)
	descs, err := store.List(context.Background())
	require.NoError(t, err)

	// When the batch runs
	summary := batch.Run(context.Background(), descs, 0)

	// Then the failure never aborts the others
	assert.Equal(t, 5, summary.Total)
	assert.Equal(t, 4, summary.Processed)
	assert.Equal(t, 1, summary.Failed)

	var failedKeys []string
	for _, o := range summary.Outcomes {
		if o.Status == StatusFailed {
			failedKeys = append(failedKeys, o.Key)
		}
	}
	assert.Equal(t, []string{"broken.txt"}, failedKeys)
}

func TestBatch_ConcurrencyBound(t *testing.T) {
	// Given twenty documents and a slow store
	store := newCountingStore([]string{".txt"})
	store.fetchDelay = 20 * time.Millisecond
	seedStore(store, 20)
	idx := newTestIndex(t)
	batch := NewBatch(newTestProcessor(t, store, idx), 5, 20)
	descs, err := store.List(context.Background())
	require.NoError(t, err)

	// When the batch runs with concurrency 3
	summary := batch.Run(context.Background(), descs, 3)

	// Then no more than three fetches were ever in flight
	assert.Equal(t, 20, summary.Processed)
	assert.LessOrEqual(t, store.peak(), 3)
	assert.Greater(t, store.peak(), 1)
}

func TestBatch_ClampWorkers(t *testing.T) {
	batch := NewBatch(nil, 5, 20)

	assert.Equal(t, 5, batch.clampWorkers(0))
	assert.Equal(t, 5, batch.clampWorkers(-1))
	assert.Equal(t, 1, batch.clampWorkers(1))
	assert.Equal(t, 20, batch.clampWorkers(20))
	assert.Equal(t, 20, batch.clampWorkers(50))
}

func TestBatch_SingleFlight(t *testing.T) {
	// Given two batches submitted at the same time against a slow store
	store := newCountingStore([]string{".txt"})
	store.fetchDelay = 15 * time.Millisecond
	seedStore(store, 6)
	idx := newTestIndex(t)
	batch := NewBatch(newTestProcessor(t, store, idx), 5, 20)
	descs, err := store.List(context.Background())
	require.NoError(t, err)

	first := descs[:3]
	second := descs[3:]

	var wg sync.WaitGroup
	var summaries [2]*BatchSummary
	wg.Add(2)
	go func() {
		defer wg.Done()
		summaries[0] = batch.Run(context.Background(), first, 3)
	}()
	go func() {
		defer wg.Done()
		summaries[1] = batch.Run(context.Background(), second, 3)
	}()
	wg.Wait()

	// Then the second waits for the first: concurrency never exceeds
	// a single batch's worker count
	assert.Equal(t, 3, summaries[0].Total)
	assert.Equal(t, 3, summaries[1].Total)
	assert.LessOrEqual(t, store.peak(), 3)
}
