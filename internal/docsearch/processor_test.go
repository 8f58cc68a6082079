package docsearch

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irfanahme/cloud-document-search/internal/blob"
	"github.com/irfanahme/cloud-document-search/internal/extract"
	"github.com/irfanahme/cloud-document-search/internal/index"
)

// countingStore wraps a MemStore and tracks fetch activity so tests can
// assert on call counts and peak concurrency.
type countingStore struct {
	*blob.MemStore

	fetchDelay time.Duration

	mu            sync.Mutex
	fetchCalls    int
	inFlight      int
	peakInFlight  int32
	fetchFailures atomic.Bool
}

func newCountingStore(exts []string) *countingStore {
	return &countingStore{MemStore: blob.NewMemStore("test-bucket", exts)}
}

func (s *countingStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	s.fetchCalls++
	s.inFlight++
	if int32(s.inFlight) > s.peakInFlight {
		s.peakInFlight = int32(s.inFlight)
	}
	s.mu.Unlock()

	if s.fetchDelay > 0 {
		time.Sleep(s.fetchDelay)
	}

	defer func() {
		s.mu.Lock()
		s.inFlight--
		s.mu.Unlock()
	}()

	if s.fetchFailures.Load() {
		return nil, assert.AnError
	}
	return s.MemStore.Fetch(ctx, key)
}

func (s *countingStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetchCalls
}

func (s *countingStore) peak() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int(s.peakInFlight)
}

func newTestIndex(t *testing.T) *index.BleveIndex {
	t.Helper()
	idx, err := index.NewBleveIndex("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func newTestProcessor(t *testing.T, store blob.Store, idx index.Index) *Processor {
	t.Helper()
	return NewProcessor(store, idx, extract.NewPlainText(), 1024, time.Hour)
}

func mustDescribe(t *testing.T, store blob.Store, key string) blob.Descriptor {
	t.Helper()
	d, err := store.Describe(context.Background(), key)
	require.NoError(t, err)
	return d
}

func TestProcessor_IndexesNewDocument(t *testing.T) {
	// Given a document in the store but not the index
	store := newCountingStore([]string{".txt"})
	store.Put("docs/report.txt", []byte("quarterly revenue report"), time.Now())
	idx := newTestIndex(t)
	p := newTestProcessor(t, store, idx)

	// When it is processed
	outcome := p.Process(context.Background(), mustDescribe(t, store, "docs/report.txt"))

	// Then it is fetched, extracted and indexed
	assert.Equal(t, StatusSuccess, outcome.Status)
	assert.Equal(t, "processed and indexed", outcome.Message)
	assert.Equal(t, 1, store.calls())

	rec, err := idx.Get(context.Background(), "docs/report.txt")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "report.txt", rec.FileName)
	assert.Equal(t, "quarterly revenue report", rec.Content)
	assert.NotEmpty(t, rec.Fingerprint)
	assert.NotEmpty(t, rec.URL)
}

func TestProcessor_UnchangedDocumentShortCircuits(t *testing.T) {
	// Given an already indexed, unchanged document
	store := newCountingStore([]string{".txt"})
	store.Put("a.txt", []byte("hello world"), time.Now())
	idx := newTestIndex(t)
	p := newTestProcessor(t, store, idx)
	d := mustDescribe(t, store, "a.txt")
	require.Equal(t, StatusSuccess, p.Process(context.Background(), d).Status)
	callsAfterFirst := store.calls()

	// When it is processed again
	outcome := p.Process(context.Background(), d)

	// Then the fingerprint guard skips the fetch entirely
	assert.Equal(t, StatusSuccess, outcome.Status)
	assert.Equal(t, "already indexed, unchanged", outcome.Message)
	assert.Equal(t, callsAfterFirst, store.calls())
}

func TestProcessor_ChangedContentIsReindexed(t *testing.T) {
	// Given an indexed document whose content has since changed
	store := newCountingStore([]string{".txt"})
	store.Put("a.txt", []byte("first draft"), time.Now())
	idx := newTestIndex(t)
	p := newTestProcessor(t, store, idx)
	p.Process(context.Background(), mustDescribe(t, store, "a.txt"))
	store.Put("a.txt", []byte("second draft"), time.Now())

	// When it is processed with the new fingerprint
	outcome := p.Process(context.Background(), mustDescribe(t, store, "a.txt"))

	// Then it is re-fetched and the record replaced, not duplicated
	assert.Equal(t, "processed and indexed", outcome.Message)
	assert.Equal(t, 2, store.calls())

	rec, err := idx.Get(context.Background(), "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "second draft", rec.Content)

	keys, err := idx.Keys(context.Background())
	require.NoError(t, err)
	assert.Len(t, keys, 1)
}

func TestProcessor_SizeBoundary(t *testing.T) {
	store := newCountingStore([]string{".txt"})
	store.Put("ok.txt", []byte("fits"), time.Now())
	idx := newTestIndex(t)
	p := newTestProcessor(t, store, idx)

	// A document exactly at the limit is processed.
	atLimit := mustDescribe(t, store, "ok.txt")
	atLimit.Size = 1024
	assert.Equal(t, StatusSuccess, p.Process(context.Background(), atLimit).Status)

	// One byte over is rejected before any fetch.
	callsBefore := store.calls()
	over := atLimit
	over.Key = "big.txt"
	over.Fingerprint = "other"
	over.Size = 1025
	outcome := p.Process(context.Background(), over)
	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Contains(t, outcome.Message, "too large")
	assert.Equal(t, callsBefore, store.calls())
}

func TestProcessor_MissingDocumentFails(t *testing.T) {
	store := newCountingStore([]string{".txt"})
	idx := newTestIndex(t)
	p := newTestProcessor(t, store, idx)

	outcome := p.Process(context.Background(), blob.Descriptor{
		Key: "gone.txt", Size: 10, Fingerprint: "fp",
	})

	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Equal(t, "not found in store", outcome.Message)
}

func TestProcessor_BinaryContentFails(t *testing.T) {
	// Given a file with no extractable text
	store := newCountingStore([]string{".txt", ".png"})
	store.Put("img.png", []byte{0x89, 0x50, 0x4e, 0x47, 0x00, 0x01}, time.Now())
	idx := newTestIndex(t)
	p := newTestProcessor(t, store, idx)

	// When it is processed
	outcome := p.Process(context.Background(), mustDescribe(t, store, "img.png"))

	// Then the failure is captured and nothing is indexed
	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Equal(t, "no extractable text", outcome.Message)

	rec, err := idx.Get(context.Background(), "img.png")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestProcessor_FetchErrorIsCaptured(t *testing.T) {
	store := newCountingStore([]string{".txt"})
	store.Put("a.txt", []byte("content"), time.Now())
	d := mustDescribe(t, store, "a.txt")
	store.fetchFailures.Store(true)
	idx := newTestIndex(t)
	p := newTestProcessor(t, store, idx)

	outcome := p.Process(context.Background(), d)

	assert.Equal(t, StatusFailed, outcome.Status)
	assert.Contains(t, outcome.Message, "fetch failed")
}
