package blob

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() *MemStore {
	return NewMemStore("test-bucket", []string{".txt", ".csv", ".pdf"})
}

func TestDescriptor_FileNameAndExtension(t *testing.T) {
	d := Descriptor{Key: "reports/2026/Q2-Summary.PDF"}
	assert.Equal(t, "Q2-Summary.PDF", d.FileName())
	assert.Equal(t, ".pdf", d.Extension())

	noExt := Descriptor{Key: "reports/README"}
	assert.Equal(t, "README", noExt.FileName())
	assert.Equal(t, "", noExt.Extension())
}

func TestMemStore_ListFiltersByExtension(t *testing.T) {
	s := newTestStore()
	now := time.Now()
	s.Put("a.txt", []byte("alpha"), now)
	s.Put("b.csv", []byte("1,2"), now)
	s.Put("ignore.exe", []byte{0x4d, 0x5a}, now)

	descs, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, descs, 2)
	assert.Equal(t, "a.txt", descs[0].Key)
	assert.Equal(t, "b.csv", descs[1].Key)
}

func TestMemStore_FingerprintTracksContent(t *testing.T) {
	s := newTestStore()
	s.Put("a.txt", []byte("alpha"), time.Now())

	d1, err := s.Describe(context.Background(), "a.txt")
	require.NoError(t, err)

	// Same bytes, same fingerprint.
	s.Put("a.txt", []byte("alpha"), time.Now())
	d2, err := s.Describe(context.Background(), "a.txt")
	require.NoError(t, err)
	assert.Equal(t, d1.Fingerprint, d2.Fingerprint)

	// Changed bytes, changed fingerprint.
	s.Put("a.txt", []byte("beta"), time.Now())
	d3, err := s.Describe(context.Background(), "a.txt")
	require.NoError(t, err)
	assert.NotEqual(t, d1.Fingerprint, d3.Fingerprint)
}

func TestMemStore_FetchMissingReturnsNotFound(t *testing.T) {
	s := newTestStore()
	_, err := s.Fetch(context.Background(), "absent.txt")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStore_FetchReturnsCopy(t *testing.T) {
	s := newTestStore()
	s.Put("a.txt", []byte("alpha"), time.Now())

	data, err := s.Fetch(context.Background(), "a.txt")
	require.NoError(t, err)
	data[0] = 'X'

	again, err := s.Fetch(context.Background(), "a.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("alpha"), again)
}

func TestMemStore_URLFor(t *testing.T) {
	s := newTestStore()
	s.Put("docs/a.txt", []byte("alpha"), time.Now())

	url, err := s.URLFor(context.Background(), "docs/a.txt", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "memory://test-bucket/docs/a.txt", url)

	_, err = s.URLFor(context.Background(), "absent.txt", time.Hour)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemStore_InfoCountsAllObjects(t *testing.T) {
	s := newTestStore()
	s.Put("a.txt", []byte("alpha"), time.Now())
	s.Put("ignore.exe", []byte("12345678"), time.Now())

	info, err := s.Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test-bucket", info.Name)
	assert.Equal(t, 2, info.ObjectCount)
	assert.Equal(t, int64(13), info.TotalSize)
}

func TestMemStore_RemoveThenExists(t *testing.T) {
	s := newTestStore()
	s.Put("a.txt", []byte("alpha"), time.Now())

	ok, err := s.Exists(context.Background(), "a.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	s.Remove("a.txt")
	ok, err = s.Exists(context.Background(), "a.txt")
	require.NoError(t, err)
	assert.False(t, ok)
}
