// Package blob provides access to the remote document store.
//
// The store is the source of truth for document content. This layer only
// reads: listings, content fetches, and time-limited access URLs. It never
// deletes source documents.
package blob

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"
)

// ErrNotFound is returned by Fetch and Describe when the key is absent.
var ErrNotFound = errors.New("blob: object not found")

// Descriptor is an immutable metadata snapshot of one stored document,
// produced fresh by each listing call.
type Descriptor struct {
	// Key is the unique store-relative path of the document.
	Key string

	// Size is the document size in bytes.
	Size int64

	// ModifiedAt is the store's last-modification timestamp.
	ModifiedAt time.Time

	// Fingerprint is an opaque strong content-version token. Two listings
	// of unchanged content return the same fingerprint.
	Fingerprint string
}

// FileName returns the last path element of the key.
func (d Descriptor) FileName() string {
	return path.Base(d.Key)
}

// Extension returns the lower-cased file extension including the dot,
// or empty when the key has none.
func (d Descriptor) Extension() string {
	return strings.ToLower(path.Ext(d.Key))
}

// BucketInfo is a snapshot of store-wide statistics.
type BucketInfo struct {
	Name        string
	ObjectCount int
	TotalSize   int64
}

// Store is the document descriptor source and content fetcher.
//
// List returns descriptors filtered to the allow-listed file-type
// suffixes. Fetch returns ErrNotFound (possibly wrapped) when the key is
// absent. URLFor generates a best-effort, time-limited access URL.
type Store interface {
	List(ctx context.Context) ([]Descriptor, error)
	Fetch(ctx context.Context, key string) ([]byte, error)
	Exists(ctx context.Context, key string) (bool, error)
	Describe(ctx context.Context, key string) (Descriptor, error)
	URLFor(ctx context.Context, key string, ttl time.Duration) (string, error)
	Info(ctx context.Context) (*BucketInfo, error)
}

// allowedSet builds a lookup set of lower-cased extensions.
func allowedSet(exts []string) map[string]struct{} {
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		set[strings.ToLower(ext)] = struct{}{}
	}
	return set
}
