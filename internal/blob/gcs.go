package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"google.golang.org/api/iterator"
)

// GCSOptions configures the GCS-backed store.
type GCSOptions struct {
	// Bucket is the bucket name. Required.
	Bucket string

	// Prefix restricts listings to keys under this prefix.
	Prefix string

	// AllowedExtensions is the listing allow list (".txt", ".pdf", ...).
	AllowedExtensions []string

	// URLTTL is the lifetime of signed URLs (default: 1h).
	URLTTL time.Duration

	// URLCacheSize caps the signed-URL cache (default: 1024 entries).
	URLCacheSize int
}

// GCSStore implements Store on Google Cloud Storage.
type GCSStore struct {
	client  *storage.Client
	bucket  string
	prefix  string
	allowed map[string]struct{}
	urlTTL  time.Duration

	// Signed URLs are cached for half their lifetime so a cached URL
	// always has remaining validity when handed out.
	urlCache *expirable.LRU[string, string]
}

// NewGCSStore creates a GCS-backed store and verifies bucket access.
func NewGCSStore(ctx context.Context, opts GCSOptions) (*GCSStore, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	if opts.URLTTL <= 0 {
		opts.URLTTL = time.Hour
	}
	if opts.URLCacheSize <= 0 {
		opts.URLCacheSize = 1024
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	if _, err := client.Bucket(opts.Bucket).Attrs(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to access bucket %s: %w", opts.Bucket, err)
	}

	s := &GCSStore{
		client:   client,
		bucket:   opts.Bucket,
		prefix:   opts.Prefix,
		allowed:  allowedSet(opts.AllowedExtensions),
		urlTTL:   opts.URLTTL,
		urlCache: expirable.NewLRU[string, string](opts.URLCacheSize, nil, opts.URLTTL/2),
	}

	slog.Info("gcs store initialized",
		slog.String("bucket", opts.Bucket),
		slog.String("prefix", opts.Prefix))
	return s, nil
}

// List enumerates the bucket and returns descriptors for allow-listed
// documents. Directory placeholder objects are skipped.
func (s *GCSStore) List(ctx context.Context) ([]Descriptor, error) {
	var descriptors []Descriptor

	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: s.prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list bucket %s: %w", s.bucket, err)
		}
		if strings.HasSuffix(attrs.Name, "/") {
			continue
		}

		d := Descriptor{
			Key:         attrs.Name,
			Size:        attrs.Size,
			ModifiedAt:  attrs.Updated,
			Fingerprint: strings.Trim(attrs.Etag, `"`),
		}
		if _, ok := s.allowed[d.Extension()]; !ok {
			continue
		}
		descriptors = append(descriptors, d)
	}

	slog.Debug("listed store documents",
		slog.String("bucket", s.bucket),
		slog.Int("count", len(descriptors)))
	return descriptors, nil
}

// Fetch downloads the full object content.
func (s *GCSStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	r, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to open object %s: %w", key, err)
	}
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	return data, nil
}

// Exists reports whether the key is present in the bucket.
func (s *GCSStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.Bucket(s.bucket).Object(key).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to stat object %s: %w", key, err)
	}
	return true, nil
}

// Describe returns a fresh descriptor for a single key.
func (s *GCSStore) Describe(ctx context.Context, key string) (Descriptor, error) {
	attrs, err := s.client.Bucket(s.bucket).Object(key).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return Descriptor{}, fmt.Errorf("failed to stat object %s: %w", key, err)
	}
	return Descriptor{
		Key:         attrs.Name,
		Size:        attrs.Size,
		ModifiedAt:  attrs.Updated,
		Fingerprint: strings.Trim(attrs.Etag, `"`),
	}, nil
}

// URLFor returns a signed GET URL for the key. URLs are cached per key
// until half of their lifetime has elapsed.
func (s *GCSStore) URLFor(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.urlTTL
	}

	if url, ok := s.urlCache.Get(key); ok {
		return url, nil
	}

	url, err := s.client.Bucket(s.bucket).SignedURL(key, &storage.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(ttl),
		Scheme:  storage.SigningSchemeV4,
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign URL for %s: %w", key, err)
	}

	s.urlCache.Add(key, url)
	return url, nil
}

// Info iterates the bucket and returns object count and total size.
// Unlike List, this counts every object, not only allow-listed ones.
func (s *GCSStore) Info(ctx context.Context) (*BucketInfo, error) {
	info := &BucketInfo{Name: s.bucket}

	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: s.prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list bucket %s: %w", s.bucket, err)
		}
		info.ObjectCount++
		info.TotalSize += attrs.Size
	}
	return info, nil
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

var _ Store = (*GCSStore)(nil)
