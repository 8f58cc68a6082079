package blob

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemStore is an in-memory Store used by tests and local dry runs.
// Objects are mutable through Put and Remove; listings snapshot current
// state, matching the remote store's behavior.
type MemStore struct {
	mu      sync.RWMutex
	name    string
	objects map[string]memObject
	allowed map[string]struct{}
}

type memObject struct {
	data        []byte
	modifiedAt  time.Time
	fingerprint string
}

// NewMemStore creates an empty in-memory store with the given listing
// allow list.
func NewMemStore(name string, allowedExtensions []string) *MemStore {
	return &MemStore{
		name:    name,
		objects: make(map[string]memObject),
		allowed: allowedSet(allowedExtensions),
	}
}

// Put creates or overwrites an object. The fingerprint is derived from
// content, so rewriting identical bytes keeps the same fingerprint.
func (s *MemStore) Put(key string, data []byte, modifiedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := sha256.Sum256(data)
	s.objects[key] = memObject{
		data:        append([]byte(nil), data...),
		modifiedAt:  modifiedAt,
		fingerprint: hex.EncodeToString(sum[:16]),
	}
}

// Remove deletes an object from the store.
func (s *MemStore) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
}

// List returns descriptors for allow-listed objects, sorted by key.
func (s *MemStore) List(ctx context.Context) ([]Descriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var descriptors []Descriptor
	for key, obj := range s.objects {
		d := Descriptor{
			Key:         key,
			Size:        int64(len(obj.data)),
			ModifiedAt:  obj.modifiedAt,
			Fingerprint: obj.fingerprint,
		}
		if _, ok := s.allowed[d.Extension()]; !ok {
			continue
		}
		descriptors = append(descriptors, d)
	}
	sort.Slice(descriptors, func(i, j int) bool {
		return descriptors[i].Key < descriptors[j].Key
	})
	return descriptors, nil
}

// Fetch returns a copy of the object content.
func (s *MemStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return append([]byte(nil), obj.data...), nil
}

// Exists reports whether the key is present.
func (s *MemStore) Exists(ctx context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok, nil
}

// Describe returns a fresh descriptor for a single key.
func (s *MemStore) Describe(ctx context.Context, key string) (Descriptor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return Descriptor{
		Key:         key,
		Size:        int64(len(obj.data)),
		ModifiedAt:  obj.modifiedAt,
		Fingerprint: obj.fingerprint,
	}, nil
}

// URLFor returns a deterministic pseudo-URL for the key.
func (s *MemStore) URLFor(ctx context.Context, key string, ttl time.Duration) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.objects[key]; !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return fmt.Sprintf("memory://%s/%s", s.name, strings.TrimPrefix(key, "/")), nil
}

// Info returns object count and total size across all objects.
func (s *MemStore) Info(ctx context.Context) (*BucketInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info := &BucketInfo{Name: s.name}
	for _, obj := range s.objects {
		info.ObjectCount++
		info.TotalSize += int64(len(obj.data))
	}
	return info, nil
}

var _ Store = (*MemStore)(nil)
