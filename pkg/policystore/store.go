// Package policystore fetches tenant policy documents from object storage.
package policystore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned by Fetch when no document exists under key.
var ErrNotFound = errors.New("policy document not found")

// DefaultPrefix is the key prefix tenant documents live under.
const DefaultPrefix = "secrets"

// PolicyFile is the document name inside a tenant's prefix.
const PolicyFile = "secretPolicies.json"

// Store is an opaque key/value fetch.
type Store interface {
	// Fetch returns the document stored under key, or ErrNotFound.
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// Kind selects a Store implementation.
type Kind string

const (
	KindNone   Kind = "none"
	KindS3     Kind = "s3"
	KindAzure  Kind = "azblob"
	KindHTTP   Kind = "http"
	KindFile   Kind = "file"
	KindMemory Kind = "memory"
)

// Kinds lists the kinds New accepts.
var Kinds = []Kind{KindNone, KindS3, KindAzure, KindHTTP, KindFile}

// ParseKind validates a store kind name. Empty means KindNone.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if k == "" {
		return KindNone, nil
	}
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown policy store %q", s)
}

// Config selects and configures a Store.
type Config struct {
	Kind     Kind
	Bucket   string        // S3 bucket or Azure container
	Region   string        // S3 region
	Endpoint string        // S3-compatible endpoint override
	URL      string        // HTTP base URL, or Azure service URL with SAS
	Root     string        // file store root directory
	Timeout  time.Duration // per-fetch bound
}

// PolicyKey builds the deterministic document key for tenant.
func PolicyKey(prefix, tenant string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return path.Join(strings.Trim(prefix, "/"), tenant, PolicyFile)
}

// New creates the Store selected by cfg. KindNone yields a nil Store and no
// error; callers treat it as "no remote policies".
func New(ctx context.Context, cfg Config) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.Kind {
	case "", KindNone:
		return nil, nil
	case KindS3:
		s, err = NewS3Store(ctx, cfg.Bucket, cfg.Region, cfg.Endpoint)
	case KindAzure:
		s, err = NewAzureBlobStore(cfg.URL, cfg.Bucket)
	case KindHTTP:
		s, err = NewHTTPStore(cfg.URL, cfg.Timeout)
	case KindFile:
		s, err = NewFileStore(cfg.Root)
	case KindMemory:
		s = NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown policy store %q", cfg.Kind)
	}
	if err != nil {
		return nil, err
	}
	if cfg.Timeout > 0 {
		s = WithTimeout(s, cfg.Timeout)
	}
	return s, nil
}

type timeoutStore struct {
	next    Store
	timeout time.Duration
}

// WithTimeout bounds every Fetch on s by d.
func WithTimeout(s Store, d time.Duration) Store {
	return &timeoutStore{next: s, timeout: d}
}

func (t *timeoutStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Fetch(ctx, key)
}

// MemoryStore is an in-process Store for tests and embedding.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string][]byte)}
}

// Put stores data under key.
func (m *MemoryStore) Put(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key] = append([]byte(nil), data...)
}

// Fetch implements Store.
func (m *MemoryStore) Fetch(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.docs[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return append([]byte(nil), data...), nil
}
