// Package storage resolves artifact locations to blob stores. A location is
// a filesystem path, a gs://bucket/object URI, or a memory://object URI that
// lives only for the process (dry runs).
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	gcsapi "cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/JakeFAU/filmcast/internal/storage/gcs"
	"github.com/JakeFAU/filmcast/internal/storage/local"
	"github.com/JakeFAU/filmcast/internal/storage/memory"
)

const (
	gcsScheme    = "gs://"
	memoryScheme = "memory://"
)

// Store reads and writes blobs addressed by a path within the store.
type Store interface {
	PutObject(ctx context.Context, path string, contentType string, r io.Reader) (string, error)
	GetObject(ctx context.Context, path string) (io.ReadCloser, error)
}

// Location is a parsed artifact destination. Bucket is empty for the local
// filesystem, in which case Dir is the base directory.
type Location struct {
	Bucket string
	Dir    string
	Object string
	Memory bool
}

// ParseLocation splits raw into a store root and an object path.
func ParseLocation(raw string) (Location, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Location{}, errors.New("location is empty")
	}
	if strings.HasPrefix(raw, gcsScheme) {
		bucket, object, ok := strings.Cut(strings.TrimPrefix(raw, gcsScheme), "/")
		if !ok || bucket == "" || strings.TrimSpace(object) == "" {
			return Location{}, fmt.Errorf("location %q must be gs://bucket/object", raw)
		}
		return Location{Bucket: bucket, Object: object}, nil
	}
	if strings.HasPrefix(raw, memoryScheme) {
		object := strings.TrimPrefix(raw, memoryScheme)
		if strings.TrimSpace(object) == "" || strings.HasSuffix(object, "/") {
			return Location{}, fmt.Errorf("location %q must be memory://object", raw)
		}
		return Location{Object: object, Memory: true}, nil
	}
	if strings.HasSuffix(raw, "/") || strings.HasSuffix(raw, string(filepath.Separator)) {
		return Location{}, fmt.Errorf("location %q names a directory", raw)
	}
	return Location{Dir: filepath.Dir(raw), Object: filepath.Base(raw)}, nil
}

// Resolver opens stores for locations. The GCS client is created on first use
// and shared afterwards. memory:// locations share one in-process store.
type Resolver struct {
	gcsOptions []option.ClientOption
	mem        *memory.BlobStore

	mu     sync.Mutex
	client *gcsapi.Client
}

// NewResolver builds a Resolver. opts are passed to the GCS client.
func NewResolver(opts ...option.ClientOption) *Resolver {
	return &Resolver{gcsOptions: opts, mem: memory.NewBlobStore()}
}

// Open returns the store holding loc.
func (r *Resolver) Open(ctx context.Context, loc Location) (Store, error) {
	if loc.Memory {
		return r.mem, nil
	}
	if loc.Bucket == "" {
		store, err := local.New(local.Config{BaseDir: loc.Dir})
		if err != nil {
			return nil, fmt.Errorf("open local store: %w", err)
		}
		return store, nil
	}
	client, err := r.gcsClient(ctx)
	if err != nil {
		return nil, err
	}
	store, err := gcs.New(client, gcs.Config{Bucket: loc.Bucket})
	if err != nil {
		return nil, fmt.Errorf("open gcs store: %w", err)
	}
	return store, nil
}

// Write stores data at the raw location and returns its URI.
func (r *Resolver) Write(ctx context.Context, raw, contentType string, data []byte) (string, error) {
	loc, err := ParseLocation(raw)
	if err != nil {
		return "", err
	}
	store, err := r.Open(ctx, loc)
	if err != nil {
		return "", err
	}
	uri, err := store.PutObject(ctx, loc.Object, contentType, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("write %s: %w", raw, err)
	}
	return uri, nil
}

// Read returns the content stored at the raw location.
func (r *Resolver) Read(ctx context.Context, raw string) ([]byte, error) {
	loc, err := ParseLocation(raw)
	if err != nil {
		return nil, err
	}
	store, err := r.Open(ctx, loc)
	if err != nil {
		return nil, err
	}
	rc, err := store.GetObject(ctx, loc.Object)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", raw, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", raw, err)
	}
	return data, nil
}

// Close releases the GCS client if one was created.
func (r *Resolver) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	if err != nil {
		return fmt.Errorf("close gcs client: %w", err)
	}
	return nil
}

func (r *Resolver) gcsClient(ctx context.Context) (*gcsapi.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client != nil {
		return r.client, nil
	}
	client, err := gcsapi.NewClient(ctx, r.gcsOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	r.client = client
	return client, nil
}
