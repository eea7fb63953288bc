package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSConfig configures a Google Cloud Storage snapshot backend.
type GCSConfig struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	// CredentialsFile is a service account key; empty uses application
	// default credentials.
	CredentialsFile string `yaml:"credentials_file"`
}

// GCSBackend keeps snapshots as objects in one existing bucket.
type GCSBackend struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSBackend validates cfg and builds the storage client.
func NewGCSBackend(ctx context.Context, cfg GCSConfig) (*GCSBackend, error) {
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, errors.New("gcs bucket is required")
	}
	var opts []option.ClientOption
	if key := strings.TrimSpace(cfg.CredentialsFile); key != "" {
		if st, err := os.Stat(key); err != nil || st.IsDir() {
			return nil, fmt.Errorf("service account key not found at path: %s", key)
		}
		opts = append(opts, option.WithCredentialsFile(key))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS storage client: %w", err)
	}
	return &GCSBackend{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(strings.TrimSpace(cfg.Prefix), "/"),
	}, nil
}

// Close releases the storage client.
func (b *GCSBackend) Close() error {
	return b.client.Close()
}

func (b *GCSBackend) object(key string) *storage.ObjectHandle {
	key = strings.TrimLeft(key, "/")
	if b.prefix != "" {
		key = b.prefix + "/" + key
	}
	return b.client.Bucket(b.bucket).Object(key)
}

// Get reads the object for key, mapping a missing object to ErrNotFound.
func (b *GCSBackend) Get(ctx context.Context, key string) ([]byte, error) {
	r, err := b.object(key).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Put uploads data; the object only becomes visible once the writer closes.
func (b *GCSBackend) Put(ctx context.Context, key string, data []byte) error {
	w := b.object(key).NewWriter(ctx)
	w.ContentType = "application/json"
	w.CacheControl = "no-cache, no-store, must-revalidate"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("write gcs object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close gcs writer for %s: %w", key, err)
	}
	return nil
}
