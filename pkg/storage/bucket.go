// Package storage uploads user images (avatars, store pictures) to a Google
// Cloud Storage bucket and resolves their public URLs.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type Config struct {
	Bucket string
	// PublicBaseURL overrides https://storage.googleapis.com (CDN or emulator).
	PublicBaseURL string
	// EmulatorHost points the client at a fake-gcs-server; auth is disabled.
	EmulatorHost    string
	CredentialsFile string
}

type BucketStorage struct {
	client        *storage.Client
	bucket        string
	publicBaseURL string
}

func NewBucketStorage(ctx context.Context, cfg Config) (*BucketStorage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}

	var opts []option.ClientOption
	switch {
	case cfg.EmulatorHost != "":
		opts = append(opts,
			option.WithoutAuthentication(),
			option.WithEndpoint(strings.TrimRight(cfg.EmulatorHost, "/")+"/storage/v1/"),
		)
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &BucketStorage{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

// Upload writes r to key, replacing any existing object, and returns the
// object's public URL.
func (b *BucketStorage) Upload(ctx context.Context, key string, r io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := b.client.Bucket(b.bucket).Object(key).NewWriter(ctx)
	w.ContentType = ContentTypeForKey(key)
	w.CacheControl = "public, max-age=300"
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close writer for %s: %w", key, err)
	}

	return b.PublicURL(key), nil
}

func (b *BucketStorage) Delete(ctx context.Context, key string) error {
	return b.client.Bucket(b.bucket).Object(key).Delete(ctx)
}

func (b *BucketStorage) PublicURL(key string) string {
	return PublicURL(b.publicBaseURL, b.bucket, key)
}

func (b *BucketStorage) Close() error {
	return b.client.Close()
}

// PublicURL builds the URL under which key is served from bucket.
func PublicURL(baseURL, bucket, key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if baseURL == "" {
		baseURL = "https://storage.googleapis.com"
	}
	return fmt.Sprintf("%s/%s/%s", baseURL, bucket, key)
}

// ContentTypeForKey guesses the image content type from the key extension,
// defaulting to image/jpeg.
func ContentTypeForKey(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	case ".heic":
		return "image/heic"
	default:
		return "image/jpeg"
	}
}

// Extension returns the lowercase extension of filename without the dot,
// or "jpg" when there is none.
func Extension(filename string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(filename)), ".")
	if ext == "" {
		return "jpg"
	}
	return ext
}
