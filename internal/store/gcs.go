package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// GCSBlobStore adapts a Cloud Storage bucket to the BlobStore contract.
type GCSBlobStore struct {
	client *storage.Client
	bucket string
}

var _ BlobStore = (*GCSBlobStore)(nil)

func NewGCSBlobStore(client *storage.Client, bucket string) *GCSBlobStore {
	return &GCSBlobStore{client: client, bucket: bucket}
}

// Put writes the content to the bucket, retrying transient failures with
// exponential backoff. The content is buffered up front so every attempt
// writes the same bytes.
func (b *GCSBlobStore) Put(ctx context.Context, path string, content io.Reader, contentType string) error {
	data, err := io.ReadAll(content)
	if err != nil {
		return fmt.Errorf("read blob content for %s: %w", path, err)
	}

	const maxRetries = 4
	backoff := 1 * time.Second
	var lastErr error

	for i := 0; i < maxRetries; i++ {
		err := func() error {
			writeCtx, cancel := context.WithTimeout(ctx, 50*time.Second)
			defer cancel()

			w := b.client.Bucket(b.bucket).Object(path).NewWriter(writeCtx)
			w.ContentType = contentType
			if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
				_ = w.Close()
				return fmt.Errorf("io.Copy to GCS failed: %w", err)
			}
			if err := w.Close(); err != nil {
				return fmt.Errorf("failed to close GCS writer (finalize upload): %w", err)
			}
			return nil
		}()

		if err == nil {
			return nil
		}

		lastErr = err
		slog.Warn("Blob upload failed, will retry.",
			"gcsObject", path,
			"attempt", i+1,
			"maxRetries", maxRetries,
			"backoff", backoff.String(),
			"error", err,
		)

		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("upload for %s failed after all retries: %w", path, lastErr)
}

// PublicURL returns the canonical public address of an object. It does not
// verify existence; the caller obtains it right after a successful Put.
func (b *GCSBlobStore) PublicURL(path string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", b.bucket, path)
}

func (b *GCSBlobStore) Remove(ctx context.Context, path string) error {
	err := b.client.Bucket(b.bucket).Object(path).Delete(ctx)
	if err == nil {
		return nil
	}
	if errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete gs://%s/%s: %w", b.bucket, path, ErrNotFound)
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == 404 {
		return fmt.Errorf("delete gs://%s/%s: %w", b.bucket, path, ErrNotFound)
	}
	return fmt.Errorf("delete gs://%s/%s: %w", b.bucket, path, err)
}
