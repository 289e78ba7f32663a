// Package archive stores raw Gmail message payloads in a GCS bucket so the
// original notification can be re-examined after parsing.
package archive

import (
	"context"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/storage"

	"mutasiku/internal/pipeline"
)

const uploadTimeout = 2 * time.Minute

// Archive writes raw message payloads under mail/<message_id>.json in the
// configured bucket. It assumes Application Default Credentials are
// configured (gcloud auth application-default login).
type Archive struct {
	client *storage.Client
	bucket string
}

var _ pipeline.Archiver = (*Archive)(nil)

// New creates an archive over its own storage client.
func New(ctx context.Context, bucket string) (*Archive, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("archive.New: storage client: %w", err)
	}
	return &Archive{client: client, bucket: bucket}, nil
}

// Close releases the storage client.
func (a *Archive) Close() error {
	if a.client != nil {
		return a.client.Close()
	}
	return nil
}

// ObjectName returns the bucket path for a message id.
func ObjectName(messageID string) string {
	return "mail/" + messageID + ".json"
}

// Archive uploads one raw message payload. Re-archiving the same message id
// overwrites the previous object; the payload is identical anyway.
func (a *Archive) Archive(ctx context.Context, messageID string, raw []byte) error {
	if messageID == "" {
		return fmt.Errorf("Archive: empty message id")
	}

	ctx, cancel := context.WithTimeout(ctx, uploadTimeout)
	defer cancel()

	obj := a.client.Bucket(a.bucket).Object(ObjectName(messageID))
	w := obj.NewWriter(ctx)
	w.ContentType = "application/json"

	if _, err := w.Write(raw); err != nil {
		_ = w.Close()
		return fmt.Errorf("Archive: write object: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("Archive: finalize upload: %w", err)
	}
	return nil
}

// Fetch downloads a previously archived payload by message id.
func (a *Archive) Fetch(ctx context.Context, messageID string) ([]byte, error) {
	rc, err := a.client.Bucket(a.bucket).Object(ObjectName(messageID)).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading %s: %w", ObjectName(messageID), err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("Fetch: reading bytes: %w", err)
	}
	return data, nil
}
