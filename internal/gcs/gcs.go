// Package gcs fetches documents from Google Cloud Storage.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"

	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/domain"
	"github.com/mariamalualmeida/FinanceAI-3.0-sub001/internal/logger"
)

// MaxObjectSize caps how much of an object Fetch reads.
const MaxObjectSize = 50 << 20

// ErrInvalidURI is returned for anything that is not gs://bucket/object.
var ErrInvalidURI = errors.New("invalid GCS URI")

// ErrTooLarge is returned when an object exceeds MaxObjectSize.
var ErrTooLarge = errors.New("object exceeds size limit")

// Fetcher loads a document from a storage URI.
type Fetcher interface {
	Fetch(ctx context.Context, uri string) (domain.Document, error)
}

// Client is a Fetcher backed by a shared storage client. It assumes Application
// Default Credentials are configured.
type Client struct {
	client *storage.Client
}

// NewClient creates the storage client.
func NewClient(ctx context.Context) (*Client, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("NewClient: create storage client: %w", err)
	}
	return &Client{client: client}, nil
}

// Close closes the storage client.
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Fetch downloads the object at uri. The MIME type comes from the object metadata.
func (c *Client) Fetch(ctx context.Context, uri string) (domain.Document, error) {
	bucket, object, err := ParseURI(uri)
	if err != nil {
		return domain.Document{}, err
	}

	rc, err := c.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return domain.Document{}, fmt.Errorf("Fetch: reading object %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, MaxObjectSize+1))
	if err != nil {
		return domain.Document{}, fmt.Errorf("Fetch: reading bytes: %w", err)
	}
	if len(data) > MaxObjectSize {
		return domain.Document{}, fmt.Errorf("Fetch: %s: %w", uri, ErrTooLarge)
	}

	log := logger.FromContext(ctx)
	log.Debug().
		Str("gcs_uri", uri).
		Int("bytes", len(data)).
		Msg("Fetched document from GCS")

	return domain.Document{
		FileBytes: data,
		FileName:  FileName(uri),
		MIMEType:  rc.Attrs.ContentType,
	}, nil
}

// ParseURI splits "gs://bucket/path/to/file.pdf" into bucket and object path.
func ParseURI(uri string) (bucket, object string, err error) {
	if !strings.HasPrefix(uri, "gs://") {
		return "", "", fmt.Errorf("ParseURI: %w: %s", ErrInvalidURI, uri)
	}

	trimmed := strings.TrimPrefix(uri, "gs://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("ParseURI: %w (no object path): %s", ErrInvalidURI, uri)
	}
	return parts[0], parts[1], nil
}

// IsURI reports whether s looks like a gs:// URI.
func IsURI(s string) bool {
	return strings.HasPrefix(s, "gs://")
}

// FileName extracts the filename from a GCS URI.
// e.g., "gs://bucket/folder/file.pdf" → "file.pdf"
func FileName(uri string) string {
	trimmed := strings.TrimPrefix(uri, "gs://")

	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) < 2 {
		return trimmed
	}
	return path.Base(parts[1])
}
