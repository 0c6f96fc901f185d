package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
)

var (
	ErrInvalidGCSUri  = errors.New("invalid gcs uri")
	ErrObjectTooLarge = errors.New("gcs object exceeds size limit")
)

// ParseGCSUri splits "gs://bucket/path/to/object" into bucket and object.
func ParseGCSUri(uri string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(uri), "gs://")
	if !ok {
		return "", "", fmt.Errorf("%w: %q must start with gs://", ErrInvalidGCSUri, uri)
	}
	bucket, object, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("%w: %q must name a bucket and an object", ErrInvalidGCSUri, uri)
	}
	return bucket, object, nil
}

// GCSObject is a downloaded object and the content type it was stored with.
type GCSObject struct {
	Name        string
	ContentType string
	Data        []byte
}

// ReadGCSObject downloads at most maxBytes of the object at uri. Objects
// larger than maxBytes are rejected rather than truncated.
func ReadGCSObject(ctx context.Context, client *storage.Client, uri string, maxBytes int64) (*GCSObject, error) {
	bucket, object, err := ParseGCSUri(uri)
	if err != nil {
		return nil, err
	}
	reader, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get GCS object reader for gs://%s/%s: %w", bucket, object, err)
	}
	defer reader.Close()

	if maxBytes > 0 && reader.Attrs.Size > maxBytes {
		return nil, fmt.Errorf("%w: gs://%s/%s is %d bytes, limit is %d", ErrObjectTooLarge, bucket, object, reader.Attrs.Size, maxBytes)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read GCS object gs://%s/%s: %w", bucket, object, err)
	}
	return &GCSObject{
		Name:        object,
		ContentType: reader.Attrs.ContentType,
		Data:        data,
	}, nil
}

// GCSReader reads documents referenced by gs:// URIs.
type GCSReader struct {
	Client *storage.Client
}

func (r GCSReader) Read(ctx context.Context, uri string, maxBytes int64) (*GCSObject, error) {
	return ReadGCSObject(ctx, r.Client, uri, maxBytes)
}
