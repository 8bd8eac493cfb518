package remote

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"secretlink/store"
)

// Objects talks to the backend's blob storage. Uploaded objects are
// served back at a stable public URL.
type Objects struct {
	baseURL string
	bucket  string
	client  *http.Client
}

// NewObjects creates a blob client for one bucket.
func NewObjects(baseURL, bucket string) (*Objects, error) {
	if bucket == "" {
		return nil, errors.New("bucket is required")
	}

	return &Objects{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		bucket:  bucket,
		client:  &http.Client{Timeout: 60 * time.Second},
	}, nil
}

// Upload stores the payload under the given object path.
func (o *Objects) Upload(ctx context.Context, path string, data []byte) error {
	if path == "" {
		return errors.New("object path is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		o.PublicURL(path), bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := o.client.Do(req)
	if err != nil {
		return fmt.Errorf("upload object %q: %w", path, err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("upload object %q: unexpected status %s", path, resp.Status)
	}

	return nil
}

// PublicURL returns where an uploaded object is served from.
func (o *Objects) PublicURL(path string) string {
	return o.baseURL + "/storage/" + o.bucket + "/" + path
}

var _ store.ObjectStore = (*Objects)(nil)
