package archive

import (
	"context"
	"io"
	"time"

	"github.com/twl-tooling/quotedesk/internal/archive/drivers"
)

// ErrNotFound is returned when no object exists under a key
var ErrNotFound = drivers.ErrObjectNotFound

// StorageDriver defines how we interact with the blob storage
type StorageDriver interface {
	// Save writes the content under key, replacing any previous object
	Save(ctx context.Context, key string, body io.Reader, contentType string) error

	// Get returns a ReadCloser to stream the object back and its content type.
	// A missing key yields an error matching ErrNotFound.
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)

	// Delete removes the object; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// GenerateURL returns a link the object can be fetched from
	GenerateURL(ctx context.Context, key string, expires time.Duration) (string, error)
}
