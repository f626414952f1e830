package archive

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/twl-tooling/quotedesk/internal/archive/drivers"
	"github.com/twl-tooling/quotedesk/internal/config"
)

// Purpose names what a driver holds. Exports are handed out as download links;
// the record slot never is.
type Purpose string

const (
	PurposeExports Purpose = "exports"
	PurposeRecords Purpose = "records"
)

// OpenDriver builds the driver for purpose on the given backend ("local" or
// "s3"), reading locations from cfg. On local disk each purpose gets its own
// directory under STORAGE_LOCAL_BASE_DIR. On S3 both share the bucket, where
// slot objects ("<SLOT_KEY>.json") and export objects
// ("twl_quotes_export_<date>.json") cannot collide.
func OpenDriver(ctx context.Context, backend string, cfg config.StorageConfig, purpose Purpose) (StorageDriver, error) {
	publicURL := func(u string) string {
		if purpose == PurposeRecords {
			return ""
		}
		return u
	}

	switch backend {
	case "local":
		if cfg.LocalBaseDir == "" {
			return nil, fmt.Errorf("%s storage: STORAGE_LOCAL_BASE_DIR is empty", purpose)
		}
		dir := filepath.Join(cfg.LocalBaseDir, string(purpose))
		slog.InfoContext(ctx, "opening local storage", "purpose", purpose, "dir", dir)
		driver, err := drivers.NewLocalFSDriver(dir, publicURL(cfg.LocalPublicURL))
		if err != nil {
			return nil, fmt.Errorf("%s storage: %w", purpose, err)
		}
		return driver, nil
	case "s3":
		slog.InfoContext(ctx, "opening S3 storage", "purpose", purpose, "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
		driver, err := drivers.DialS3(ctx, drivers.S3Options{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
			PublicURL: publicURL(cfg.S3PublicURL),
		})
		if err != nil {
			return nil, fmt.Errorf("%s storage: %w", purpose, err)
		}
		return driver, nil
	}
	return nil, fmt.Errorf("%s storage: unsupported type %q", purpose, backend)
}
