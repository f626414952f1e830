package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// ArchiveService files export documents into blob storage
type ArchiveService struct {
	Driver StorageDriver
	now    func() time.Time
}

func NewArchiveService(driver StorageDriver) *ArchiveService {
	return &ArchiveService{Driver: driver, now: time.Now}
}

// Store saves data under a fresh key derived from name and returns its metadata
func (s *ArchiveService) Store(ctx context.Context, name string, data []byte, mime string) (*FileMetadata, error) {
	if mime == "" {
		mime = "application/octet-stream"
	}
	id := uuid.New()
	key := fmt.Sprintf("%s-%s", id.String(), filepath.Base(name))

	if err := s.Driver.Save(ctx, key, bytes.NewReader(data), mime); err != nil {
		return nil, fmt.Errorf("storage driver failed: %w", err)
	}

	url, err := s.Driver.GenerateURL(ctx, key, 0)
	if err != nil {
		if delErr := s.Driver.Delete(ctx, key); delErr != nil {
			slog.WarnContext(ctx, "failed to cleanup orphaned archive", "key", key, "error", delErr)
		}
		return nil, fmt.Errorf("failed to generate URL: %w", err)
	}

	metadata := &FileMetadata{
		ID:        id,
		Name:      name,
		Key:       key,
		URL:       url,
		Size:      int64(len(data)),
		MimeType:  mime,
		CreatedAt: s.now().UTC(),
	}

	slog.InfoContext(ctx, "archive stored", "id", id, "key", key, "size", metadata.Size)
	return metadata, nil
}

// Open retrieves an archived file and its MIME type
func (s *ArchiveService) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	return s.Driver.Get(ctx, key)
}
