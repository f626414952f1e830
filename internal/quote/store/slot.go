package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/twl-tooling/quotedesk/internal/archive"
)

// Slot is a single named persistent value holding the serialized record collection.
type Slot interface {
	// Read returns the slot content; ok is false when the slot is absent.
	Read(ctx context.Context) (data []byte, ok bool, err error)
	// Write replaces the slot content in one write.
	Write(ctx context.Context, data []byte) error
	// Remove deletes the slot; removing an absent slot is not an error.
	Remove(ctx context.Context) error
}

// MemorySlot keeps the slot in process memory
type MemorySlot struct {
	mu    sync.Mutex
	data  []byte
	found bool
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

func (s *MemorySlot) Read(ctx context.Context) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.found {
		return nil, false, nil
	}
	return bytes.Clone(s.data), true, nil
}

func (s *MemorySlot) Write(ctx context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = bytes.Clone(data)
	s.found = true
	return nil
}

func (s *MemorySlot) Remove(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	s.found = false
	return nil
}

// SlotRecord is a row of the record_slots table
type SlotRecord struct {
	Key       string    `gorm:"type:varchar(100);column:slot_key;primaryKey"`
	Value     string    `gorm:"type:text;column:value;not null"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName returns the table name for SlotRecord
func (SlotRecord) TableName() string {
	return "record_slots"
}

// GormSlot stores the slot as one row in a relational database (postgres or sqlite)
type GormSlot struct {
	db  *gorm.DB
	key string
}

// NewGormSlot migrates the slot table and returns a slot bound to key
func NewGormSlot(db *gorm.DB, key string) (*GormSlot, error) {
	if key == "" {
		return nil, fmt.Errorf("slot key cannot be empty")
	}
	if err := db.AutoMigrate(&SlotRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate slot table: %w", err)
	}
	return &GormSlot{db: db, key: key}, nil
}

func (s *GormSlot) Read(ctx context.Context) ([]byte, bool, error) {
	var rec SlotRecord
	err := s.db.WithContext(ctx).Where("slot_key = ?", s.key).Take(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read slot %s: %w", s.key, err)
	}
	return []byte(rec.Value), true, nil
}

func (s *GormSlot) Write(ctx context.Context, data []byte) error {
	rec := SlotRecord{Key: s.key, Value: string(data)}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slot_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to write slot %s: %w", s.key, err)
	}
	return nil
}

func (s *GormSlot) Remove(ctx context.Context) error {
	if err := s.db.WithContext(ctx).Where("slot_key = ?", s.key).Delete(&SlotRecord{}).Error; err != nil {
		return fmt.Errorf("failed to remove slot %s: %w", s.key, err)
	}
	return nil
}

// BlobSlot stores the slot as a single object in blob storage (local disk or S3)
type BlobSlot struct {
	driver archive.StorageDriver
	key    string
}

// NewBlobSlot stores the slot under "<name>.json"
func NewBlobSlot(driver archive.StorageDriver, name string) (*BlobSlot, error) {
	if name == "" {
		return nil, fmt.Errorf("slot key cannot be empty")
	}
	return &BlobSlot{driver: driver, key: name + ".json"}, nil
}

func (s *BlobSlot) Read(ctx context.Context) ([]byte, bool, error) {
	reader, _, err := s.driver.Get(ctx, s.key)
	if err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read slot %s: %w", s.key, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read slot %s: %w", s.key, err)
	}
	return data, true, nil
}

func (s *BlobSlot) Write(ctx context.Context, data []byte) error {
	if err := s.driver.Save(ctx, s.key, bytes.NewReader(data), "application/json"); err != nil {
		return fmt.Errorf("failed to write slot %s: %w", s.key, err)
	}
	return nil
}

func (s *BlobSlot) Remove(ctx context.Context) error {
	if err := s.driver.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("failed to remove slot %s: %w", s.key, err)
	}
	return nil
}
