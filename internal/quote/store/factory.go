package store

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/twl-tooling/quotedesk/internal/archive"
	"github.com/twl-tooling/quotedesk/internal/config"
	"github.com/twl-tooling/quotedesk/internal/database"
)

// OpenSlot builds the record slot selected by SLOT_BACKEND. The returned close
// function releases any database connection the slot opened.
func OpenSlot(ctx context.Context, cfg *config.Config) (Slot, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Slot.Backend {
	case config.SlotBackendPostgres, config.SlotBackendSQLite:
		var (
			db  *gorm.DB
			err error
		)
		if cfg.Slot.Backend == config.SlotBackendPostgres {
			db, err = database.New(&cfg.Database)
		} else {
			db, err = database.NewSQLite(cfg.SQLite.Path)
		}
		if err != nil {
			return nil, noop, err
		}
		if err := database.HealthCheck(db); err != nil {
			_ = database.Close(db)
			return nil, noop, fmt.Errorf("database health check failed: %w", err)
		}
		slot, err := NewGormSlot(db, cfg.Slot.Key)
		if err != nil {
			_ = database.Close(db)
			return nil, noop, err
		}
		return slot, func() error { return database.Close(db) }, nil

	case config.SlotBackendLocal, config.SlotBackendS3:
		driver, err := archive.OpenDriver(ctx, cfg.Slot.Backend, cfg.Storage, archive.PurposeRecords)
		if err != nil {
			return nil, noop, err
		}
		slot, err := NewBlobSlot(driver, cfg.Slot.Key)
		if err != nil {
			return nil, noop, err
		}
		return slot, noop, nil

	case config.SlotBackendMemory:
		slog.Warn("using in-memory record slot, quotes will not survive a restart")
		return NewMemorySlot(), noop, nil
	}

	return nil, noop, fmt.Errorf("unsupported slot backend: %s", cfg.Slot.Backend)
}
