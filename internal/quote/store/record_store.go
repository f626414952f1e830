package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/twl-tooling/quotedesk/internal/quote/model"
)

// RecordStore persists quote records, newest first.
type RecordStore interface {
	List(ctx context.Context) ([]model.Quote, error)
	Insert(ctx context.Context, q model.Quote) error
	SetStatus(ctx context.Context, id string, status model.Status) error
	Clear(ctx context.Context) error
}

// SlotStore keeps the whole record collection as one JSON array in a Slot.
//
// Every mutation is a read-modify-write of the full collection. Calls within
// this process are serialized; separate processes sharing a slot are not
// coordinated and the last write wins.
type SlotStore struct {
	mu   sync.Mutex
	slot Slot
}

func NewSlotStore(slot Slot) *SlotStore {
	return &SlotStore{slot: slot}
}

// List returns the stored records. Slot content that is not a JSON array of
// quotes is logged and treated as an empty collection.
func (s *SlotStore) List(ctx context.Context) ([]model.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Insert prepends q and writes the collection back. Identity uniqueness is the caller's concern.
func (s *SlotStore) Insert(ctx context.Context, q model.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.load(ctx)
	if err != nil {
		return err
	}
	updated := make([]model.Quote, 0, len(existing)+1)
	updated = append(updated, q)
	updated = append(updated, existing...)
	return s.save(ctx, updated)
}

// SetStatus replaces the status of the record with the given id. Unknown ids are ignored.
func (s *SlotStore) SetStatus(ctx context.Context, id string, status model.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	quotes, err := s.load(ctx)
	if err != nil {
		return err
	}

	found := false
	for i := range quotes {
		if quotes[i].ID == id {
			quotes[i].Status = status
			found = true
		}
	}
	if !found {
		slog.DebugContext(ctx, "status update for unknown quote ignored", "quote_id", id)
		return nil
	}
	return s.save(ctx, quotes)
}

// Clear removes the slot entirely
func (s *SlotStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slot.Remove(ctx)
}

func (s *SlotStore) load(ctx context.Context) ([]model.Quote, error) {
	data, ok, err := s.slot.Read(ctx)
	if err != nil {
		return nil, err
	}
	if !ok || len(data) == 0 {
		return []model.Quote{}, nil
	}

	var quotes []model.Quote
	if err := json.Unmarshal(data, &quotes); err != nil {
		slog.ErrorContext(ctx, "failed to parse quote records, treating slot as empty",
			"error", err,
			"size", len(data),
		)
		return []model.Quote{}, nil
	}
	if quotes == nil {
		quotes = []model.Quote{}
	}
	return quotes, nil
}

func (s *SlotStore) save(ctx context.Context, quotes []model.Quote) error {
	data, err := json.MarshalIndent(quotes, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode quote records: %w", err)
	}
	return s.slot.Write(ctx, data)
}
