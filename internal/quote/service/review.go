package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/twl-tooling/quotedesk/internal/archive"
	"github.com/twl-tooling/quotedesk/internal/catalog"
	"github.com/twl-tooling/quotedesk/internal/quote/model"
	"github.com/twl-tooling/quotedesk/internal/quote/store"
	"github.com/twl-tooling/quotedesk/utils"
)

// ExportFilePrefix prefixes every export file name
const ExportFilePrefix = "twl_quotes_export_"

// ErrQuoteNotFound is returned when no quote has the requested id
var ErrQuoteNotFound = errors.New("quote not found")

// ReviewService backs the admin dashboard
type ReviewService struct {
	store    store.RecordStore
	archives *archive.ArchiveService
	now      func() time.Time
}

// NewReviewService creates a ReviewService. archives may be nil when archiving is not offered.
func NewReviewService(s store.RecordStore, archives *archive.ArchiveService) *ReviewService {
	return &ReviewService{store: s, archives: archives, now: time.Now}
}

// ListAll returns every quote, newest first
func (s *ReviewService) ListAll(ctx context.Context) ([]model.Quote, error) {
	return s.store.List(ctx)
}

// ListPage returns one page of quotes, newest first
func (s *ReviewService) ListPage(ctx context.Context, offset, limit *int) (*model.QuoteListResult, error) {
	quotes, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	finalOffset, finalLimit := utils.GetPaginationParams(offset, limit)
	return &model.QuoteListResult{
		TotalCount: len(quotes),
		Quotes:     utils.Page(quotes, finalOffset, finalLimit),
		Offset:     finalOffset,
		Limit:      finalLimit,
	}, nil
}

// Get returns one quote with its specifications labelled for display
func (s *ReviewService) Get(ctx context.Context, id string) (*model.QuoteDetail, error) {
	quotes, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, q := range quotes {
		if q.ID == id {
			return Describe(q), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrQuoteNotFound, id)
}

// Approve marks a quote approved. Any current status is overwritten.
func (s *ReviewService) Approve(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, model.StatusApproved)
}

// Reject marks a quote rejected. Any current status is overwritten.
func (s *ReviewService) Reject(ctx context.Context, id string) error {
	return s.setStatus(ctx, id, model.StatusRejected)
}

func (s *ReviewService) setStatus(ctx context.Context, id string, status model.Status) error {
	if err := s.store.SetStatus(ctx, id, status); err != nil {
		return fmt.Errorf("failed to set quote status: %w", err)
	}
	slog.InfoContext(ctx, "quote status set", "quote_id", id, "status", status)
	return nil
}

// ExportAll serializes every stored quote as the persisted JSON array
func (s *ReviewService) ExportAll(ctx context.Context) ([]byte, error) {
	quotes, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(quotes, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode export: %w", err)
	}
	return data, nil
}

// ExportFileName returns the download name for an export taken at now
func ExportFileName(now time.Time) string {
	return ExportFilePrefix + now.UTC().Format(catalog.DateLayout) + ".json"
}

// Archive writes the current export into blob storage
func (s *ReviewService) Archive(ctx context.Context) (*archive.FileMetadata, error) {
	if s.archives == nil {
		return nil, fmt.Errorf("archive storage is not configured")
	}
	data, err := s.ExportAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.archives.Store(ctx, ExportFileName(s.now()), data, "application/json")
}

// ClearAll irreversibly removes every quote. Callers must confirm with a human first.
func (s *ReviewService) ClearAll(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear quotes: %w", err)
	}
	slog.WarnContext(ctx, "all quotes cleared")
	return nil
}

// Describe labels the specifications of q. Keys follow the category's field
// order; keys the catalog does not know come last, sorted, under their raw name.
func Describe(q model.Quote) *model.QuoteDetail {
	entries := make([]model.SpecificationEntry, 0, len(q.Specifications))
	seen := make(map[string]bool, len(q.Specifications))

	for _, f := range catalog.EffectiveFields(q.Category) {
		if v, ok := q.Specifications[f.Key]; ok {
			entries = append(entries, model.SpecificationEntry{Key: f.Key, Label: f.Label, Value: v})
			seen[f.Key] = true
		}
	}

	rest := make([]string, 0)
	for k := range q.Specifications {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sort.Strings(rest)
	for _, k := range rest {
		entries = append(entries, model.SpecificationEntry{
			Key:   k,
			Label: catalog.LabelFor(q.Category, k),
			Value: q.Specifications[k],
		})
	}

	return &model.QuoteDetail{
		Quote:                q,
		CategoryName:         catalog.DisplayName(q.Category),
		SpecificationEntries: entries,
	}
}
