package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/twl-tooling/quotedesk/internal/catalog"
	"github.com/twl-tooling/quotedesk/internal/quote/model"
	"github.com/twl-tooling/quotedesk/internal/quote/store"
)

// SubmitRequest carries everything a supplier enters on the quote form.
// Specifications should already be coerced with catalog.Coerce; they are stored as given.
type SubmitRequest struct {
	Category       catalog.Category
	Supplier       model.SupplierInfo
	EstimatedCost  float64
	DeliveryDate   string
	Specifications map[string]any
	Remarks        string
}

// SubmissionService assembles new quote records and stores them
type SubmissionService struct {
	store store.RecordStore
	now   func() time.Time
	newID func() (uuid.UUID, error)
}

func NewSubmissionService(s store.RecordStore) *SubmissionService {
	return &SubmissionService{
		store: s,
		now:   time.Now,
		newID: uuid.NewV7,
	}
}

// Submit builds a pending quote stamped with a time-ordered id and the current
// instant, stores it and returns it.
func (s *SubmissionService) Submit(ctx context.Context, req SubmitRequest) (*model.Quote, error) {
	id, err := s.newID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate quote id: %w", err)
	}

	specs := req.Specifications
	if specs == nil {
		specs = map[string]any{}
	}

	quote := model.Quote{
		ID:             id.String(),
		Category:       req.Category,
		SupplierName:   req.Supplier.SupplierName,
		ContactPerson:  req.Supplier.ContactPerson,
		Email:          req.Supplier.Email,
		Phone:          req.Supplier.Phone,
		SubmissionDate: s.now().UTC().Format(time.RFC3339Nano),
		EstimatedCost:  req.EstimatedCost,
		Currency:       model.Currency,
		DeliveryDate:   req.DeliveryDate,
		Specifications: specs,
		Remarks:        req.Remarks,
		Status:         model.StatusPending,
	}

	if err := s.store.Insert(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to store quote: %w", err)
	}

	slog.InfoContext(ctx, "quote submitted",
		"quote_id", quote.ID,
		"category", quote.Category,
		"supplier", quote.SupplierName,
	)
	return &quote, nil
}
