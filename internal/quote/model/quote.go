package model

import (
	"fmt"

	"github.com/twl-tooling/quotedesk/internal/catalog"
)

// Status is the review state of a quote record
type Status string

const (
	StatusPending  Status = "pending"
	StatusReviewed Status = "reviewed" // Declared for compatibility with stored data; no operation sets it
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Currency is the only currency quotes are accepted in
const Currency = "TWD"

// ParseStatus validates a status tag
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusReviewed, StatusApproved, StatusRejected:
		return st, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Quote is one supplier's submitted pricing and specification packet.
// The JSON shape is the persisted shape and must stay backward compatible.
type Quote struct {
	ID             string           `json:"id"`
	Category       catalog.Category `json:"category"`
	SupplierName   string           `json:"supplierName"`
	ContactPerson  string           `json:"contactPerson"`
	Email          string           `json:"email"`
	Phone          string           `json:"phone"`
	SubmissionDate string           `json:"submissionDate"` // RFC 3339 instant, UTC
	EstimatedCost  float64          `json:"estimatedCost"`
	Currency       string           `json:"currency"`
	DeliveryDate   string           `json:"deliveryDate"` // YYYY-MM-DD
	Specifications map[string]any   `json:"specifications"`
	Remarks        string           `json:"remarks"`
	Status         Status           `json:"status"`
}

// SupplierInfo identifies who submitted a quote
type SupplierInfo struct {
	SupplierName  string `json:"supplierName" validate:"required,max=200"`
	ContactPerson string `json:"contactPerson" validate:"required,max=100"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required,max=50"`
}

// SpecificationEntry is a stored specification value with its display label
type SpecificationEntry struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value any    `json:"value"`
}

// QuoteDetail is a quote prepared for review
type QuoteDetail struct {
	Quote
	CategoryName         string               `json:"categoryName"`
	SpecificationEntries []SpecificationEntry `json:"specificationEntries"`
}

// QuoteListResult represents a page of quotes, newest first
type QuoteListResult struct {
	TotalCount int     `json:"totalCount"`
	Quotes     []Quote `json:"quotes"`
	Offset     int     `json:"offset"`
	Limit      int     `json:"limit"`
}
