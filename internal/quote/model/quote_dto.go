package model

import "time"

// SubmitQuoteDTO is the body of POST /api/quotes.
// Specifications are raw form values keyed by field key; they are converted per
// field kind before storage.
type SubmitQuoteDTO struct {
	Category string `json:"category" validate:"required"`
	SupplierInfo
	EstimatedCost  *float64       `json:"estimatedCost" validate:"required,gte=0"`
	DeliveryDate   string         `json:"deliveryDate" validate:"required,datetime=2006-01-02"`
	Specifications map[string]any `json:"specifications"`
	Remarks        string         `json:"remarks" validate:"max=4000"`
}

// PolishRemarksDTO is the body and the response of POST /api/remarks/polish
type PolishRemarksDTO struct {
	Text string `json:"text" validate:"max=4000"`
}

// AdminLoginDTO is the body of POST /api/admin/login
type AdminLoginDTO struct {
	Credential string `json:"credential" validate:"required"`
}

// AdminLoginResponseDTO carries the admin session token
type AdminLoginResponseDTO struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ClearQuotesResponseDTO confirms a bulk clear
type ClearQuotesResponseDTO struct {
	Cleared bool `json:"cleared"`
}
