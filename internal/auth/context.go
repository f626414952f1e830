package auth

import (
	"context"
	"time"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// AdminContextKey is the key for storing AdminContext in request context
	AdminContextKey ContextKey = "adminContext"
)

// AdminContext is injected into requests that carry a valid admin token
type AdminContext struct {
	Subject   string
	ExpiresAt time.Time
}

// WithAdminContext returns a copy of ctx carrying ac
func WithAdminContext(ctx context.Context, ac *AdminContext) context.Context {
	return context.WithValue(ctx, AdminContextKey, ac)
}

// GetAdminContext extracts the AdminContext from a request context.
// Returns nil if the request was not authenticated.
func GetAdminContext(ctx context.Context) *AdminContext {
	ac, ok := ctx.Value(AdminContextKey).(*AdminContext)
	if !ok {
		return nil
	}
	return ac
}
