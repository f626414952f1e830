package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/twl-tooling/quotedesk/internal/archive"
	"github.com/twl-tooling/quotedesk/internal/auth"
	"github.com/twl-tooling/quotedesk/internal/catalog"
	"github.com/twl-tooling/quotedesk/internal/polish"
	"github.com/twl-tooling/quotedesk/internal/quote/model"
	"github.com/twl-tooling/quotedesk/internal/quote/service"
)

// QuoteRouter serves the supplier form and the admin dashboard
type QuoteRouter struct {
	submission *service.SubmissionService
	review     *service.ReviewService
	polisher   polish.Polisher
	authn      auth.Authenticator
	tokens     *auth.TokenIssuer
	archives   *archive.HTTPHandler
	validate   *validator.Validate
	now        func() time.Time
}

// NewQuoteRouter creates a QuoteRouter. archives may be nil, in which case
// archived exports are not served.
func NewQuoteRouter(
	submission *service.SubmissionService,
	review *service.ReviewService,
	polisher polish.Polisher,
	authn auth.Authenticator,
	tokens *auth.TokenIssuer,
	archives *archive.HTTPHandler,
) *QuoteRouter {
	return &QuoteRouter{
		submission: submission,
		review:     review,
		polisher:   polisher,
		authn:      authn,
		tokens:     tokens,
		archives:   archives,
		validate:   newValidator(),
		now:        time.Now,
	}
}

// Register mounts every route on mux
func (qr *QuoteRouter) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", qr.HandleHealth)
	mux.HandleFunc("GET /api/categories", qr.HandleGetCategories)
	mux.HandleFunc("GET /api/categories/{category}/fields", qr.HandleGetCategoryFields)
	mux.HandleFunc("POST /api/remarks/polish", qr.HandlePolishRemarks)
	mux.HandleFunc("POST /api/quotes", qr.HandleSubmitQuote)
	mux.HandleFunc("POST /api/admin/login", qr.HandleAdminLogin)

	admin := auth.RequireAdmin(qr.tokens)
	mux.Handle("GET /api/admin/quotes", admin(http.HandlerFunc(qr.HandleListQuotes)))
	mux.Handle("DELETE /api/admin/quotes", admin(http.HandlerFunc(qr.HandleClearQuotes)))
	mux.Handle("GET /api/admin/quotes/export", admin(http.HandlerFunc(qr.HandleExportQuotes)))
	mux.Handle("POST /api/admin/quotes/export/archive", admin(http.HandlerFunc(qr.HandleArchiveQuotes)))
	mux.Handle("GET /api/admin/quotes/{id}", admin(http.HandlerFunc(qr.HandleGetQuote)))
	mux.Handle("POST /api/admin/quotes/{id}/approve", admin(http.HandlerFunc(qr.HandleApproveQuote)))
	mux.Handle("POST /api/admin/quotes/{id}/reject", admin(http.HandlerFunc(qr.HandleRejectQuote)))
	if qr.archives != nil {
		mux.Handle("GET /exports/{key}", admin(http.HandlerFunc(qr.archives.Download)))
	}
}

// HandleHealth handles GET /health
func (qr *QuoteRouter) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleGetCategories handles GET /api/categories
// Response: ordered array of {id, name}
func (qr *QuoteRouter) HandleGetCategories(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, catalog.Categories())
}

// HandleGetCategoryFields handles GET /api/categories/{category}/fields
func (qr *QuoteRouter) HandleGetCategoryFields(w http.ResponseWriter, r *http.Request) {
	category, err := catalog.ParseCategory(r.PathValue("category"))
	if err != nil {
		writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]any{
		"category":     category,
		"name":         catalog.DisplayName(category),
		"fields":       catalog.FieldsFor(category),
		"commonFields": catalog.CommonFields(),
	})
}

// HandlePolishRemarks handles POST /api/remarks/polish
// Request body: PolishRemarksDTO. The response always carries usable text,
// the original when polishing is unavailable.
func (qr *QuoteRouter) HandlePolishRemarks(w http.ResponseWriter, r *http.Request) {
	var req model.PolishRemarksDTO
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := qr.validate.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	writeJSONResponse(w, http.StatusOK, model.PolishRemarksDTO{
		Text: qr.polisher.Polish(r.Context(), req.Text),
	})
}

// HandleSubmitQuote handles POST /api/quotes
// Request body: SubmitQuoteDTO
// Response: 201 with the stored quote
func (qr *QuoteRouter) HandleSubmitQuote(w http.ResponseWriter, r *http.Request) {
	var req model.SubmitQuoteDTO
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := qr.validate.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	category, err := catalog.ParseCategory(req.Category)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	specs, err := catalog.Coerce(category, req.Specifications)
	if err != nil {
		var fe *catalog.FieldError
		if errors.As(err, &fe) {
			writeJSONResponse(w, http.StatusBadRequest, ErrorResponse{
				Error:   "bad_request",
				Message: err.Error(),
				Field:   fe.Key,
			})
			return
		}
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	quote, err := qr.submission.Submit(r.Context(), service.SubmitRequest{
		Category:       category,
		Supplier:       req.SupplierInfo,
		EstimatedCost:  *req.EstimatedCost,
		DeliveryDate:   req.DeliveryDate,
		Specifications: specs,
		Remarks:        req.Remarks,
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to submit quote", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to submit quote")
		return
	}

	writeJSONResponse(w, http.StatusCreated, quote)
}

// HandleAdminLogin handles POST /api/admin/login
// Request body: AdminLoginDTO
// Response: AdminLoginResponseDTO; 401 on a wrong credential, which may be retried
func (qr *QuoteRouter) HandleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req model.AdminLoginDTO
	if err := decodeJSON(w, r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := qr.validate.Struct(req); err != nil {
		writeJSONError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	if err := qr.authn.Authenticate(r.Context(), req.Credential); err != nil {
		if errors.Is(err, auth.ErrInvalidCredential) {
			slog.WarnContext(r.Context(), "admin login failed", "remote_addr", r.RemoteAddr)
			writeJSONError(w, http.StatusUnauthorized, "invalid credential")
			return
		}
		slog.ErrorContext(r.Context(), "admin login errored", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "login failed")
		return
	}

	token, expiresAt, err := qr.tokens.Issue()
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to issue admin token", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "login failed")
		return
	}

	slog.InfoContext(r.Context(), "admin logged in", "expires_at", expiresAt)
	writeJSONResponse(w, http.StatusOK, model.AdminLoginResponseDTO{Token: token, ExpiresAt: expiresAt})
}

// HandleListQuotes handles GET /api/admin/quotes
// Optional Query Filters: offset, limit
func (qr *QuoteRouter) HandleListQuotes(w http.ResponseWriter, r *http.Request) {
	var offset, limit *int

	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		l, err := strconv.Atoi(limitStr)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid 'limit' query parameter, must be an integer")
			return
		}
		limit = &l
	}

	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		o, err := strconv.Atoi(offsetStr)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid 'offset' query parameter, must be an integer")
			return
		}
		offset = &o
	}

	page, err := qr.review.ListPage(r.Context(), offset, limit)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to list quotes", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to list quotes")
		return
	}

	writeJSONResponse(w, http.StatusOK, page)
}

// HandleGetQuote handles GET /api/admin/quotes/{id}
// Response: QuoteDetail
func (qr *QuoteRouter) HandleGetQuote(w http.ResponseWriter, r *http.Request) {
	qr.writeQuoteDetail(w, r, r.PathValue("id"))
}

// HandleApproveQuote handles POST /api/admin/quotes/{id}/approve
func (qr *QuoteRouter) HandleApproveQuote(w http.ResponseWriter, r *http.Request) {
	qr.decide(w, r, qr.review.Approve)
}

// HandleRejectQuote handles POST /api/admin/quotes/{id}/reject
func (qr *QuoteRouter) HandleRejectQuote(w http.ResponseWriter, r *http.Request) {
	qr.decide(w, r, qr.review.Reject)
}

func (qr *QuoteRouter) decide(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, id string) error) {
	id := r.PathValue("id")
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "quote ID is required")
		return
	}

	if err := apply(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "failed to update quote status", "quote_id", id, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to update quote status")
		return
	}

	// The store ignores unknown ids; the lookup below turns that into a 404.
	qr.writeQuoteDetail(w, r, id)
}

func (qr *QuoteRouter) writeQuoteDetail(w http.ResponseWriter, r *http.Request, id string) {
	if id == "" {
		writeJSONError(w, http.StatusBadRequest, "quote ID is required")
		return
	}

	detail, err := qr.review.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrQuoteNotFound) {
			writeJSONError(w, http.StatusNotFound, fmt.Sprintf("quote %s not found", id))
			return
		}
		slog.ErrorContext(r.Context(), "failed to get quote", "quote_id", id, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to get quote")
		return
	}

	writeJSONResponse(w, http.StatusOK, detail)
}

// HandleExportQuotes handles GET /api/admin/quotes/export
// Response: the stored JSON array as an attachment
func (qr *QuoteRouter) HandleExportQuotes(w http.ResponseWriter, r *http.Request) {
	data, err := qr.review.ExportAll(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to export quotes", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to export quotes")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, service.ExportFileName(qr.now())))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.WarnContext(r.Context(), "export download interrupted", "error", err)
	}
}

// HandleArchiveQuotes handles POST /api/admin/quotes/export/archive
// Response: 201 with the archived file metadata
func (qr *QuoteRouter) HandleArchiveQuotes(w http.ResponseWriter, r *http.Request) {
	meta, err := qr.review.Archive(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to archive quotes", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to archive quotes")
		return
	}

	writeJSONResponse(w, http.StatusCreated, meta)
}

// HandleClearQuotes handles DELETE /api/admin/quotes?confirm=true
// Every quote is removed. Without confirm=true nothing happens and 400 is returned.
func (qr *QuoteRouter) HandleClearQuotes(w http.ResponseWriter, r *http.Request) {
	if confirm, _ := strconv.ParseBool(r.URL.Query().Get("confirm")); !confirm {
		writeJSONError(w, http.StatusBadRequest, "clearing all quotes requires confirm=true")
		return
	}

	if err := qr.review.ClearAll(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "failed to clear quotes", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "failed to clear quotes")
		return
	}

	writeJSONResponse(w, http.StatusOK, model.ClearQuotesResponseDTO{Cleared: true})
}
