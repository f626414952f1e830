package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/twl-tooling/quotedesk/internal/archive"
	"github.com/twl-tooling/quotedesk/internal/archive/drivers"
	"github.com/twl-tooling/quotedesk/internal/auth"
	"github.com/twl-tooling/quotedesk/internal/catalog"
	"github.com/twl-tooling/quotedesk/internal/quote/model"
	"github.com/twl-tooling/quotedesk/internal/quote/service"
	"github.com/twl-tooling/quotedesk/internal/quote/store"
)

const adminPassword = "twl-admin"

// upperPolisher stands in for the remote polishing service
type upperPolisher struct{}

func (upperPolisher) Polish(ctx context.Context, text string) string {
	return strings.ToUpper(text)
}

type testEnv struct {
	mux   *http.ServeMux
	token string
}

func setupRouter(t *testing.T) *testEnv {
	t.Helper()

	records := store.NewSlotStore(store.NewMemorySlot())
	driver, err := drivers.NewLocalFSDriver(t.TempDir(), "/exports")
	require.NoError(t, err)
	archives := archive.NewArchiveService(driver)

	authn, err := auth.NewPasswordAuthenticator("", adminPassword)
	require.NoError(t, err)
	tokens := auth.NewTokenIssuer("0123456789abcdef0123456789abcdef", time.Hour)

	qr := NewQuoteRouter(
		service.NewSubmissionService(records),
		service.NewReviewService(records, archives),
		upperPolisher{},
		authn,
		tokens,
		archive.NewHTTPHandler(archives),
	)
	qr.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	mux := http.NewServeMux()
	qr.Register(mux)

	token, _, err := tokens.Issue()
	require.NoError(t, err)
	return &testEnv{mux: mux, token: token}
}

func (e *testEnv) do(t *testing.T, method, target string, body any, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	w := httptest.NewRecorder()
	e.mux.ServeHTTP(w, req)
	return w
}

func validSubmission() map[string]any {
	return map[string]any{
		"category":      "aluminum-die-casting",
		"supplierName":  "Hsin Chu Tooling",
		"contactPerson": "Lin",
		"email":         "lin@example.com",
		"phone":         "03-555-0101",
		"estimatedCost": 480000,
		"deliveryDate":  "2026-05-15",
		"specifications": map[string]any{
			"tonnage": "500",
			"alloy":   "ADC12",
		},
		"remarks": "T1 within 45 days",
	}
}

func submit(t *testing.T, e *testEnv) model.Quote {
	t.Helper()
	w := e.do(t, http.MethodPost, "/api/quotes", validSubmission(), false)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var q model.Quote
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &q))
	return q
}

func TestHandleHealth(t *testing.T) {
	e := setupRouter(t)
	w := e.do(t, http.MethodGet, "/health", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestHandleGetCategories(t *testing.T) {
	e := setupRouter(t)
	w := e.do(t, http.MethodGet, "/api/categories", nil, false)
	require.Equal(t, http.StatusOK, w.Code)

	var categories []catalog.CategoryInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &categories))
	assert.Equal(t, catalog.Categories(), categories)
}

func TestHandleGetCategoryFields(t *testing.T) {
	e := setupRouter(t)

	w := e.do(t, http.MethodGet, "/api/categories/aluminum-die-casting/fields", nil, false)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Category     catalog.Category          `json:"category"`
		Name         string                    `json:"name"`
		Fields       []catalog.FieldDefinition `json:"fields"`
		CommonFields []catalog.FieldDefinition `json:"commonFields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, catalog.AluminumDieCasting, resp.Category)
	assert.Equal(t, catalog.FieldsFor(catalog.AluminumDieCasting), resp.Fields)
	assert.Equal(t, catalog.CommonFields(), resp.CommonFields)

	w = e.do(t, http.MethodGet, "/api/categories/injection-of-doom/fields", nil, false)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandlePolishRemarks(t *testing.T) {
	e := setupRouter(t)
	w := e.do(t, http.MethodPost, "/api/remarks/polish", map[string]string{"text": "fast delivery"}, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"text":"FAST DELIVERY"}`, w.Body.String())
}

func TestHandleSubmitQuote(t *testing.T) {
	e := setupRouter(t)
	q := submit(t, e)

	assert.NotEmpty(t, q.ID)
	assert.Equal(t, catalog.AluminumDieCasting, q.Category)
	assert.Equal(t, model.StatusPending, q.Status)
	assert.Equal(t, model.Currency, q.Currency)
	assert.Equal(t, 480000.0, q.EstimatedCost)
	assert.Equal(t, map[string]any{"tonnage": float64(500), "alloy": "ADC12"}, q.Specifications)
}

func TestHandleSubmitQuote_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(body map[string]any)
		field  string
	}{
		{name: "missing supplier", mutate: func(b map[string]any) { delete(b, "supplierName") }},
		{name: "bad email", mutate: func(b map[string]any) { b["email"] = "not-an-email" }},
		{name: "negative cost", mutate: func(b map[string]any) { b["estimatedCost"] = -1 }},
		{name: "missing cost", mutate: func(b map[string]any) { delete(b, "estimatedCost") }},
		{name: "bad delivery date", mutate: func(b map[string]any) { b["deliveryDate"] = "15/05/2026" }},
		{name: "unknown category", mutate: func(b map[string]any) { b["category"] = "wood-carving" }},
		{
			name:   "non numeric tonnage",
			mutate: func(b map[string]any) { b["specifications"] = map[string]any{"tonnage": "lots"} },
			field:  "tonnage",
		},
		{
			name:   "unknown specification",
			mutate: func(b map[string]any) { b["specifications"] = map[string]any{"tonnage": 500, "colour": "red"} },
			field:  "colour",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := setupRouter(t)
			body := validSubmission()
			tt.mutate(body)

			w := e.do(t, http.MethodPost, "/api/quotes", body, false)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.NotEmpty(t, resp.Message)
			if tt.field != "" {
				assert.Equal(t, tt.field, resp.Field)
			}

			// Nothing was stored
			list := e.do(t, http.MethodGet, "/api/admin/quotes", nil, true)
			assert.Contains(t, list.Body.String(), `"totalCount":0`)
		})
	}
}

func TestHandleSubmitQuote_MalformedBody(t *testing.T) {
	e := setupRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/quotes", strings.NewReader("{not json"))
	w := httptest.NewRecorder()
	e.mux.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleAdminLogin(t *testing.T) {
	e := setupRouter(t)

	w := e.do(t, http.MethodPost, "/api/admin/login", map[string]string{"credential": "wrong"}, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// A failed attempt can be retried immediately
	w = e.do(t, http.MethodPost, "/api/admin/login", map[string]string{"credential": adminPassword}, false)
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.AdminLoginResponseDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.True(t, resp.ExpiresAt.After(time.Now()))

	// The issued token opens the admin routes
	e.token = resp.Token
	w = e.do(t, http.MethodGet, "/api/admin/quotes", nil, true)
	assert.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodPost, "/api/admin/login", map[string]string{}, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRoutes_RequireToken(t *testing.T) {
	e := setupRouter(t)
	routes := []struct{ method, target string }{
		{http.MethodGet, "/api/admin/quotes"},
		{http.MethodGet, "/api/admin/quotes/some-id"},
		{http.MethodPost, "/api/admin/quotes/some-id/approve"},
		{http.MethodPost, "/api/admin/quotes/some-id/reject"},
		{http.MethodGet, "/api/admin/quotes/export"},
		{http.MethodPost, "/api/admin/quotes/export/archive"},
		{http.MethodDelete, "/api/admin/quotes?confirm=true"},
		{http.MethodGet, "/exports/some-key"},
	}

	for _, rt := range routes {
		w := e.do(t, rt.method, rt.target, nil, false)
		assert.Equal(t, http.StatusUnauthorized, w.Code, rt.method+" "+rt.target)
	}
}

func TestHandleListQuotes(t *testing.T) {
	e := setupRouter(t)
	first := submit(t, e)
	second := submit(t, e)

	w := e.do(t, http.MethodGet, "/api/admin/quotes?offset=0&limit=1", nil, true)
	require.Equal(t, http.StatusOK, w.Code)

	var page model.QuoteListResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, 2, page.TotalCount)
	assert.Equal(t, 1, page.Limit)
	require.Len(t, page.Quotes, 1)
	assert.Equal(t, second.ID, page.Quotes[0].ID)

	w = e.do(t, http.MethodGet, "/api/admin/quotes?offset=1", nil, true)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Quotes, 1)
	assert.Equal(t, first.ID, page.Quotes[0].ID)

	w = e.do(t, http.MethodGet, "/api/admin/quotes?limit=ten", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGetQuote(t *testing.T) {
	e := setupRouter(t)
	q := submit(t, e)

	w := e.do(t, http.MethodGet, "/api/admin/quotes/"+q.ID, nil, true)
	require.Equal(t, http.StatusOK, w.Code)

	var detail model.QuoteDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, q.ID, detail.ID)
	assert.Equal(t, catalog.DisplayName(catalog.AluminumDieCasting), detail.CategoryName)
	require.Len(t, detail.SpecificationEntries, 2)
	assert.Equal(t, "tonnage", detail.SpecificationEntries[0].Key)
	assert.Equal(t, catalog.LabelFor(catalog.AluminumDieCasting, "tonnage"), detail.SpecificationEntries[0].Label)

	w = e.do(t, http.MethodGet, "/api/admin/quotes/missing", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleApproveReject(t *testing.T) {
	e := setupRouter(t)
	q := submit(t, e)

	w := e.do(t, http.MethodPost, "/api/admin/quotes/"+q.ID+"/approve", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	var detail model.QuoteDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, model.StatusApproved, detail.Status)

	w = e.do(t, http.MethodPost, "/api/admin/quotes/"+q.ID+"/reject", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, model.StatusRejected, detail.Status)

	w = e.do(t, http.MethodPost, "/api/admin/quotes/missing/approve", nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleExportQuotes(t *testing.T) {
	e := setupRouter(t)
	q := submit(t, e)

	w := e.do(t, http.MethodGet, "/api/admin/quotes/export", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="twl_quotes_export_2026-03-01.json"`, w.Header().Get("Content-Disposition"))

	var exported []model.Quote
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &exported))
	require.Len(t, exported, 1)
	assert.Equal(t, q, exported[0])
}

func TestHandleArchiveQuotes(t *testing.T) {
	e := setupRouter(t)
	submit(t, e)

	w := e.do(t, http.MethodPost, "/api/admin/quotes/export/archive", nil, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var meta archive.FileMetadata
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &meta))
	assert.Equal(t, "twl_quotes_export_2026-03-01.json", meta.Name)
	assert.Equal(t, "/exports/"+meta.Key, meta.URL)

	download := e.do(t, http.MethodGet, meta.URL, nil, true)
	require.Equal(t, http.StatusOK, download.Code)
	assert.Equal(t, "application/json", download.Header().Get("Content-Type"))

	export := e.do(t, http.MethodGet, "/api/admin/quotes/export", nil, true)
	assert.Equal(t, export.Body.String(), download.Body.String())
}

func TestHandleClearQuotes(t *testing.T) {
	e := setupRouter(t)
	submit(t, e)

	w := e.do(t, http.MethodDelete, "/api/admin/quotes", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	list := e.do(t, http.MethodGet, "/api/admin/quotes", nil, true)
	assert.Contains(t, list.Body.String(), `"totalCount":1`)

	w = e.do(t, http.MethodDelete, "/api/admin/quotes?confirm=true", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"cleared":true}`, w.Body.String())

	list = e.do(t, http.MethodGet, "/api/admin/quotes", nil, true)
	assert.Contains(t, list.Body.String(), `"totalCount":0`)
}
