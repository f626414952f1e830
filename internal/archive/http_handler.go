package archive

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path"
)

type HTTPHandler struct {
	Service *ArchiveService
}

func NewHTTPHandler(service *ArchiveService) *HTTPHandler {
	return &HTTPHandler{Service: service}
}

// Download handles GET /exports/{key}
func (h *HTTPHandler) Download(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if key == "" {
		http.Error(w, `{"error": "key is required"}`, http.StatusBadRequest)
		return
	}

	reader, contentType, err := h.Service.Open(r.Context(), key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			http.Error(w, `{"error": "file not found"}`, http.StatusNotFound)
			return
		}
		slog.ErrorContext(r.Context(), "archive download failed", "key", key, "error", err)
		http.Error(w, `{"error": "download failed"}`, http.StatusInternalServerError)
		return
	}
	defer reader.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+path.Base(key)+`"`)
	if _, err := io.Copy(w, reader); err != nil {
		slog.WarnContext(r.Context(), "archive download interrupted", "key", key, "error", err)
	}
}
