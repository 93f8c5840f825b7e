package handlers

import (
	"context"
	"errors"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/portfolio-api/server/src/server/storage"
)

// AssetURLs resolves an asset name to a download URL.
type AssetURLs interface {
	URL(ctx context.Context, name string) (string, error)
}

type AssetHandler struct {
	Assets AssetURLs // nil when no storage is configured
}

// Get redirects to a download URL for the asset named by the path
// wildcard, e.g. /api/v1/assets/Profile-en.pdf.
func (h *AssetHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.Assets == nil {
		writeError(w, http.StatusNotFound, "asset not found")
		return
	}

	u, err := h.Assets.URL(r.Context(), chi.URLParam(r, "*"))
	switch {
	case errors.Is(err, storage.ErrInvalidName):
		writeError(w, http.StatusBadRequest, "invalid asset name")
		return
	case errors.Is(err, fs.ErrNotExist):
		writeError(w, http.StatusNotFound, "asset not found")
		return
	case err != nil:
		writeInternalError(w, r, "Resolving asset URL failed", err)
		return
	}
	http.Redirect(w, r, u, http.StatusFound)
}
