package server

import (
	"errors"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/ayusman/handsnap/internal/store"
	"github.com/go-chi/chi/v5"
)

const defaultPhotoLimit = 50

type photoResponse struct {
	ID      string `json:"id"`
	RunID   string `json:"run_id,omitempty"`
	Path    string `json:"path"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
	TakenAt string `json:"taken_at"`
}

type photoListResponse struct {
	Photos []photoResponse `json:"photos"`
	Total  int             `json:"total"`
}

func toPhotoResponse(p *store.PhotoRecord) photoResponse {
	return photoResponse{
		ID:      p.ID,
		RunID:   p.RunID,
		Path:    p.Path,
		Status:  string(p.Status),
		Error:   p.Error,
		TakenAt: p.TakenAt.Format(time.RFC3339),
	}
}

type photoHandler struct {
	store *store.Store
}

// list handles GET /api/photos?limit=N, newest first.
func (h *photoHandler) list(w http.ResponseWriter, r *http.Request) {
	limit := defaultPhotoLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	photos, err := h.store.Photos().List(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list photos")
		return
	}
	total, err := h.store.Photos().Count("")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to count photos")
		return
	}

	resp := photoListResponse{Photos: make([]photoResponse, 0, len(photos)), Total: total}
	for _, p := range photos {
		resp.Photos = append(resp.Photos, toPhotoResponse(p))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *photoHandler) lookup(w http.ResponseWriter, r *http.Request) (*store.PhotoRecord, bool) {
	p, err := h.store.Photos().GetByID(chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "photo not found")
		return nil, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get photo")
		return nil, false
	}
	return p, true
}

// get handles GET /api/photos/{id}.
func (h *photoHandler) get(w http.ResponseWriter, r *http.Request) {
	if p, ok := h.lookup(w, r); ok {
		writeJSON(w, http.StatusOK, toPhotoResponse(p))
	}
}

// image handles GET /api/photos/{id}/image and serves the JPEG file.
func (h *photoHandler) image(w http.ResponseWriter, r *http.Request) {
	p, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if p.Status != store.PhotoSaved {
		writeError(w, http.StatusNotFound, "photo was not saved")
		return
	}
	if _, err := os.Stat(p.Path); err != nil {
		writeError(w, http.StatusNotFound, "photo file missing")
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	http.ServeFile(w, r, p.Path)
}
