package server

import (
	"errors"
	"net/http"

	"github.com/ayusman/handsnap/internal/app"
)

type cameraResponse struct {
	Running bool   `json:"running"`
	Status  string `json:"status"`
}

type cameraHandler struct {
	app Controller
}

func (h *cameraHandler) snapshot() cameraResponse {
	return cameraResponse{Running: h.app.IsRunning(), Status: h.app.Status()}
}

// state handles GET /api/camera.
func (h *cameraHandler) state(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.snapshot())
}

// start handles POST /api/camera/start.
func (h *cameraHandler) start(w http.ResponseWriter, r *http.Request) {
	err := h.app.Start(r.Context())
	switch {
	case errors.Is(err, app.ErrAlreadyRunning):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		writeJSON(w, http.StatusOK, h.snapshot())
	}
}

// stop handles POST /api/camera/stop. Stopping a stopped camera succeeds.
func (h *cameraHandler) stop(w http.ResponseWriter, r *http.Request) {
	h.app.Stop()
	writeJSON(w, http.StatusOK, h.snapshot())
}
