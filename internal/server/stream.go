package server

import (
	"fmt"
	"net/http"

	"github.com/ayusman/handsnap/internal/app"
)

// Viewer supplies rendered preview frames.
type Viewer interface {
	Subscribe() (<-chan app.View, func())
}

// StreamHandler serves the rendered preview as MJPEG.
type StreamHandler struct {
	views Viewer
}

// NewStreamHandler creates a new StreamHandler over the given views.
func NewStreamHandler(views Viewer) *StreamHandler {
	return &StreamHandler{views: views}
}

// ServeHTTP streams MJPEG frames to the client until it disconnects.
// Views without a frame, such as the stopped state, are skipped.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	views, cancel := h.views.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case v, ok := <-views:
			if !ok {
				return
			}
			if len(v.Frame) == 0 {
				continue
			}

			fmt.Fprintf(w, "--frame\r\n")
			fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
			fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(v.Frame))
			if _, err := w.Write(v.Frame); err != nil {
				return
			}
			fmt.Fprintf(w, "\r\n")

			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}
