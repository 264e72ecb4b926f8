package server

import (
	"fmt"
	"net/http"

	"github.com/ayusman/snakegesture/internal/app"
)

// StreamHandler serves the recognizer's annotated frames as MJPEG.
type StreamHandler struct {
	preview *app.Preview
}

// NewStreamHandler creates a new StreamHandler over preview.
func NewStreamHandler(preview *app.Preview) *StreamHandler {
	return &StreamHandler{preview: preview}
}

// ServeHTTP streams a part every time the preview changes, until the client
// disconnects. Cleared previews are skipped. Each part is followed by the
// next boundary so clients can show it without waiting for the next frame.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if _, err := fmt.Fprint(w, "--frame\r\n"); err != nil {
		return
	}
	flush(w)

	jpeg, version, err := h.preview.Latest()
	if err == nil {
		if err := writePart(w, jpeg); err != nil {
			return
		}
	}

	for {
		jpeg, version, err = h.preview.Wait(r.Context(), version)
		if err != nil {
			return
		}
		if jpeg == nil {
			continue
		}
		if err := writePart(w, jpeg); err != nil {
			return
		}
	}
}

func writePart(w http.ResponseWriter, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "Content-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg)); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	if _, err := fmt.Fprint(w, "\r\n--frame\r\n"); err != nil {
		return err
	}
	flush(w)
	return nil
}

func flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
