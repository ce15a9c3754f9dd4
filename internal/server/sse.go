package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/meridian-vc/scout-cli/internal/model"
)

// eventStream frames progress events as server-sent events, flushing
// after each one so clients see progress immediately.
type eventStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newEventStream(w http.ResponseWriter) (*eventStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, eris.New("server: response writer does not support flushing")
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	return &eventStream{w: w, flusher: flusher}, nil
}

// Emit writes one progress event. Status events carry their message,
// the complete event carries the result set, and the error event carries
// the failure message.
func (s *eventStream) Emit(e model.ProgressEvent) {
	var payload any
	switch e.Kind {
	case model.EventStatus:
		payload = map[string]string{"message": e.Message}
	case model.EventComplete:
		payload = map[string]any{"success": true, "results": e.Results}
	case model.EventError:
		payload = map[string]any{"success": false, "error": e.Message}
	default:
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		zap.L().Warn("marshal event failed", zap.Error(err))
		return
	}
	fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", e.Kind, data)
	s.flusher.Flush()
}
