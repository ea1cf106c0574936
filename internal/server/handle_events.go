package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/playperu/arcaderooms/internal/feed"
	"github.com/playperu/arcaderooms/internal/room"
)

func handleEvents(logger *slog.Logger, rooms *room.Service, broker *feed.Broker, seats *Seats) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := roomFrom(r)
		viewer, err := viewerFromQuery(seats, r.URL.Query().Get("token"), ref)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid seat token")
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "streaming not supported")
			return
		}

		stream, err := openStream(r.Context(), rooms, broker, ref)
		if err != nil {
			writeRoomError(w, logger, err)
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		flusher.Flush()

		send := func(f Frame) error {
			data := []byte("{}")
			if f.Room != nil {
				var err error
				if data, err = json.Marshal(f.Room); err != nil {
					return err
				}
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", f.Type, data); err != nil {
				return err
			}
			flusher.Flush()
			return nil
		}
		keepalive := func() error {
			if _, err := fmt.Fprintf(w, ": ping\n\n"); err != nil {
				return err
			}
			flusher.Flush()
			return nil
		}

		if err := stream.run(r.Context(), viewer, send, keepalive); err != nil {
			logger.Debug("event stream ended", "room", ref.Code, "error", err)
		}
	}
}
