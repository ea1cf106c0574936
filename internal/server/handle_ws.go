package server

import (
	"log/slog"
	"net/http"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/playperu/arcaderooms/internal/feed"
	"github.com/playperu/arcaderooms/internal/room"
)

// handleWatch streams the room over a websocket as JSON frames. Clients
// only listen; moves go through the HTTP endpoints.
func handleWatch(logger *slog.Logger, rooms *room.Service, broker *feed.Broker, seats *Seats) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := roomFrom(r)
		viewer, err := viewerFromQuery(seats, r.URL.Query().Get("token"), ref)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid seat token")
			return
		}

		stream, err := openStream(r.Context(), rooms, broker, ref)
		if err != nil {
			writeRoomError(w, logger, err)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			stream.unsub()
			logger.Error("websocket accept failed", "error", err)
			return
		}
		defer conn.CloseNow()

		// CloseRead discards client messages and cancels ctx when the
		// client goes away.
		ctx := conn.CloseRead(r.Context())

		send := func(f Frame) error { return wsjson.Write(ctx, conn, f) }
		keepalive := func() error { return conn.Ping(ctx) }

		if err := stream.run(ctx, viewer, send, keepalive); err != nil {
			logger.Debug("websocket stream ended", "room", ref.Code, "error", err)
			return
		}
		conn.Close(websocket.StatusNormalClosure, "")
	}
}
