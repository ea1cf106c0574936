package server

import (
	"log/slog"
	"net/http"

	"github.com/playperu/arcaderooms/internal/room"
)

type LeaveResponse struct {
	// Deleted is true when the leaver was the last player.
	Deleted bool       `json:"deleted"`
	Room    *room.View `json:"room,omitempty"`
}

// handleRoomState returns the room as the bearer's seat sees it, or the
// spectator view when no token is sent.
func handleRoomState(logger *slog.Logger, rooms *room.Service, seats *Seats) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref := roomFrom(r)
		viewer := ""
		if token, ok := bearerToken(r); ok {
			seat, err := seats.For(token, ref.Game, ref.Code)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid seat token")
				return
			}
			viewer = seat.PlayerID
		}

		rm, err := rooms.Get(r.Context(), ref.Game, ref.Code)
		if err != nil {
			writeRoomError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, rm.View(viewer))
	}
}

func handleStart(logger *slog.Logger, rooms *room.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref, seat := roomFrom(r), seatFrom(r)
		rm, err := rooms.Start(r.Context(), ref.Game, ref.Code, seat.PlayerID)
		if err != nil {
			writeRoomError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, rm.View(seat.PlayerID))
	}
}

func handleAction(logger *slog.Logger, rooms *room.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req room.Action
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		ref, seat := roomFrom(r), seatFrom(r)
		rm, err := rooms.Act(r.Context(), ref.Game, ref.Code, seat.PlayerID, req)
		if err != nil {
			writeRoomError(w, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, rm.View(seat.PlayerID))
	}
}

func handleLeave(logger *slog.Logger, rooms *room.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref, seat := roomFrom(r), seatFrom(r)
		rm, err := rooms.Leave(r.Context(), ref.Game, ref.Code, seat.PlayerID)
		if err != nil {
			writeRoomError(w, logger, err)
			return
		}
		if rm == nil {
			writeJSON(w, http.StatusOK, LeaveResponse{Deleted: true})
			return
		}
		v := rm.View("")
		writeJSON(w, http.StatusOK, LeaveResponse{Room: &v})
	}
}
