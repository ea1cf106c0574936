package server

import (
	"log/slog"
	"net/http"

	"github.com/playperu/arcaderooms/internal/room"
)

type JoinRequest struct {
	Name string `json:"name"`
}

type JoinResponse struct {
	Token    string    `json:"token"`
	PlayerID string    `json:"playerId"`
	Room     room.View `json:"room"`
}

func handleJoin(logger *slog.Logger, rooms *room.Service, seats *Seats) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req JoinRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		ref := roomFrom(r)
		rm, playerID, err := rooms.Join(r.Context(), ref.Game, ref.Code, req.Name)
		if err != nil {
			writeRoomError(w, logger, err)
			return
		}

		token, err := seats.Issue(Seat{Game: ref.Game, Code: ref.Code, PlayerID: playerID})
		if err != nil {
			logger.Error("issuing seat token", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, http.StatusOK, JoinResponse{
			Token:    token,
			PlayerID: playerID,
			Room:     rm.View(playerID),
		})
	}
}
