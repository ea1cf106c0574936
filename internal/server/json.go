package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/playperu/arcaderooms/internal/game"
	"github.com/playperu/arcaderooms/internal/room"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeRoomError maps a room or engine error to a response. Anything it
// does not recognise is logged and reported as an internal error.
func writeRoomError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("room operation failed", "error", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, room.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, room.ErrInvalidCode),
		errors.Is(err, room.ErrInvalidName),
		errors.Is(err, room.ErrUnknownGame):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrInvalidAction),
		errors.Is(err, game.ErrDeckExhausted):
		return http.StatusUnprocessableEntity
	case errors.Is(err, game.ErrNotYourTurn),
		errors.Is(err, game.ErrUnknownPlayer),
		errors.Is(err, game.ErrAlreadySeated),
		errors.Is(err, game.ErrRoomFull),
		errors.Is(err, game.ErrRoundInProgress),
		errors.Is(err, game.ErrRoundOver),
		errors.Is(err, game.ErrNotEnoughPlayer),
		errors.Is(err, room.ErrNotHost),
		errors.Is(err, room.ErrVersionConflict):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
