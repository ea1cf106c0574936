package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/playperu/arcaderooms/internal/room"
)

type ctxKey int

const (
	ctxKeyRoom ctxKey = iota
	ctxKeySeat
)

type roomRef struct {
	Game room.Game
	Code string
}

// roomMiddleware resolves {game} and {code} from the path.
func roomMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		g, err := room.ParseGame(chi.URLParam(r, "game"))
		if err != nil {
			writeError(w, http.StatusNotFound, "unknown game")
			return
		}
		code, err := room.NormalizeCode(chi.URLParam(r, "code"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "room code must be 1-32 letters, digits or dashes")
			return
		}
		ctx := context.WithValue(r.Context(), ctxKeyRoom, roomRef{Game: g, Code: code})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// seatMiddleware requires a bearer seat token for the room in the path.
func seatMiddleware(seats *Seats) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "seat token required")
				return
			}
			ref := roomFrom(r)
			seat, err := seats.For(token, ref.Game, ref.Code)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid seat token")
				return
			}
			ctx := context.WithValue(r.Context(), ctxKeySeat, seat)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func roomFrom(r *http.Request) roomRef {
	return r.Context().Value(ctxKeyRoom).(roomRef)
}

func seatFrom(r *http.Request) Seat {
	return r.Context().Value(ctxKeySeat).(Seat)
}
