package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("Arcade Rooms API", "/openapi.json", "/docs"))

	r.Route("/api/{game}/rooms/{code}", func(r chi.Router) {
		r.Use(roomMiddleware)
		r.Get("/", handleRoomState(logger, deps.Rooms, deps.Seats))
		r.Post("/join", handleJoin(logger, deps.Rooms, deps.Seats))
		r.Get("/events", handleEvents(logger, deps.Rooms, deps.Broker, deps.Seats))
		r.Get("/ws", handleWatch(logger, deps.Rooms, deps.Broker, deps.Seats))

		r.Group(func(r chi.Router) {
			r.Use(seatMiddleware(deps.Seats))
			r.Post("/start", handleStart(logger, deps.Rooms))
			r.Post("/actions", handleAction(logger, deps.Rooms))
			r.Post("/leave", handleLeave(logger, deps.Rooms))
		})
	})
}
