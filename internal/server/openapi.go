package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/playperu/arcaderooms/internal/room"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse maps each dependency to "ok" or "error".
type HealthResponse map[string]struct {
	Status string `json:"status"`
}

const roomPath = "/api/{game}/rooms/{code}"

// RoomPath documents the path parameters shared by every room operation.
type RoomPath struct {
	Game string `path:"game" enum:"blackjack,vandtia"`
	Code string `path:"code" minLength:"1" maxLength:"32"`
}

type joinInput struct {
	RoomPath
	JoinRequest
}

type actionInput struct {
	RoomPath
	room.Action
}

// streamInput is the path plus the optional seat token browsers pass in
// the query string.
type streamInput struct {
	RoomPath
	Token string `query:"token"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Arcade Rooms API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Real-time card rooms for Blackjack and Vändtia. {game} is blackjack or vandtia.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/{game}/rooms/{code}
	getRoom, _ := r.NewOperationContext(http.MethodGet, roomPath)
	getRoom.SetSummary("Get room")
	getRoom.SetDescription("Returns the room as the bearer's seat sees it. Without a token, the spectator view.")
	getRoom.AddReqStructure(RoomPath{})
	getRoom.AddRespStructure(room.View{}, openapi.WithHTTPStatus(http.StatusOK))
	getRoom.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	getRoom.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getRoom)

	// POST /api/{game}/rooms/{code}/join
	postJoin, _ := r.NewOperationContext(http.MethodPost, roomPath+"/join")
	postJoin.SetSummary("Join a room")
	postJoin.SetDescription("Takes a seat, creating the room with the caller as host if it does not exist. Returns a seat token.")
	postJoin.AddReqStructure(joinInput{})
	postJoin.AddRespStructure(JoinResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postJoin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postJoin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postJoin)

	// POST /api/{game}/rooms/{code}/start
	postStart, _ := r.NewOperationContext(http.MethodPost, roomPath+"/start")
	postStart.SetSummary("Start a round")
	postStart.SetDescription("Deals a new round. Host only, and only between rounds. Requires Bearer token.")
	postStart.AddReqStructure(RoomPath{})
	postStart.AddRespStructure(room.View{}, openapi.WithHTTPStatus(http.StatusOK))
	postStart.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	postStart.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postStart)

	// POST /api/{game}/rooms/{code}/actions
	postAction, _ := r.NewOperationContext(http.MethodPost, roomPath+"/actions")
	postAction.SetSummary("Make a move")
	postAction.SetDescription("Blackjack: hit, stand. Vändtia: confirm_setup, play_cards, play_face_down, draw_chance, pick_up. Requires Bearer token.")
	postAction.AddReqStructure(actionInput{})
	postAction.AddRespStructure(room.View{}, openapi.WithHTTPStatus(http.StatusOK))
	postAction.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	postAction.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	postAction.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	_ = r.AddOperation(postAction)

	// POST /api/{game}/rooms/{code}/leave
	postLeave, _ := r.NewOperationContext(http.MethodPost, roomPath+"/leave")
	postLeave.SetSummary("Leave a room")
	postLeave.SetDescription("Gives up the seat. The host role passes on; the room is deleted when empty. Requires Bearer token.")
	postLeave.AddReqStructure(RoomPath{})
	postLeave.AddRespStructure(LeaveResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postLeave.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	postLeave.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(postLeave)

	// GET /api/{game}/rooms/{code}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, roomPath+"/events")
	getEvents.SetSummary("SSE room stream")
	getEvents.SetDescription("Server-Sent Events: 'state' with the viewer's projection on every change, 'deleted' when the room goes away. Pass token as query parameter.")
	getEvents.AddReqStructure(streamInput{})
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /api/{game}/rooms/{code}/ws
	getWS, _ := r.NewOperationContext(http.MethodGet, roomPath+"/ws")
	getWS.SetSummary("WebSocket room stream")
	getWS.SetDescription("Upgrades to a WebSocket that sends the same frames as the SSE stream as JSON.")
	getWS.AddReqStructure(streamInput{})
	getWS.AddRespStructure(Frame{}, openapi.WithHTTPStatus(http.StatusSwitchingProtocols))
	_ = r.AddOperation(getWS)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
