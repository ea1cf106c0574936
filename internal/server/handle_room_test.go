package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/playperu/arcaderooms/internal/feed"
	"github.com/playperu/arcaderooms/internal/game"
	"github.com/playperu/arcaderooms/internal/game/blackjack"
	"github.com/playperu/arcaderooms/internal/room"
	"github.com/playperu/arcaderooms/internal/store"
)

func testRouter(t *testing.T) chi.Router {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	broker := feed.NewBroker()
	rooms := room.NewService(store.NewMemory(), broker, logger, room.Config{
		Blackjack: blackjack.DefaultRules(),
		Retries:   3,
	})
	return newRouter(logger, Deps{
		Rooms:  rooms,
		Broker: broker,
		Seats:  NewSeats("test-secret", time.Hour),
	})
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func join(t *testing.T, h http.Handler, path, name string) JoinResponse {
	t.Helper()
	w := do(t, h, http.MethodPost, path+"/join", "", JoinRequest{Name: name})
	if w.Code != http.StatusOK {
		t.Fatalf("join %s: expected 200, got %d: %s", name, w.Code, w.Body.String())
	}
	var resp JoinResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding join response: %v", err)
	}
	return resp
}

func TestJoinAndState(t *testing.T) {
	r := testRouter(t)

	ada := join(t, r, "/api/vandtia/rooms/fest", "Ada")
	if ada.Token == "" || ada.PlayerID == "" {
		t.Fatalf("missing token or player id: %+v", ada)
	}
	if ada.Room.Code != "FEST" || ada.Room.HostID != ada.PlayerID || ada.Room.You != ada.PlayerID {
		t.Errorf("unexpected room view: %+v", ada.Room)
	}

	bo := join(t, r, "/api/vandtia/rooms/FEST", "Bo")
	if bo.Room.Version != 2 {
		t.Errorf("version = %d, want 2", bo.Room.Version)
	}

	w := do(t, r, http.MethodGet, "/api/vandtia/rooms/FEST", ada.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var v room.View
	json.NewDecoder(w.Body).Decode(&v)
	if v.You != ada.PlayerID {
		t.Errorf("you = %q, want %q", v.You, ada.PlayerID)
	}
	if v.Vandtia == nil || len(v.Vandtia.Players) != 2 {
		t.Fatalf("expected two vändtia players, got %+v", v.Vandtia)
	}

	w = do(t, r, http.MethodGet, "/api/vandtia/rooms/FEST", "", nil)
	var spectator room.View
	json.NewDecoder(w.Body).Decode(&spectator)
	if spectator.You != "" {
		t.Errorf("spectator view has you = %q", spectator.You)
	}
}

func TestRoomPathValidation(t *testing.T) {
	r := testRouter(t)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"unknown game", "/api/poker/rooms/ABC", http.StatusNotFound},
		{"bad code", "/api/blackjack/rooms/" + strings.Repeat("A", 33), http.StatusBadRequest},
		{"missing room", "/api/blackjack/rooms/NOPE", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodGet, tt.path, "", nil)
			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestSeatTokenRequired(t *testing.T) {
	r := testRouter(t)
	ada := join(t, r, "/api/blackjack/rooms/ONE", "Ada")
	other := join(t, r, "/api/blackjack/rooms/TWO", "Bo")

	tests := []struct {
		name  string
		token string
	}{
		{"no token", ""},
		{"garbage", "not-a-jwt"},
		{"other room", other.Token},
		{"other game", mustIssue(t, Seat{Game: room.Vandtia, Code: "ONE", PlayerID: ada.PlayerID})},
		{"wrong key", mustIssueWith(t, NewSeats("other-secret", time.Hour), Seat{Game: room.Blackjack, Code: "ONE", PlayerID: ada.PlayerID})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, http.MethodPost, "/api/blackjack/rooms/ONE/actions", tt.token, room.Action{Type: room.ActionStand})
			if w.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d: %s", w.Code, w.Body.String())
			}
		})
	}
}

func mustIssue(t *testing.T, seat Seat) string {
	return mustIssueWith(t, NewSeats("test-secret", time.Hour), seat)
}

func mustIssueWith(t *testing.T, seats *Seats, seat Seat) string {
	t.Helper()
	token, err := seats.Issue(seat)
	if err != nil {
		t.Fatalf("issuing token: %v", err)
	}
	return token
}

func TestExpiredSeatToken(t *testing.T) {
	seats := NewSeats("s", time.Minute)
	token := mustIssueWith(t, seats, Seat{Game: room.Blackjack, Code: "A", PlayerID: "p1"})

	seats.now = func() time.Time { return time.Now().Add(time.Hour) }
	if _, err := seats.Parse(token); !errors.Is(err, errNoSeat) {
		t.Fatalf("expired token: got %v, want errNoSeat", err)
	}
}

func TestBlackjackRound(t *testing.T) {
	r := testRouter(t)
	const path = "/api/blackjack/rooms/BJ"
	ada := join(t, r, path, "Ada")
	bo := join(t, r, path, "Bo")

	w := do(t, r, http.MethodPost, path+"/start", bo.Token, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("non-host start: expected 409, got %d", w.Code)
	}

	w = do(t, r, http.MethodPost, path+"/start", ada.Token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("start: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var v room.View
	json.NewDecoder(w.Body).Decode(&v)

	tokens := map[string]string{ada.PlayerID: ada.Token, bo.PlayerID: bo.Token}
	for i := 0; i < 4 && v.Blackjack.Phase == blackjack.PhasePlaying; i++ {
		if len(v.Blackjack.Bank) != 2 || !v.Blackjack.Bank[1].Hidden {
			t.Fatalf("bank hole card not hidden during play: %+v", v.Blackjack.Bank)
		}
		w = do(t, r, http.MethodPost, path+"/actions", tokens[v.Blackjack.Turn], room.Action{Type: room.ActionStand})
		if w.Code != http.StatusOK {
			t.Fatalf("stand: expected 200, got %d: %s", w.Code, w.Body.String())
		}
		v = room.View{}
		json.NewDecoder(w.Body).Decode(&v)
	}

	if v.Blackjack.Phase != blackjack.PhaseDone {
		t.Fatalf("phase = %s, want done", v.Blackjack.Phase)
	}
	for _, c := range v.Blackjack.Bank {
		if c.Hidden {
			t.Errorf("bank card %s still hidden after dealer played", c.ID)
		}
	}
	for _, p := range v.Blackjack.Players {
		if p.Outcome == blackjack.OutcomeNone {
			t.Errorf("player %s has no outcome", p.Name)
		}
	}

	w = do(t, r, http.MethodPost, path+"/actions", ada.Token, room.Action{Type: room.ActionHit})
	if w.Code != http.StatusConflict {
		t.Errorf("hit after round: expected 409, got %d", w.Code)
	}
	w = do(t, r, http.MethodPost, path+"/actions", ada.Token, room.Action{Type: room.ActionPickUp})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("vändtia move in blackjack: expected 422, got %d", w.Code)
	}
}

func TestLeaveDeletesEmptyRoom(t *testing.T) {
	r := testRouter(t)
	const path = "/api/vandtia/rooms/BYE"
	ada := join(t, r, path, "Ada")
	bo := join(t, r, path, "Bo")

	w := do(t, r, http.MethodPost, path+"/leave", ada.Token, nil)
	var resp LeaveResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if w.Code != http.StatusOK || resp.Deleted || resp.Room == nil {
		t.Fatalf("first leave: %d %+v", w.Code, resp)
	}
	if resp.Room.HostID != bo.PlayerID {
		t.Errorf("host = %q, want %q", resp.Room.HostID, bo.PlayerID)
	}

	w = do(t, r, http.MethodPost, path+"/leave", bo.Token, nil)
	resp = LeaveResponse{}
	json.NewDecoder(w.Body).Decode(&resp)
	if !resp.Deleted {
		t.Fatalf("last leave did not delete: %+v", resp)
	}

	w = do(t, r, http.MethodGet, path, "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 after delete, got %d", w.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{room.ErrNotFound, http.StatusNotFound},
		{room.ErrInvalidName, http.StatusBadRequest},
		{fmt.Errorf("%w: nope", game.ErrInvalidAction), http.StatusUnprocessableEntity},
		{game.ErrNotYourTurn, http.StatusConflict},
		{game.ErrRoomFull, http.StatusConflict},
		{room.ErrNotHost, http.StatusConflict},
		{fmt.Errorf("updating room X: %w", room.ErrVersionConflict), http.StatusConflict},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestEventsStream(t *testing.T) {
	srv := httptest.NewServer(testRouter(t))
	defer srv.Close()
	h := srv.Config.Handler
	const path = "/api/vandtia/rooms/LIVE"
	ada := join(t, h, path, "Ada")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+path+"/events?token="+ada.Token, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("opening stream: %v", err)
	}
	defer resp.Body.Close()
	if got := resp.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("content-type = %q", got)
	}
	events := bufio.NewReader(resp.Body)

	typ, v := readSSE(t, events)
	if typ != "state" || v.Version != 1 || v.You != ada.PlayerID {
		t.Fatalf("first event: %s %+v", typ, v)
	}

	bo := join(t, h, path, "Bo")
	typ, v = readSSE(t, events)
	if typ != "state" || v.Version != 2 {
		t.Fatalf("second event: %s version %d", typ, v.Version)
	}

	do(t, h, http.MethodPost, path+"/leave", bo.Token, nil)
	readSSE(t, events)
	do(t, h, http.MethodPost, path+"/leave", ada.Token, nil)
	if typ, _ := readSSE(t, events); typ != "deleted" {
		t.Fatalf("last event = %s, want deleted", typ)
	}
}

func readSSE(t *testing.T, r *bufio.Reader) (string, room.View) {
	t.Helper()
	var typ string
	var v room.View
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("reading stream: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			typ = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &v)
		case line == "" && typ != "":
			return typ, v
		}
	}
}

func TestWatchWebsocket(t *testing.T) {
	srv := httptest.NewServer(testRouter(t))
	defer srv.Close()
	h := srv.Config.Handler
	const path = "/api/blackjack/rooms/WS"
	join(t, h, path, "Ada")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + srv.URL[len("http"):] + path + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.CloseNow()

	var f Frame
	if err := wsjson.Read(ctx, conn, &f); err != nil {
		t.Fatalf("read: %v", err)
	}
	if f.Type != "state" || f.Room == nil || f.Room.Version != 1 || f.Room.You != "" {
		t.Fatalf("first frame: %+v", f)
	}

	join(t, h, path, "Bo")
	f = Frame{}
	if err := wsjson.Read(ctx, conn, &f); err != nil {
		t.Fatalf("read: %v", err)
	}
	if f.Room == nil || len(f.Room.Blackjack.Players) != 2 {
		t.Fatalf("second frame: %+v", f)
	}

	conn.Close(websocket.StatusNormalClosure, "done")
}

func TestStreamMissingRoom(t *testing.T) {
	r := testRouter(t)
	w := do(t, r, http.MethodGet, "/api/vandtia/rooms/GHOST/events", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
