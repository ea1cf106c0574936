// Command roomwatch follows a room's live feed and redraws it in the
// terminal. Without a seat token it watches as a spectator.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/playperu/arcaderooms/internal/room"
	"github.com/playperu/arcaderooms/internal/server"
)

func main() {
	addr := flag.String("addr", "ws://localhost:8080", "server base URL")
	token := flag.String("token", "", "seat token; empty watches as a spectator")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: roomwatch [flags] <game> <code>\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() != 2 {
		flag.Usage()
		os.Exit(2)
	}

	logger := slog.New(pterm.NewSlogHandler(&pterm.DefaultLogger))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	target, err := watchURL(*addr, flag.Arg(0), flag.Arg(1), *token)
	if err != nil {
		logger.Error("invalid arguments", "error", err)
		os.Exit(2)
	}
	if err := watch(ctx, target); err != nil {
		logger.Error("watch ended", "error", err)
		os.Exit(1)
	}
}

func watchURL(base, game, code, token string) (string, error) {
	g, err := room.ParseGame(game)
	if err != nil {
		return "", err
	}
	c, err := room.NormalizeCode(code)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parsing addr: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = fmt.Sprintf("/api/%s/rooms/%s/ws", g, c)
	if token != "" {
		u.RawQuery = url.Values{"token": {token}}.Encode()
	}
	return u.String(), nil
}

func watch(ctx context.Context, target string) error {
	conn, _, err := websocket.Dial(ctx, target, nil)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", target, err)
	}
	defer conn.CloseNow()

	for {
		var f server.Frame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				conn.Close(websocket.StatusNormalClosure, "")
				return nil
			}
			return err
		}
		switch f.Type {
		case "deleted":
			pterm.Warning.Println("room closed: the last player left")
			return nil
		case "state":
			out, err := render(f.Room)
			if err != nil {
				return err
			}
			pterm.Print("\033[H\033[2J", out)
		}
	}
}
