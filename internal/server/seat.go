package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/playperu/arcaderooms/internal/room"
)

var errNoSeat = errors.New("no valid seat token")

// Seat is what a seat token proves: the bearer was given this player id
// in this room.
type Seat struct {
	Game     room.Game
	Code     string
	PlayerID string
}

type seatClaims struct {
	Game string `json:"game"`
	Code string `json:"code"`
	jwt.RegisteredClaims
}

// Seats issues and verifies HS256 seat tokens.
type Seats struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewSeats(secret string, ttl time.Duration) *Seats {
	return &Seats{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *Seats) Issue(seat Seat) (string, error) {
	now := s.now()
	claims := seatClaims{
		Game: string(seat.Game),
		Code: seat.Code,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   seat.PlayerID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *Seats) Parse(token string) (Seat, error) {
	var claims seatClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return Seat{}, fmt.Errorf("%w: %w", errNoSeat, err)
	}
	if claims.Subject == "" {
		return Seat{}, fmt.Errorf("%w: missing subject", errNoSeat)
	}
	return Seat{Game: room.Game(claims.Game), Code: claims.Code, PlayerID: claims.Subject}, nil
}

// For checks that token holds a seat in the given room.
func (s *Seats) For(token string, g room.Game, code string) (Seat, error) {
	seat, err := s.Parse(token)
	if err != nil {
		return Seat{}, err
	}
	if seat.Game != g || seat.Code != code {
		return Seat{}, fmt.Errorf("%w: token is for another room", errNoSeat)
	}
	return seat, nil
}

func bearerToken(r *http.Request) (string, bool) {
	token, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return token, found && token != ""
}
