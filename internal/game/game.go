// Package game holds what the card engines share: seat limits and the
// errors an action can be rejected with.
package game

import "errors"

// MaxPlayers is the default seat cap for a room.
const MaxPlayers = 5

var (
	ErrNotYourTurn     = errors.New("not your turn")
	ErrInvalidAction   = errors.New("invalid action")
	ErrUnknownPlayer   = errors.New("player not in room")
	ErrAlreadySeated   = errors.New("player already in room")
	ErrRoomFull        = errors.New("room is full")
	ErrRoundInProgress = errors.New("round in progress")
	ErrRoundOver       = errors.New("round is over")
	ErrNotEnoughPlayer = errors.New("not enough players")
	ErrDeckExhausted   = errors.New("deck exhausted")
)
