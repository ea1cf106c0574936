package room

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playperu/arcaderooms/internal/game/blackjack"
	"github.com/playperu/arcaderooms/internal/game/shedding"
)

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"abc", "ABC", false},
		{"  party-7 ", "PARTY-7", false},
		{"", "", true},
		{"   ", "", true},
		{"with space", "", true},
		{"ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456", "", true},
	}
	for _, tt := range tests {
		got, err := NormalizeCode(tt.in)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrInvalidCode, "NormalizeCode(%q)", tt.in)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestParseGame(t *testing.T) {
	g, err := ParseGame("BlackJack")
	require.NoError(t, err)
	assert.Equal(t, Blackjack, g)

	_, err = ParseGame("poker")
	assert.ErrorIs(t, err, ErrUnknownGame)
}

func TestDecodeRoundTrip(t *testing.T) {
	tb := blackjack.New(blackjack.DefaultRules())
	require.NoError(t, tb.Join("p1", "Ada"))
	require.NoError(t, tb.StartRound())
	r := &Room{Game: Blackjack, Code: "RT", HostID: "p1", Version: 4, Blackjack: tb}

	data, err := json.Marshal(r)
	require.NoError(t, err)
	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, r.Blackjack.Bank, got.Blackjack.Bank)
	assert.Equal(t, r.Blackjack.Players, got.Blackjack.Players)
	assert.Equal(t, int64(4), got.Version)
}

func TestDecodeRejectsMismatchedVariant(t *testing.T) {
	tests := []struct {
		name string
		room Room
	}{
		{"blackjack without table", Room{Game: Blackjack, Code: "X"}},
		{"blackjack with vandtia table", Room{Game: Blackjack, Code: "X", Shedding: shedding.New(shedding.Rules{})}},
		{"both tables", Room{Game: Vandtia, Code: "X", Shedding: shedding.New(shedding.Rules{}), Blackjack: blackjack.New(blackjack.Rules{})}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.room)
			require.NoError(t, err)
			_, err = Decode(data)
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}

	_, err := Decode([]byte(`{"game":"poker","code":"X"}`))
	assert.ErrorIs(t, err, ErrUnknownGame)
}

func TestDecodeRejectsBrokenConservation(t *testing.T) {
	tb := shedding.New(shedding.Rules{})
	require.NoError(t, tb.Join("p1", "Ada"))
	require.NoError(t, tb.Join("p2", "Bo"))
	require.NoError(t, tb.StartRound())
	tb.Deck = tb.Deck[1:]

	data, err := json.Marshal(Room{Game: Vandtia, Code: "X", HostID: "p1", Shedding: tb})
	require.NoError(t, err)
	_, err = Decode(data)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestKeyedMutexReleasesEntries(t *testing.T) {
	var k keyedMutex
	unlock := k.Lock("a")
	unlockB := k.Lock("b")
	assert.Len(t, k.locks, 2)
	unlock()
	unlockB()
	assert.Empty(t, k.locks)
}
