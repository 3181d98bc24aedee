package types

import (
	"github.com/cbodonnell/goban/pkg/game/constants"
	"github.com/cespare/xxhash/v2"
)

// GameState is the complete simulation state.
// It holds no pointers, so a plain assignment is a full snapshot.
type GameState struct {
	Board Board `json:"board"`
	// CurrentPlayer is the color placed by the next accepted move. It is never empty.
	CurrentPlayer TileState `json:"currentPlayer"`
	// CurrentPlayerID is the turn id of CurrentPlayer: 0 for White, 1 for Black.
	CurrentPlayerID uint8 `json:"currentPlayerId"`
}

// NewGameState returns an empty board with White to move.
func NewGameState() GameState {
	return GameState{
		CurrentPlayer:   TileStateWhite,
		CurrentPlayerID: 0,
	}
}

func (g *GameState) Copy() GameState {
	return *g
}

func (g *GameState) Equal(other *GameState) bool {
	if other == nil {
		return false
	}
	return *g == *other
}

// NextTurn flips the current color and turn id.
func (g *GameState) NextTurn() {
	g.CurrentPlayer = g.CurrentPlayer.Opponent()
	g.CurrentPlayerID ^= 1
}

// Bytes returns the canonical encoding of the state: one byte per tile,
// then the current color and turn id. Liveness flags are not part of it.
func (g *GameState) Bytes() []byte {
	b := make([]byte, 0, constants.TileCount+2)
	for i := range g.Board {
		b = append(b, byte(g.Board[i].State))
	}
	return append(b, byte(g.CurrentPlayer), g.CurrentPlayerID)
}

// Checksum hashes the canonical encoding.
func (g *GameState) Checksum() uint64 {
	return xxhash.Sum64(g.Bytes())
}
