package game

import (
	"github.com/cbodonnell/goban/pkg/game/types"
	"github.com/cbodonnell/goban/pkg/log"
)

// ApplyMove places a stone of the current color at index, passes the turn
// and removes every stone left without a liberty. Stones of both colors are
// removed in the same pass, including the group of the stone just placed.
// It returns false without changing the state when index is out of range or
// the tile is occupied.
func ApplyMove(state *types.GameState, index int) bool {
	if !types.InBounds(index) {
		log.Trace("Rejected move at out of range index %d", index)
		return false
	}
	if state.Board[index].State != types.TileStateEmpty {
		log.Trace("Rejected move at occupied index %d", index)
		return false
	}

	state.Board[index].State = state.CurrentPlayer
	state.NextTurn()

	for _, captured := range ResolveCaptures(&state.Board) {
		state.Board[captured].State = types.TileStateEmpty
	}

	return true
}

// PlaceAt applies a move at the tile nearest to the pixel position (x, y),
// if one is within snapping distance.
func PlaceAt(state *types.GameState, locator *TileLocator, x, y float64) bool {
	index, ok := locator.TileAt(x, y)
	if !ok {
		return false
	}
	return ApplyMove(state, index)
}
