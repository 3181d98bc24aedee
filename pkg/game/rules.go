package game

import (
	"github.com/cbodonnell/goban/pkg/game/types"
)

// ResolveCaptures marks every stone that can reach an empty tile through
// stones of its own color as alive, and returns the indices of the stones
// that are not, in ascending order. Only IsAlive flags are modified.
func ResolveCaptures(board *types.Board) []int {
	board.ResetLiveness()

	stack := make([]int, 0, len(board))
	neighbors := make([]int, 0, 4)
	for i := range board {
		if board[i].State != types.TileStateEmpty {
			continue
		}
		neighbors = types.AppendNeighbors(neighbors[:0], i)
		for _, n := range neighbors {
			stack = grantLife(board, n, stack)
		}
	}

	var captured []int
	for i := range board {
		if board[i].State != types.TileStateEmpty && !board[i].IsAlive {
			captured = append(captured, i)
		}
	}
	return captured
}

// grantLife flood fills the group containing start. The stack is returned
// empty so the caller can reuse its capacity.
func grantLife(board *types.Board, start int, stack []int) []int {
	if board[start].State == types.TileStateEmpty || board[start].IsAlive {
		return stack
	}
	color := board[start].State
	board[start].IsAlive = true
	stack = append(stack, start)

	var neighbors [4]int
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, n := range types.AppendNeighbors(neighbors[:0], current) {
			if board[n].State != color || board[n].IsAlive {
				continue
			}
			board[n].IsAlive = true
			stack = append(stack, n)
		}
	}
	return stack
}
