package game

import (
	"testing"

	"github.com/cbodonnell/goban/pkg/game/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBoard(t *testing.T, rows ...string) types.Board {
	t.Helper()
	b, err := types.ParseBoard(rows...)
	require.NoError(t, err)
	return b
}

func TestResolveCaptures(t *testing.T) {
	tests := []struct {
		name  string
		board []string
		want  []int
	}{
		{
			name: "empty board",
			board: []string{
				".........", ".........", ".........",
				".........", ".........", ".........",
				".........", ".........", ".........",
			},
			want: nil,
		},
		{
			name: "corner stone without liberty",
			board: []string{
				"BW.......", "W........", ".........",
				".........", ".........", ".........",
				".........", ".........", ".........",
			},
			want: []int{0},
		},
		{
			name: "group with one liberty lives",
			board: []string{
				"BBW......", "W........", ".........",
				".........", ".........", ".........",
				".........", ".........", ".........",
			},
			want: nil,
		},
		{
			name: "group without liberty is captured",
			board: []string{
				"BBW......", "WWW......", ".........",
				".........", ".........", ".........",
				".........", ".........", ".........",
			},
			want: []int{0, 1},
		},
		{
			name: "liberty reached through a long chain",
			board: []string{
				"BBBBBBBBW", "WWWWWWWB.", ".........",
				".........", ".........", ".........",
				".........", ".........", ".........",
			},
			want: nil,
		},
		{
			name: "surrounded group in the center",
			board: []string{
				".........", ".........", "...WWW...",
				"..WBBBW..", "...WWW...", ".........",
				".........", ".........", ".........",
			},
			want: []int{30, 31, 32},
		},
		{
			name: "board without empty tiles captures everything",
			board: []string{
				"BBBBBBBBB", "BBBBBBBBB", "BBBBBBBBB",
				"BBBBBBBBB", "BBBBBBBBB", "BBBBBBBBB",
				"BBBBBBBBB", "BBBBBBBBB", "BBBBBBBBB",
			},
			want: func() []int {
				all := make([]int, 81)
				for i := range all {
					all[i] = i
				}
				return all
			}(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := mustBoard(t, tt.board...)
			before := board
			got := ResolveCaptures(&board)
			assert.Equal(t, tt.want, got)
			for i := range board {
				assert.Equal(t, before[i].State, board[i].State, "tile %d state changed", i)
				if board[i].State == types.TileStateEmpty {
					assert.False(t, board[i].IsAlive, "empty tile %d marked alive", i)
				}
			}
		})
	}
}

func TestResolveCaptures_resetsStaleLiveness(t *testing.T) {
	board := mustBoard(t,
		"BW.......", "W........", ".........",
		".........", ".........", ".........",
		".........", ".........", ".........",
	)
	board[0].IsAlive = true
	assert.Equal(t, []int{0}, ResolveCaptures(&board))
}

func TestApplyMove(t *testing.T) {
	tests := []struct {
		name       string
		board      []string
		player     types.TileState
		index      int
		wantOK     bool
		wantBoard  []string
		wantPlayer types.TileState
	}{
		{
			name: "first move on empty board",
			board: []string{
				".........", ".........", ".........",
				".........", ".........", ".........",
				".........", ".........", ".........",
			},
			player: types.TileStateWhite,
			index:  40,
			wantOK: true,
			wantBoard: []string{
				".........", ".........", ".........",
				".........", "....W....", ".........",
				".........", ".........", ".........",
			},
			wantPlayer: types.TileStateBlack,
		},
		{
			name: "occupied tile is rejected",
			board: []string{
				"B........", ".........", ".........",
				".........", ".........", ".........",
				".........", ".........", ".........",
			},
			player: types.TileStateWhite,
			index:  0,
			wantOK: false,
			wantBoard: []string{
				"B........", ".........", ".........",
				".........", ".........", ".........",
				".........", ".........", ".........",
			},
			wantPlayer: types.TileStateWhite,
		},
		{
			name: "out of range index is rejected",
			board: []string{
				".........", ".........", ".........",
				".........", ".........", ".........",
				".........", ".........", ".........",
			},
			player: types.TileStateBlack,
			index:  81,
			wantOK: false,
			wantBoard: []string{
				".........", ".........", ".........",
				".........", ".........", ".........",
				".........", ".........", ".........",
			},
			wantPlayer: types.TileStateBlack,
		},
		{
			name: "capture of a corner stone",
			board: []string{
				"BW.......", ".........", ".........",
				".........", ".........", ".........",
				".........", ".........", ".........",
			},
			player: types.TileStateWhite,
			index:  9,
			wantOK: true,
			wantBoard: []string{
				".W.......", "W........", ".........",
				".........", ".........", ".........",
				".........", ".........", ".........",
			},
			wantPlayer: types.TileStateBlack,
		},
		{
			name: "self capture is allowed and removes the placed stone",
			board: []string{
				".W.......", "W........", ".........",
				".........", ".........", ".........",
				".........", ".........", ".........",
			},
			player: types.TileStateBlack,
			index:  0,
			wantOK: true,
			wantBoard: []string{
				".W.......", "W........", ".........",
				".........", ".........", ".........",
				".........", ".........", ".........",
			},
			wantPlayer: types.TileStateWhite,
		},
		{
			name: "both colors are captured in the same pass",
			board: []string{
				"W.W......", "BW.......", ".........",
				".........", ".........", ".........",
				".........", ".........", ".........",
			},
			player: types.TileStateBlack,
			index:  1,
			wantOK: true,
			wantBoard: []string{
				"..W......", "BW.......", ".........",
				".........", ".........", ".........",
				".........", ".........", ".........",
			},
			wantPlayer: types.TileStateWhite,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := types.GameState{
				Board:         mustBoard(t, tt.board...),
				CurrentPlayer: tt.player,
			}
			if tt.player == types.TileStateBlack {
				state.CurrentPlayerID = 1
			}
			before := state

			ok := ApplyMove(&state, tt.index)

			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantBoard, state.Board.Rows())
			assert.Equal(t, tt.wantPlayer, state.CurrentPlayer)
			if !ok {
				assert.True(t, state.Equal(&before), "rejected move changed the state")
			} else {
				assert.NotEqual(t, before.CurrentPlayerID, state.CurrentPlayerID)
			}
		})
	}
}

func TestApplyMove_alternates(t *testing.T) {
	state := types.NewGameState()
	colors := []types.TileState{}
	for _, index := range []int{0, 40, 80, 8} {
		colors = append(colors, state.CurrentPlayer)
		require.True(t, ApplyMove(&state, index))
	}
	assert.Equal(t, []types.TileState{
		types.TileStateWhite, types.TileStateBlack, types.TileStateWhite, types.TileStateBlack,
	}, colors)
	assert.Equal(t, types.TileStateWhite, state.CurrentPlayer)
	assert.Equal(t, uint8(0), state.CurrentPlayerID)
}

func TestTileLocator_TileAt(t *testing.T) {
	locator := NewTileLocator()
	tests := []struct {
		name   string
		x, y   float64
		want   int
		wantOK bool
	}{
		{name: "first tile center", x: 32, y: 32, want: 0, wantOK: true},
		{name: "last tile center", x: 288, y: 288, want: 80, wantOK: true},
		{name: "near first tile", x: 40, y: 40, want: 0, wantOK: true},
		{name: "just inside threshold", x: 47.9, y: 32, want: 0, wantOK: true},
		{name: "midway between two tiles", x: 48, y: 32, wantOK: false},
		{name: "square corner outside threshold", x: 45, y: 45, wantOK: false},
		{name: "row 0 col 4", x: 170, y: 40, want: 4, wantOK: true},
		{name: "row 3 col 2", x: 96, y: 130, want: 29, wantOK: true},
		{name: "origin", x: 0, y: 0, wantOK: false},
		{name: "far outside the board", x: 1000, y: 1000, wantOK: false},
		{name: "negative", x: -32, y: 32, wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := locator.TileAt(tt.x, tt.y)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestPlaceAt(t *testing.T) {
	locator := NewTileLocator()
	state := types.NewGameState()

	assert.True(t, PlaceAt(&state, locator, 64, 32))
	assert.Equal(t, types.TileStateWhite, state.Board[1].State)

	assert.False(t, PlaceAt(&state, locator, 66, 30), "occupied tile")
	assert.False(t, PlaceAt(&state, locator, 48, 48), "no tile in range")
	assert.Equal(t, types.TileStateBlack, state.CurrentPlayer)
}
